package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func InitializeCommands() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "rawflash",
		Short: "Rawflash writes disk images to one or more block devices.",
		Long: `Rawflash writes raw or compressed (gzip, zstd, xz, lz4) disk images to
one or more block devices in a single pass over the image.
Zero regions are skipped instead of written, so sparse images flash faster.`,
		SuggestionsMinimumDistance: 2,
		SilenceErrors:              true,
		SilenceUsage:               true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "config file (default is $HOME/.rawflash/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print what the flash engine is doing")

	rootCmd.AddCommand(
		NewCmdFlash(),
		NewCmdDevices(),
		NewCmdVersion(),
	)

	return rootCmd
}

func Execute(rootCmd *cobra.Command) {
	rootCmd.Version = Version
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// logFunction returns what the library packages log through.
func logFunction(verbose bool) func(fmt string, args ...any) {
	if verbose {
		return func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format, args...)
		}
	}
	return func(string, ...any) {}
}
