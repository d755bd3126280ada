package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version can be set via:
// -ldflags="-X 'github.com/macvmio/rawflash/cmd/rawflash/cmd.Version=$TAG'"
var Version string

var revision string

func init() {
	i, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if Version == "" {
		Version = i.Main.Version
	}
	for _, s := range i.Settings {
		if s.Key == "vcs.revision" {
			revision = s.Value
		}
	}
}

func NewCmdVersion() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Long:  `The version string depends on how the binary was built.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			switch {
			case Version == "":
				fmt.Fprintln(cmd.OutOrStdout(), "could not determine build information")
			case revision != "":
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", Version, revision)
			default:
				fmt.Fprintln(cmd.OutOrStdout(), Version)
			}
		},
	}
}
