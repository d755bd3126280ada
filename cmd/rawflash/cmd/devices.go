package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/macvmio/rawflash/pkg/device"
)

func NewCmdDevices() *cobra.Command {
	var output string
	var devicesCmd = &cobra.Command{
		Use:     "devices",
		Short:   "List block devices that can be flashed",
		Long:    `Lists the block devices found on this machine with their size and type.`,
		Args:    cobra.NoArgs,
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := device.List(device.WithLogFunction(logFunction(TheAppConfig.Verbose)))
			if err != nil {
				return fmt.Errorf("unable to list devices: %w", err)
			}
			return printDevices(cmd.OutOrStdout(), devices, output)
		},
	}
	devicesCmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json or yaml")
	return devicesCmd
}

func printDevices(w io.Writer, devices []device.Descriptor, output string) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(devices)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(devices); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PATH\tSIZE\tTYPE\tNAME")
		for _, d := range devices {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Path, d.HumanSize, d.Category, d.Name)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format '%v'", output)
	}
}
