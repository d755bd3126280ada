package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/macvmio/rawflash/pkg/appconfig"
	"github.com/macvmio/rawflash/pkg/flash"
	"github.com/macvmio/rawflash/pkg/progress"
	"github.com/macvmio/rawflash/pkg/progressbar"
)

var errAborted = errors.New("aborted, nothing was written")

func NewCmdFlash() *cobra.Command {
	var devices []string
	var assumeYes bool
	var flashCmd = &cobra.Command{
		Use:   "flash [image path] -d DEVICE [-d DEVICE...]",
		Short: "Write a disk image to one or more devices.",
		Long: `Writes a raw, gzip, zstd, xz or lz4 disk image to every given device.
All devices receive identical content. A failure on any device aborts the whole operation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(devices) == 0 {
				return flash.ErrNoDestinations
			}
			if !assumeYes {
				if err := confirm(devices); err != nil {
					return err
				}
			}
			return runFlash(cmd.Context(), cmd.OutOrStdout(), args[0], devices, &TheAppConfig)
		},
	}

	flashCmd.Flags().StringArrayVarP(&devices, "device", "d", nil, "device or file to write to, can be repeated")
	flashCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation")
	addFlashFlags(flashCmd.Flags())

	return flashCmd
}

func confirm(devices []string) error {
	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("All data on %s will be lost. Continue", strings.Join(devices, ", ")),
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return errAborted
		}
		return fmt.Errorf("failed to get confirmation: %w", err)
	}
	return nil
}

// runFlash runs the flash worker and the progress printer side by side. The
// printer stops once the worker returns.
func runFlash(ctx context.Context, out io.Writer, image string, devices []string, cfg *appconfig.Config, popts ...progressbar.Option) error {
	opts, err := flashOptions(cfg)
	if err != nil {
		return err
	}
	tracker := progress.NewTracker()
	printer := progressbar.New(tracker, append([]progressbar.Option{
		progressbar.WithOutput(out),
		progressbar.WithInterval(cfg.PollInterval),
	}, popts...)...)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	var res *flash.Result
	g.Go(func() error {
		defer cancel()
		var err error
		res, err = flash.Flash(image, devices, tracker, opts...)
		if err != nil {
			tracker.Reset()
			return err
		}
		return nil
	})
	g.Go(func() error {
		return printer.Run(gctx)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(out, "Flashed %s (%s skipped as zeroes) to %d device(s) in %v\n",
		humanize.Bytes(uint64(res.BytesWritten)),
		humanize.Bytes(uint64(res.BytesSkipped)),
		len(devices),
		res.Elapsed.Round(time.Millisecond))
	return nil
}
