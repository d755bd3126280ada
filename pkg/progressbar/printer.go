// Package progressbar renders the state of a progress.Tracker on a terminal.
package progressbar

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/macvmio/rawflash/pkg/progress"
)

const (
	DefaultInterval = 200 * time.Millisecond
	DefaultWidth    = 40
)

// Printer polls a tracker and redraws a single status line. When the output
// is not a terminal it prints a new line every time the percentage changes.
type Printer struct {
	tracker     *progress.Tracker
	out         io.Writer
	interval    time.Duration
	interactive bool
	bar         *bar
	lastPercent int
}

type Option func(p *Printer)

func WithOutput(w io.Writer) Option {
	return func(p *Printer) {
		p.out = w
	}
}

func WithInterval(d time.Duration) Option {
	return func(p *Printer) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithInteractive(interactive bool) Option {
	return func(p *Printer) {
		p.interactive = interactive
	}
}

func WithWidth(cells int) Option {
	return func(p *Printer) {
		if cells > 0 {
			p.bar = newBar(cells)
		}
	}
}

func New(tracker *progress.Tracker, opt ...Option) *Printer {
	p := &Printer{
		tracker:     tracker,
		out:         os.Stdout,
		interval:    DefaultInterval,
		interactive: term.IsTerminal(int(os.Stdout.Fd())),
		bar:         newBar(DefaultWidth),
		lastPercent: -1,
	}
	for _, o := range opt {
		o(p)
	}
	return p
}

// Run redraws until ctx is done, then prints the final state and a newline.
func (p *Printer) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.print(p.tracker.Snapshot())
			_, err := fmt.Fprintln(p.out)
			return err
		case <-ticker.C:
			p.print(p.tracker.Snapshot())
		}
	}
}

func (p *Printer) print(s progress.Snapshot) {
	if p.interactive {
		fmt.Fprintf(p.out, "\r\x1b[2K%s", p.Render(s))
		return
	}
	percent := int(s.Fraction * 100)
	if percent == p.lastPercent {
		return
	}
	p.lastPercent = percent
	fmt.Fprintf(p.out, "%s\n", p.Render(s))
}

// Render formats one status line for s.
func (p *Printer) Render(s progress.Snapshot) string {
	p.bar.fill(int(s.Fraction * float64(p.bar.dots())))
	return fmt.Sprintf("Progress: %s %3d%% %s / %s %s/s %v",
		p.bar,
		int(s.Fraction*100),
		humanize.Bytes(s.BytesWritten),
		humanize.Bytes(s.TotalBytes),
		humanize.Bytes(uint64(s.Throughput)),
		s.Elapsed.Round(time.Second))
}
