package appconfig

import (
	"fmt"
	"time"

	"github.com/macvmio/rawflash/pkg/imageformat"
)

type Config struct {
	BufferSize          int           `mapstructure:"buffer_size"`
	SyncThresholdSingle int64         `mapstructure:"sync_threshold_single"`
	SyncThresholdMulti  int64         `mapstructure:"sync_threshold_multi"`
	PollInterval        time.Duration `mapstructure:"poll_interval"`
	StopAtTotal         bool          `mapstructure:"stop_at_total"`
	ParallelFanOut      bool          `mapstructure:"parallel_fanout"`
	AdaptiveSingle      bool          `mapstructure:"adaptive_single"`
	Format              string        `mapstructure:"format"`
	Verbose             bool          `mapstructure:"verbose"`
}

// Validate rejects values the flash engine cannot work with.
func (c *Config) Validate() error {
	if c.BufferSize <= 0 {
		return fmt.Errorf("buffer_size must be positive, got %d", c.BufferSize)
	}
	if c.SyncThresholdSingle <= 0 || c.SyncThresholdMulti <= 0 {
		return fmt.Errorf("sync thresholds must be positive, got %d and %d", c.SyncThresholdSingle, c.SyncThresholdMulti)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %v", c.PollInterval)
	}
	if _, _, err := c.ImageFormat(); err != nil {
		return err
	}
	return nil
}

// ImageFormat returns the forced image format, if one is configured.
func (c *Config) ImageFormat() (imageformat.Format, bool, error) {
	if c.Format == "" || c.Format == "auto" {
		return imageformat.Raw, false, nil
	}
	f, err := imageformat.ParseFormat(c.Format)
	if err != nil {
		return imageformat.Raw, false, err
	}
	return f, true, nil
}
