package cmd

import (
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/macvmio/rawflash/pkg/appconfig"
	"github.com/macvmio/rawflash/pkg/flash"
	"github.com/macvmio/rawflash/pkg/progressbar"
)

var flagConfigFile string

var TheAppConfig appconfig.Config

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"verbose":               "verbose",
	"buffer-size":           "buffer_size",
	"sync-threshold-single": "sync_threshold_single",
	"sync-threshold-multi":  "sync_threshold_multi",
	"poll-interval":         "poll_interval",
	"stop-at-total":         "stop_at_total",
	"parallel":              "parallel_fanout",
	"adaptive-single":       "adaptive_single",
	"format":                "format",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("buffer_size", flash.DefaultBufferSize)
	v.SetDefault("sync_threshold_single", flash.DefaultSyncThresholdSingle)
	v.SetDefault("sync_threshold_multi", flash.DefaultSyncThresholdMulti)
	v.SetDefault("poll_interval", progressbar.DefaultInterval)
	v.SetDefault("stop_at_total", false)
	v.SetDefault("parallel_fanout", false)
	v.SetDefault("adaptive_single", false)
	v.SetDefault("format", "auto")
	v.SetDefault("verbose", false)
}

func initConfig(flags *pflag.FlagSet) error {
	cfg, err := loadConfig(viper.GetViper(), flagConfigFile, flags)
	if err != nil {
		return err
	}
	TheAppConfig = *cfg
	return nil
}

func loadConfig(v *viper.Viper, configFile string, flags *pflag.FlagSet) (*appconfig.Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home directory: %w", err)
		}
		v.AddConfigPath(path.Join(home, ".rawflash"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix("RAWFLASH")
	v.AutomaticEnv()
	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("unable to bind flag '%v': %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading viper config '%v': %w", v.ConfigFileUsed(), err)
		}
	}
	var cfg appconfig.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling viper config '%v': %w", v.ConfigFileUsed(), err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	}
	return &cfg, nil
}

func addFlashFlags(fs *pflag.FlagSet) {
	fs.Int("buffer-size", flash.DefaultBufferSize, "chunk size in bytes")
	fs.Int64("sync-threshold-single", flash.DefaultSyncThresholdSingle, "bytes between data syncs with one device")
	fs.Int64("sync-threshold-multi", flash.DefaultSyncThresholdMulti, "bytes between data syncs with several devices")
	fs.Duration("poll-interval", progressbar.DefaultInterval, "progress refresh interval")
	fs.Bool("stop-at-total", false, "stop once the resolved image size has been written")
	fs.Bool("parallel", false, "write each chunk to all devices concurrently")
	fs.Bool("adaptive-single", false, "resolve the size while streaming with a single device")
	fs.String("format", "auto", "image format: auto, raw, gzip, zstd, xz or lz4")
}

func flashOptions(cfg *appconfig.Config) ([]flash.Option, error) {
	opts := []flash.Option{
		flash.WithBufferSize(cfg.BufferSize),
		flash.WithSyncThresholds(cfg.SyncThresholdSingle, cfg.SyncThresholdMulti),
		flash.WithStopAtTotal(cfg.StopAtTotal),
		flash.WithParallelFanOut(cfg.ParallelFanOut),
		flash.WithStreamingSize(cfg.AdaptiveSingle),
		flash.WithLogFunction(logFunction(cfg.Verbose)),
	}
	f, forced, err := cfg.ImageFormat()
	if err != nil {
		return nil, err
	}
	if forced {
		opts = append(opts, flash.WithFormat(f))
	}
	return opts, nil
}
