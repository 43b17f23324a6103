// Package config loads the settings of the waveio tools from defaults,
// command line flags, WAVEIO_* environment variables and an optional config
// file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cwbudde/waveio"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Log    LogConfig      `mapstructure:"log"`
	Writer WriterDefaults `mapstructure:"writer"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// WriterDefaults overrides the format of written files. Zero fields keep the
// format of the source file.
type WriterDefaults struct {
	SampleRate    int `mapstructure:"sample_rate"`
	NumChannels   int `mapstructure:"channels"`
	BitsPerSample int `mapstructure:"bits_per_sample"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

// ErrUnknownKeys is returned for config files carrying keys that no setting
// uses.
var ErrUnknownKeys = fmt.Errorf("%w: unknown configuration keys", waveio.ErrInvalidConfig)

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"log-level":              "log.level",
	"writer-sample-rate":     "writer.sample_rate",
	"writer-channels":        "writer.channels",
	"writer-bits-per-sample": "writer.bits_per_sample",
}

func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level: "info",
		},
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("log-level", defaults.Log.Level, "Log level (debug|info|warn|error)")
	fs.Int("writer-sample-rate", defaults.Writer.SampleRate, "Sample rate of written files (0 keeps the source rate)")
	fs.Int("writer-channels", defaults.Writer.NumChannels, "Channel count of written files, 1 or 2 (0 keeps the source count)")
	fs.Int("writer-bits-per-sample", defaults.Writer.BitsPerSample, "Bit depth of written files, 8..16 (0 keeps the source depth)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)

	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("WAVEIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("waveio")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	if used := v.ConfigFileUsed(); used != "" {
		if err := checkUnknownKeys(used); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the log level and the writer overrides.
func (c Config) Validate() error {
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}

	w := c.Writer
	if w.SampleRate < 0 {
		return fmt.Errorf("%w: sample rate %d", waveio.ErrInvalidConfig, w.SampleRate)
	}

	if w.NumChannels != 0 && w.NumChannels != 1 && w.NumChannels != 2 {
		return fmt.Errorf("%w: %d channels", waveio.ErrInvalidConfig, w.NumChannels)
	}

	if w.BitsPerSample != 0 && (w.BitsPerSample < 8 || w.BitsPerSample > 16) {
		return fmt.Errorf("%w: %d bits per sample", waveio.ErrInvalidConfig, w.BitsPerSample)
	}

	return nil
}

// WriterConfig returns the writer configuration for files derived from ref.
// ref may be nil.
func (w WriterDefaults) WriterConfig(ref waveio.FormatSource) waveio.WriterConfig {
	return waveio.WriterConfig{
		SampleRate:    w.SampleRate,
		NumChannels:   w.NumChannels,
		BitsPerSample: w.BitsPerSample,
		Reference:     ref,
	}
}

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("writer.sample_rate", c.Writer.SampleRate)
	v.SetDefault("writer.channels", c.Writer.NumChannels)
	v.SetDefault("writer.bits_per_sample", c.Writer.BitsPerSample)
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}

		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	return nil
}

// checkUnknownKeys decodes the file on its own so that only keys present in
// the file are checked.
func checkUnknownKeys(path string) error {
	fv := viper.New()
	fv.SetConfigFile(path)

	if err := fv.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var probe Config
	if err := fv.UnmarshalExact(&probe); err != nil {
		return fmt.Errorf("%w in %s: %w", ErrUnknownKeys, path, err)
	}

	return nil
}
