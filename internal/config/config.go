// Package config loads the wiggle command configuration.
//
// Values come from three layers, later ones winning: the envDefault tags
// below, an optional YAML file (wiggle.yml in the user config directories,
// or an explicit path), and WIGGLE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"
)

// AppName names the config file and the per-user directories.
const AppName = "wiggle"

// Config holds every tunable of the command.
type Config struct {
	SampleRate int `mapstructure:"sample_rate" env:"WIGGLE_SAMPLE_RATE" envDefault:"22050"`

	CacheDir         string `mapstructure:"cache_dir" env:"WIGGLE_CACHE_DIR"`
	DiskCacheBytes   int64  `mapstructure:"disk_cache_bytes" env:"WIGGLE_DISK_CACHE_BYTES" envDefault:"1073741824"`
	MemoryCacheBytes int64  `mapstructure:"memory_cache_bytes" env:"WIGGLE_MEMORY_CACHE_BYTES" envDefault:"268435456"`
	RenderMemoBytes  int64  `mapstructure:"render_memo_bytes" env:"WIGGLE_RENDER_MEMO_BYTES" envDefault:"67108864"`
	CompressLevel    int    `mapstructure:"compress_level" env:"WIGGLE_COMPRESS_LEVEL" envDefault:"3"`

	HTTPTimeout       time.Duration `mapstructure:"http_timeout" env:"WIGGLE_HTTP_TIMEOUT" envDefault:"30s"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" env:"WIGGLE_REQUESTS_PER_SECOND" envDefault:"4"`
	UserAgent         string        `mapstructure:"user_agent" env:"WIGGLE_USER_AGENT" envDefault:"algo-wiggle"`

	Concurrency int `mapstructure:"concurrency" env:"WIGGLE_CONCURRENCY" envDefault:"1"`

	LogLevel string `mapstructure:"log_level" env:"WIGGLE_LOG_LEVEL" envDefault:"info"`
	LogFile  string `mapstructure:"log_file" env:"WIGGLE_LOG_FILE"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-" env:"-"`
}

// Default returns the built-in defaults, ignoring the environment.
func Default() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		return Config{}, fmt.Errorf("config: defaults: %w", err)
	}

	return cfg, nil
}

// Load builds the configuration. path selects a config file explicitly;
// when empty the user config directories are searched and a missing file is
// not an error.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}

		v.SetConfigFile(expanded)
	} else {
		v.SetConfigName(AppName)
		for _, dir := range searchDirs() {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	} else {
		if err := v.Unmarshal(&cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", v.ConfigFileUsed(), err)
		}

		cfg.File = v.ConfigFileUsed()
	}

	// Only variables that are actually set override the file.
	if err := env.ParseWithOptions(&cfg, env.Options{DefaultValueTagName: "noDefault"}); err != nil {
		return Config{}, fmt.Errorf("config: environment: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

// searchDirs lists config directories, most specific first.
func searchDirs() []string {
	var dirs []string
	if c := os.Getenv("WIGGLE_CONFIG_HOME"); c != "" {
		dirs = append(dirs, c)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append(dirs, filepath.Join(c, AppName))
	}

	if scoped, err := gap.NewScope(gap.User, AppName).ConfigDirs(); err == nil {
		dirs = append(dirs, scoped...)
	}

	return append(dirs, ".")
}

func (c *Config) resolvePaths() error {
	if c.CacheDir == "" {
		dir, err := gap.NewScope(gap.User, AppName).CacheDir()
		if err != nil {
			return fmt.Errorf("config: cache dir: %w", err)
		}

		c.CacheDir = dir
	}

	var err error
	if c.CacheDir, err = homedir.Expand(c.CacheDir); err != nil {
		return fmt.Errorf("config: cache dir: %w", err)
	}

	if c.LogFile != "" {
		if c.LogFile, err = homedir.Expand(c.LogFile); err != nil {
			return fmt.Errorf("config: log file: %w", err)
		}
	}

	return nil
}

// Validate reports the first out-of-range value.
func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("config: sample_rate must be positive, got %d", c.SampleRate)
	case c.MemoryCacheBytes < 0 || c.DiskCacheBytes < 0 || c.RenderMemoBytes < 0:
		return errors.New("config: cache sizes must not be negative")
	case c.CompressLevel < 1 || c.CompressLevel > 22:
		return fmt.Errorf("config: compress_level must be in [1, 22], got %d", c.CompressLevel)
	case c.HTTPTimeout <= 0:
		return fmt.Errorf("config: http_timeout must be positive, got %s", c.HTTPTimeout)
	case c.RequestsPerSecond < 0:
		return fmt.Errorf("config: requests_per_second must not be negative, got %g", c.RequestsPerSecond)
	case c.Concurrency < 1:
		return fmt.Errorf("config: concurrency must be at least 1, got %d", c.Concurrency)
	}

	return nil
}
