// Package config loads gclog settings from defaults, an optional YAML file and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix      = "GCLOG"
	configName     = "gclog"
	defaultMaxLine = 1024 * 1024
)

var (
	validLevels        = []string{"debug", "info", "warn", "error"}
	validLogFormats    = []string{"text", "json"}
	validOutputFormats = []string{"json", "yaml", "text"}
)

type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Output OutputConfig `mapstructure:"output"`
	Parser ParserConfig `mapstructure:"parser"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

type OutputConfig struct {
	Format string `mapstructure:"format"` // json, yaml or text
	Indent bool   `mapstructure:"indent"`
}

type ParserConfig struct {
	// Longest accepted log line in bytes
	MaxLineBytes int `mapstructure:"max_line_bytes"`
}

// Load reads configuration from configPath, or from gclog.yaml in the standard
// locations when configPath is empty. A missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := newViper()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromReader loads configuration from raw content (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := newViper()
	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	v.SetDefault("output.format", "text")
	v.SetDefault("output.indent", true)

	v.SetDefault("parser.max_line_bytes", defaultMaxLine)
}

func (c *Config) Validate() error {
	c.Log.Level = strings.ToLower(c.Log.Level)
	if !slices.Contains(validLevels, c.Log.Level) {
		return fmt.Errorf("unsupported log level: %s", c.Log.Level)
	}
	if !slices.Contains(validLogFormats, c.Log.Format) {
		return fmt.Errorf("unsupported log format: %s", c.Log.Format)
	}
	if !slices.Contains(validOutputFormats, c.Output.Format) {
		return fmt.Errorf("unsupported output format: %s", c.Output.Format)
	}
	if c.Parser.MaxLineBytes < 1 {
		return fmt.Errorf("parser max line bytes must be positive")
	}
	return nil
}

// SlogLevel maps the configured level name to a slog level.
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// NewLogger builds a slog logger writing to w in the configured format.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// OutputFormats lists the accepted output format names.
func OutputFormats() []string {
	return slices.Clone(validOutputFormats)
}
