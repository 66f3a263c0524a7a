// Package config loads the YAML configuration of the remixnodes tool.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top level configuration, loaded from a file and the environment
type Config struct {
	Server ServerConfig `yaml:"server"`
	Remix  RemixConfig  `yaml:"remix"`
	Ingest IngestConfig `yaml:"ingest"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig configures the node server
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// RemixConfig is the Remix service used by default
type RemixConfig struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// IngestConfig configures texture ingestion
type IngestConfig struct {
	// TempDirectory receives the images while they are ingested
	TempDirectory string `yaml:"temp_directory"`
}

// LogConfig configures the process logger
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Server: ServerConfig{Listen: "127.0.0.1:8190"},
		Remix:  RemixConfig{Address: "127.0.0.1", Port: 8011},
		Ingest: IngestConfig{TempDirectory: os.TempDir()},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load returns the defaults overridden by the file at path, when it exists, and then by
// the environment
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := loadEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func loadEnv(cfg *Config) error {
	if v := os.Getenv("REMIXNODES_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("REMIX_ADDRESS"); v != "" {
		cfg.Remix.Address = v
	}
	if v := os.Getenv("REMIX_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REMIX_PORT: %w", err)
		}
		cfg.Remix.Port = port
	}
	if v := os.Getenv("REMIXNODES_TEMP_DIRECTORY"); v != "" {
		cfg.Ingest.TempDirectory = v
	}
	if v := os.Getenv("REMIXNODES_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

// Validate checks the values that can't be used as they are
func (c Config) Validate() error {
	if c.Remix.Address == "" {
		return fmt.Errorf("remix.address must be set")
	}
	if c.Remix.Port < 0 || c.Remix.Port > 65353 {
		return fmt.Errorf("remix.port must be between 0 and 65353")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// SlogLevel parses the configured level
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return level, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
