// Package config loads cellctl settings from a YAML file, CELLCTL_* environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
)

// Defaults.
const (
	DefaultStore       = "file://."
	DefaultCompression = "zstd"
	DefaultWidth       = "64"
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "text"
	DefaultGrain       = 4096
)

// Config is the top-level cellctl configuration.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	// Store is a blob store URL: file://dir, mem://, s3://bucket/prefix
	// or minio://endpoint/bucket/prefix.
	Store       string         `mapstructure:"store"`
	Compression string         `mapstructure:"compression"`
	Width       string         `mapstructure:"width"`
	Parallel    ParallelConfig `mapstructure:"parallel"`
	Limits      LimitsConfig   `mapstructure:"limits"`
	Log         LogConfig      `mapstructure:"log"`
	S3          S3Config       `mapstructure:"s3"`
	MinIO       MinIOConfig    `mapstructure:"minio"`
}

// ParallelConfig tunes the parallel analyses.
type ParallelConfig struct {
	Workers int `mapstructure:"workers"`
	Grain   int `mapstructure:"grain"`
}

// LimitsConfig holds resource budgets as human-readable byte sizes ("512MiB").
type LimitsConfig struct {
	Memory string `mapstructure:"memory"`
	IO     string `mapstructure:"io"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// S3Config configures s3:// stores.
type S3Config struct {
	Region        string `mapstructure:"region"`
	DynamoDBTable string `mapstructure:"dynamodb_table"`
}

// MinIOConfig configures minio:// stores.
type MinIOConfig struct {
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Secure    bool   `mapstructure:"secure"`
}

// Sentinel errors for configuration validation.
var (
	ErrInvalidStore       = errors.New("store must be a file://, mem://, s3:// or minio:// URL")
	ErrInvalidCompression = errors.New("compression must be none, lz4 or zstd")
	ErrInvalidWidth       = errors.New("width must be 32 or 64")
	ErrInvalidWorkers     = errors.New("parallel.workers must be non-negative")
	ErrInvalidGrain       = errors.New("parallel.grain must be positive")
	ErrInvalidLogLevel    = errors.New("log.level must be debug, info, warn or error")
	ErrInvalidLogFormat   = errors.New("log.format must be text or json")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	scheme, _, ok := strings.Cut(c.Store, "://")
	if !ok {
		return ErrInvalidStore
	}
	switch scheme {
	case "file", "mem", "s3", "minio":
	default:
		return ErrInvalidStore
	}
	switch c.Compression {
	case "none", "lz4", "zstd":
	default:
		return ErrInvalidCompression
	}
	if c.Width != "32" && c.Width != "64" {
		return ErrInvalidWidth
	}
	if c.Parallel.Workers < 0 {
		return ErrInvalidWorkers
	}
	if c.Parallel.Grain <= 0 {
		return ErrInvalidGrain
	}
	if _, err := c.MemoryLimitBytes(); err != nil {
		return err
	}
	if _, err := c.IOLimitBytes(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return ErrInvalidLogFormat
	}
	return nil
}

// MemoryLimitBytes parses limits.memory. An empty value means unlimited.
func (c *Config) MemoryLimitBytes() (int64, error) {
	return parseBytes("limits.memory", c.Limits.Memory)
}

// IOLimitBytes parses limits.io, in bytes per second. An empty value means unlimited.
func (c *Config) IOLimitBytes() (int64, error) {
	return parseBytes("limits.io", c.Limits.IO)
}

func parseBytes(key, s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n > 1<<62 {
		return 0, fmt.Errorf("%s: %s is too large", key, s)
	}
	return int64(n), nil
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, ErrInvalidLogLevel
	}
	return l, nil
}
