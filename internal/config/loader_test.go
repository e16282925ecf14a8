package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cellctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""), nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultStore, cfg.Store)
	assert.Equal(t, DefaultCompression, cfg.Compression)
	assert.Equal(t, DefaultWidth, cfg.Width)
	assert.Equal(t, DefaultGrain, cfg.Parallel.Grain)
	assert.True(t, cfg.MinIO.Secure)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	mem, err := cfg.MemoryLimitBytes()
	require.NoError(t, err)
	assert.Zero(t, mem)
}

func TestLoad_File(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
store: s3://bucket/cells
compression: lz4
width: "32"
parallel:
  workers: 4
  grain: 1024
limits:
  memory: 512MiB
  io: 10MB
s3:
  region: eu-central-1
  dynamodb_table: cellgo-commits
`), nil)
	require.NoError(t, err)

	assert.Equal(t, "s3://bucket/cells", cfg.Store)
	assert.Equal(t, "32", cfg.Width)
	assert.Equal(t, 4, cfg.Parallel.Workers)
	assert.Equal(t, "cellgo-commits", cfg.S3.DynamoDBTable)

	mem, err := cfg.MemoryLimitBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(512<<20), mem)

	io, err := cfg.IOLimitBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(10_000_000), io)
}

func TestLoad_EnvAndFlags(t *testing.T) {
	t.Setenv("CELLCTL_COMPRESSION", "none")
	t.Setenv("CELLCTL_LOG_LEVEL", "debug")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("store", DefaultStore, "")
	flags.String("log-level", DefaultLogLevel, "")
	require.NoError(t, flags.Parse([]string{"--store", "mem://"}))

	cfg, err := Load(writeConfig(t, "compression: lz4\n"), flags)
	require.NoError(t, err)

	assert.Equal(t, "mem://", cfg.Store, "changed flag wins")
	assert.Equal(t, "none", cfg.Compression, "env beats file")
	assert.Equal(t, "debug", cfg.Log.Level, "env beats unchanged flag")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		body string
		err  error
	}{
		{"store: ftp://x\n", ErrInvalidStore},
		{"store: relative/dir\n", ErrInvalidStore},
		{"compression: brotli\n", ErrInvalidCompression},
		{"width: \"16\"\n", ErrInvalidWidth},
		{"parallel:\n  workers: -1\n", ErrInvalidWorkers},
		{"parallel:\n  grain: 0\n", ErrInvalidGrain},
		{"log:\n  level: loud\n", ErrInvalidLogLevel},
		{"log:\n  format: xml\n", ErrInvalidLogFormat},
	}
	for _, tt := range tests {
		_, err := Load(writeConfig(t, tt.body), nil)
		assert.ErrorIs(t, err, tt.err, tt.body)
	}

	_, err := Load(writeConfig(t, "limits:\n  memory: lots\n"), nil)
	assert.Error(t, err)
}
