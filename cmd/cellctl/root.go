package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hupe1980/cellgo"
	"github.com/hupe1980/cellgo/blobstore"
	"github.com/hupe1980/cellgo/codec"
	"github.com/hupe1980/cellgo/internal/config"
	"github.com/hupe1980/cellgo/metrics/prommetrics"
	"github.com/hupe1980/cellgo/persistence"
	"github.com/hupe1980/cellgo/resource"
)

// version is set with -ldflags "-X main.version=...".
var version = ""

type envKey struct{}

// env is the per-invocation state shared by all subcommands.
type env struct {
	cfg      *config.Config
	store    blobstore.BlobStore
	mgr      *persistence.Manager
	logger   *cellgo.Logger
	registry *prometheus.Registry
	opts     []cellgo.Option
}

func envFrom(cmd *cobra.Command) *env {
	return cmd.Context().Value(envKey{}).(*env)
}

func newRootCommand() *cobra.Command {
	var (
		configPath  string
		showMetrics bool
	)

	rootCmd := &cobra.Command{
		Use:   "cellctl",
		Short: "Manage cell arrays in local and remote blob stores",
		Long: `cellctl converts between the legacy count-prefixed cell format and the
binary cell array format, and inspects, validates and versions arrays kept
in a blob store.

Stores:
  file://dir                  local directory (default file://.)
  mem://                      in-process, for scripting tests
  s3://bucket/prefix          Amazon S3 (s3.dynamodb_table enables DynamoDB commits)
  minio://host:port/bucket    MinIO and other S3-compatible servers`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			e, err := newEnv(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), envKey{}, e))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if !showMetrics || cmd.Name() == "version" {
				return nil
			}
			return renderMetrics(cmd.OutOrStdout(), envFrom(cmd).registry)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default .cellctl.yaml in . or $HOME)")
	flags.String("store", config.DefaultStore, "blob store URL")
	flags.String("compression", config.DefaultCompression, "payload compression: none, lz4, zstd")
	flags.String("width", config.DefaultWidth, "storage width for new arrays: 32 or 64")
	flags.Int("workers", 0, "parallel analysis workers (0 = GOMAXPROCS)")
	flags.String("memory-limit", "", "memory budget for explicit allocations, e.g. 512MiB")
	flags.String("io-limit", "", "store throughput limit per second, e.g. 50MB")
	flags.String("log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")
	flags.String("log-format", config.DefaultLogFormat, "log format: text, json")
	flags.BoolVar(&showMetrics, "metrics", false, "print collected metrics after the command")

	rootCmd.AddCommand(
		newImportCommand(),
		newExportCommand(),
		newInspectCommand(),
		newValidateCommand(),
		newConvertCommand(),
		newVersionsCommand(),
		newPruneCommand(),
		newVersionCommand(),
	)
	return rootCmd
}

func newEnv(ctx context.Context, cfg *config.Config) (*env, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	var logger *cellgo.Logger
	if cfg.Log.Format == "json" {
		logger = cellgo.NewLogger(slog.NewJSONHandler(os.Stderr, handlerOpts))
	} else {
		logger = cellgo.NewLogger(slog.NewTextHandler(os.Stderr, handlerOpts))
	}

	memLimit, err := cfg.MemoryLimitBytes()
	if err != nil {
		return nil, err
	}
	ioLimit, err := cfg.IOLimitBytes()
	if err != nil {
		return nil, err
	}
	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   memLimit,
		IOLimitBytesPerSec: ioLimit,
	})

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	compression, _ := codec.CompressionByName(cfg.Compression)
	width := cellgo.Width64
	if cfg.Width == "32" {
		width = cellgo.Width32
	}

	registry := prometheus.NewRegistry()
	return &env{
		cfg:      cfg,
		store:    store,
		logger:   logger,
		registry: registry,
		mgr: persistence.NewManager(store,
			persistence.WithController(rc),
			persistence.WithLogger(logger),
			persistence.WithCompression(compression),
		),
		opts: []cellgo.Option{
			cellgo.WithDefaultWidth(width),
			cellgo.WithLogger(logger),
			cellgo.WithMetricsCollector(prommetrics.New(registry)),
			cellgo.WithParallelism(cfg.Parallel.Workers, cfg.Parallel.Grain),
			cellgo.WithMemoryController(rc),
		},
	}, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			v := version
			if v == "" {
				v = "(devel)"
				if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
					v = info.Main.Version
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cellctl %s\n", v)
		},
	}
}
