package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configName = ".cellctl"
	configType = "yaml"
	envPrefix  = "CELLCTL"
)

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"store":        "store",
	"compression":  "compression",
	"width":        "width",
	"workers":      "parallel.workers",
	"memory-limit": "limits.memory",
	"io-limit":     "limits.io",
	"log-level":    "log.level",
	"log-format":   "log.format",
}

// Load reads configuration from file, env vars, flags and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise .cellctl.yaml is searched in the working directory and $HOME;
// a missing file is not an error. flags may be nil.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("store", DefaultStore)
	v.SetDefault("compression", DefaultCompression)
	v.SetDefault("width", DefaultWidth)
	v.SetDefault("parallel.workers", 0)
	v.SetDefault("parallel.grain", DefaultGrain)
	v.SetDefault("limits.memory", "")
	v.SetDefault("limits.io", "")
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.dynamodb_table", "")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.secure", true)
}
