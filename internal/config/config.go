// Package config loads runtime settings from flags, TASKBOARD_* environment
// variables, an optional .env file and an optional config file.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment variables, e.g. TASKBOARD_DB_PATH.
const EnvPrefix = "TASKBOARD"

// Config holds the resolved settings.
type Config struct {
	Addr        string
	DBPath      string
	LogLevel    slog.Level
	EventBuffer int
	Telemetry   TelemetryConfig
}

// TelemetryConfig controls metric export.
type TelemetryConfig struct {
	Enabled  bool
	Interval time.Duration
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("db_path", "data/taskboard.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("events.buffer", 64)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.interval", time.Minute)
}

// Load resolves the configuration. dotenv names .env files to load first;
// missing files are ignored. cfgFile is optional.
func Load(v *viper.Viper, cfgFile string, dotenv ...string) (Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, f := range dotenv {
		// godotenv never overrides variables already present in the environment.
		_ = godotenv.Load(f)
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	level, err := ParseLevel(v.GetString("log_level"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Addr:        v.GetString("addr"),
		DBPath:      v.GetString("db_path"),
		LogLevel:    level,
		EventBuffer: v.GetInt("events.buffer"),
		Telemetry: TelemetryConfig{
			Enabled:  v.GetBool("telemetry.enabled"),
			Interval: v.GetDuration("telemetry.interval"),
		},
	}
	if cfg.DBPath == "" {
		return Config{}, fmt.Errorf("db_path must not be empty")
	}
	return cfg, nil
}

// ParseLevel converts a level name to slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", name, err)
	}
	return level, nil
}
