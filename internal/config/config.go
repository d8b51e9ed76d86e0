package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultDatabaseDSN = "inventario.db"
	defaultLockTimeout = 10 * time.Second
)

type Config struct {
	AppEnv         string
	HTTPPort       string
	DBDriver       string // sqlite | postgres
	DatabaseDSN    string
	LockTimeout    time.Duration // how long a writer waits for another writer's lock
	MaxIdleConns   int
	LogLevel       string
	MetricsEnabled bool
}

// New returns a viper instance with every key defaulted and bound to the
// environment. Callers may bind command-line flags onto it before Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("app_env", "local")
	v.SetDefault("http_port", "8080")
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("database_dsn", "")
	v.SetDefault("db_lock_timeout", defaultLockTimeout)
	v.SetDefault("db_max_idle_conns", 0)
	v.SetDefault("log_level", "")
	v.SetDefault("metrics_enabled", true)
	v.AutomaticEnv()
	return v
}

func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppEnv:         strings.ToLower(strings.TrimSpace(v.GetString("app_env"))),
		HTTPPort:       strings.TrimSpace(v.GetString("http_port")),
		DBDriver:       strings.ToLower(strings.TrimSpace(v.GetString("db_driver"))),
		DatabaseDSN:    strings.TrimSpace(v.GetString("database_dsn")),
		LockTimeout:    v.GetDuration("db_lock_timeout"),
		MaxIdleConns:   v.GetInt("db_max_idle_conns"),
		LogLevel:       strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		MetricsEnabled: v.GetBool("metrics_enabled"),
	}

	switch cfg.DBDriver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("config: unsupported DB_DRIVER %q (supported: sqlite, postgres)", cfg.DBDriver)
	}

	if cfg.DatabaseDSN == "" {
		if cfg.DBDriver == "postgres" {
			return nil, fmt.Errorf("config: DATABASE_DSN is required for postgres")
		}
		cfg.DatabaseDSN = defaultDatabaseDSN
	}
	if cfg.LockTimeout <= 0 {
		return nil, fmt.Errorf("config: DB_LOCK_TIMEOUT must be positive, got %s", cfg.LockTimeout)
	}
	if cfg.MaxIdleConns < 0 {
		cfg.MaxIdleConns = 0
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
		if !cfg.IsProduction() {
			cfg.LogLevel = "debug"
		}
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}

// Warnings lists settings left at values that are fine locally but suspicious
// in production. They are logged at startup, never fatal.
func (c *Config) Warnings() []string {
	if !c.IsProduction() {
		return nil
	}
	var out []string
	if c.DBDriver == "sqlite" && c.DatabaseDSN == defaultDatabaseDSN {
		out = append(out, "DATABASE_DSN uses the default inventario.db in the working directory")
	}
	if c.LogLevel == "debug" {
		out = append(out, "LOG_LEVEL=debug in production logs every submitted product")
	}
	return out
}
