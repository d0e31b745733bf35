package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config es la configuración de runtime. Cada campo mapea 1:1 a una env var.
type Config struct {
	Port int    `mapstructure:"PORT"`
	App  string `mapstructure:"APP_NAME"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// memory | postgres | sqlite
	StoreDriver string `mapstructure:"STORE_DRIVER"`
	DBDSN       string `mapstructure:"DB_DSN"`
	SQLitePath  string `mapstructure:"SQLITE_PATH"`

	// Vacío => los eventos no se publican en Redis.
	RedisURL           string `mapstructure:"REDIS_URL"`
	EventsQueue        string `mapstructure:"EVENTS_QUEUE"`
	AlertWorkerEnabled bool   `mapstructure:"ALERT_WORKER_ENABLED"`

	// Vacío => identificadores locales (uuid).
	RegistryURL     string        `mapstructure:"PARTICIPANTS_REGISTRY_URL"`
	RegistryAPIKey  string        `mapstructure:"PARTICIPANTS_REGISTRY_API_KEY"`
	RegistryTimeout time.Duration `mapstructure:"PARTICIPANTS_REGISTRY_TIMEOUT"`
}

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

var keys = []string{
	"PORT", "APP_NAME", "LOG_LEVEL", "LOG_FORMAT",
	"STORE_DRIVER", "DB_DSN", "SQLITE_PATH",
	"REDIS_URL", "EVENTS_QUEUE", "ALERT_WORKER_ENABLED",
	"PARTICIPANTS_REGISTRY_URL", "PARTICIPANTS_REGISTRY_API_KEY", "PARTICIPANTS_REGISTRY_TIMEOUT",
}

// Load lee la configuración de env vars (y de un .env opcional en el directorio actual).
func Load() (*Config, error) {
	return load(viper.New(), ".")
}

func load(v *viper.Viper, dir string) (*Config, error) {
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(dir)
	v.AutomaticEnv()

	// AutomaticEnv solo resuelve keys conocidas por viper en Unmarshal.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	v.SetDefault("PORT", 8080)
	v.SetDefault("APP_NAME", "cold-chain-ledger")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("STORE_DRIVER", StoreMemory)
	v.SetDefault("SQLITE_PATH", "coldchain.db")
	v.SetDefault("EVENTS_QUEUE", "coldchain:events")
	v.SetDefault("ALERT_WORKER_ENABLED", false)
	v.SetDefault("PARTICIPANTS_REGISTRY_TIMEOUT", 5*time.Second)

	// El .env es opcional en desarrollo: no falla si no existe.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	return cfg, nil
}
