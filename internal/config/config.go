package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BlackForgeOfficial/ShadowEconomy/internal/storage/postgres"
)

// Config is the full server configuration: defaults, overridden by an
// optional YAML file, overridden by environment variables.
type Config struct {
	LogLevel string        `yaml:"log_level"`
	Server   ServerConfig  `yaml:"server"`
	Storage  StorageConfig `yaml:"storage"`
	Kafka    KafkaConfig   `yaml:"kafka"`
	Ledger   LedgerConfig  `yaml:"ledger"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// StorageConfig selects the persistence backend. Backend is "memory" or
// "postgres".
type StorageConfig struct {
	Backend  string          `yaml:"backend"`
	Postgres postgres.Config `yaml:"postgres"`
}

type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type LedgerConfig struct {
	SaveTimeout time.Duration `yaml:"save_timeout"`
	EventBuffer int           `yaml:"event_buffer"`
}

// Default returns the configuration used when no file or env overrides are
// present: memory storage, local-only HTTP, no Kafka.
func Default() Config {
	return Config{
		LogLevel: "info",
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Storage: StorageConfig{
			Backend:  "memory",
			Postgres: postgres.DefaultConfig(),
		},
		Ledger: LedgerConfig{
			SaveTimeout: 10 * time.Second,
			EventBuffer: 256,
		},
	}
}

// Load builds the configuration. path may be empty.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	switch cfg.Storage.Backend {
	case "memory", "postgres":
	default:
		return cfg, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("PG_DSN"); v != "" {
		cfg.Storage.Postgres.DSN = v
		if cfg.Storage.Backend == "" {
			cfg.Storage.Backend = "postgres"
		}
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Enabled = true
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		cfg.Kafka.Topic = v
	}
}
