package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the server configuration, loaded from the environment.
type Config struct {
	Addr string `env:"ADDR" envDefault:":5000"`

	ScyllaHosts []string `env:"SCYLLA_HOSTS" envSeparator:"," envDefault:"localhost:9042"`
	Keyspace    string   `env:"SCYLLA_KEYSPACE" envDefault:"chat"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	// KafkaBrokers empty disables the outbound event stream.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"chat-events"`

	HistoryLimit   int `env:"HISTORY_LIMIT" envDefault:"50"`
	BufferCapacity int `env:"FALLBACK_BUFFER_CAPACITY" envDefault:"512"`

	AllowedOrigin string `env:"ALLOWED_ORIGIN" envDefault:"*"`

	// SnowflakeNode must be unique per running instance.
	SnowflakeNode int64 `env:"SNOWFLAKE_NODE" envDefault:"1"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
