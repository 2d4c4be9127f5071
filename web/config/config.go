package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration loaded from environment variables
type Config struct {
	HTTPPort          string        `env:"WEB_HTTP_PORT" envDefault:"8080"`
	HTTPHost          string        `env:"WEB_HTTP_HOST" envDefault:"localhost"`
	BeaconURL         string        `env:"WEB_BEACON_URL" envDefault:"https://beacon.peakd.com"`
	DefaultEndpoint   string        `env:"WEB_DEFAULT_RPC_ENDPOINT" envDefault:"https://api.hive.blog"`
	HTTPClientTimeout time.Duration `env:"WEB_HTTP_CLIENT_TIMEOUT" envDefault:"30s"`
	SessionsFile      string        `env:"WEB_SESSIONS_FILE" envDefault:"sessions.json"`
	BatchSize         int           `env:"WEB_DISCOVERY_BATCH_SIZE" envDefault:"50"`
	BatchDelay        time.Duration `env:"WEB_DISCOVERY_BATCH_DELAY" envDefault:"100ms"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	LogHumanFriendly  bool          `env:"LOG_HUMAN_FRIENDLY" envDefault:"false"`
}

// New loads all configuration from environment variables
func New() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}
	return cfg
}
