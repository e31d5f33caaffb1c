package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogEnv    string `env:"LOG_ENV" envDefault:"development"`
	Server    Server
	Postgres  Postgres
	PriceFeed PriceFeed
	Scheduler Scheduler
}

type Server struct {
	Port string `env:"SERVER_PORT" envDefault:"8080"`
}

type Postgres struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"portfolio_user"`
	Password string `env:"DB_PASSWORD" envDefault:"portfolio_password"`
	Name     string `env:"DB_NAME" envDefault:"portfolio"`
	SSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`
}

type PriceFeed struct {
	// BaseURL is a template; "{ticker}" is replaced per lookup.
	BaseURL      string        `env:"PRICE_FEED_URL" envDefault:""`
	ResponsePath string        `env:"PRICE_FEED_RESPONSE_PATH" envDefault:"price"`
	Timeout      time.Duration `env:"PRICE_FEED_TIMEOUT" envDefault:"30s"`
	Debug        bool          `env:"PRICE_FEED_DEBUG" envDefault:"false"`
}

type Scheduler struct {
	Enabled bool `env:"SCHEDULER_ENABLED" envDefault:"false"`
	// RefreshCron schedules the nightly price refresh, weekdays after market close by default.
	RefreshCron string `env:"PRICE_REFRESH_CRON" envDefault:"0 18 * * 1-5"`
}

// MustLoad reads .env when present, then parses the environment into a Config.
func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
