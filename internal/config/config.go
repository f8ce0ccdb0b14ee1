// Package config loads the service configuration from the environment
// once at startup. The resulting struct is passed explicitly into
// constructors; nothing in the request path reads the environment.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port            string        `env:"APP_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

type PostgresConfig struct {
	Host            string        `env:"DB_HOST,required"`
	Port            string        `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER,required"`
	Password        string        `env:"DB_PASSWORD,required"`
	DBName          string        `env:"DB_NAME,required"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	MinConns        int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
}

// DSN returns the keyword/value connection string used by pgx.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL returns the URL form of the connection string, as expected by the
// migration tooling.
func (c PostgresConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

// DispatchConfig sizes the worker pool that runs blocking store calls.
// Workers bounds how many database operations execute at once;
// QueueSize bounds how many more may wait before submission itself
// starts blocking.
type DispatchConfig struct {
	Workers   int `env:"DISPATCH_WORKERS" envDefault:"4"`
	QueueSize int `env:"DISPATCH_QUEUE_SIZE" envDefault:"32"`
}

type Config struct {
	App           AppConfig
	Postgres      PostgresConfig
	Dispatch      DispatchConfig
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"migrations"`
}

// Load reads an optional .env file at path and parses the environment
// into a Config. A missing .env file is not an error; missing required
// variables are.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, nil
}
