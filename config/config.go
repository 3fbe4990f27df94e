package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// DatabaseConfig selects and addresses the single storage backend.
type DatabaseConfig struct {
	Driver       string `env:"DB_DRIVER" envDefault:"sqlite"`
	Path         string `env:"SQLITE_PATH" envDefault:"food_waste.db"`
	Host         string `env:"DB_HOST" envDefault:"localhost"`
	Port         int    `env:"DB_PORT"`
	User         string `env:"DB_USER" envDefault:"root"`
	Password     string `env:"DB_PASSWORD"`
	Name         string `env:"DB_NAME" envDefault:"food_waste"`
	SSLMode      string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" envDefault:"0"`
	Seed         bool   `env:"DB_SEED" envDefault:"true"`
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET"`
	Username  string        `env:"DASHBOARD_USER" envDefault:"admin"`
	Password  string        `env:"DASHBOARD_PASSWORD"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

// Enabled reports whether operator routes require a bearer token.
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

type ExportConfig struct {
	Bucket string `env:"EXPORT_S3_BUCKET"`
	Prefix string `env:"EXPORT_S3_PREFIX" envDefault:"reports"`
	Region string `env:"S3_REGION"`
}

// Enabled reports whether report exports are archived to S3.
func (e ExportConfig) Enabled() bool {
	return e.Bucket != ""
}

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	GinMode     string `env:"GIN_MODE" envDefault:"debug"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`
	CORSOrigin  string `env:"CORS_ORIGIN" envDefault:"*"`
	RateLimit   int    `env:"RATE_LIMIT" envDefault:"50"`
	SecretsFile string `env:"SECRETS_FILE" envDefault:"secrets.toml"`

	// ChangePollInterval is how often the listings table is checked for
	// writes made outside the API. Zero turns polling off.
	ChangePollInterval time.Duration `env:"CHANGE_POLL_INTERVAL" envDefault:"5s"`

	Database DatabaseConfig
	Auth     AuthConfig
	Export   ExportConfig
}

// secretsFile mirrors the [database] table of the optional secrets file.
type secretsFile struct {
	Database struct {
		Driver   string `toml:"driver"`
		Path     string `toml:"path"`
		Host     string `toml:"host"`
		Port     int    `toml:"port"`
		User     string `toml:"user"`
		Password string `toml:"password"`
		Database string `toml:"database"`
		SSLMode  string `toml:"sslmode"`
	} `toml:"database"`
}

// Load reads .env, then the environment, then the secrets file. Values from
// the secrets file win over the environment, which wins over defaults.
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.applySecretsFile(cfg.SecretsFile); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv parses the environment without touching .env or the secrets file.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Export.Region == "" {
		cfg.Export.Region = os.Getenv("AWS_REGION")
	}
	return &cfg, nil
}

func (c *Config) applySecretsFile(path string) error {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read secrets file: %w", err)
	}

	var s secretsFile
	if err := toml.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("parse secrets file %s: %w", path, err)
	}

	db := &c.Database
	override(&db.Driver, s.Database.Driver)
	override(&db.Path, s.Database.Path)
	override(&db.Host, s.Database.Host)
	override(&db.User, s.Database.User)
	override(&db.Password, s.Database.Password)
	override(&db.Name, s.Database.Database)
	override(&db.SSLMode, s.Database.SSLMode)
	if s.Database.Port != 0 {
		db.Port = s.Database.Port
	}
	return nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Port == 0 {
		switch c.Database.Driver {
		case DriverMySQL:
			c.Database.Port = 3306
		case DriverPostgres:
			c.Database.Port = 5432
		}
	}
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want sqlite, mysql or postgres)", c.Database.Driver)
	}
	if c.Database.Port < 0 {
		return fmt.Errorf("invalid DB_PORT %d", c.Database.Port)
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("invalid RATE_LIMIT %d", c.RateLimit)
	}
	return nil
}
