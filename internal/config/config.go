package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	LPT      LPTConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

// DatabaseConfig configures the optional address store. An empty Host
// disables it.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type LogConfig struct {
	Level string
}

// LPTConfig holds the settings of the departures engine.
type LPTConfig struct {
	ProvidersFile    string
	FallbackProvider string
	MaxStops         int
	MaxDepartures    int
	Timezone         string
	RequestTimeout   time.Duration
}

const (
	DefaultProvidersFile    = "/usr/local/etc/lpt.json"
	DefaultFallbackProvider = "general"
	DefaultMaxStops         = 3
	DefaultMaxDepartures    = 3
	DefaultTimezone         = "Europe/Berlin"
)

// Load reads the configuration from the environment, optionally
// overlaid by a .env file in the working directory.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. A missing file is not
// an error; every value can also come from the environment.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("API_PORT", 8080)
	v.SetDefault("API_ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("LPT_PROVIDERS_FILE", DefaultProvidersFile)
	v.SetDefault("LPT_FALLBACK_PROVIDER", DefaultFallbackProvider)
	v.SetDefault("LPT_MAX_STOPS", DefaultMaxStops)
	v.SetDefault("LPT_MAX_DEPARTURES", DefaultMaxDepartures)
	v.SetDefault("LPT_TIMEZONE", DefaultTimezone)
	v.SetDefault("LPT_REQUEST_TIMEOUT", 30)

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("API_HOST"),
			Port: v.GetInt("API_PORT"),
			Env:  v.GetString("API_ENV"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		LPT: LPTConfig{
			ProvidersFile:    v.GetString("LPT_PROVIDERS_FILE"),
			FallbackProvider: v.GetString("LPT_FALLBACK_PROVIDER"),
			MaxStops:         v.GetInt("LPT_MAX_STOPS"),
			MaxDepartures:    v.GetInt("LPT_MAX_DEPARTURES"),
			Timezone:         v.GetString("LPT_TIMEZONE"),
			RequestTimeout:   time.Duration(v.GetInt("LPT_REQUEST_TIMEOUT")) * time.Second,
		},
	}

	if cfg.LPT.MaxStops <= 0 {
		cfg.LPT.MaxStops = DefaultMaxStops
	}
	if cfg.LPT.MaxDepartures <= 0 {
		cfg.LPT.MaxDepartures = DefaultMaxDepartures
	}
	if cfg.LPT.RequestTimeout <= 0 {
		cfg.LPT.RequestTimeout = 30 * time.Second
	}

	return cfg, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) DatabaseEnabled() bool {
	return c.Database.Host != ""
}

// DSN renders the keyword/value connection string understood by pgx and lib/pq.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Location resolves the configured timezone, falling back to local time.
func (c *LPTConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
