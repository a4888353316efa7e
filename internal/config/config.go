// Package config loads the process settings once at startup.
//
// Values come from a YAML file (CONFIG_PATH or --config) and are then
// overridden by environment variables. Without a file, environment variables
// and defaults alone are used.
package config

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string      `yaml:"env" env:"APP_ENV" env-default:"local"`
	Application Application `yaml:"application"`
	Database    Database    `yaml:"database"`
	RateLimit   RateLimit   `yaml:"rate_limit"`
	Telemetry   Telemetry   `yaml:"telemetry"`
}

type Application struct {
	Host     string `yaml:"host" env:"APP_HOST" env-default:"0.0.0.0"`
	Port     int    `yaml:"port" env:"APP_PORT" env-default:"8000"`
	GinMode  string `yaml:"gin_mode" env:"GIN_MODE" env-default:"release"`
	LogLevel string `yaml:"log_level" env:"APP_LOG_LEVEL" env-default:"info"`
}

// Addr is the host:port the HTTP server binds to.
func (a Application) Addr() string {
	return a.Host + ":" + strconv.Itoa(a.Port)
}

type Database struct {
	Host            string        `yaml:"host" env:"DATABASE_HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"DATABASE_PORT" env-default:"5432"`
	Username        string        `yaml:"username" env:"DATABASE_USERNAME" env-default:"postgres"`
	Password        string        `yaml:"password" env:"DATABASE_PASSWORD" env-default:"password"`
	DatabaseName    string        `yaml:"database_name" env:"DATABASE_NAME" env-default:"newsletter"`
	SSLMode         string        `yaml:"ssl_mode" env:"DATABASE_SSL_MODE" env-default:"disable"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DATABASE_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DATABASE_CONN_MAX_LIFETIME" env-default:"30m"`
}

// ConnectionString is the lib/pq URL for the configured database.
func (d Database) ConnectionString() string {
	u := d.baseURL()
	u.Path = "/" + d.DatabaseName
	return u.String()
}

// ConnectionStringWithoutDB points at the server's default database, for
// administrative statements such as CREATE DATABASE.
func (d Database) ConnectionStringWithoutDB() string {
	u := d.baseURL()
	u.Path = "/postgres"
	return u.String()
}

func (d Database) baseURL() *url.URL {
	q := url.Values{}
	q.Set("sslmode", d.SSLMode)
	return &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.Username, d.Password),
		Host:     d.Host + ":" + strconv.Itoa(d.Port),
		RawQuery: q.Encode(),
	}
}

// RateLimit throttles POST /subscriptions. RequestsPerSecond <= 0 disables it.
type RateLimit struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"RATE_LIMIT_RPS" env-default:"0"`
	Burst             int     `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"20"`
}

type Telemetry struct {
	ServiceName    string `yaml:"service_name" env:"OTEL_SERVICE_NAME" env-default:"newsletter-api"`
	ServiceVersion string `yaml:"service_version" env:"OTEL_SERVICE_VERSION" env-default:"1.0.0"`
	// Exporter is "stdout" or "none".
	Exporter string `yaml:"exporter" env:"OTEL_TRACES_EXPORTER" env-default:"none"`
}

// Load reads the file at path (if any) and applies environment overrides.
func Load(path string) (*Config, error) {
	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read config from environment: %w", err)
		}
		return &cfg, nil
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return &cfg, nil
}

// MustLoad resolves the config path from CONFIG_PATH or the --config flag and
// exits the process if the settings cannot be read.
func MustLoad() *Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		flagPath := flag.String("config", "", "path to the configuration YAML file")
		flag.Parse()
		path = *flagPath
	}

	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	return cfg
}
