package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logger  LoggerConfig  `yaml:"logger"`
	Catalog CatalogConfig `yaml:"catalog"`
	Bills   BillsConfig   `yaml:"bills"`
	Sales   SalesConfig   `yaml:"sales"`
	Auth    AuthConfig    `yaml:"auth"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LoggerConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

type CatalogConfig struct {
	Backend    string `yaml:"backend"`
	File       string `yaml:"file"`
	SQLitePath string `yaml:"sqlite_path"`
}

type BillsConfig struct {
	Dir string `yaml:"dir"`
}

// SalesConfig.MaxAge expires sales left open over HTTP. Zero disables it.
type SalesConfig struct {
	MaxAge time.Duration `yaml:"max_age"`
}

type AuthConfig struct {
	Username  string        `yaml:"username"`
	Password  string        `yaml:"password"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Logger: LoggerConfig{
			Level:    "info",
			Encoding: "console",
		},
		Catalog: CatalogConfig{
			Backend:    BackendFile,
			File:       "inventory.json",
			SQLitePath: "inventory.db",
		},
		Bills: BillsConfig{
			Dir: "bills",
		},
		Sales: SalesConfig{
			MaxAge: 12 * time.Hour,
		},
		Auth: AuthConfig{
			Username:  "admin",
			Password:  "1234",
			JWTSecret: "dev-secret-change-me",
			TokenTTL:  8 * time.Hour,
		},
	}
}

// Load layers defaults, the optional YAML file at path and POS_*
// environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile exports the variables of a .env file that are not already
// set. A missing file is not an error.
func LoadEnvFile(path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", path, err)
	}
	return true, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Catalog.Backend {
	case BackendFile:
		if c.Catalog.File == "" {
			errs = append(errs, errors.New("catalog.file required for file backend"))
		}
	case BackendSQLite:
		if c.Catalog.SQLitePath == "" {
			errs = append(errs, errors.New("catalog.sqlite_path required for sqlite backend"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown catalog backend %q", c.Catalog.Backend))
	}

	if c.Bills.Dir == "" {
		errs = append(errs, errors.New("bills.dir required"))
	}
	if c.Auth.Username == "" || c.Auth.Password == "" {
		errs = append(errs, errors.New("auth.username and auth.password required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if c.Sales.MaxAge < 0 {
		errs = append(errs, errors.New("sales.max_age must not be negative"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}

	return errors.Join(errs...)
}

func applyEnv(c *Config) error {
	c.Server.Addr = getEnv("POS_ADDR", c.Server.Addr)
	c.Logger.Level = getEnv("POS_LOG_LEVEL", c.Logger.Level)
	c.Logger.Encoding = getEnv("POS_LOG_ENCODING", c.Logger.Encoding)
	c.Catalog.Backend = getEnv("POS_CATALOG_BACKEND", c.Catalog.Backend)
	c.Catalog.File = getEnv("POS_CATALOG_FILE", c.Catalog.File)
	c.Catalog.SQLitePath = getEnv("POS_SQLITE_PATH", c.Catalog.SQLitePath)
	c.Bills.Dir = getEnv("POS_BILLS_DIR", c.Bills.Dir)
	c.Auth.Username = getEnv("POS_ADMIN_USER", c.Auth.Username)
	c.Auth.Password = getEnv("POS_ADMIN_PASSWORD", c.Auth.Password)
	c.Auth.JWTSecret = getEnv("POS_JWT_SECRET", c.Auth.JWTSecret)
	c.Metrics.Token = getEnv("POS_METRICS_TOKEN", c.Metrics.Token)

	var err error
	if c.Auth.TokenTTL, err = getEnvDuration("POS_TOKEN_TTL", c.Auth.TokenTTL); err != nil {
		return err
	}
	if c.Sales.MaxAge, err = getEnvDuration("POS_SALE_MAX_AGE", c.Sales.MaxAge); err != nil {
		return err
	}
	if c.Server.ShutdownTimeout, err = getEnvDuration("POS_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout); err != nil {
		return err
	}
	if c.Metrics.Enabled, err = getEnvBool("POS_METRICS_ENABLED", c.Metrics.Enabled); err != nil {
		return err
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
