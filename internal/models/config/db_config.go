package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverPGX      = "pgx"
	DriverMemory   = "memory"
)

// DatabaseConfig конфигурация БД
type DatabaseConfig struct {
	Driver      string `yaml:"driver"`
	URL         string `yaml:"url"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	Name        string `yaml:"name"`
	SSLMode     string `yaml:"sslmode"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

// DSN returns URL when set, otherwise a keyword/value connection string
// understood by both lib/pq and pgx.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.Username,
		c.Password,
		c.Name,
		c.SSLMode,
	)
}

func defaults() *Config {
	return &Config{
		Environment: "development",
		HTTP: HTTPConfig{
			Port:           "3001",
			RequestTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:      DriverPostgres,
			Host:        "localhost",
			Port:        5432,
			Name:        "subscriptions",
			AutoMigrate: true,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load собирает конфигурацию: defaults, затем YAML из CONFIG_FILE,
// затем переменные окружения.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.HTTP.Port = getEnv("HTTP_PORT", getEnv("PORT", cfg.HTTP.Port))
	cfg.HTTP.RequestTimeout = getEnvAsDuration("HTTP_REQUEST_TIMEOUT", cfg.HTTP.RequestTimeout)

	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvAsInt("DB_PORT", cfg.Database.Port)
	cfg.Database.Username = getEnv("DB_USER", cfg.Database.Username)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)
	cfg.Database.AutoMigrate = getEnvAsBool("DB_AUTO_MIGRATE", cfg.Database.AutoMigrate)
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = getSSLMode(cfg.Environment)
	}
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)

	cfg.Bot.Token = getEnv("BOT_TOKEN", cfg.Bot.Token)
	cfg.Bot.Debug = getEnvAsBool("BOT_DEBUG", cfg.Bot.Debug)
	if ids := getEnv("ADMIN_IDS", ""); ids != "" {
		cfg.Bot.AdminIDs = parseAdminIDs(ids)
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
}

// validate проверяет обязательные параметры
func validate(cfg *Config) error {
	var errors []string

	switch cfg.Database.Driver {
	case DriverPostgres, DriverPGX:
		if cfg.Database.URL == "" && cfg.Database.Username == "" {
			errors = append(errors, "DB_USER or DATABASE_URL is required")
		}
		if cfg.Database.URL == "" && cfg.Database.Password == "" && cfg.IsProduction() {
			errors = append(errors, "DB_PASSWORD is required in production")
		}
	case DriverMemory:
	default:
		errors = append(errors, fmt.Sprintf("DB_DRIVER must be one of postgres, pgx, memory (got %q)", cfg.Database.Driver))
	}

	if cfg.HTTP.Port == "" {
		errors = append(errors, "HTTP_PORT is required")
	}

	if cfg.HTTP.RequestTimeout <= 0 {
		errors = append(errors, "HTTP_REQUEST_TIMEOUT must be positive")
	}

	if cfg.Bot.Token != "" && len(cfg.Bot.AdminIDs) == 0 {
		errors = append(errors, "ADMIN_IDS is required when BOT_TOKEN is set")
	}

	if len(errors) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errors, ", "))
	}

	return nil
}

// getSSLMode возвращает режим SSL в зависимости от окружения
func getSSLMode(env string) string {
	if env == "production" {
		return "require"
	}
	return "disable"
}

// parseAdminIDs парсит список ID администраторов
func parseAdminIDs(ids string) []int64 {
	if ids == "" {
		return []int64{}
	}

	var result []int64
	for _, idStr := range strings.Split(ids, ",") {
		if id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64); err == nil {
			result = append(result, id)
		}
	}
	return result
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}
