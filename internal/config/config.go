package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"film-collection/collection"
)

type Config struct {
	// Database
	DBDriver    string `env:"DB_DRIVER" default:"sqlite3"`
	DBPath      string `env:"DB_PATH" default:"films.db"`
	DBUser      string `env:"DB_USER" default:"root"`
	DBPass      string `env:"DB_PASS"`
	DBHost      string `env:"DB_HOST" default:"127.0.0.1"`
	DBPort      string `env:"DB_PORT" default:"3306"`
	DBName      string `env:"DB_NAME" default:"films"`
	DatabaseURL string `env:"DATABASE_URL"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"console"`

	// Authentication
	PasswordMode string `env:"PASSWORD_MODE" default:"plain"`
	BcryptCost   int    `env:"BCRYPT_COST" default:"10"`

	// Redis film cache
	CacheEnabled  bool          `env:"CACHE_ENABLED" default:"false"`
	RedisAddr     string        `env:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" default:"0"`
	CacheTTL      time.Duration `env:"CACHE_TTL" default:"5m"`
	CachePrefix   string        `env:"CACHE_PREFIX" default:"films"`
}

// Load reads envFile (or ./.env when envFile is empty and the file exists)
// into the process environment, then builds a Config from it. Variables that
// are already set win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	// Database
	loadEnvString(&cfg.DBDriver, "DB_DRIVER", collection.DriverSQLite)
	loadEnvString(&cfg.DBPath, "DB_PATH", "films.db")
	loadEnvString(&cfg.DBUser, "DB_USER", "root")
	loadEnvString(&cfg.DBPass, "DB_PASS", "")
	loadEnvString(&cfg.DBHost, "DB_HOST", "127.0.0.1")
	loadEnvString(&cfg.DBPort, "DB_PORT", "3306")
	loadEnvString(&cfg.DBName, "DB_NAME", "films")
	loadEnvString(&cfg.DatabaseURL, "DATABASE_URL", "")

	// Logging
	loadEnvString(&cfg.LogLevel, "LOG_LEVEL", "info")
	loadEnvString(&cfg.LogFormat, "LOG_FORMAT", "console")

	// Authentication
	loadEnvString(&cfg.PasswordMode, "PASSWORD_MODE", collection.PasswordPlain)
	if err := loadEnvInt(&cfg.BcryptCost, "BCRYPT_COST", 10); err != nil {
		return nil, err
	}

	// Redis
	if err := loadEnvBool(&cfg.CacheEnabled, "CACHE_ENABLED", false); err != nil {
		return nil, err
	}
	loadEnvString(&cfg.RedisAddr, "REDIS_ADDR", "localhost:6379")
	loadEnvString(&cfg.RedisPassword, "REDIS_PASSWORD", "")
	if err := loadEnvInt(&cfg.RedisDB, "REDIS_DB", 0); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&cfg.CacheTTL, "CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	loadEnvString(&cfg.CachePrefix, "CACHE_PREFIX", "films")

	return cfg, nil
}

func loadEnvString(target *string, key, defaultValue string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvBool(target *bool, key string, defaultValue bool) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	validDrivers := []string{collection.DriverSQLite, collection.DriverMySQL, collection.DriverPostgres}
	if !slices.Contains(validDrivers, c.DBDriver) {
		problems = append(problems, fmt.Sprintf("DB_DRIVER must be one of: %s", strings.Join(validDrivers, ", ")))
	}
	switch c.DBDriver {
	case collection.DriverSQLite:
		if c.DBPath == "" {
			problems = append(problems, "DB_PATH is required for sqlite3")
		}
	case collection.DriverMySQL:
		if c.DBHost == "" || c.DBName == "" || c.DBUser == "" {
			problems = append(problems, "DB_USER, DB_HOST and DB_NAME are required for mysql")
		}
	case collection.DriverPostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required for pgx")
		}
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}
	validLogFormats := []string{"console", "json"}
	if !slices.Contains(validLogFormats, c.LogFormat) {
		problems = append(problems, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	validModes := []string{collection.PasswordPlain, collection.PasswordBcrypt}
	if !slices.Contains(validModes, c.PasswordMode) {
		problems = append(problems, fmt.Sprintf("PASSWORD_MODE must be one of: %s", strings.Join(validModes, ", ")))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		problems = append(problems, "BCRYPT_COST must be between 4 and 31")
	}

	if c.CacheEnabled {
		if c.RedisAddr == "" {
			problems = append(problems, "REDIS_ADDR is required when CACHE_ENABLED is set")
		}
		if c.CacheTTL <= 0 {
			problems = append(problems, "CACHE_TTL must be positive")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case collection.DriverMySQL:
		auth := c.DBUser
		if c.DBPass != "" {
			auth = fmt.Sprintf("%s:%s", c.DBUser, c.DBPass)
		}
		return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
			auth, c.DBHost, c.DBPort, c.DBName)
	case collection.DriverPostgres:
		return c.DatabaseURL
	default:
		return collection.SQLiteDSN(c.DBPath)
	}
}
