package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Loan      LoanConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           string
	Env            string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string
	Port      string
	Namespace string
	Database  string
	User      string
	Password  string
}

// JWTConfig holds JWT signing settings
type JWTConfig struct {
	PrivateKeyPath string
	PublicKeyPath  string
	ExpirationMins int
	Issuer         string
}

// LoanConfig holds lending policy settings
type LoanConfig struct {
	MaxOpen          int
	PeriodDays       int
	OverdueScanEvery time.Duration
}

// CacheConfig holds read-cache settings for catalog listings
type CacheConfig struct {
	TTL time.Duration
}

// RateLimitConfig holds login throttling settings
type RateLimitConfig struct {
	LoginRequests int
	LoginWindow   time.Duration
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("SERVER_ENV", "development"),
			ReadTimeout:    getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			AllowedOrigins: getSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:      getEnv("DB_HOST", "localhost"),
			Port:      getEnv("DB_PORT", "8000"),
			Namespace: getEnv("DB_NAMESPACE", "libris"),
			Database:  getEnv("DB_DATABASE", "main"),
			User:      getEnv("DB_USER", "root"),
			Password:  getEnv("DB_PASSWORD", "root"),
		},
		JWT: JWTConfig{
			PrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./keys/private.pem"),
			PublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./keys/public.pem"),
			ExpirationMins: getIntEnv("JWT_EXPIRATION_MINS", 15),
			Issuer:         getEnv("JWT_ISSUER", "libris.openshelf.dev"),
		},
		Loan: LoanConfig{
			MaxOpen:          getIntEnv("LOAN_MAX_OPEN", 3),
			PeriodDays:       getIntEnv("LOAN_PERIOD_DAYS", 14),
			OverdueScanEvery: getDurationEnv("LOAN_OVERDUE_SCAN_INTERVAL", time.Hour),
		},
		Cache: CacheConfig{
			TTL: getDurationEnv("CACHE_TTL", 5*time.Minute),
		},
		RateLimit: RateLimitConfig{
			LoginRequests: getIntEnv("RATE_LIMIT_LOGIN_REQUESTS", 10),
			LoginWindow:   getDurationEnv("RATE_LIMIT_LOGIN_WINDOW", time.Minute),
		},
	}, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Server validation
	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}

	// Database validation
	if c.Database.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.Database.Port == "" {
		errs = append(errs, errors.New("DB_PORT is required"))
	}
	if c.Database.Namespace == "" {
		errs = append(errs, errors.New("DB_NAMESPACE is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("DB_DATABASE is required"))
	}

	// JWT validation - critical for production
	if c.IsProduction() {
		if c.JWT.PrivateKeyPath == "" {
			errs = append(errs, errors.New("JWT_PRIVATE_KEY_PATH is required in production"))
		}
		if c.JWT.PublicKeyPath == "" {
			errs = append(errs, errors.New("JWT_PUBLIC_KEY_PATH is required in production"))
		}
	}
	if c.JWT.ExpirationMins <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION_MINS must be positive"))
	}

	// Lending policy validation
	if c.Loan.MaxOpen <= 0 {
		errs = append(errs, errors.New("LOAN_MAX_OPEN must be positive"))
	}
	if c.Loan.PeriodDays <= 0 {
		errs = append(errs, errors.New("LOAN_PERIOD_DAYS must be positive"))
	}
	if c.Loan.OverdueScanEvery <= 0 {
		errs = append(errs, errors.New("LOAN_OVERDUE_SCAN_INTERVAL must be positive"))
	}

	// Cache validation
	if c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive"))
	}

	// Rate limit validation
	if c.RateLimit.LoginRequests <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_LOGIN_REQUESTS must be positive"))
	}
	if c.RateLimit.LoginWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_LOGIN_WINDOW must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// LoanPeriod returns the lending period as a duration.
func (c LoanConfig) LoanPeriod() time.Duration {
	return time.Duration(c.PeriodDays) * 24 * time.Hour
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
