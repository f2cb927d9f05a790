// Package config provides configuration management for the habits service.
// It handles loading and validation of configuration values from environment variables,
// with support for required variables, default values, and collective error reporting:
// every problem is gathered first so operators see the full list in a single run.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported values of HABITS_DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DatabaseConfig selects the SQL backend and holds its connection settings.
type DatabaseConfig struct {
	Driver     string // DriverSQLite or DriverPostgres
	SQLitePath string

	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxSize  int
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	JWTSecret            string        // Secret key for signing JWTs
	AccessTokenDuration  time.Duration // Duration for access tokens
	RefreshTokenDuration time.Duration // Duration for refresh tokens
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	// Location defines "local midnight" for the daily completion toggle.
	Location *time.Location
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string
	File  string
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	Database *DatabaseConfig
	Auth     *AuthConfig
	Server   *ServerConfig
	Log      *LogConfig
}

// Helper function to get a required environment variable.
// Appends an error to the errors slice if the variable is not set.
func getRequiredEnv(key string, errors *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		*errors = append(*errors, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

// Helper function to get an optional environment variable with a default string value.
func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// Helper function to get an optional environment variable parsed as an int.
// Uses defaultValue if not set. Appends an error if parsing fails.
func getOptionalEnvInt(key string, defaultValue int, errors *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// Helper function to get an optional environment variable parsed as time.Duration.
// `time.ParseDuration` expects a string like "15m", "1h30s".
func getOptionalEnvDuration(key string, defaultValue time.Duration, errors *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	if valueDuration <= 0 {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: duration must be positive", key))
		return defaultValue
	}
	return valueDuration
}

// clampPoolSize keeps the Postgres pool between 5 and 100 connections,
// recording a note when the configured value had to be adjusted.
func clampPoolSize(size int, varName string, errors *[]string) int {
	if size < 5 {
		*errors = append(*errors, fmt.Sprintf("pool size for %s (%d) is less than minimum 5", varName, size))
		return 5
	}
	if size > 100 {
		*errors = append(*errors, fmt.Sprintf("pool size for %s (%d) is greater than maximum 100", varName, size))
		return 100
	}
	return size
}

// splitList turns "a, b,c" into ["a", "b", "c"].
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadConfig creates and returns an AppConfig by reading and validating environment variables.
// It collects all errors encountered during loading and returns a single error if any exist.
func LoadConfig() (*AppConfig, error) {
	var errors []string

	// Database Configuration
	dbCfg := &DatabaseConfig{
		Driver:     strings.ToLower(getOptionalEnv("HABITS_DB_DRIVER", DriverSQLite)),
		SQLitePath: getOptionalEnv("SQLITE_PATH", "data/habits.db"),
	}
	switch dbCfg.Driver {
	case DriverSQLite:
	case DriverPostgres:
		dbCfg.User = getRequiredEnv("DB_USER", &errors)
		dbCfg.Password = getRequiredEnv("DB_PASSWORD", &errors)
		dbCfg.DBName = getRequiredEnv("DB_NAME", &errors)
		dbCfg.Host = getOptionalEnv("DB_HOST", "localhost")
		dbCfg.Port = getOptionalEnvInt("DB_PORT", 5432, &errors)
		dbCfg.MaxSize = clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, &errors), "DB_POOL_SIZE", &errors)
	default:
		errors = append(errors, fmt.Sprintf("invalid value for HABITS_DB_DRIVER: %q (want %q or %q)", dbCfg.Driver, DriverSQLite, DriverPostgres))
	}

	// Auth Configuration
	authConfig := &AuthConfig{
		JWTSecret:            getRequiredEnv("JWT_SECRET", &errors),
		AccessTokenDuration:  getOptionalEnvDuration("JWT_ACCESS_TOKEN_DURATION", 15*time.Minute, &errors),
		RefreshTokenDuration: getOptionalEnvDuration("JWT_REFRESH_TOKEN_DURATION", 168*time.Hour, &errors), // 7 days
	}

	// Server Configuration
	tzName := getOptionalEnv("HABITS_TIMEZONE", "Local")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		errors = append(errors, fmt.Sprintf("invalid value for HABITS_TIMEZONE: %q: %v", tzName, err))
		loc = time.Local
	}
	serverConfig := &ServerConfig{
		Port:           getOptionalEnv("PORT", "8080"),
		AllowedOrigins: splitList(getOptionalEnv("CORS_ALLOWED_ORIGINS", "*")),
		Location:       loc,
	}

	logConfig := &LogConfig{
		Level: getOptionalEnv("LOG_LEVEL", "info"),
		File:  getOptionalEnv("LOG_FILE", ""),
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return &AppConfig{
		Database: dbCfg,
		Auth:     authConfig,
		Server:   serverConfig,
		Log:      logConfig,
	}, nil
}
