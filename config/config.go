// Package config loads service configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	// SQLite path; ":memory:" keeps everything in RAM
	DBPath string
	// Allowed CORS origins (comma-separated)
	CORSOrigins []string
	// How often the background scheduler checks for a date rollover
	AutoCloseInterval time.Duration
	// Seed the demo catalog and personnel into an empty database
	SeedDemoData bool
}

func Load() *Config {
	// .env file is optional, continue with environment variables
	_ = godotenv.Load()

	originsStr := getEnv("CORS_ORIGINS", "http://localhost:5173")
	origins := strings.Split(originsStr, ",")
	for i, o := range origins {
		origins[i] = strings.TrimSpace(o)
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		DBPath:            getEnv("DB_PATH", "./dealer.db"),
		CORSOrigins:       origins,
		AutoCloseInterval: time.Duration(getEnvAsInt("AUTO_CLOSE_INTERVAL_SECONDS", 300)) * time.Second,
		SeedDemoData:      getEnvAsBool("SEED_DEMO_DATA", true),
	}
}

// Production reports whether the service runs with production settings.
func (c *Config) Production() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return result
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return strings.ToLower(value) == "true" || value == "1"
}
