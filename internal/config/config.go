// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/aristath/b3cal/internal/reliability"
)

const defaultHolidaysFile = "holidays.csv"

// Config holds application configuration
type Config struct {
	DataDir         string // Always absolute; created on Load
	HolidaysFile    string // Dataset override read at startup and written by the updater
	Port            int
	LogLevel        string
	LogPretty       bool
	DevMode         bool
	SourceURL       string // ANBIMA holiday workbook; empty uses the client default
	RefreshSchedule string // Cron spec with seconds; empty disables scheduled refreshes
	StrictCheck     bool   // Fail updates whose holidays miss rule-computed national holidays
	R2              reliability.R2Config
	R2Prefix        string
	R2Keep          int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir, holidaysFile, err := resolvePaths()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         dataDir,
		HolidaysFile:    holidaysFile,
		Port:            getEnvAsInt("B3CAL_PORT", 8080),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogPretty:       getEnvAsBool("LOG_PRETTY", false),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		SourceURL:       getEnv("B3CAL_SOURCE_URL", ""),
		RefreshSchedule: os.Getenv("B3CAL_REFRESH_SCHEDULE"),
		StrictCheck:     getEnvAsBool("B3CAL_STRICT_CROSSCHECK", false),
		R2: reliability.R2Config{
			AccountID:       getEnv("B3CAL_R2_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("B3CAL_R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("B3CAL_R2_SECRET_ACCESS_KEY", ""),
			Bucket:          getEnv("B3CAL_R2_BUCKET", ""),
			Endpoint:        getEnv("B3CAL_R2_ENDPOINT", ""),
		},
		R2Prefix: getEnv("B3CAL_R2_PREFIX", "b3cal"),
		R2Keep:   getEnvAsInt("B3CAL_R2_KEEP", 30),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// HolidaysPath resolves the dataset file exactly as Load does, without
// creating the data directory or reading the rest of the configuration
func HolidaysPath() (string, error) {
	_ = godotenv.Load()

	_, holidaysFile, err := resolvePaths()
	return holidaysFile, err
}

// resolvePaths returns the absolute data directory and dataset file. A
// relative B3CAL_HOLIDAYS_FILE is taken relative to the data directory.
func resolvePaths() (string, string, error) {
	dataDir, err := filepath.Abs(getEnv("B3CAL_DATA_DIR", "data"))
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	holidaysFile := getEnv("B3CAL_HOLIDAYS_FILE", defaultHolidaysFile)
	if !filepath.IsAbs(holidaysFile) {
		holidaysFile = filepath.Join(dataDir, holidaysFile)
	}
	return dataDir, holidaysFile, nil
}

// Validate checks the loaded values
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.RefreshSchedule != "" {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(c.RefreshSchedule); err != nil {
			return fmt.Errorf("invalid refresh schedule %q: %w", c.RefreshSchedule, err)
		}
	}
	if c.R2Keep < 0 {
		return fmt.Errorf("invalid snapshot retention %d", c.R2Keep)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
