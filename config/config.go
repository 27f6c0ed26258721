// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/warp/loan-engine/accrual"
)

// Config holds everything the server binary needs.
type Config struct {
	Port     int
	DBPath   string
	LogLevel string

	SchedulerEnabled bool
	SnapshotSchedule string

	// Accrual policy selection, resolved into an accrual.Config.
	RolloverPolicy accrual.RolloverPolicy
	PrepayPolicy   accrual.PrepayPolicy
}

// Load reads configuration from the environment. A .env file is loaded first
// if present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnvInt("PORT", 8080),
		DBPath:           getEnvString("DB_PATH", "./data/loans.db"),
		LogLevel:         getEnvString("LOG_LEVEL", "info"),
		SchedulerEnabled: getEnvBool("SCHEDULER_ENABLED", true),
		SnapshotSchedule: getEnvString("SNAPSHOT_SCHEDULE", "@hourly"),
	}

	rollover, err := accrual.ParseRolloverPolicy(
		getEnvString("ROLLOVER_POLICY", string(accrual.RolloverPenaltyAnchored)))
	if err != nil {
		return nil, err
	}
	prepay, err := accrual.ParsePrepayPolicy(
		getEnvString("PREPAY_POLICY", string(accrual.PrepayPrincipalFirst)))
	if err != nil {
		return nil, err
	}
	cfg.RolloverPolicy = rollover
	cfg.PrepayPolicy = prepay

	return cfg, nil
}

// Accrual resolves the configured policies into an engine config.
func (c *Config) Accrual() accrual.Config {
	ac := accrual.DefaultConfig()
	ac.Rollover = c.RolloverPolicy
	ac.Prepay = c.PrepayPolicy
	return ac
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
