package config

import (
	"os"
	"strconv"
	"time"
)

// RefreshPolicy holds the release-age thresholds and per-bucket refresh
// intervals used to decide when an app's details are stale.
type RefreshPolicy struct {
	RecentMonths int
	MidMaxYears  int
	RecentDays   int
	MidDays      int
	OldDays      int
}

type Config struct {
	DatabaseURL string
	SteamAPIKey string
	Port        string
	Environment string

	// Job execution tuning
	DecaySeconds int
	QueueWorkers int

	// Optional scanners
	EnableNewsScanning     bool
	EnableWorkshopScanning bool

	// Daemon import ticker
	ImportInterval time.Duration

	Refresh RefreshPolicy
}

func Load() *Config {
	defaultDSN := "root:steam@tcp(127.0.0.1:3306)/steam_catalog?charset=utf8mb4&parseTime=True&loc=Local"

	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", defaultDSN),
		SteamAPIKey: getEnv("STEAM_API_KEY", ""),
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DecaySeconds: getEnvInt("STEAM_DECAY_SECONDS", 1),
		QueueWorkers: getEnvInt("STEAM_QUEUE_WORKERS", 4),

		EnableNewsScanning:     getEnvBool("STEAM_ENABLE_NEWS_SCANNING", false),
		EnableWorkshopScanning: getEnvBool("STEAM_ENABLE_WORKSHOP_SCANNING", false),

		ImportInterval: getEnvDuration("STEAM_IMPORT_INTERVAL", 24*time.Hour),

		Refresh: RefreshPolicy{
			RecentMonths: getEnvInt("STEAM_RECENT_RELEASE_MONTHS", 6),
			MidMaxYears:  getEnvInt("STEAM_MID_RELEASE_MAX_YEARS", 2),
			RecentDays:   getEnvInt("STEAM_RECENT_DETAILS_INTERVAL_DAYS", 7),
			MidDays:      getEnvInt("STEAM_MID_DETAILS_INTERVAL_DAYS", 30),
			OldDays:      getEnvInt("STEAM_OLD_DETAILS_INTERVAL_DAYS", 183),
		},
	}
}

// DefaultRefreshPolicy returns the policy used when no environment is loaded,
// e.g. in tests and one-shot commands that only need the staleness check.
func DefaultRefreshPolicy() RefreshPolicy {
	return RefreshPolicy{
		RecentMonths: 6,
		MidMaxYears:  2,
		RecentDays:   7,
		MidDays:      30,
		OldDays:      183,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
