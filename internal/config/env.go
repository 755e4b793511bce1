package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	// Empty DSN switches storage to the JSON file backend under DataDir.
	MySQLDSN string
	DataDir  string

	TimetableCSV string

	ProviderPassword     string
	ProviderPasswordHash string
	JWTSecret            string

	FarePredictorURL     string
	FarePredictorTimeout time.Duration
	DefaultDistanceKM    float64
}

// LoadEnv reads configuration from the environment, with .env support for
// local development.
func LoadEnv() Env {
	_ = godotenv.Load()

	return Env{
		AppAddr: getEnv("APP_ADDR", ":8080"),
		GinMode: strings.TrimSpace(os.Getenv("GIN_MODE")),

		MySQLDSN: strings.TrimSpace(os.Getenv("MYSQL_DSN")),
		DataDir:  getEnv("DATA_DIR", "data"),

		TimetableCSV: getEnv("TIMETABLE_CSV", "routes.csv"),

		ProviderPassword:     getEnv("PROVIDER_PASSWORD", "admin"),
		ProviderPasswordHash: strings.TrimSpace(os.Getenv("PROVIDER_PASSWORD_HASH")),
		JWTSecret:            getEnv("JWT_SECRET", "super-secret-key-change-me"),

		FarePredictorURL:     strings.TrimSpace(os.Getenv("FARE_PREDICTOR_URL")),
		FarePredictorTimeout: getEnvDuration("FARE_PREDICTOR_TIMEOUT_MS", 2000*time.Millisecond),
		DefaultDistanceKM:    getEnvFloat("DEFAULT_DISTANCE_KM", 5.0),
	}
}

func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
