package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Env holds process-level settings read from the environment. Priority order:
// environment variables > .env file > defaults.
type Env struct {
	ConfigPath     string
	DataDir        string
	DatabaseURL    string
	RedisAddr      string
	HTTPAddr       string
	LogLevel       string
	Workers        int
	QueryTimeout   time.Duration
	RequestsPerSec float64
}

// LoadEnv reads Env, loading a .env file first if one exists
func LoadEnv() Env {
	_ = godotenv.Load()

	return Env{
		ConfigPath:     getEnv("TECHRUN_CONFIG", ""),
		DataDir:        getEnv("TECHRUN_DATA_DIR", "data"),
		DatabaseURL:    getEnv("TECHRUN_DATABASE_URL", ""),
		RedisAddr:      getEnv("TECHRUN_REDIS_ADDR", ""),
		HTTPAddr:       getEnv("TECHRUN_HTTP_ADDR", ":8080"),
		LogLevel:       getEnv("TECHRUN_LOG_LEVEL", "info"),
		Workers:        getEnvInt("TECHRUN_WORKERS", 8),
		QueryTimeout:   time.Duration(getEnvInt("TECHRUN_QUERY_TIMEOUT_SECONDS", 5)) * time.Second,
		RequestsPerSec: getEnvFloat("TECHRUN_REQUESTS_PER_SECOND", 20),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
