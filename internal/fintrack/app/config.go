package app

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/aussiebroadwan/fintrack/pkg/finsdk"
	"github.com/joho/godotenv"
)

type Config struct {
	APIURL            string        // Backend base URL (default: http://localhost:5001/api/v1)
	ForecastURL       string        // Spend forecast endpoint (default: http://127.0.0.1:8000/api/predict-spends/)
	StateFile         string        // SQLite file holding cookies and the session cache (default: ./fintrack.db)
	HTTPTimeout       time.Duration // Per-request timeout (default: 10s)
	OTPResendInterval time.Duration // Minimum spacing of one-time code requests (default: 30s)
	Env               string        // Environment (dev, staging, prod) (default: dev)
	LogLevel          string        // Log level (debug, info, warn, error) (default: info)
	LogFormat         string        // Log format (json, text) (default: json)
}

// LoadConfig reads the environment, after loading envFiles (".env" when
// none are given) if they exist. Variables already set win over the files.
func LoadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	return Config{
		APIURL:            getEnvOrDefault("FINTRACK_API_URL", finsdk.DefaultBaseURL),
		ForecastURL:       getEnvOrDefault("FINTRACK_FORECAST_URL", finsdk.DefaultForecastURL),
		StateFile:         getEnvOrDefault("FINTRACK_STATE_FILE", "fintrack.db"),
		HTTPTimeout:       getEnvDurationOrDefault("FINTRACK_HTTP_TIMEOUT", 10*time.Second),
		OTPResendInterval: getEnvDurationOrDefault("FINTRACK_OTP_RESEND_INTERVAL", 30*time.Second),
		Env:               getEnvOrDefault("ENV", "dev"),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         getEnvOrDefault("LOG_FORMAT", "json"),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds.
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
