package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Settings holds everything the dashboard needs to reach and pace the device.
// Values come from the environment (optionally a .env file) with flag
// overrides applied in cmd; defaults match the device firmware.
type Settings struct {
	DeviceBaseURL string
	PushURL       string
	LogPath       string
	LogLevel      string
	HistoryPath   string

	PollInterval   time.Duration
	RetryDelay     time.Duration
	MaxRetries     int
	SettleDelay    time.Duration
	ImageTimeout   time.Duration
	RequestTimeout time.Duration
}

// Load reads a .env file if one exists and returns Settings populated from
// the environment. A missing .env is not an error; system env still applies.
func Load(paths ...string) Settings {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	_ = godotenv.Load(paths...)

	return Settings{
		DeviceBaseURL:  GetEnv("REBARVISTA_DEVICE_URL", "http://localhost:8000"),
		PushURL:        GetEnv("REBARVISTA_PUSH_URL", "ws://localhost:8000/ws"),
		LogPath:        GetEnv("REBARVISTA_LOG", "rebarvista.log"),
		LogLevel:       GetEnv("REBARVISTA_LOG_LEVEL", "info"),
		HistoryPath:    GetEnv("REBARVISTA_HISTORY", "capture_history.json"),
		PollInterval:   GetEnvDuration("REBARVISTA_POLL_INTERVAL", 30*time.Second),
		RetryDelay:     GetEnvDuration("REBARVISTA_RETRY_DELAY", 3*time.Second),
		MaxRetries:     GetEnvInt("REBARVISTA_MAX_RETRIES", 5),
		SettleDelay:    GetEnvDuration("REBARVISTA_SETTLE_DELAY", 2*time.Second),
		ImageTimeout:   GetEnvDuration("REBARVISTA_IMAGE_TIMEOUT", 10*time.Second),
		RequestTimeout: GetEnvDuration("REBARVISTA_REQUEST_TIMEOUT", 10*time.Second),
	}
}

// GetEnv returns the value of the environment variable named by key, or
// fallback if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable named by
// key, or fallback if the variable is unset, empty, or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvDuration returns the duration value of the environment variable named
// by key (Go duration syntax, e.g. "30s"), or fallback when unset or invalid.
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return fallback
}
