package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds everything read from the environment at startup.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	DataDir        string
	Debug          bool
}

// Load builds the configuration from environment variables. The caller is
// expected to have loaded .env (godotenv) beforehand.
func Load() (Config, error) {
	dataDir := os.Getenv("TASKDECK_DATA_DIR")
	if dataDir == "" {
		var err error
		dataDir, err = defaultDataDir()
		if err != nil {
			return Config{}, err
		}
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return Config{}, err
	}

	timeout := 10 * time.Second
	if v := os.Getenv("TASKDECK_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}

	return Config{
		APIBaseURL:     getEnv("TASKDECK_API_URL", "http://localhost:8000/api"),
		RequestTimeout: timeout,
		DataDir:        dataDir,
		Debug:          os.Getenv("TASKDECK_DEBUG") != "",
	}, nil
}

// defaultDataDir resolves the XDG data directory with a home fallback.
func defaultDataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "taskdeck"), nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
