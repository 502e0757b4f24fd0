// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is the records API base URL used when CAREPANEL_API_URL is unset.
const DefaultAPIURL = "http://127.0.0.1:8000"

// Config holds the application configuration loaded from environment variables.
type Config struct {
	APIURL     string
	ListenAddr string
	DBPath     string
	LogLevel   slog.Level
}

// Load reads an optional .env file from the working directory, then reads
// configuration from environment variables and returns a validated Config.
// Variables already set in the environment win over the .env file.
func Load() (*Config, error) {
	return LoadWithEnvFile(".env")
}

// LoadWithEnvFile is Load with an explicit dotenv path. A missing file is not
// an error; an empty path skips the file entirely.
// Optional variables with defaults: CAREPANEL_API_URL (http://127.0.0.1:8000),
// CAREPANEL_LISTEN_ADDR (127.0.0.1:8080), CAREPANEL_DB_PATH (carepanel.db),
// CAREPANEL_LOG_LEVEL (info).
func LoadWithEnvFile(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	apiURL := DefaultAPIURL
	if v, ok := os.LookupEnv("CAREPANEL_API_URL"); ok && v != "" {
		u, err := url.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("CAREPANEL_API_URL has invalid URL %q: %w", v, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("CAREPANEL_API_URL must be an http or https URL, got %q", v)
		}
		if u.Host == "" {
			return nil, fmt.Errorf("CAREPANEL_API_URL has no host: %q", v)
		}
		apiURL = v
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("CAREPANEL_LISTEN_ADDR"); ok && v != "" {
		listenAddr = v
	}

	dbPath := "carepanel.db"
	if v, ok := os.LookupEnv("CAREPANEL_DB_PATH"); ok && v != "" {
		dbPath = v
	}

	logLevel := slog.LevelInfo
	if v, ok := os.LookupEnv("CAREPANEL_LOG_LEVEL"); ok && v != "" {
		if err := logLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("CAREPANEL_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	return &Config{
		APIURL:     apiURL,
		ListenAddr: listenAddr,
		DBPath:     dbPath,
		LogLevel:   logLevel,
	}, nil
}
