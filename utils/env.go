package utils

import (
	"bytes"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"

	"github.com/ridoystarlord/migraview/debug"
)

// LoadEnv loads .env and then .env.local from the working directory of fs.
// Values from .env.local win, .env never overrides the process environment.
// Missing files are not an error.
func LoadEnv(fs afero.Fs) {
	if !loadEnvFile(fs, ".env", false) {
		debug.Debug("No .env file found, continuing...")
	}
	loadEnvFile(fs, ".env.local", true)
}

// loadEnvFile reports whether path exists on fs.
func loadEnvFile(fs afero.Fs, path string, override bool) bool {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return false
	}

	vars, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		debug.Warn("Failed to load "+path, "error", err)
		return true
	}
	for k, v := range vars {
		if _, set := os.LookupEnv(k); set && !override {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			debug.Warn("Failed to set variable from "+path, "key", k, "error", err)
		}
	}
	return true
}

// GetDatabaseURL returns DATABASE_URL from the environment.
func GetDatabaseURL() (string, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return "", fmt.Errorf("DATABASE_URL not set (in .env or environment)")
	}
	return url, nil
}
