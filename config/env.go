// Package config loads process configuration from environment variables
// and, in development, a local .env file.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads a .env file if present. A missing file is not an error;
// any other read/parse failure is returned as-is.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// GetEnv retrieves an environment variable or returns defaultValue.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// MustGetEnv retrieves an environment variable or panics if it is unset.
func MustGetEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic("required environment variable not set: " + key)
	}
	return value
}
