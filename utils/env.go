// nationportal/utils/env.go
package utils

import (
	"os"
	"strconv"
	"time"
)

// GetEnv reads an environment variable or returns a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvDuration reads a duration variable. ok is false when the value was set but unparsable.
func GetEnvDuration(key, fallback string) (d time.Duration, ok bool) {
	d, err := time.ParseDuration(GetEnv(key, fallback))
	if err != nil {
		d, _ = time.ParseDuration(fallback)
		return d, false
	}
	return d, true
}

// GetEnvInt reads an integer variable. ok is false when the value was set but unparsable.
func GetEnvInt(key string, fallback int) (n int, ok bool) {
	n, err := strconv.Atoi(GetEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback, false
	}
	return n, true
}
