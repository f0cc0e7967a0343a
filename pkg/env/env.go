// Package env has small helpers for reading process environment values
// before the typed config has been loaded (logger bootstrap, CLI tools).
package env

import "os"

// Get reads key from the environment, returning fallback when the
// variable is unset or empty.
func Get(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}
