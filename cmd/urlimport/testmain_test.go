package main

import (
	"os"
	"strings"
	"testing"

	"github.com/joho/godotenv"
)

// TestMain mirrors main's .env handling, then drops URLIMPORT_* settings so every
// command under test starts from the built-in defaults.
func TestMain(m *testing.M) {
	_ = godotenv.Load()

	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "URLIMPORT_") {
			_ = os.Unsetenv(key)
		}
	}

	os.Exit(m.Run())
}
