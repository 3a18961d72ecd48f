package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
)

// TestMain loads the repository .env, then strips the settings that would
// point commands at a real database or signing key.
func TestMain(m *testing.M) {
	_ = godotenv.Load(filepath.Join("..", "..", ".env"))

	for _, key := range []string{"DATABASE_URL", "JWT_SECRET"} {
		_ = os.Unsetenv(key)
	}
	if os.Getenv("LOG_LEVEL") == "" {
		_ = os.Setenv("LOG_LEVEL", "error")
	}

	os.Exit(m.Run())
}
