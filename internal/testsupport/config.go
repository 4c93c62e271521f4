package testsupport

import (
	"testing"

	"scenebatch/internal/config"
)

// NewConfig returns a validated default configuration suitable for tests.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	return &cfg
}
