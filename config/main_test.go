package config

import (
	"fmt"
	"os"
	"testing"
)

// TestMain refuses to run outside GO_ENV=test, since Load reads .env files
// that may point at a real database
func TestMain(m *testing.M) {
	if env := os.Getenv("GO_ENV"); env != "test" {
		fmt.Fprintf(os.Stderr, "SAFETY CHECK FAILED: tests must run with GO_ENV=test (current %q)\n"+
			"  run: GO_ENV=test go test ./...\n", env)
		os.Exit(1)
	}
	os.Exit(m.Run())
}
