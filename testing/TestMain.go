// Package testing prepares the environment of test binaries that import it:
// test mode on, and throwaway secrets so LoadConfig succeeds.
package testing

import (
	"os"
	stdtesting "testing"
)

var defaults = map[string]string{
	"RESERVO_TEST_MODE": "true",
	"SESSION_SECRET":    "test-session-secret",
	"CSRF_SECRET":       "test-csrf-secret",
}

func init() {
	for key, value := range defaults {
		if _, set := os.LookupEnv(key); !set {
			_ = os.Setenv(key, value)
		}
	}
}

// TestMain runs m with the defaults applied by init.
func TestMain(m *stdtesting.M) {
	os.Exit(m.Run())
}
