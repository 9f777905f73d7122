package app

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"go.uber.org/automaxprocs/maxprocs"
)

// TestModeEnv is set by test binaries. Entry points return before touching
// Postgres, Redis or the network when it is true.
const TestModeEnv = "RESERVO_TEST_MODE"

// InTestMode reports whether TestModeEnv holds a true boolean value.
func InTestMode() bool {
	on, err := strconv.ParseBool(os.Getenv(TestModeEnv))
	return err == nil && on
}

// SetMaxProcs matches GOMAXPROCS to the container CPU quota, reporting the
// decision through logger.
func SetMaxProcs(logger *slog.Logger) error {
	_, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Info(fmt.Sprintf(format, args...), slog.String("component", "maxprocs"))
	}))
	return err
}
