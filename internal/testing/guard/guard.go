// Package guard marks the process as a test binary for packages that cannot
// import the root testing package because of an import cycle.
package guard

import "os"

func init() {
	if _, set := os.LookupEnv("RESERVO_TEST_MODE"); !set {
		_ = os.Setenv("RESERVO_TEST_MODE", "true")
	}
}
