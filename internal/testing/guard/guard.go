// Package guard switches the process into test mode when imported, so
// binaries started from tests skip their runtime side effects.
package guard

import (
	"os"
	"sync"
)

// TestModeEnv mirrors app.TestModeEnv.
const TestModeEnv = "ROOFRECHARGE_TEST_MODE"

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv(TestModeEnv) == "" {
			_ = os.Setenv(TestModeEnv, "1")
		}
	})
}
