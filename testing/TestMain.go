// Package testing makes config loading and the binaries hermetic under go test.
// Import it for side effects from tests that call LoadConfig or main.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

// defaults never override values the caller exported explicitly.
var defaults = [][2]string{
	{"REPORTS_TEST_MODE", "1"},
	{"GOTENBERG_URL", "http://127.0.0.1:0"},
	{"PDF_BACKEND", "gotenberg"},
	{"LOG_LEVEL", "error"},
}

func ensureTestMode() {
	once.Do(func() {
		for _, kv := range defaults {
			if _, ok := os.LookupEnv(kv[0]); !ok {
				_ = os.Setenv(kv[0], kv[1])
			}
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
