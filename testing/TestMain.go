// Package testing switches the process into test mode when imported by test
// binaries and applies the JSON settings cmd/wisecart applies at startup.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"

	"github.com/shopspring/decimal"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("WISECART_TEST_MODE", "1")
		decimal.MarshalJSONWithoutQuotes = true
		if os.Getenv("BACKEND_URL") == "" {
			_ = os.Setenv("BACKEND_URL", "http://127.0.0.1:0/api")
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
