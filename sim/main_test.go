package sim

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

// TestMain keeps per-forecast debug lines out of test output. Export
// DEBUG_TESTS=1 to see them for a failing epidemic run.
func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}
