package app

import (
	"os"
	"testing"

	"github.com/gravigo-ml/gravigo/internal/registry"
	"github.com/gravigo-ml/gravigo/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing. The
// returned buffer captures the run's full log output.
func SetupAppTest(t *testing.T, cfg *Config, modules ...registry.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	testApp := NewApp(logBuffer, cfg, modules...)

	t.Cleanup(func() {
		if os.Getenv("GRAVIGO_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
