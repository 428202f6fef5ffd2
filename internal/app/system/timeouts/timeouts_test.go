package timeouts_test

import (
	"testing"
	"time"

	"github.com/dalemusser/exceptionpages/internal/app/system/timeouts"
)

func TestConfigure_IgnoresZeroValues(t *testing.T) {
	defer timeouts.Reset()

	timeouts.Configure(timeouts.Config{Short: 7 * time.Second})

	if got := timeouts.Short(); got != 7*time.Second {
		t.Errorf("Short: got %v, want 7s", got)
	}
	if got := timeouts.Medium(); got != timeouts.DefaultMedium {
		t.Errorf("Medium: got %v, want default %v", got, timeouts.DefaultMedium)
	}
	if got := timeouts.Subrequest(); got != timeouts.DefaultSubrequest {
		t.Errorf("Subrequest: got %v, want default %v", got, timeouts.DefaultSubrequest)
	}
}

func TestConfigureFromEnv(t *testing.T) {
	defer timeouts.Reset()
	t.Setenv(timeouts.EnvPrefix+"SUBREQUEST", "3s")
	t.Setenv(timeouts.EnvPrefix+"LONG", "not-a-duration")

	if n := timeouts.ConfigureFromEnv(); n != 1 {
		t.Errorf("configured: got %d, want 1", n)
	}
	if got := timeouts.Subrequest(); got != 3*time.Second {
		t.Errorf("Subrequest: got %v, want 3s", got)
	}
	if got := timeouts.Long(); got != timeouts.DefaultLong {
		t.Errorf("Long: got %v, want default", got)
	}
}
