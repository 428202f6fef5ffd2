// Package timeouts holds the context deadlines used by handlers, stores and
// the error page sub-request.
//
// Pick the smallest bound that covers the work:
//   - Ping: connectivity checks
//   - Short: a single-document read or a form render
//   - Medium: listings and single writes
//   - Long: startup work such as connecting and building indexes
//   - Subrequest: rendering a substitute error page through the router
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing       = 2 * time.Second
	DefaultShort      = 5 * time.Second
	DefaultMedium     = 10 * time.Second
	DefaultLong       = 30 * time.Second
	DefaultSubrequest = 15 * time.Second
)

// EnvPrefix is prepended to the upper-cased bound name when reading
// overrides from the environment, e.g. EXCEPTIONPAGES_TIMEOUT_SUBREQUEST.
const EnvPrefix = "EXCEPTIONPAGES_TIMEOUT_"

// Config is a full set of bounds. Zero fields mean "leave unchanged"
// when passed to Configure.
type Config struct {
	Ping       time.Duration
	Short      time.Duration
	Medium     time.Duration
	Long       time.Duration
	Subrequest time.Duration
}

func defaults() Config {
	return Config{
		Ping:       DefaultPing,
		Short:      DefaultShort,
		Medium:     DefaultMedium,
		Long:       DefaultLong,
		Subrequest: DefaultSubrequest,
	}
}

var (
	mu  sync.RWMutex
	cur = defaults()
)

func get(pick func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return pick(cur)
}

func Ping() time.Duration       { return get(func(c Config) time.Duration { return c.Ping }) }
func Short() time.Duration      { return get(func(c Config) time.Duration { return c.Short }) }
func Medium() time.Duration     { return get(func(c Config) time.Duration { return c.Medium }) }
func Long() time.Duration       { return get(func(c Config) time.Duration { return c.Long }) }
func Subrequest() time.Duration { return get(func(c Config) time.Duration { return c.Subrequest }) }

// fields pairs each bound's env suffix with its slot in c.
func fields(c *Config) []struct {
	name string
	slot *time.Duration
} {
	return []struct {
		name string
		slot *time.Duration
	}{
		{"PING", &c.Ping},
		{"SHORT", &c.Short},
		{"MEDIUM", &c.Medium},
		{"LONG", &c.Long},
		{"SUBREQUEST", &c.Subrequest},
	}
}

// Configure overrides the non-zero bounds in cfg. Call it at startup.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	dst, src := fields(&cur), fields(&cfg)
	for i := range dst {
		if *src[i].slot > 0 {
			*dst[i].slot = *src[i].slot
		}
	}
}

// Reset restores the defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = defaults()
}

// ConfigureFromEnv applies EnvPrefix+NAME overrides ("500ms", "20s").
// Unparseable or non-positive values are ignored. It returns how many
// bounds were changed.
func ConfigureFromEnv() int {
	var cfg Config
	n := 0
	for _, f := range fields(&cfg) {
		v := os.Getenv(EnvPrefix + f.name)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*f.slot = d
			n++
		}
	}
	Configure(cfg)
	return n
}

// WithTimeout is context.WithTimeout whose cancel func warns on log when
// the deadline, rather than the caller, ended the operation.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if log != nil && ctx.Err() == context.DeadlineExceeded {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
