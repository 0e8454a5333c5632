// Package timeouts holds the per-tier deadlines handlers put on their
// database work. The tiers are:
//
//   - Ping: the health probe
//   - Short: one-document reads and the per-request user lookup
//   - Medium: lists and single-collection writes
//   - Long: writes across collections (board delete, invitations)
package timeouts

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Config is one value per tier.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// Defaults apply until Configure overrides them.
var Defaults = Config{
	Ping:   2 * time.Second,
	Short:  5 * time.Second,
	Medium: 10 * time.Second,
	Long:   30 * time.Second,
}

var current atomic.Pointer[Config]

func init() { Reset() }

func Ping() time.Duration   { return current.Load().Ping }
func Short() time.Duration  { return current.Load().Short }
func Medium() time.Duration { return current.Load().Medium }
func Long() time.Duration   { return current.Load().Long }

// Current returns the tiers in effect.
func Current() Config { return *current.Load() }

// Configure replaces every tier set to a positive value in c and keeps the
// rest. It is called once from startup.
func Configure(c Config) {
	next := *current.Load()
	for _, f := range []struct{ src, dst *time.Duration }{
		{&c.Ping, &next.Ping},
		{&c.Short, &next.Short},
		{&c.Medium, &next.Medium},
		{&c.Long, &next.Long},
	} {
		if *f.src > 0 {
			*f.dst = *f.src
		}
	}
	current.Store(&next)
}

// Reset restores Defaults.
func Reset() {
	d := Defaults
	current.Store(&d)
}

// WithTimeout is context.WithTimeout whose cancel func logs a warning when
// the deadline, rather than the caller, ended the work.
func WithTimeout(parent context.Context, d time.Duration, log *zap.Logger, op string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, d)
	return ctx, func() {
		if log != nil && ctx.Err() == context.DeadlineExceeded {
			log.Warn("operation timed out", zap.String("operation", op), zap.Duration("timeout", d))
		}
		cancel()
	}
}
