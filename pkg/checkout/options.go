package checkout

import (
	"log/slog"
	"time"
)

// DefaultResetDelay lets the close animation finish before the dialog
// returns to loading.
const DefaultResetDelay = 300 * time.Millisecond

// AfterFunc schedules f after d and returns a function that cancels it.
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

func timeAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Option configures a Controller.
type Option func(*Controller)

// WithAllowedOrigins adds trusted message origins, typically the
// configured API and portal URLs.
func WithAllowedOrigins(origins ...string) Option {
	return func(c *Controller) {
		c.origins = append(c.origins, normalizeOrigins(origins)...)
	}
}

// WithResetDelay overrides DefaultResetDelay.
func WithResetDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.resetDelay = d
		}
	}
}

// WithAfterFunc replaces the timer used for the delayed reset.
func WithAfterFunc(fn AfterFunc) Option {
	return func(c *Controller) {
		if fn != nil {
			c.after = fn
		}
	}
}

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}
