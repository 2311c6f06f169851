package exec

import (
	"context"
	"time"
)

// WithTimeout derives a context that's cancelled after d, for passing to
// Run/RunLimited — which checks ctx.Done() on every iteration, the Go
// equivalent of the titan original's make_timeout watchdog (there a thread
// polling every 100ms to flip a pause flag; here the standard
// cancellation-context idiom instead). exec is accepted for symmetry with
// Pause/Resume and reserved for future use by callers that want to
// watch-and-pause from outside the run loop.
func WithTimeout(parent context.Context, e *Executor, d time.Duration) (context.Context, context.CancelFunc) {
	_ = e
	return context.WithTimeout(parent, d)
}
