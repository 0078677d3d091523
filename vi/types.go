package vi

import (
	"errors"
	"log/slog"

	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/value"
)

// Sentinel errors returned by the value-iteration solvers.
var (
	// ErrBadHorizon indicates a negative horizon.
	ErrBadHorizon = errors.New("vi: horizon must be non-negative")

	// ErrBadEpsilon indicates a convergence threshold that is not strictly positive.
	ErrBadEpsilon = errors.New("vi: epsilon must be positive")

	// ErrBadMaxIterations indicates a negative iteration cap.
	ErrBadMaxIterations = errors.New("vi: MaxIterations must be non-negative")
)

// Options configures the value-iteration solvers.
//
// Initial       – warm start for InfiniteHorizon (copied, never mutated). Nil means zero.
// MaxIterations – safety cap on sweeps for InfiniteHorizon; 0 disables the cap.
// Logger        – receives per-sweep Debug records and a completion Info record.
type Options struct {
	Initial       *value.Function
	MaxIterations int
	Logger        *slog.Logger
}

// Option represents a functional option for configuring value iteration.
type Option func(*Options)

// DefaultOptions returns the zero warm start, no iteration cap and a discard logger.
func DefaultOptions() Options {
	return Options{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithInitial sets the warm-start value function. It must be bound to the
// model being solved.
func WithInitial(v *value.Function) Option {
	return func(o *Options) {
		o.Initial = v
	}
}

// WithMaxIterations caps the number of sweeps. Reaching the cap ends the run
// with Stats.Converged == false.
func WithMaxIterations(n int) Option {
	return func(o *Options) {
		o.MaxIterations = n
	}
}

// WithLogger sets the logger; nil keeps the discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

func buildOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
