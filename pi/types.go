package pi

import (
	"errors"
	"log/slog"

	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/mdp"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/value"
)

// Sentinel errors returned by the policy-iteration solvers.
var (
	// ErrSingularSystem indicates that (I − γ·P_π) cannot be inverted, which
	// happens for γ = 1 when π can loop forever outside the goal states.
	ErrSingularSystem = errors.New("pi: policy evaluation system is singular")

	// ErrBadSweeps indicates a negative number of partial-evaluation sweeps.
	ErrBadSweeps = errors.New("pi: sweeps must be non-negative")

	// ErrBadEpsilon indicates a convergence threshold that is not strictly positive.
	ErrBadEpsilon = errors.New("pi: epsilon must be positive")

	// ErrBadMaxIterations indicates a negative iteration cap.
	ErrBadMaxIterations = errors.New("pi: MaxIterations must be non-negative")
)

// Options configures policy iteration and modified policy iteration.
//
// InitialPolicy – starting policy for PolicyIteration. Nil selects the first
//
//	action (sorted order) everywhere.
//
// Initial       – warm-start values for ModifiedPolicyIteration (copied).
// MaxIterations – safety cap on outer iterations; 0 disables the cap.
// Logger        – receives per-iteration Debug records, Warn on ill-conditioned
//
//	systems or when the cap is hit.
type Options struct {
	InitialPolicy mdp.Policy
	Initial       *value.Function
	MaxIterations int
	Logger        *slog.Logger
}

// Option represents a functional option for configuring policy iteration.
type Option func(*Options)

// DefaultOptions returns options with no warm start, no cap and a discard logger.
func DefaultOptions() Options {
	return Options{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithInitialPolicy sets the starting policy; it must cover every state.
func WithInitialPolicy(p mdp.Policy) Option {
	return func(o *Options) {
		o.InitialPolicy = p
	}
}

// WithInitial sets the warm-start value function.
func WithInitial(v *value.Function) Option {
	return func(o *Options) {
		o.Initial = v
	}
}

// WithMaxIterations caps the number of outer iterations.
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

func buildOptions(opts []Option) (Options, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.MaxIterations < 0 {
		return o, ErrBadMaxIterations
	}
	return o, nil
}
