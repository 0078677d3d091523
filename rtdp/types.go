package rtdp

import (
	"errors"
	"log/slog"
	"math/rand"

	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/mdp"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/value"
)

// DefaultMaxDepth bounds the length of a trial when no MaxDepth is given.
const DefaultMaxDepth = 1000

// DefaultBoundedMaxTrials is the trial cap BRTDP applies when MaxTrials is 0.
// BRTDP descends along lower-greedy actions only, so the upper bound of an
// action that is never lower-greedy may never tighten and the gap can stall.
const DefaultBoundedMaxTrials = 10000

// Sentinel errors returned by the trial-based solvers.
var (
	// ErrBadMaxDepth indicates MaxDepth < 1.
	ErrBadMaxDepth = errors.New("rtdp: MaxDepth must be at least 1")

	// ErrBadMaxTrials indicates a negative trial cap.
	ErrBadMaxTrials = errors.New("rtdp: MaxTrials must be non-negative")

	// ErrNoInitialStates indicates a model without initial states; trials
	// have nowhere to start.
	ErrNoInitialStates = errors.New("rtdp: model has no initial states")

	// ErrTrialMode indicates that RTDP got neither or both of a positive
	// trial budget and a positive epsilon.
	ErrTrialMode = errors.New("rtdp: exactly one of a positive trial budget or a positive epsilon is required")

	// ErrBadEpsilon indicates a convergence threshold that is not strictly positive.
	ErrBadEpsilon = errors.New("rtdp: epsilon must be positive")

	// ErrBoundsRequired indicates γ = 1 without explicit BRTDP bounds.
	ErrBoundsRequired = errors.New("rtdp: undiscounted BRTDP requires explicit lower and upper bounds")

	// ErrInvertedBounds indicates lower[s] > upper[s] for some state.
	ErrInvertedBounds = errors.New("rtdp: lower bound exceeds upper bound")

	// ErrBadTau indicates τ ≤ 0.
	ErrBadTau = errors.New("rtdp: tau must be positive")
)

// Options configures RTDP, LRTDP and BRTDP.
//
// MaxDepth  – maximum number of states visited by one trial (≥ 1).
// Seed      – seed of the trial random source; 0 selects the default seed.
// Rand      – caller-owned random source; overrides Seed when non-nil.
// Initial   – warm start (copied); may carry a lazy heuristic. Nil means zero.
// Lower     – BRTDP lower bound (copied). Nil selects R_min/(1−γ) when γ < 1.
// Upper     – BRTDP upper bound (copied). Nil selects R_max/(1−γ) when γ < 1.
// Trials    – RTDP trial budget; mutually exclusive with Epsilon.
// Epsilon   – RTDP convergence threshold; mutually exclusive with Trials.
// MaxTrials – safety cap for convergence modes; 0 disables the cap for
//             RTDP and LRTDP and selects DefaultBoundedMaxTrials for BRTDP.
// Logger    – per-trial Debug records, completion Info record.
// OnBackup  – called with the state of every value update counted as a backup.
// OnVisit   – called with every state a trial walks through.
// OnSolved  – called once for every state LRTDP labels solved.
// OnTrial   – called with the 1-based trial number before each trial.
type Options struct {
	MaxDepth  int
	Seed      int64
	Rand      *rand.Rand
	Initial   *value.Function
	Lower     *value.Function
	Upper     *value.Function
	Trials    int
	Epsilon   float64
	MaxTrials int
	Logger    *slog.Logger

	OnBackup func(mdp.State)
	OnVisit  func(mdp.State)
	OnSolved func(mdp.State)
	OnTrial  func(int)
}

// Option represents a functional option for configuring the trial solvers.
type Option func(*Options)

// DefaultOptions returns MaxDepth = DefaultMaxDepth, the default seed, no
// caps, no hooks and a discard logger.
func DefaultOptions() Options {
	return Options{
		MaxDepth: DefaultMaxDepth,
		Logger:   slog.New(slog.DiscardHandler),
	}
}

// WithMaxDepth sets the maximum number of states visited per trial.
func WithMaxDepth(d int) Option {
	return func(o *Options) {
		o.MaxDepth = d
	}
}

// WithSeed sets the seed of the internal random source.
func WithSeed(seed int64) Option {
	return func(o *Options) {
		o.Seed = seed
	}
}

// WithRand makes the solver draw from r instead of a seeded source.
// r must not be used concurrently while the solver runs.
func WithRand(r *rand.Rand) Option {
	return func(o *Options) {
		o.Rand = r
	}
}

// WithInitial sets the warm-start value function.
func WithInitial(v *value.Function) Option {
	return func(o *Options) {
		o.Initial = v
	}
}

// WithBounds sets the initial BRTDP bounds. Either may be nil to keep the
// discounted default for that side.
func WithBounds(lower, upper *value.Function) Option {
	return func(o *Options) {
		o.Lower = lower
		o.Upper = upper
	}
}

// WithTrials selects RTDP's fixed-budget mode.
func WithTrials(n int) Option {
	return func(o *Options) {
		o.Trials = n
	}
}

// WithEpsilon selects RTDP's convergence mode.
func WithEpsilon(eps float64) Option {
	return func(o *Options) {
		o.Epsilon = eps
	}
}

// WithMaxTrials caps the number of trials of the convergence modes.
// Reaching the cap ends the run with Stats.Converged == false.
func WithMaxTrials(n int) Option {
	return func(o *Options) {
		o.MaxTrials = n
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

// OnBackup registers a callback invoked with every backed-up state.
func OnBackup(fn func(mdp.State)) Option {
	return func(o *Options) {
		o.OnBackup = fn
	}
}

// OnVisit registers a callback invoked with every state a trial visits.
func OnVisit(fn func(mdp.State)) Option {
	return func(o *Options) {
		o.OnVisit = fn
	}
}

// OnSolved registers a callback invoked when LRTDP labels a state solved.
func OnSolved(fn func(mdp.State)) Option {
	return func(o *Options) {
		o.OnSolved = fn
	}
}

// OnTrial registers a callback invoked before each trial.
func OnTrial(fn func(int)) Option {
	return func(o *Options) {
		o.OnTrial = fn
	}
}
