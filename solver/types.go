package solver

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/mdp"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/value"
)

// Sentinel errors returned by the dispatcher and the parameter resolver.
var (
	// ErrUnknownAlgorithm indicates an algorithm name ParseAlgorithm does not know.
	ErrUnknownAlgorithm = errors.New("solver: unknown algorithm")

	// ErrIncompleteParameters indicates a parameter set that does not select
	// exactly one solver configuration.
	ErrIncompleteParameters = errors.New("solver: incomplete parameters")

	// ErrNilConfig indicates a nil Config passed to Solve.
	ErrNilConfig = errors.New("solver: config is nil")
)

// Algorithm enumerates the available solvers.
type Algorithm int

const (
	// ValueIteration is infinite-horizon value iteration.
	ValueIteration Algorithm = iota
	// FiniteHorizonValueIteration is H-step value iteration.
	FiniteHorizonValueIteration
	// PolicyIteration uses exact evaluation.
	PolicyIteration
	// ModifiedPolicyIteration uses partial evaluation sweeps.
	ModifiedPolicyIteration
	// RTDP is Real-Time Dynamic Programming.
	RTDP
	// LRTDP is Labeled RTDP.
	LRTDP
	// BRTDP is Bounded RTDP.
	BRTDP
)

var algorithmNames = [...]string{
	ValueIteration:              "vi",
	FiniteHorizonValueIteration: "finite-vi",
	PolicyIteration:             "pi",
	ModifiedPolicyIteration:     "mpi",
	RTDP:                        "rtdp",
	LRTDP:                       "lrtdp",
	BRTDP:                       "brtdp",
}

// String returns the short name used in configuration files and flags.
func (a Algorithm) String() string {
	if a < 0 || int(a) >= len(algorithmNames) {
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
	return algorithmNames[a]
}

// Algorithms returns every algorithm in declaration order.
func Algorithms() []Algorithm {
	out := make([]Algorithm, len(algorithmNames))
	for i := range out {
		out[i] = Algorithm(i)
	}
	return out
}

// ParseAlgorithm maps a short name (case-insensitive) to its Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range algorithmNames {
		if n == key {
			return Algorithm(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

// Config is one fully-specified solver configuration. The concrete type
// selects the algorithm; it is implemented only by the structs below.
type Config interface {
	Algorithm() Algorithm
	isConfig()
}

// FiniteHorizon configures vi.FiniteHorizon.
type FiniteHorizon struct {
	Gamma   float64
	Horizon int
}

// InfiniteHorizon configures vi.InfiniteHorizon.
type InfiniteHorizon struct {
	Gamma         float64
	Epsilon       float64
	Initial       *value.Function
	MaxIterations int
}

// Policy configures pi.PolicyIteration.
type Policy struct {
	Gamma         float64
	InitialPolicy mdp.Policy
	MaxIterations int
}

// ModifiedPolicy configures pi.ModifiedPolicyIteration.
type ModifiedPolicy struct {
	Gamma         float64
	Epsilon       float64
	Sweeps        int
	Initial       *value.Function
	MaxIterations int
}

// Trial configures rtdp.RTDP. Exactly one of Trials and Epsilon must be positive.
type Trial struct {
	Gamma     float64
	MaxDepth  int
	Trials    int
	Epsilon   float64
	Initial   *value.Function
	Seed      int64
	MaxTrials int
}

// Labeled configures rtdp.LRTDP.
type Labeled struct {
	Gamma     float64
	Epsilon   float64
	MaxDepth  int
	Initial   *value.Function
	Seed      int64
	MaxTrials int
}

// Bounded configures rtdp.BRTDP. Nil bounds select the discounted defaults;
// MaxTrials 0 selects rtdp.DefaultBoundedMaxTrials.
type Bounded struct {
	Gamma     float64
	Epsilon   float64
	Tau       float64
	MaxDepth  int
	Lower     *value.Function
	Upper     *value.Function
	Seed      int64
	MaxTrials int
}

func (FiniteHorizon) Algorithm() Algorithm   { return FiniteHorizonValueIteration }
func (InfiniteHorizon) Algorithm() Algorithm { return ValueIteration }
func (Policy) Algorithm() Algorithm          { return PolicyIteration }
func (ModifiedPolicy) Algorithm() Algorithm  { return ModifiedPolicyIteration }
func (Trial) Algorithm() Algorithm           { return RTDP }
func (Labeled) Algorithm() Algorithm         { return LRTDP }
func (Bounded) Algorithm() Algorithm         { return BRTDP }

func (FiniteHorizon) isConfig()   {}
func (InfiniteHorizon) isConfig() {}
func (Policy) isConfig()          {}
func (ModifiedPolicy) isConfig()  {}
func (Trial) isConfig()           {}
func (Labeled) isConfig()         {}
func (Bounded) isConfig()         {}

// Options carries the cross-cutting settings Solve forwards to every solver.
//
// Logger – solver logger; nil keeps each solver's discard logger.
// Rand   – caller-owned random source for trial solvers; overrides Seed.
type Options struct {
	Logger *slog.Logger
	Rand   *rand.Rand
}

// Option represents a functional option for Solve.
type Option func(*Options)

// DefaultOptions returns no logger and no caller-owned random source.
func DefaultOptions() Options { return Options{} }

// WithLogger forwards l to the selected solver.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithRand forwards r to the selected trial solver.
func WithRand(r *rand.Rand) Option {
	return func(o *Options) {
		o.Rand = r
	}
}
