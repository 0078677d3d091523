package mdp

import "errors"

// ProbabilityTolerance is the absolute slack allowed when checking that a
// transition row sums to one.
const ProbabilityTolerance = 1e-9

// Sentinel errors returned by New, Builder.Build and the policy validators.
// Callers match them with errors.Is; New wraps them with the offending
// identifiers for context.
var (
	// ErrNoStates indicates that the state list is nil or empty.
	ErrNoStates = errors.New("mdp: states should have at least one state")

	// ErrEmptyStateID indicates an empty string used as a state identifier.
	ErrEmptyStateID = errors.New("mdp: empty state identifier")

	// ErrDuplicateState indicates a repeated identifier in the state list.
	ErrDuplicateState = errors.New("mdp: repeated state identifier")

	// ErrRewardMismatch indicates that the reward domain is not exactly the
	// state set, or that a reward value is NaN or ±Inf.
	ErrRewardMismatch = errors.New("mdp: reward function must define one finite value per state")

	// ErrNoTransitions indicates that the transition function is nil or empty.
	ErrNoTransitions = errors.New("mdp: transition function should have at least one action")

	// ErrEmptyActionID indicates an empty string used as an action identifier.
	ErrEmptyActionID = errors.New("mdp: empty action identifier")

	// ErrUnknownState indicates a transition that references a state outside
	// the state set.
	ErrUnknownState = errors.New("mdp: unrecognized state in transition function")

	// ErrIncompleteTransition indicates an action that does not define a
	// distribution for every origin state.
	ErrIncompleteTransition = errors.New("mdp: action must define transitions for every origin state")

	// ErrInvalidProbability indicates a negative, NaN, infinite or >1 probability.
	ErrInvalidProbability = errors.New("mdp: invalid transition probability")

	// ErrNonStochasticRow indicates a distribution whose probabilities do not
	// sum to one within ProbabilityTolerance.
	ErrNonStochasticRow = errors.New("mdp: transition probabilities must sum to 1")

	// ErrUnknownInitialState indicates an initial state outside the state set.
	ErrUnknownInitialState = errors.New("mdp: unrecognized state in initial states")

	// ErrUnknownGoalState indicates a goal state outside the state set.
	ErrUnknownGoalState = errors.New("mdp: unrecognized state in goal states")

	// ErrDuplicateInitialState indicates a repeated initial state.
	ErrDuplicateInitialState = errors.New("mdp: repeated state identifier in initial states")

	// ErrDuplicateGoalState indicates a repeated goal state.
	ErrDuplicateGoalState = errors.New("mdp: repeated state identifier in goal states")

	// ErrInvalidPolicy indicates a policy that misses a state or names an
	// action unknown to the model.
	ErrInvalidPolicy = errors.New("mdp: invalid policy")
)

// State is an opaque state identifier.
type State string

// Action is an opaque action identifier.
type Action string

// Distribution maps successor states to their probability for one fixed
// origin state and action. Missing successors have probability zero.
type Distribution map[State]float64

// Spec is the raw, unvalidated description of an enumerated MDP accepted by New.
//
// Transitions maps every action to one Distribution per origin state:
//
//	Transitions["move"]["s0"] = Distribution{"s0": 0.2, "s1": 0.8}
//
// InitialStates and GoalStates are optional.
type Spec struct {
	States        []State
	Rewards       map[State]float64
	Transitions   map[Action]map[State]Distribution
	InitialStates []State
	GoalStates    []State
}

// Policy maps every state to the action chosen there.
type Policy map[State]Action

// Equal reports whether p and q choose the same action in every state of
// both policies.
func (p Policy) Equal(q Policy) bool {
	if len(p) != len(q) {
		return false
	}
	var (
		s  State
		a  Action
		b  Action
		ok bool
	)
	for s, a = range p {
		if b, ok = q[s]; !ok || a != b {
			return false
		}
	}

	return true
}
