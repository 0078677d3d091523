// Package mdp defines the enumerated (tabular) Markov Decision Process model
// consumed by every solver in this module.
//
// An MDP is built once from a Spec (or incrementally through a Builder),
// validated in full, and then never mutated:
//
//   - States are kept in the order supplied; actions are sorted.
//   - Rewards are defined for exactly the state set (reward(s) is collected
//     in s, independently of the action taken).
//   - Every action carries a complete row-stochastic |S|×|S| matrix
//     (gonum mat.Dense); each row sums to 1 within ProbabilityTolerance.
//   - Initial and goal states are optional, duplicate-free subsets.
//
// Solvers address states and actions by index for speed (State(i),
// Successors(a, s), Prob(a, s, t)) and translate back to identifiers only
// at their boundary (Policy, value maps).
//
// Errors (sentinel, see types.go):
//
//	ErrNoStates, ErrEmptyStateID, ErrDuplicateState, ErrRewardMismatch,
//	ErrNoTransitions, ErrEmptyActionID, ErrUnknownState,
//	ErrIncompleteTransition, ErrInvalidProbability, ErrNonStochasticRow,
//	ErrUnknownInitialState, ErrUnknownGoalState,
//	ErrDuplicateInitialState, ErrDuplicateGoalState, ErrInvalidPolicy.
//
// Example:
//
//	m, err := mdp.New(mdp.Spec{
//		States:  []mdp.State{"s0", "s1"},
//		Rewards: map[mdp.State]float64{"s0": -1, "s1": 0},
//		Transitions: map[mdp.Action]map[mdp.State]mdp.Distribution{
//			"go": {
//				"s0": {"s1": 1},
//				"s1": {"s1": 1},
//			},
//		},
//		InitialStates: []mdp.State{"s0"},
//		GoalStates:    []mdp.State{"s1"},
//	})
package mdp
