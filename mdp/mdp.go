package mdp

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// MDP is a validated, immutable enumerated Markov Decision Process.
//
// States keep the order in which they were supplied; actions are sorted
// lexicographically. Both orders are the enumeration orders used by every
// solver for tie-breaking and sampling, so results are reproducible.
//
// An MDP is never mutated after New returns and may be shared by any number
// of goroutines and solver invocations without synchronization.
type MDP struct {
	states  []State
	actions []Action

	stateIndex  map[State]int
	actionIndex map[Action]int

	rewards []float64

	// transitions[a] is the |S|×|S| row-stochastic matrix of action a.
	transitions []*mat.Dense

	// successors[a][s] lists the states reachable from s under a
	// (probability > 0), in ascending state index.
	successors [][][]int

	initial []int
	goal    []int
	isGoal  []bool
	isInit  []bool
}

// New validates spec and builds an immutable MDP.
//
// Validation order: states -> rewards -> transitions -> initial states ->
// goal states. The first violation is returned as a sentinel from types.go
// wrapped with the offending identifiers.
//
// Complexity: O(|A|·|S|²) time and memory (dense matrices per action).
func New(spec Spec) (*MDP, error) {
	var err error

	m := &MDP{}

	// Stage 1: states.
	if m.states, m.stateIndex, err = buildStates(spec.States); err != nil {
		return nil, err
	}

	// Stage 2: rewards.
	if m.rewards, err = buildRewards(spec.Rewards, m.states, m.stateIndex); err != nil {
		return nil, err
	}

	// Stage 3: actions and transition matrices.
	if err = m.buildTransitions(spec.Transitions); err != nil {
		return nil, err
	}

	// Stage 4: optional initial and goal subsets.
	if m.initial, m.isInit, err = buildSubset(spec.InitialStates, m.stateIndex, ErrUnknownInitialState, ErrDuplicateInitialState); err != nil {
		return nil, err
	}
	if m.goal, m.isGoal, err = buildSubset(spec.GoalStates, m.stateIndex, ErrUnknownGoalState, ErrDuplicateGoalState); err != nil {
		return nil, err
	}

	return m, nil
}

// buildTransitions fills actions, transitions and successors from the raw table.
func (m *MDP) buildTransitions(table map[Action]map[State]Distribution) error {
	if len(table) == 0 {
		return ErrNoTransitions
	}

	var a Action
	m.actions = make([]Action, 0, len(table))
	for a = range table {
		if a == "" {
			return ErrEmptyActionID
		}
		m.actions = append(m.actions, a)
	}
	slices.Sort(m.actions)

	n := len(m.states)
	m.actionIndex = make(map[Action]int, len(m.actions))
	m.transitions = make([]*mat.Dense, len(m.actions))
	m.successors = make([][][]int, len(m.actions))

	var (
		ai  int
		err error
	)
	for ai, a = range m.actions {
		m.actionIndex[a] = ai
		m.transitions[ai], m.successors[ai], err = buildMatrix(a, table[a], m.states, m.stateIndex, n)
		if err != nil {
			return err
		}
	}

	return nil
}

// buildMatrix validates the distributions of one action and returns its dense
// matrix together with the sparse successor lists.
func buildMatrix(a Action, rows map[State]Distribution, states []State, index map[State]int, n int) (*mat.Dense, [][]int, error) {
	var (
		from State
		to   State
		p    float64
		ok   bool
	)

	// Unknown origins are reported before missing ones.
	for from = range rows {
		if _, ok = index[from]; !ok {
			return nil, nil, fmt.Errorf("%w: origin %q in action %q", ErrUnknownState, from, a)
		}
	}

	dense := mat.NewDense(n, n, nil)
	succ := make([][]int, n)

	var (
		i, j int
		dist Distribution
		sum  float64
	)
	for i = 0; i < n; i++ {
		from = states[i]
		if dist, ok = rows[from]; !ok || len(dist) == 0 {
			return nil, nil, fmt.Errorf("%w: action %q has no transitions from %q", ErrIncompleteTransition, a, from)
		}

		sum = 0
		for to, p = range dist {
			if j, ok = index[to]; !ok {
				return nil, nil, fmt.Errorf("%w: destination %q from %q in action %q", ErrUnknownState, to, from, a)
			}
			if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 || p > 1+ProbabilityTolerance {
				return nil, nil, fmt.Errorf("%w: P(%q|%q,%q)=%g", ErrInvalidProbability, to, from, a, p)
			}
			dense.Set(i, j, p)
			sum += p
		}
		if math.Abs(sum-1) > ProbabilityTolerance {
			return nil, nil, fmt.Errorf("%w: action %q from %q sums to %g", ErrNonStochasticRow, a, from, sum)
		}

		// Successor list in ascending index order, skipping zero entries.
		for j = 0; j < n; j++ {
			if dense.At(i, j) > 0 {
				succ[i] = append(succ[i], j)
			}
		}
	}

	return dense, succ, nil
}

// NumStates returns |S|.
func (m *MDP) NumStates() int { return len(m.states) }

// NumActions returns |A|.
func (m *MDP) NumActions() int { return len(m.actions) }

// States returns a copy of the states in enumeration order.
func (m *MDP) States() []State { return slices.Clone(m.states) }

// Actions returns a copy of the actions in enumeration (sorted) order.
func (m *MDP) Actions() []Action { return slices.Clone(m.actions) }

// State returns the state at index i. It panics if i is out of range.
func (m *MDP) State(i int) State { return m.states[i] }

// Action returns the action at index a. It panics if a is out of range.
func (m *MDP) Action(a int) Action { return m.actions[a] }

// StateIndex returns the enumeration index of s.
func (m *MDP) StateIndex(s State) (int, bool) {
	i, ok := m.stateIndex[s]
	return i, ok
}

// ActionIndex returns the enumeration index of a.
func (m *MDP) ActionIndex(a Action) (int, bool) {
	i, ok := m.actionIndex[a]
	return i, ok
}

// Reward returns the reward of the state at index i.
func (m *MDP) Reward(i int) float64 { return m.rewards[i] }

// RewardOf returns the reward of state s.
func (m *MDP) RewardOf(s State) (float64, bool) {
	i, ok := m.stateIndex[s]
	if !ok {
		return 0, false
	}
	return m.rewards[i], true
}

// RewardBounds returns the smallest and largest reward of the model.
func (m *MDP) RewardBounds() (float64, float64) {
	return slices.Min(m.rewards), slices.Max(m.rewards)
}

// Prob returns P(to | from, a) by indices.
func (m *MDP) Prob(a, from, to int) float64 {
	return m.transitions[a].At(from, to)
}

// Successors returns the indices of the states reachable from state s under
// action a, in ascending order. The slice is shared; callers must not modify it.
// It is never empty.
func (m *MDP) Successors(a, s int) []int {
	return m.successors[a][s]
}

// TransitionMatrix returns a copy of the transition matrix of action a.
func (m *MDP) TransitionMatrix(a int) *mat.Dense {
	return mat.DenseCopyOf(m.transitions[a])
}

// TransitionRow copies row s of action a's matrix into dst (allocating when
// dst is nil) and returns it.
func (m *MDP) TransitionRow(dst []float64, a, s int) []float64 {
	n := len(m.states)
	if cap(dst) < n {
		dst = make([]float64, n)
	}
	dst = dst[:n]
	mat.Row(dst, s, m.transitions[a])
	return dst
}

// RewardVector returns the rewards as a fresh column vector in state order.
func (m *MDP) RewardVector() *mat.VecDense {
	return mat.NewVecDense(len(m.rewards), slices.Clone(m.rewards))
}

// InitialStates returns a copy of the initial states.
func (m *MDP) InitialStates() []State { return m.pick(m.initial) }

// GoalStates returns a copy of the goal states.
func (m *MDP) GoalStates() []State { return m.pick(m.goal) }

// InitialIndices returns the initial state indices. The slice is shared;
// callers must not modify it.
func (m *MDP) InitialIndices() []int { return m.initial }

// IsGoal reports whether the state at index i is a goal state.
func (m *MDP) IsGoal(i int) bool { return m.isGoal[i] }

// IsInitial reports whether the state at index i is an initial state.
func (m *MDP) IsInitial(i int) bool { return m.isInit[i] }

func (m *MDP) pick(idx []int) []State {
	out := make([]State, len(idx))
	for k, i := range idx {
		out[k] = m.states[i]
	}
	return out
}

// ValidatePolicy checks that p assigns a known action to every state.
func (m *MDP) ValidatePolicy(p Policy) error {
	var (
		s  State
		a  Action
		ok bool
	)
	for _, s = range m.states {
		if a, ok = p[s]; !ok {
			return fmt.Errorf("%w: no action for state %q", ErrInvalidPolicy, s)
		}
		if _, ok = m.actionIndex[a]; !ok {
			return fmt.Errorf("%w: unknown action %q for state %q", ErrInvalidPolicy, a, s)
		}
	}
	for s = range p {
		if _, ok = m.stateIndex[s]; !ok {
			return fmt.Errorf("%w: unknown state %q", ErrInvalidPolicy, s)
		}
	}

	return nil
}

// PolicyIndices converts a validated policy to per-state action indices.
func (m *MDP) PolicyIndices(p Policy) ([]int, error) {
	if err := m.ValidatePolicy(p); err != nil {
		return nil, err
	}
	out := make([]int, len(m.states))
	for i, s := range m.states {
		out[i] = m.actionIndex[p[s]]
	}
	return out, nil
}

// PolicyFromIndices builds a Policy from per-state action indices.
func (m *MDP) PolicyFromIndices(actions []int) Policy {
	p := make(Policy, len(m.states))
	for i, s := range m.states {
		p[s] = m.actions[actions[i]]
	}
	return p
}
