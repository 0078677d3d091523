package mdp

// Builder accumulates an MDP description incrementally and validates it
// once, in Build. It is the construction path used by problem-file readers.
//
// A Builder is not safe for concurrent use. The zero value is ready to use.
type Builder struct {
	spec Spec
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddStates appends states in enumeration order. Duplicates are reported by Build.
func (b *Builder) AddStates(states ...State) *Builder {
	b.spec.States = append(b.spec.States, states...)
	return b
}

// SetReward sets the reward of s, replacing any previous value.
func (b *Builder) SetReward(s State, r float64) *Builder {
	if b.spec.Rewards == nil {
		b.spec.Rewards = make(map[State]float64)
	}
	b.spec.Rewards[s] = r
	return b
}

// DeclareAction registers a so that it appears in the transition table even
// before any probability is set. Build reports it as incomplete if no row is
// added afterwards.
func (b *Builder) DeclareAction(a Action) *Builder {
	if b.spec.Transitions == nil {
		b.spec.Transitions = make(map[Action]map[State]Distribution)
	}
	if _, ok := b.spec.Transitions[a]; !ok {
		b.spec.Transitions[a] = make(map[State]Distribution)
	}
	return b
}

// SetTransition sets P(to | from, a) = p, replacing any previous value.
func (b *Builder) SetTransition(a Action, from, to State, p float64) *Builder {
	b.DeclareAction(a)
	row, ok := b.spec.Transitions[a][from]
	if !ok {
		row = make(Distribution)
		b.spec.Transitions[a][from] = row
	}
	row[to] = p
	return b
}

// AddInitialStates appends initial states.
func (b *Builder) AddInitialStates(states ...State) *Builder {
	b.spec.InitialStates = append(b.spec.InitialStates, states...)
	return b
}

// AddGoalStates appends goal states.
func (b *Builder) AddGoalStates(states ...State) *Builder {
	b.spec.GoalStates = append(b.spec.GoalStates, states...)
	return b
}

// Spec returns the accumulated description. The returned value shares maps
// with the Builder.
func (b *Builder) Spec() Spec {
	return b.spec
}

// Build validates the accumulated description; see New.
func (b *Builder) Build() (*MDP, error) {
	return New(b.spec)
}
