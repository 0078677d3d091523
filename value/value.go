// Package value provides the mutable value function V: State → ℝ used by
// every solver.
//
// A Function is bound to one *mdp.MDP and backed by a []float64 aligned to
// the model's state order, so solvers read and write by index in O(1).
// Reads may be lazily initialised by a heuristic, evaluated at most once per
// state on first access.
//
// A Function is owned by a single solver invocation and is not safe for
// concurrent use.
package value

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/mdp"
)

var (
	// ErrNilModel indicates a nil *mdp.MDP.
	ErrNilModel = errors.New("value: model is nil")

	// ErrUnknownState indicates a state identifier outside the model.
	ErrUnknownState = errors.New("value: unknown state")

	// ErrIncomplete indicates a warm-start map that misses some state.
	ErrIncomplete = errors.New("value: missing value for state")

	// ErrModelMismatch indicates a value function built for another model.
	ErrModelMismatch = errors.New("value: value function belongs to another model")

	// ErrDimensionMismatch indicates a vector whose length differs from |S|.
	ErrDimensionMismatch = errors.New("value: dimension mismatch")
)

// Heuristic supplies the initial estimate of a state.
type Heuristic func(s mdp.State) float64

// Function is a value function over the states of one model.
type Function struct {
	model     *mdp.MDP
	values    []float64
	known     []bool // nil when no heuristic is pending
	heuristic Heuristic
}

// New returns the zero value function for m.
func New(m *mdp.MDP) *Function {
	return &Function{model: m, values: make([]float64, m.NumStates())}
}

// Constant returns a value function with every state set to c.
func Constant(m *mdp.MDP, c float64) *Function {
	f := New(m)
	for i := range f.values {
		f.values[i] = c
	}
	return f
}

// WithHeuristic returns a value function whose entries are initialised
// lazily by h, at most once per state, on first read.
func WithHeuristic(m *mdp.MDP, h Heuristic) *Function {
	f := New(m)
	if h != nil {
		f.heuristic = h
		f.known = make([]bool, len(f.values))
	}
	return f
}

// FromMap builds a value function from explicit per-state values; every
// state of m must be present and no other key is allowed.
func FromMap(m *mdp.MDP, values map[mdp.State]float64) (*Function, error) {
	if m == nil {
		return nil, ErrNilModel
	}
	f := New(m)

	var (
		s  mdp.State
		v  float64
		i  int
		ok bool
	)
	for s = range values {
		if _, ok = m.StateIndex(s); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownState, s)
		}
	}
	for i = 0; i < m.NumStates(); i++ {
		s = m.State(i)
		if v, ok = values[s]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrIncomplete, s)
		}
		f.values[i] = v
	}

	return f, nil
}

// Model returns the model f is bound to.
func (f *Function) Model() *mdp.MDP { return f.model }

// Len returns the number of states.
func (f *Function) Len() int { return len(f.values) }

// At returns the value of the state at index i, evaluating the heuristic on
// first access.
func (f *Function) At(i int) float64 {
	if f.known != nil && !f.known[i] {
		f.values[i] = f.heuristic(f.model.State(i))
		f.known[i] = true
	}
	return f.values[i]
}

// Set writes the value of the state at index i.
func (f *Function) Set(i int, v float64) {
	f.values[i] = v
	if f.known != nil {
		f.known[i] = true
	}
}

// Value returns the value of state s.
func (f *Function) Value(s mdp.State) (float64, bool) {
	i, ok := f.model.StateIndex(s)
	if !ok {
		return 0, false
	}
	return f.At(i), true
}

// SetValue writes the value of state s.
func (f *Function) SetValue(s mdp.State, v float64) error {
	i, ok := f.model.StateIndex(s)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownState, s)
	}
	f.Set(i, v)
	return nil
}

// Copy returns a deep copy; pending heuristic entries stay pending in both.
func (f *Function) Copy() *Function {
	c := &Function{
		model:     f.model,
		values:    append([]float64(nil), f.values...),
		heuristic: f.heuristic,
	}
	if f.known != nil {
		c.known = append([]bool(nil), f.known...)
	}
	return c
}

// CopyFrom overwrites f with the contents of src, reusing f's storage.
// Both must be bound to the same model.
func (f *Function) CopyFrom(src *Function) {
	copy(f.values, src.values)
	if src.known != nil {
		if f.known == nil {
			f.known = make([]bool, len(src.known))
		}
		copy(f.known, src.known)
	} else {
		f.known = nil
	}
	f.heuristic = src.heuristic
}

// Map materialises every entry and returns the values keyed by state.
func (f *Function) Map() map[mdp.State]float64 {
	out := make(map[mdp.State]float64, len(f.values))
	for i := range f.values {
		out[f.model.State(i)] = f.At(i)
	}
	return out
}

// Vector materialises every entry and returns them as a fresh column vector
// in state order.
func (f *Function) Vector() *mat.VecDense {
	data := make([]float64, len(f.values))
	for i := range data {
		data[i] = f.At(i)
	}
	return mat.NewVecDense(len(data), data)
}

// SetVector overwrites every entry from v.
func (f *Function) SetVector(v mat.Vector) error {
	if v.Len() != len(f.values) {
		return fmt.Errorf("%w: vector of length %d for %d states", ErrDimensionMismatch, v.Len(), len(f.values))
	}
	for i := range f.values {
		f.Set(i, v.AtVec(i))
	}
	return nil
}

// CheckModel reports ErrModelMismatch when f is bound to a model other than m.
func CheckModel(f *Function, m *mdp.MDP) error {
	if f.model != m {
		return ErrModelMismatch
	}
	return nil
}

// MaxResidual returns max_s |a[s] − b[s]|. Both functions must be bound to
// the same model.
//
// Complexity: O(|S|).
func MaxResidual(a, b *Function) float64 {
	var (
		i     int
		d     float64
		worst float64
	)
	for i = 0; i < a.Len(); i++ {
		d = math.Abs(a.At(i) - b.At(i))
		if d > worst {
			worst = d
		}
	}
	return worst
}
