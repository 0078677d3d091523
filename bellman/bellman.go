// Package bellman implements the Bellman optimality operator shared by every
// solver:
//
//	Quality(s, a, V) = R(s) + γ · Σ_{s′} P(s′ | s, a) · V(s′)
//	Backup(s, V)     = max_a Quality(s, a, V)
//	GreedyAction(s, V) = argmax_a Quality(s, a, V)
//
// Ties in GreedyAction are broken by action enumeration order (the first
// maximal action wins), which makes every solver reproducible.
//
// All functions are pure: they read the immutable model and a value function
// snapshot and never write to either.
package bellman

import (
	"fmt"
	"math"

	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/mdp"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/value"
)

// Operator evaluates Bellman quantities for one model and discount factor.
// It is stateless beyond its configuration and safe for concurrent use as
// long as the value functions passed to it are not shared.
type Operator struct {
	model *mdp.MDP
	gamma float64
}

// New validates the discount factor and returns an Operator.
func New(m *mdp.MDP, gamma float64) (*Operator, error) {
	if m == nil {
		return nil, ErrNilModel
	}
	if math.IsNaN(gamma) || gamma <= 0 || gamma > 1 {
		return nil, fmt.Errorf("%w: got %g", ErrBadGamma, gamma)
	}
	return &Operator{model: m, gamma: gamma}, nil
}

// Model returns the operator's model.
func (op *Operator) Model() *mdp.MDP { return op.model }

// Gamma returns the discount factor.
func (op *Operator) Gamma() float64 { return op.gamma }

// Quality returns the expected return of taking action a in state s and
// following v afterwards.
//
// Complexity: O(k), k = number of successors of (s, a).
func (op *Operator) Quality(s, a int, v *value.Function) float64 {
	var (
		t   int
		sum float64
	)
	for _, t = range op.model.Successors(a, s) {
		sum += op.model.Prob(a, s, t) * v.At(t)
	}
	return op.model.Reward(s) + op.gamma*sum
}

// GreedyAction returns the first action maximising Quality(s, ·, v) and
// that maximal quality.
//
// Complexity: O(|A|·k).
func (op *Operator) GreedyAction(s int, v *value.Function) (int, float64) {
	var (
		a    int
		q    float64
		best = 0
		bq   = math.Inf(-1)
	)
	for a = 0; a < op.model.NumActions(); a++ {
		q = op.Quality(s, a, v)
		if q > bq {
			best, bq = a, q
		}
	}
	return best, bq
}

// Backup returns max_a Quality(s, a, v).
func (op *Operator) Backup(s int, v *value.Function) float64 {
	_, q := op.GreedyAction(s, v)
	return q
}

// Residual returns |v(s) − Backup(s, v)|.
func (op *Operator) Residual(s int, v *value.Function) float64 {
	return math.Abs(v.At(s) - op.Backup(s, v))
}

// MaxResidual returns the largest Residual over the given state indices,
// or 0 when states is empty.
func (op *Operator) MaxResidual(states []int, v *value.Function) float64 {
	var (
		s     int
		r     float64
		worst float64
	)
	for _, s = range states {
		if r = op.Residual(s, v); r > worst {
			worst = r
		}
	}
	return worst
}

// GreedyIndices returns the greedy action index of every state.
//
// Complexity: O(|S|·|A|·k).
func (op *Operator) GreedyIndices(v *value.Function) []int {
	out := make([]int, op.model.NumStates())
	for s := range out {
		out[s], _ = op.GreedyAction(s, v)
	}
	return out
}

// GreedyPolicy returns the policy that is greedy with respect to v.
func (op *Operator) GreedyPolicy(v *value.Function) mdp.Policy {
	return op.model.PolicyFromIndices(op.GreedyIndices(v))
}
