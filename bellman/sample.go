package bellman

import (
	"math/rand"

	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/mdp"
)

// SampleNext draws a successor of state s under action a by inverting the
// cumulative distribution P(· | s, a) in state enumeration order against one
// uniform draw from r.
//
// If floating-point rounding leaves the cumulative sum short of the draw,
// the last state in enumeration order is returned.
//
// Complexity: O(k), k = number of successors.
func SampleNext(r *rand.Rand, m *mdp.MDP, s, a int) int {
	var (
		u   = r.Float64()
		cum float64
		t   int
	)
	for _, t = range m.Successors(a, s) {
		cum += m.Prob(a, s, t)
		if u < cum {
			return t
		}
	}
	return m.NumStates() - 1
}

// SampleWeighted draws one of support with probability weights[k]/total by
// inverting the un-normalised cumulative sum against u·total.
//
// It returns ok=false, without consuming randomness, when total ≤ 0: there is
// nothing to sample from. As in SampleNext, a draw left unmatched by rounding
// falls back to the last state in enumeration order (fallback).
//
// Complexity: O(len(support)).
func SampleWeighted(r *rand.Rand, support []int, weights []float64, total float64, fallback int) (int, bool) {
	if total <= 0 {
		return 0, false
	}
	var (
		u   = r.Float64() * total
		cum float64
		k   int
	)
	for k = range support {
		cum += weights[k]
		if u < cum {
			return support[k], true
		}
	}
	return fallback, true
}
