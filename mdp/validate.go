// Package mdp - validation helpers used by New.
//
// Each helper validates one part of a Spec and returns the normalized,
// index-aligned representation stored in MDP. They are deterministic and
// side-effect free, and report only sentinels from types.go (wrapped with
// the offending identifier).
package mdp

import (
	"fmt"
	"math"
	"slices"
)

// buildStates enforces a non-empty, duplicate-free list of non-empty
// identifiers and returns it together with its index.
//
// Complexity: O(n) time and space.
func buildStates(states []State) ([]State, map[State]int, error) {
	if len(states) == 0 {
		return nil, nil, ErrNoStates
	}

	index := make(map[State]int, len(states))

	var (
		i  int
		s  State
		ok bool
	)
	for i, s = range states {
		if s == "" {
			return nil, nil, ErrEmptyStateID
		}
		if _, ok = index[s]; ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrDuplicateState, s)
		}
		index[s] = i
	}

	return slices.Clone(states), index, nil
}

// buildRewards requires exactly one finite reward per state and returns the
// rewards aligned to state order.
//
// Complexity: O(n).
func buildRewards(rewards map[State]float64, states []State, index map[State]int) ([]float64, error) {
	if rewards == nil {
		return nil, fmt.Errorf("%w: reward function is not defined", ErrRewardMismatch)
	}

	var (
		s  State
		r  float64
		ok bool
	)
	// Unknown keys first: they explain a size mismatch better than a missing key.
	for s = range rewards {
		if _, ok = index[s]; !ok {
			return nil, fmt.Errorf("%w: invalid state %q in reward function", ErrRewardMismatch, s)
		}
	}

	out := make([]float64, len(states))
	for i := range states {
		s = states[i]
		if r, ok = rewards[s]; !ok {
			return nil, fmt.Errorf("%w: no reward for state %q", ErrRewardMismatch, s)
		}
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, fmt.Errorf("%w: reward of %q is %g", ErrRewardMismatch, s, r)
		}
		out[i] = r
	}

	return out, nil
}

// buildSubset validates an optional subset of the state set (initial or goal
// states). It returns the indices in the order given plus a membership mask.
// A nil or empty subset is valid.
//
// Complexity: O(k) for k identifiers, plus O(n) for the mask.
func buildSubset(subset []State, index map[State]int, unknown, duplicate error) ([]int, []bool, error) {
	mask := make([]bool, len(index))
	out := make([]int, 0, len(subset))

	var (
		s  State
		i  int
		ok bool
	)
	for _, s = range subset {
		if i, ok = index[s]; !ok {
			return nil, nil, fmt.Errorf("%w: %q", unknown, s)
		}
		if mask[i] {
			return nil, nil, fmt.Errorf("%w: %q", duplicate, s)
		}
		mask[i] = true
		out = append(out, i)
	}

	return out, mask, nil
}
