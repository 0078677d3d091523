// Package testmdp builds the small reference models shared by the solver
// tests. Every constructor panics on a construction error: the fixtures are
// static and a failure means the fixture itself is broken.
package testmdp

import (
	"fmt"
	"math/rand"

	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/mdp"
)

func must(m *mdp.MDP, err error) *mdp.MDP {
	if err != nil {
		panic(fmt.Sprintf("testmdp: %v", err))
	}
	return m
}

// Absorbing is two states {s0, s1} with one action "a": s0 → s0|s1 with
// probability 0.5 each, s1 → s1, and zero rewards. V* = 0 everywhere.
func Absorbing() *mdp.MDP {
	return must(mdp.NewBuilder().
		AddStates("s0", "s1").
		SetReward("s0", 0).
		SetReward("s1", 0).
		SetTransition("a", "s0", "s0", 0.5).
		SetTransition("a", "s0", "s1", 0.5).
		SetTransition("a", "s1", "s1", 1).
		AddInitialStates("s0").
		Build())
}

// Chain is the deterministic chain s0 → s1 with R(s0) = −1, R(s1) = 0 and
// s1 a self-looping goal. With γ = 1, V*(s0) = −1 and V*(s1) = 0.
func Chain() *mdp.MDP {
	return must(mdp.NewBuilder().
		AddStates("s0", "s1").
		SetReward("s0", -1).
		SetReward("s1", 0).
		SetTransition("a", "s0", "s1", 1).
		SetTransition("a", "s1", "s1", 1).
		AddInitialStates("s0").
		AddGoalStates("s1").
		Build())
}

// MoveStay has states {a, b} with R(a) = 0, R(b) = 1 and two deterministic
// actions: "stay" keeps the state, "move" swaps it. With γ = 0.5 the optimal
// values are V*(a) = 1, V*(b) = 2 and the optimal policy is a→move, b→stay.
func MoveStay() *mdp.MDP {
	return must(mdp.NewBuilder().
		AddStates("a", "b").
		SetReward("a", 0).
		SetReward("b", 1).
		SetTransition("stay", "a", "a", 1).
		SetTransition("stay", "b", "b", 1).
		SetTransition("move", "a", "b", 1).
		SetTransition("move", "b", "a", 1).
		AddInitialStates("a").
		Build())
}

// Ties has one state and two actions with identical outcomes; the greedy
// action must be the first in sorted order ("left").
func Ties() *mdp.MDP {
	return must(mdp.NewBuilder().
		AddStates("only").
		SetReward("only", 1).
		SetTransition("right", "only", "only", 1).
		SetTransition("left", "only", "only", 1).
		AddInitialStates("only").
		Build())
}

// Random builds a dense random model with n states and k actions. Rewards
// are drawn in [−1, 1]; state 0 is initial and state n−1 a goal.
func Random(seed int64, n, k int) *mdp.MDP {
	r := rand.New(rand.NewSource(seed))
	b := mdp.NewBuilder()

	states := make([]mdp.State, n)
	for i := range states {
		states[i] = mdp.State(fmt.Sprintf("s%02d", i))
		b.AddStates(states[i]).SetReward(states[i], 2*r.Float64()-1)
	}

	var (
		a    int
		i, j int
		row  []float64
		sum  float64
	)
	row = make([]float64, n)
	for a = 0; a < k; a++ {
		act := mdp.Action(fmt.Sprintf("a%d", a))
		for i = 0; i < n; i++ {
			sum = 0
			for j = 0; j < n; j++ {
				// Sparse-ish rows: roughly half the entries are zero.
				if r.Float64() < 0.5 && j != i {
					row[j] = 0
					continue
				}
				row[j] = r.Float64()
				sum += row[j]
			}
			for j = 0; j < n; j++ {
				if row[j] > 0 {
					b.SetTransition(act, states[i], states[j], row[j]/sum)
				}
			}
		}
	}

	return must(b.AddInitialStates(states[0]).AddGoalStates(states[n-1]).Build())
}
