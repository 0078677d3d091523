// Package problem reads and writes MDP problem files.
//
// Two formats are supported.
//
// The section-based text format:
//
//	states
//		s0, s1
//	endstates
//	action go
//		s0 s1 1.0
//		s1 s1 1.0
//	endaction
//	reward
//		s0 -1
//		s1 0
//	endreward
//	initialstate
//		s0
//	endinitialstate
//	goalstate
//		s1
//	endgoalstate
//
// Sections may appear in any order; blank lines and lines starting with '#'
// are ignored. An action section lists "from to probability" triples.
//
// The JSONC format (JSON with comments and trailing commas):
//
//	{
//	  "states": ["s0", "s1"],
//	  "rewards": {"s0": -1, "s1": 0},
//	  "transitions": {"go": {"s0": {"s1": 1}, "s1": {"s1": 1}}},
//	  "initial": ["s0"], // optional
//	  "goals": ["s1"],   // optional
//	}
//
// Both readers build the model with mdp.New, so model validation errors
// (mdp.ErrNoStates, mdp.ErrNonStochasticRow, ...) pass through unchanged.
package problem
