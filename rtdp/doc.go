// Package rtdp implements the trial-based solvers RTDP, LRTDP and BRTDP.
//
// A trial starts at an initial state drawn uniformly from the model's initial
// states and walks forward: back up the current state, pick the greedy
// action, sample a successor. Only states reached by trials are ever
// updated, which focuses work on the part of the state space the start
// states can actually reach.
//
//	– RTDP:  fixed trial budget, or trials until every initial state has a
//	         residual ≤ ε.
//	– LRTDP: adds solved-state labelling; a solved state is never simulated
//	         through or backed up again, and the run ends when every initial
//	         state is solved.
//	– BRTDP: keeps admissible lower and upper bounds, samples successors in
//	         proportion to P·(upper − lower) and ends when the gap at every
//	         initial state is ≤ ε or a trial cap is hit. The policy is greedy
//	         w.r.t. the lower bound.
//
// Determinism:
//
//	All randomness comes from one *rand.Rand per run: either a caller-owned
//	source (WithRand) or an MT19937 source seeded by WithSeed (0 ⇒ default
//	seed). Equal seeds give identical trials, values and statistics.
//
// Trials are bounded by MaxDepth visited states. Convergence modes accept a
// MaxTrials safety cap; hitting it is reported through Stats.Converged.
// BRTDP always runs with a cap, DefaultBoundedMaxTrials unless one is given.
package rtdp
