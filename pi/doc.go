// Package pi implements policy iteration with exact evaluation and modified
// policy iteration with partial evaluation sweeps.
//
// PolicyIteration alternates
//
//  1. exact evaluation: solve (I − γ·P_π)·V = R by LU decomposition
//     (gonum mat.LU);
//  2. improvement: switch π(s) only when the greedy quality is strictly
//     better than Q(s, π(s), V);
//
// and stops when a round changes no action. Its stopping rule is
// policy-based.
//
// ModifiedPolicyIteration replaces the exact solve with m synchronous sweeps
// W_{i+1}[s] = Q(s, π(s), W_i), follows them with a full Bellman backup
// sweep, and stops when successive value iterates differ by less than ε.
// Its stopping rule is value-based. With m = 0 it reduces to value iteration.
//
// Undiscounted evaluation (γ = 1) treats goal states as absorbing terminals
// whose value is their reward; without them the system is generally singular.
//
// Complexity:
//
//	– PolicyIteration:         O(I·(|S|³ + |S|·|A|·k)) time, O(|S|²) space.
//	– ModifiedPolicyIteration: O(I·(m + |A|)·|S|·k) time, O(|S|) space.
package pi
