// Package vi implements synchronous value iteration over an enumerated MDP.
//
// Two entry points:
//
//	– FiniteHorizon:   exactly H backward sweeps from the zero function at the
//	                   terminal horizon. No failure mode beyond argument checks.
//	– InfiniteHorizon: sweeps V_{k+1}[s] = Backup(s, V_k) until
//	                   max_s |V_{k+1}[s] − V_k[s]| < ε.
//
// Every sweep reads only the previous iterate and writes a fresh one, so each
// iteration is exactly one synchronous application of the Bellman operator.
// The returned policy is greedy with respect to the final value function.
//
// Complexity:
//
//	– Time:  O(K·|S|·|A|·k), K = sweeps, k = mean successors per (s, a).
//	– Space: O(|S|) for the two iterates.
//
// Errors (sentinel):
//
//	– bellman.ErrNilModel, bellman.ErrBadGamma from the operator.
//	– ErrBadHorizon         if horizon < 0.
//	– ErrBadEpsilon         if ε ≤ 0 or NaN.
//	– ErrBadMaxIterations   if MaxIterations < 0.
//	– value.ErrModelMismatch if the warm start belongs to another model.
//
// Example usage:
//
//	res, err := vi.InfiniteHorizon(m, 0.9, 1e-6, vi.WithMaxIterations(10_000))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Policy, res.Stats.Iterations)
package vi
