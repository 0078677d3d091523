// Package planning is a toolkit for solving enumerated Markov Decision
// Processes: build a validated model once, then hand it to any solver.
//
// What is inside?
//
//	mdp/      immutable enumerated MDP, Builder, Policy, validation errors
//	value/    value functions aligned to state order, lazy heuristics
//	bellman/  the shared Bellman operator, samplers, Result and Stats
//	vi/       finite- and infinite-horizon value iteration
//	pi/       policy iteration (exact LU evaluation) and modified PI
//	rtdp/     RTDP, Labeled RTDP and Bounded RTDP
//	solver/   tagged solver configurations, one dispatcher, YAML params
//	problem/  text and JSONC problem files
//	report/   JSON/CBOR summaries, residual charts, policy tables
//
// The command mdpsolve (cmd/mdpsolve) wires them together.
//
// Guarantees:
//
//   - A model is validated once and never mutated, so it can be shared by
//     concurrent solver runs.
//   - Ties between actions are broken by sorted action order; trial solvers
//     draw from one owned, seeded source. Equal inputs give equal outputs.
//   - Every solver reports iterations, Bellman backups and, where it has
//     one, the residual history.
//
// Quick example:
//
//	m, err := mdp.NewBuilder().
//		AddStates("start", "goal").
//		SetReward("start", -1).
//		SetReward("goal", 0).
//		SetTransition("go", "start", "goal", 1).
//		SetTransition("go", "goal", "goal", 1).
//		AddInitialStates("start").
//		AddGoalStates("goal").
//		Build()
//	if err != nil {
//		log.Fatal(err)
//	}
//	res, err := solver.Solve(m, solver.Labeled{Gamma: 1, Epsilon: 1e-6})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(res.Policy["start"], res.Stats.Backups)
package planning
