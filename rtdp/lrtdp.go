package rtdp

import (
	"math"

	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/bellman"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/mdp"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/value"
)

// labeler carries the LRTDP labelling state and reusable buffers.
type labeler struct {
	*runner

	v       *value.Function
	epsilon float64

	solved []bool
	count  int

	// mark[s] == epoch means s is open or closed in the current checkSolved.
	mark  []int
	epoch int

	visited []int
	open    []int
	closed  []int
}

// LRTDP runs Labeled RTDP until every initial state is labelled solved.
//
// A state is solved once its residual and the residuals of every state
// reachable from it under greedy actions are ≤ epsilon. Solved states are
// permanent: trials stop when they reach one and they are never backed up
// again. Stats.Solved reports the size of the solved set and
// Stats.MaxResiduals the largest initial-state residual after each trial.
func LRTDP(m *mdp.MDP, gamma, epsilon float64, opts ...Option) (bellman.Result, error) {
	r, err := newRunner(m, gamma, opts)
	if err != nil {
		return bellman.Result{}, err
	}
	if err = validEpsilon(epsilon); err != nil {
		return bellman.Result{}, err
	}

	n := m.NumStates()
	l := &labeler{
		runner:  r,
		v:       r.start(),
		epsilon: epsilon,
		solved:  make([]bool, n),
		mark:    make([]int, n),
	}

	var residual float64
	for !l.initialSolved() {
		if r.capped() {
			r.opts.Logger.Warn("lrtdp stopped by trial cap",
				"trials", r.stats.Iterations, "solved", l.count, "residual", residual)
			break
		}
		r.beginTrial()
		depth := l.trial()

		residual = r.initialResidual(l.v)
		r.stats.MaxResiduals = append(r.stats.MaxResiduals, residual)
		r.opts.Logger.Debug("lrtdp trial",
			"trial", r.stats.Iterations, "depth", depth, "solved", l.count,
			"residual", residual, "backups", r.stats.Backups)
	}
	r.stats.Converged = l.initialSolved()
	r.stats.Solved = l.count

	r.opts.Logger.Info("lrtdp done",
		"trials", r.stats.Iterations, "backups", r.stats.Backups,
		"solved", l.count, "converged", r.stats.Converged)

	return bellman.Result{
		Policy: r.op.GreedyPolicy(l.v),
		Values: l.v,
		Stats:  r.stats,
	}, nil
}

func (l *labeler) initialSolved() bool {
	for _, s := range l.initial {
		if !l.solved[s] {
			return false
		}
	}
	return true
}

// trial walks forward until a solved state, a goal (recorded, not backed up)
// or MaxDepth visited states, then labels backwards along the walk until one
// checkSolved fails. It returns the walk length.
func (l *labeler) trial() int {
	var (
		s = l.pickInitial()
		a int
	)
	l.visited = l.visited[:0]
	for !l.solved[s] {
		l.visited = append(l.visited, s)
		l.visit(s)
		if l.model.IsGoal(s) {
			break
		}
		l.backup(s, l.v)
		a, _ = l.op.GreedyAction(s, l.v)
		s = bellman.SampleNext(l.rand, l.model, s, a)
		if len(l.visited) >= l.opts.MaxDepth {
			break
		}
	}

	depth := len(l.visited)
	for k := len(l.visited) - 1; k >= 0; k-- {
		if !l.checkSolved(l.visited[k]) {
			break
		}
	}
	return depth
}

// checkSolved explores the greedy envelope of root depth-first. If every
// explored state has residual ≤ epsilon, all of them are labelled solved;
// otherwise each explored state is backed up once, in reverse exploration
// order. States already solved are neither explored nor backed up.
func (l *labeler) checkSolved(root int) bool {
	var (
		ok   = true
		s, t int
		a    int
		q    float64
	)
	l.epoch++
	l.open = l.open[:0]
	l.closed = l.closed[:0]
	if !l.solved[root] {
		l.open = append(l.open, root)
		l.mark[root] = l.epoch
	}

	for len(l.open) > 0 {
		s = l.open[len(l.open)-1]
		l.open = l.open[:len(l.open)-1]
		l.closed = append(l.closed, s)

		a, q = l.op.GreedyAction(s, l.v)
		if math.Abs(l.v.At(s)-q) > l.epsilon {
			ok = false
			continue
		}
		for _, t = range l.model.Successors(a, s) {
			if l.solved[t] || l.mark[t] == l.epoch {
				continue
			}
			l.mark[t] = l.epoch
			l.open = append(l.open, t)
		}
	}

	if ok {
		for _, s = range l.closed {
			l.solved[s] = true
			l.count++
			if l.opts.OnSolved != nil {
				l.opts.OnSolved(l.model.State(s))
			}
		}
		return true
	}

	for k := len(l.closed) - 1; k >= 0; k-- {
		l.backup(l.closed[k], l.v)
	}
	return false
}
