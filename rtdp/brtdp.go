package rtdp

import (
	"fmt"
	"math"

	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/bellman"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/mdp"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/value"
)

// bounder carries the BRTDP bound pair and reusable buffers.
type bounder struct {
	*runner

	lower, upper *value.Function
	tau          float64

	visited []int
	weights []float64
}

// BRTDP runs Bounded RTDP until upper[s] − lower[s] ≤ epsilon at every
// initial state.
//
// Each trial step backs up upper at the current state, updates lower with the
// quality of the lower-greedy action a and samples the successor t with
// weight P(t | s, a)·(upper[t] − lower[t]). Descent stops when that total
// weight is 0, when it falls below gap(s0)/tau for every initial state s0, or
// after MaxDepth visited states. The visited states are then backed up on
// both bounds in reverse order (two backups per state).
//
// Only lower-greedy actions are simulated. When the action maximising the
// upper bound at an initial state is never lower-greedy, its successors are
// never visited, the upper bound there stops improving and the gap stays
// above epsilon. The run then ends at MaxTrials (DefaultBoundedMaxTrials when
// unset) with Stats.Converged == false.
//
// Result.Values is the lower bound, Result.Upper the upper bound and
// Result.Policy is greedy w.r.t. the lower bound. Stats.MaxResiduals holds
// the largest initial-state gap after each trial.
func BRTDP(m *mdp.MDP, gamma, epsilon, tau float64, opts ...Option) (bellman.Result, error) {
	r, err := newRunner(m, gamma, opts)
	if err != nil {
		return bellman.Result{}, err
	}
	if err = validEpsilon(epsilon); err != nil {
		return bellman.Result{}, err
	}
	if math.IsNaN(tau) || tau <= 0 {
		return bellman.Result{}, fmt.Errorf("%w: got %g", ErrBadTau, tau)
	}

	if r.opts.MaxTrials == 0 {
		r.opts.MaxTrials = DefaultBoundedMaxTrials
	}

	b := &bounder{runner: r, tau: tau}
	if b.lower, b.upper, err = r.bounds(gamma); err != nil {
		return bellman.Result{}, err
	}

	gap := b.initialGap()
	for gap > epsilon {
		if r.capped() {
			r.opts.Logger.Warn("brtdp stopped by trial cap", "trials", r.stats.Iterations, "gap", gap)
			break
		}
		r.beginTrial()
		depth := b.trial()

		gap = b.initialGap()
		r.stats.MaxResiduals = append(r.stats.MaxResiduals, gap)
		r.opts.Logger.Debug("brtdp trial",
			"trial", r.stats.Iterations, "depth", depth, "gap", gap, "backups", r.stats.Backups)
	}
	r.stats.Converged = gap <= epsilon

	r.opts.Logger.Info("brtdp done",
		"trials", r.stats.Iterations, "backups", r.stats.Backups, "converged", r.stats.Converged)

	return bellman.Result{
		Policy: r.op.GreedyPolicy(b.lower),
		Values: b.lower,
		Upper:  b.upper,
		Stats:  r.stats,
	}, nil
}

// bounds returns copies of the configured bounds, filling a missing side
// with R_min/(1−γ) or R_max/(1−γ) when γ < 1.
func (r *runner) bounds(gamma float64) (*value.Function, *value.Function, error) {
	var (
		lower, upper *value.Function
		rmin, rmax   = r.model.RewardBounds()
	)
	switch {
	case r.opts.Lower != nil:
		lower = r.opts.Lower.Copy()
	case gamma < 1:
		lower = value.Constant(r.model, rmin/(1-gamma))
	default:
		return nil, nil, fmt.Errorf("%w: lower bound missing", ErrBoundsRequired)
	}
	switch {
	case r.opts.Upper != nil:
		upper = r.opts.Upper.Copy()
	case gamma < 1:
		upper = value.Constant(r.model, rmax/(1-gamma))
	default:
		return nil, nil, fmt.Errorf("%w: upper bound missing", ErrBoundsRequired)
	}

	for s := 0; s < r.model.NumStates(); s++ {
		if lower.At(s) > upper.At(s) {
			return nil, nil, fmt.Errorf("%w: state %q (%g > %g)",
				ErrInvertedBounds, r.model.State(s), lower.At(s), upper.At(s))
		}
	}
	return lower, upper, nil
}

// initialGap returns the largest upper − lower over the initial states.
func (b *bounder) initialGap() float64 {
	var worst float64
	for _, s := range b.initial {
		worst = math.Max(worst, b.upper.At(s)-b.lower.At(s))
	}
	return worst
}

// boundReached reports whether total < gap(s0)/tau holds for every initial
// state s0.
func (b *bounder) boundReached(total float64) bool {
	for _, s := range b.initial {
		if total >= (b.upper.At(s)-b.lower.At(s))/b.tau {
			return false
		}
	}
	return true
}

// trial runs one BRTDP trial and returns the number of visited states.
func (b *bounder) trial() int {
	var (
		s       = b.pickInitial()
		a       int
		t       int
		w       float64
		total   float64
		support []int
		ok      bool
	)
	b.visited = b.visited[:0]
	for {
		b.visited = append(b.visited, s)
		b.visit(s)

		b.backup(s, b.upper)
		a, _ = b.op.GreedyAction(s, b.lower)
		b.lower.Set(s, b.op.Quality(s, a, b.lower))

		// Negative gaps only arise from inadmissible bounds; they carry no weight.
		support = b.model.Successors(a, s)
		b.weights = b.weights[:0]
		total = 0
		for _, t = range support {
			w = b.model.Prob(a, s, t) * math.Max(0, b.upper.At(t)-b.lower.At(t))
			b.weights = append(b.weights, w)
			total += w
		}

		if total <= 0 || b.boundReached(total) || len(b.visited) >= b.opts.MaxDepth {
			break
		}
		if s, ok = bellman.SampleWeighted(b.rand, support, b.weights, total, support[len(support)-1]); !ok {
			break
		}
	}

	for k := len(b.visited) - 1; k >= 0; k-- {
		b.backup(b.visited[k], b.lower)
		b.backup(b.visited[k], b.upper)
	}
	return len(b.visited)
}

// Bounds returns the discounted default bounds R_min/(1−γ) and R_max/(1−γ)
// for m, the values BRTDP starts from when no bounds are given.
func Bounds(m *mdp.MDP, gamma float64) (lower, upper *value.Function, err error) {
	if _, err = bellman.New(m, gamma); err != nil {
		return nil, nil, err
	}
	if gamma == 1 {
		return nil, nil, ErrBoundsRequired
	}
	r := &runner{model: m}
	return r.bounds(gamma)
}
