package rtdp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/bellman"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/internal/rng"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/internal/testmdp"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/mdp"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/rtdp"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/value"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/vi"
)

func TestRTDP_ChainConverges(t *testing.T) {
	m := testmdp.Chain()
	res, err := rtdp.RTDP(m, 1, rtdp.WithEpsilon(1e-6), rtdp.WithSeed(7))
	require.NoError(t, err)

	v := res.Values.Map()
	assert.InDelta(t, -1.0, v["s0"], 1e-6)
	assert.InDelta(t, 0.0, v["s1"], 1e-6)
	assert.Equal(t, 1, res.Stats.Iterations)
	assert.Equal(t, 1, res.Stats.Backups)
	assert.True(t, res.Stats.Converged)
	assert.Equal(t, mdp.Policy{"s0": "a", "s1": "a"}, res.Policy)
}

func TestRTDP_TrialBudget(t *testing.T) {
	m := testmdp.Chain()
	visits := 0
	res, err := rtdp.RTDP(m, 1, rtdp.WithTrials(5), rtdp.OnVisit(func(mdp.State) { visits++ }))
	require.NoError(t, err)

	assert.Equal(t, 5, res.Stats.Iterations)
	assert.Equal(t, 5, res.Stats.Backups)
	assert.Equal(t, 5, visits)
	assert.Len(t, res.Stats.MaxResiduals, 5)
	assert.True(t, res.Stats.Converged)
}

func TestRTDP_MaxDepthBoundsTrials(t *testing.T) {
	m := testmdp.Random(4, 10, 2)
	res, err := rtdp.RTDP(m, 0.9, rtdp.WithTrials(3), rtdp.WithMaxDepth(1))
	require.NoError(t, err)

	// The only initial state is not a goal: one backup per trial.
	assert.Equal(t, 3, res.Stats.Backups)
}

func TestRTDP_SeedDeterminism(t *testing.T) {
	m := testmdp.Random(3, 20, 3)
	run := func(opts ...rtdp.Option) bellman.Result {
		res, err := rtdp.RTDP(m, 0.9, append([]rtdp.Option{rtdp.WithTrials(50), rtdp.WithMaxDepth(30)}, opts...)...)
		require.NoError(t, err)
		return res
	}

	a := run(rtdp.WithSeed(42))
	b := run(rtdp.WithSeed(42))
	assert.Equal(t, a.Values.Map(), b.Values.Map())
	assert.Equal(t, a.Stats, b.Stats)
	assert.Equal(t, a.Policy, b.Policy)

	// A caller-owned source with the same seed reproduces the run.
	c := run(rtdp.WithRand(rng.New(42)))
	assert.Equal(t, a.Values.Map(), c.Values.Map())

	// Seed 0 is the default seed.
	d := run(rtdp.WithSeed(0))
	e := run(rtdp.WithSeed(rng.DefaultSeed))
	assert.Equal(t, d.Stats, e.Stats)
}

func TestRTDP_GoalInitialStateConverges(t *testing.T) {
	m, err := mdp.NewBuilder().
		AddStates("g").
		SetReward("g", 1).
		SetTransition("a", "g", "g", 1).
		AddInitialStates("g").
		AddGoalStates("g").
		Build()
	require.NoError(t, err)

	res, err := rtdp.RTDP(m, 0.5, rtdp.WithEpsilon(1e-6), rtdp.WithMaxTrials(1000))
	require.NoError(t, err)

	assert.True(t, res.Stats.Converged)
	assert.Equal(t, 1, res.Stats.Iterations)
	assert.Zero(t, res.Stats.Backups)
	assert.Equal(t, []float64{0}, res.Stats.MaxResiduals)
	assert.Equal(t, map[mdp.State]float64{"g": 0}, res.Values.Map())
}

func TestRTDP_TrialModeErrors(t *testing.T) {
	m := testmdp.Chain()

	_, err := rtdp.RTDP(m, 1)
	assert.ErrorIs(t, err, rtdp.ErrTrialMode)

	_, err = rtdp.RTDP(m, 1, rtdp.WithTrials(3), rtdp.WithEpsilon(1e-3))
	assert.ErrorIs(t, err, rtdp.ErrTrialMode)

	_, err = rtdp.RTDP(m, 1, rtdp.WithTrials(-3))
	assert.ErrorIs(t, err, rtdp.ErrTrialMode)
}

func TestCommonOptionErrors(t *testing.T) {
	m := testmdp.Chain()
	noInit, err := mdp.NewBuilder().
		AddStates("x").
		SetReward("x", 0).
		SetTransition("a", "x", "x", 1).
		Build()
	require.NoError(t, err)

	_, err = rtdp.LRTDP(m, 1, 1e-3, rtdp.WithMaxDepth(0))
	assert.ErrorIs(t, err, rtdp.ErrBadMaxDepth)

	_, err = rtdp.LRTDP(m, 1, 1e-3, rtdp.WithMaxTrials(-1))
	assert.ErrorIs(t, err, rtdp.ErrBadMaxTrials)

	_, err = rtdp.LRTDP(noInit, 0.9, 1e-3)
	assert.ErrorIs(t, err, rtdp.ErrNoInitialStates)

	_, err = rtdp.LRTDP(m, 1, 0)
	assert.ErrorIs(t, err, rtdp.ErrBadEpsilon)

	_, err = rtdp.LRTDP(m, 2, 1e-3)
	assert.ErrorIs(t, err, bellman.ErrBadGamma)

	_, err = rtdp.RTDP(m, 1, rtdp.WithTrials(1), rtdp.WithInitial(value.New(testmdp.Chain())))
	assert.ErrorIs(t, err, value.ErrModelMismatch)
}

func TestRTDP_WarmStartWithHeuristic(t *testing.T) {
	m := testmdp.Chain()
	calls := 0
	h := value.WithHeuristic(m, func(mdp.State) float64 {
		calls++
		return 0
	})

	res, err := rtdp.RTDP(m, 1, rtdp.WithEpsilon(1e-6), rtdp.WithInitial(h))
	require.NoError(t, err)
	assert.True(t, res.Stats.Converged)

	// The copy evaluated the heuristic at most once per state.
	assert.LessOrEqual(t, calls, m.NumStates())

	// The warm start itself is untouched.
	assert.Equal(t, map[mdp.State]float64{"s0": 0, "s1": 0}, h.Map())
	assert.InDelta(t, -1.0, res.Values.Map()["s0"], 1e-6)
}

func TestLRTDP_Chain(t *testing.T) {
	m := testmdp.Chain()
	res, err := rtdp.LRTDP(m, 1, 1e-6)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Stats.Iterations)
	assert.Equal(t, 1, res.Stats.Backups)
	assert.Equal(t, 2, res.Stats.Solved)
	assert.True(t, res.Stats.Converged)

	v := res.Values.Map()
	assert.InDelta(t, -1.0, v["s0"], 1e-12)
}

func TestLRTDP_SolvedStatesAreNeverVisitedOrBackedUpAgain(t *testing.T) {
	m := testmdp.Random(5, 15, 2)

	var (
		solved     = map[mdp.State]bool{}
		violations []mdp.State
		revisits   []mdp.State
		visits     int
	)
	res, err := rtdp.LRTDP(m, 0.9, 1e-3,
		rtdp.WithSeed(3),
		rtdp.WithMaxDepth(50),
		rtdp.WithMaxTrials(100000),
		rtdp.OnSolved(func(s mdp.State) {
			if solved[s] {
				violations = append(violations, s)
			}
			solved[s] = true
		}),
		rtdp.OnBackup(func(s mdp.State) {
			if solved[s] {
				violations = append(violations, s)
			}
		}),
		rtdp.OnVisit(func(s mdp.State) {
			visits++
			if solved[s] {
				revisits = append(revisits, s)
			}
		}),
	)
	require.NoError(t, err)
	require.True(t, res.Stats.Converged)

	assert.Empty(t, violations)
	assert.Empty(t, revisits)
	assert.Positive(t, visits)
	assert.Equal(t, len(solved), res.Stats.Solved)
	assert.True(t, solved["s00"])

	op, err := bellman.New(m, 0.9)
	require.NoError(t, err)
	assert.LessOrEqual(t, op.Residual(0, res.Values), 1e-3)
}

func TestLRTDP_TrialCap(t *testing.T) {
	m := testmdp.Random(5, 15, 2)
	res, err := rtdp.LRTDP(m, 0.9, 1e-12, rtdp.WithMaxTrials(1))
	require.NoError(t, err)

	assert.False(t, res.Stats.Converged)
	assert.Equal(t, 1, res.Stats.Iterations)
}

func TestBRTDP_Chain(t *testing.T) {
	m := testmdp.Chain()
	lower, err := value.FromMap(m, map[mdp.State]float64{"s0": -10, "s1": 0})
	require.NoError(t, err)
	upper, err := value.FromMap(m, map[mdp.State]float64{"s0": 10, "s1": 0})
	require.NoError(t, err)

	res, err := rtdp.BRTDP(m, 1, 1e-6, 10, rtdp.WithBounds(lower, upper))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Stats.Iterations)
	assert.Equal(t, 3, res.Stats.Backups)
	assert.True(t, res.Stats.Converged)

	lo, hi := res.Values.Map(), res.Upper.Map()
	assert.InDelta(t, -1.0, lo["s0"], 1e-12)
	assert.InDelta(t, -1.0, hi["s0"], 1e-12)

	// The caller's bounds are copied.
	assert.Equal(t, -10.0, lower.Map()["s0"])
}

func TestBRTDP_BoundsBracketOptimalValues(t *testing.T) {
	m := testmdp.Random(9, 12, 3)
	const gamma = 0.9

	star, err := vi.InfiniteHorizon(m, gamma, 1e-10)
	require.NoError(t, err)

	res, err := rtdp.BRTDP(m, gamma, 1e-2, 10,
		rtdp.WithSeed(11),
		rtdp.WithMaxDepth(60),
		rtdp.WithMaxTrials(100000),
	)
	require.NoError(t, err)
	require.True(t, res.Stats.Converged)

	for i := 0; i < m.NumStates(); i++ {
		lo, hi, v := res.Values.At(i), res.Upper.At(i), star.Values.At(i)
		assert.LessOrEqual(t, lo, hi+1e-9, "state %d", i)
		assert.LessOrEqual(t, lo, v+1e-6, "state %d", i)
		assert.GreaterOrEqual(t, hi, v-1e-6, "state %d", i)
	}
	assert.LessOrEqual(t, res.Upper.At(0)-res.Values.At(0), 1e-2)
	assert.Len(t, res.Stats.MaxResiduals, res.Stats.Iterations)
	// One upper backup per visited state going down, two per state coming back.
	assert.Zero(t, res.Stats.Backups%3)
}

func TestBRTDP_BoundsStayOrderedAfterEveryTrial(t *testing.T) {
	m := testmdp.Random(9, 12, 3)
	const gamma = 0.9
	run := func(opts ...rtdp.Option) bellman.Result {
		res, err := rtdp.BRTDP(m, gamma, 1e-2, 10,
			append([]rtdp.Option{rtdp.WithSeed(11), rtdp.WithMaxDepth(60)}, opts...)...)
		require.NoError(t, err)
		return res
	}

	full := run(rtdp.WithMaxTrials(100000))
	require.True(t, full.Stats.Converged)

	// A run capped at k trials replays the first k trials of the full run.
	trials := min(full.Stats.Iterations, 25)
	for k := 1; k <= trials; k++ {
		res := run(rtdp.WithMaxTrials(k))
		require.Equal(t, k, res.Stats.Iterations)
		assert.Equal(t, full.Stats.MaxResiduals[k-1], res.Stats.MaxResiduals[k-1])
		for i := 0; i < m.NumStates(); i++ {
			assert.LessOrEqual(t, res.Values.At(i), res.Upper.At(i)+1e-9, "trial %d state %d", k, i)
		}
	}
}

func TestBRTDP_StalledGapStopsAtTrialCap(t *testing.T) {
	// Descent follows lower-greedy actions only; on this model the gap at
	// s00 stops shrinking after a few trials.
	m := testmdp.Random(1, 12, 3)
	res, err := rtdp.BRTDP(m, 0.9, 1e-3, 10, rtdp.WithSeed(1), rtdp.WithMaxTrials(100))
	require.NoError(t, err)

	assert.False(t, res.Stats.Converged)
	assert.Equal(t, 100, res.Stats.Iterations)
	require.Len(t, res.Stats.MaxResiduals, 100)
	assert.Greater(t, res.Stats.MaxResiduals[99], 1.0)
	assert.InDelta(t, res.Stats.MaxResiduals[9], res.Stats.MaxResiduals[99], 1e-12)
}

func TestBRTDP_DefaultTrialCap(t *testing.T) {
	m := testmdp.Random(1, 12, 3)
	res, err := rtdp.BRTDP(m, 0.9, 1e-3, 10, rtdp.WithSeed(1), rtdp.WithMaxDepth(5))
	require.NoError(t, err)

	assert.LessOrEqual(t, res.Stats.Iterations, rtdp.DefaultBoundedMaxTrials)
	if !res.Stats.Converged {
		assert.Equal(t, rtdp.DefaultBoundedMaxTrials, res.Stats.Iterations)
	}
}

func TestBRTDP_Errors(t *testing.T) {
	m := testmdp.Chain()

	_, err := rtdp.BRTDP(m, 1, 1e-3, 10)
	assert.ErrorIs(t, err, rtdp.ErrBoundsRequired)

	_, err = rtdp.BRTDP(m, 0.9, 1e-3, 0)
	assert.ErrorIs(t, err, rtdp.ErrBadTau)

	lower := value.Constant(m, 1)
	upper := value.Constant(m, 0)
	_, err = rtdp.BRTDP(m, 0.9, 1e-3, 10, rtdp.WithBounds(lower, upper))
	assert.ErrorIs(t, err, rtdp.ErrInvertedBounds)

	_, _, err = rtdp.Bounds(m, 1)
	assert.ErrorIs(t, err, rtdp.ErrBoundsRequired)
}

func TestBounds_Discounted(t *testing.T) {
	m := testmdp.Chain()
	lower, upper, err := rtdp.Bounds(m, 0.5)
	require.NoError(t, err)

	assert.Equal(t, map[mdp.State]float64{"s0": -2, "s1": -2}, lower.Map())
	assert.Equal(t, map[mdp.State]float64{"s0": 0, "s1": 0}, upper.Map())
}
