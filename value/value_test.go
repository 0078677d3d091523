package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/mdp"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/value"
)

func chain(t *testing.T) *mdp.MDP {
	t.Helper()
	m, err := mdp.NewBuilder().
		AddStates("s0", "s1", "s2").
		SetReward("s0", 0).SetReward("s1", 0).SetReward("s2", 1).
		SetTransition("go", "s0", "s1", 1).
		SetTransition("go", "s1", "s2", 1).
		SetTransition("go", "s2", "s2", 1).
		Build()
	require.NoError(t, err)
	return m
}

func TestFunction_ZeroAndSet(t *testing.T) {
	m := chain(t)
	f := value.New(m)

	assert.Equal(t, 3, f.Len())
	assert.Equal(t, 0.0, f.At(1))

	f.Set(1, 2.5)
	v, ok := f.Value("s1")
	require.True(t, ok)
	assert.Equal(t, 2.5, v)

	require.NoError(t, f.SetValue("s2", -1))
	assert.Equal(t, -1.0, f.At(2))
	assert.ErrorIs(t, f.SetValue("nope", 1), value.ErrUnknownState)

	_, ok = f.Value("nope")
	assert.False(t, ok)
}

func TestFunction_HeuristicEvaluatedOncePerState(t *testing.T) {
	m := chain(t)
	calls := map[mdp.State]int{}
	f := value.WithHeuristic(m, func(s mdp.State) float64 {
		calls[s]++
		return 10
	})

	assert.Equal(t, 10.0, f.At(0))
	assert.Equal(t, 10.0, f.At(0))
	f.Set(1, 3) // written before read: heuristic never runs for s1
	assert.Equal(t, 3.0, f.At(1))

	assert.Equal(t, 1, calls["s0"])
	assert.Equal(t, 0, calls["s1"])

	_ = f.Map()
	assert.Equal(t, 1, calls["s2"])
	assert.Equal(t, 1, calls["s0"])
}

func TestFunction_CopyIsDeep(t *testing.T) {
	m := chain(t)
	f := value.Constant(m, 1)
	c := f.Copy()
	c.Set(0, 7)

	assert.Equal(t, 1.0, f.At(0))
	assert.Equal(t, 7.0, c.At(0))
	assert.Equal(t, 6.0, value.MaxResidual(f, c))

	f.CopyFrom(c)
	assert.Equal(t, 7.0, f.At(0))
	assert.Equal(t, 0.0, value.MaxResidual(f, c))
}

func TestFromMap(t *testing.T) {
	m := chain(t)

	f, err := value.FromMap(m, map[mdp.State]float64{"s0": 1, "s1": 2, "s2": 3})
	require.NoError(t, err)
	assert.Equal(t, map[mdp.State]float64{"s0": 1, "s1": 2, "s2": 3}, f.Map())

	_, err = value.FromMap(m, map[mdp.State]float64{"s0": 1, "s1": 2})
	assert.ErrorIs(t, err, value.ErrIncomplete)

	_, err = value.FromMap(m, map[mdp.State]float64{"s0": 1, "s1": 2, "s2": 3, "s3": 4})
	assert.ErrorIs(t, err, value.ErrUnknownState)

	_, err = value.FromMap(nil, nil)
	assert.ErrorIs(t, err, value.ErrNilModel)
}

func TestFunction_Vector(t *testing.T) {
	m := chain(t)
	f := value.New(m)

	require.NoError(t, f.SetVector(mat.NewVecDense(3, []float64{1, 2, 3})))
	assert.Equal(t, []float64{1, 2, 3}, f.Vector().RawVector().Data)

	err := f.SetVector(mat.NewVecDense(2, []float64{1, 2}))
	assert.ErrorIs(t, err, value.ErrDimensionMismatch)
}

func TestCheckModel(t *testing.T) {
	m1 := chain(t)
	m2 := chain(t)
	f := value.New(m1)

	assert.NoError(t, value.CheckModel(f, m1))
	assert.ErrorIs(t, value.CheckModel(f, m2), value.ErrModelMismatch)
}
