package problem_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/internal/testmdp"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/mdp"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/problem"
)

const chainText = `# two-state chain
states
	s0, s1
endstates

action a
	s0 s1 1.0
	s1 s1 1.0
endaction

reward
	s0 -1
	s1 0
endreward

initialstate
	s0
endinitialstate

goalstate
	s1
endgoalstate
`

const chainJSONC = `{
  // two-state chain
  "states": ["s0", "s1"],
  "rewards": {"s0": -1, "s1": 0},
  "transitions": {
    "a": {"s0": {"s1": 1}, "s1": {"s1": 1},},
  },
  "initial": ["s0"],
  "goals": ["s1"], /* trailing comma */
}`

func assertChain(t *testing.T, m *mdp.MDP) {
	t.Helper()
	assert.Equal(t, []mdp.State{"s0", "s1"}, m.States())
	assert.Equal(t, []mdp.Action{"a"}, m.Actions())
	assert.Equal(t, 1.0, m.Prob(0, 0, 1))
	assert.Equal(t, 1.0, m.Prob(0, 1, 1))
	assert.Equal(t, -1.0, m.Reward(0))
	assert.Equal(t, []mdp.State{"s0"}, m.InitialStates())
	assert.Equal(t, []mdp.State{"s1"}, m.GoalStates())
}

func TestRead_Text(t *testing.T) {
	m, err := problem.Read(strings.NewReader(chainText))
	require.NoError(t, err)
	assertChain(t, m)
}

func TestRead_StatesOverSeveralLines(t *testing.T) {
	in := "states\ns0,\ns1\nendstates\naction a\ns0 s0 1\ns1 s1 1\nendaction\nreward\ns0 0\ns1 0\nendreward\n"
	m, err := problem.Read(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []mdp.State{"s0", "s1"}, m.States())
	assert.Empty(t, m.InitialStates())
}

func TestRead_Errors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want error
	}{
		{"missing endstates", "states\n s0\n", problem.ErrMissingSectionEnd},
		{"missing endreward", "states\ns0\nendstates\nreward\ns0 1.0\n", problem.ErrMissingSectionEnd},
		{"action without name", "action\n", problem.ErrMalformedLine},
		{"short transition", "states\ns0\nendstates\naction a\ns0 s0\nendaction\n", problem.ErrMalformedLine},
		{"bad probability", "states\ns0\nendstates\naction a\ns0 s0 x\nendaction\n", problem.ErrMalformedLine},
		{"bad reward", "states\ns0\nendstates\nreward\ns0 one\nendreward\n", problem.ErrMalformedLine},
		{"unknown section", "transitions\n", problem.ErrMalformedLine},
		{"two initial states on a line", "initialstate\ns0 s1\nendinitialstate\n", problem.ErrMalformedLine},
		{"empty file", "", mdp.ErrNoStates},
		{"no reward", "states\ns0\nendstates\naction a\ns0 s0 1\nendaction\n", mdp.ErrRewardMismatch},
		{"non-stochastic", "states\ns0\nendstates\naction a\ns0 s0 0.5\nendaction\nreward\ns0 0\nendreward\n", mdp.ErrNonStochasticRow},
		{"unknown goal", strings.Replace(chainText, "\ts1\nendgoalstate", "\ts9\nendgoalstate", 1), mdp.ErrUnknownGoalState},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := problem.Read(strings.NewReader(tc.in))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	orig := testmdp.Random(1, 6, 2)

	var buf bytes.Buffer
	require.NoError(t, problem.Write(&buf, orig))

	back, err := problem.Read(&buf)
	require.NoError(t, err)
	assertEquivalent(t, orig, back)
}

func TestParseJSON(t *testing.T) {
	m, err := problem.ParseJSON([]byte(chainJSONC))
	require.NoError(t, err)
	assertChain(t, m)

	_, err = problem.ParseJSON([]byte(`{"states": ["s0"], "discount": 0.9}`))
	assert.Error(t, err)

	_, err = problem.ParseJSON([]byte(`{"states": []}`))
	assert.ErrorIs(t, err, mdp.ErrNoStates)
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	orig := testmdp.Random(2, 5, 3)

	var buf bytes.Buffer
	require.NoError(t, problem.WriteJSON(&buf, orig))

	back, err := problem.ParseJSON(buf.Bytes())
	require.NoError(t, err)
	assertEquivalent(t, orig, back)
}

func TestReadFile_DispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	text := filepath.Join(dir, "chain.mdp")
	jsonc := filepath.Join(dir, "chain.jsonc")
	require.NoError(t, os.WriteFile(text, []byte(chainText), 0o600))
	require.NoError(t, os.WriteFile(jsonc, []byte(chainJSONC), 0o600))

	m, err := problem.ReadFile(text)
	require.NoError(t, err)
	assertChain(t, m)

	m, err = problem.ReadFile(jsonc)
	require.NoError(t, err)
	assertChain(t, m)

	_, err = problem.ReadFile(filepath.Join(dir, "nope.mdp"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func assertEquivalent(t *testing.T, want, got *mdp.MDP) {
	t.Helper()
	require.Equal(t, want.States(), got.States())
	require.Equal(t, want.Actions(), got.Actions())
	assert.Equal(t, want.InitialStates(), got.InitialStates())
	assert.Equal(t, want.GoalStates(), got.GoalStates())
	for i := 0; i < want.NumStates(); i++ {
		assert.Equal(t, want.Reward(i), got.Reward(i))
		for a := 0; a < want.NumActions(); a++ {
			assert.Equal(t, want.Successors(a, i), got.Successors(a, i))
			for j := 0; j < want.NumStates(); j++ {
				assert.Equal(t, want.Prob(a, i, j), got.Prob(a, i, j))
			}
		}
	}
}
