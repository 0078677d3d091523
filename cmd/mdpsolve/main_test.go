package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/report"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/solver"
)

const chain = `states
	s0, s1
endstates
action a
	s0 s1 1
	s1 s1 1
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

func writeProblem(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "chain.mdp")
	require.NoError(t, os.WriteFile(path, []byte(chain), 0o600))
	return dir, path
}

func TestRun_ValueIterationJSON(t *testing.T) {
	_, path := writeProblem(t)

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"--gamma", "1", "--epsilon", "1e-6", path}, &stdout, &stderr))

	var s report.Summary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &s))
	assert.Equal(t, "vi", s.Algorithm)
	assert.Equal(t, -1.0, s.Values["s0"])
}

func TestRun_ConfigFileAndOverrides(t *testing.T) {
	dir, path := writeProblem(t)
	cfg := filepath.Join(dir, "lrtdp.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("algorithm: lrtdp\ngamma: 0.5\nepsilon: 1e-6\n"), 0o600))
	out := filepath.Join(dir, "result.cbor")
	chart := filepath.Join(dir, "chart.html")

	var stdout, stderr bytes.Buffer
	err := run([]string{"-c", cfg, "--gamma", "1", "--format", "cbor", "-o", out, "--chart", chart, path}, &stdout, &stderr)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	s, err := report.DecodeCBOR(data)
	require.NoError(t, err)
	assert.Equal(t, "lrtdp", s.Algorithm)
	assert.Equal(t, 2, s.Stats.Solved)
	// --gamma 1 overrides the file's 0.5.
	assert.Equal(t, -1.0, s.Values["s0"])

	html, err := os.ReadFile(chart)
	require.NoError(t, err)
	assert.Contains(t, string(html), "lrtdp")
}

func TestRun_Table(t *testing.T) {
	_, path := writeProblem(t)

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-a", "pi", "-g", "1", "--table", path}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "ACTION")
}

func TestRun_Errors(t *testing.T) {
	_, path := writeProblem(t)
	var stdout, stderr bytes.Buffer

	assert.Error(t, run([]string{}, &stdout, &stderr))
	assert.ErrorIs(t, run([]string{"--gamma", "1", path}, &stdout, &stderr), solver.ErrIncompleteParameters)
	assert.ErrorIs(t, run([]string{"-a", "dqn", "-g", "1", path}, &stdout, &stderr), solver.ErrUnknownAlgorithm)
	assert.ErrorIs(t, run([]string{"--format", "xml", "-g", "1", "-e", "1", path}, &stdout, &stderr), report.ErrUnknownFormat)
	assert.Error(t, run([]string{"--log-level", "loud", "-g", "1", "-e", "1", path}, &stdout, &stderr))
	assert.NoError(t, run([]string{"--help"}, &stdout, &stderr))
}
