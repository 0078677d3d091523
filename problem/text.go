package problem

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/mdp"
)

// Sentinel errors returned by the readers.
var (
	// ErrMissingSectionEnd indicates a section whose end token never appears.
	ErrMissingSectionEnd = errors.New("problem: section end token not found")

	// ErrMalformedLine indicates a line that does not fit its section.
	ErrMalformedLine = errors.New("problem: malformed line")
)

// section is the parser state: the open section, if any.
type section int

const (
	outside section = iota
	inStates
	inAction
	inReward
	inInitial
	inGoal
)

var sectionEnds = map[section]string{
	inStates:  "endstates",
	inAction:  "endaction",
	inReward:  "endreward",
	inInitial: "endinitialstate",
	inGoal:    "endgoalstate",
}

// Read parses the text format from r and builds the model.
//
// Complexity: O(L) lines plus mdp.New.
func Read(r io.Reader) (*mdp.MDP, error) {
	var (
		b       = mdp.NewBuilder()
		sc      = bufio.NewScanner(r)
		cur     = outside
		opened  int
		action  mdp.Action
		lineNo  int
		line    string
		fields  []string
		v       float64
		err     error
		isEnd   bool
		endName string
	)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for sc.Scan() {
		lineNo++
		line = strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields = strings.Fields(line)

		if cur != outside {
			endName, isEnd = sectionEnds[cur]
			if isEnd && fields[0] == endName {
				cur = outside
				continue
			}
		}

		switch cur {
		case outside:
			switch fields[0] {
			case "states":
				cur = inStates
			case "action":
				if len(fields) != 2 {
					return nil, malformed(lineNo, line, "expected \"action <name>\"")
				}
				action = mdp.Action(fields[1])
				b.DeclareAction(action)
				cur = inAction
			case "reward":
				cur = inReward
			case "initialstate":
				cur = inInitial
			case "goalstate":
				cur = inGoal
			default:
				return nil, malformed(lineNo, line, "unknown section")
			}
			opened = lineNo

		case inStates:
			for _, s := range strings.Split(line, ",") {
				if s = strings.TrimSpace(s); s != "" {
					b.AddStates(mdp.State(s))
				}
			}

		case inAction:
			if len(fields) != 3 {
				return nil, malformed(lineNo, line, "expected \"<from> <to> <probability>\"")
			}
			if v, err = strconv.ParseFloat(fields[2], 64); err != nil {
				return nil, malformed(lineNo, line, err.Error())
			}
			b.SetTransition(action, mdp.State(fields[0]), mdp.State(fields[1]), v)

		case inReward:
			if len(fields) != 2 {
				return nil, malformed(lineNo, line, "expected \"<state> <reward>\"")
			}
			if v, err = strconv.ParseFloat(fields[1], 64); err != nil {
				return nil, malformed(lineNo, line, err.Error())
			}
			b.SetReward(mdp.State(fields[0]), v)

		case inInitial, inGoal:
			if len(fields) != 1 {
				return nil, malformed(lineNo, line, "expected one state per line")
			}
			if cur == inInitial {
				b.AddInitialStates(mdp.State(fields[0]))
			} else {
				b.AddGoalStates(mdp.State(fields[0]))
			}
		}
	}
	if err = sc.Err(); err != nil {
		return nil, fmt.Errorf("problem: reading: %w", err)
	}
	if cur != outside {
		return nil, fmt.Errorf("%w: %s (section opened at line %d)", ErrMissingSectionEnd, sectionEnds[cur], opened)
	}

	return b.Build()
}

func malformed(lineNo int, line, why string) error {
	return fmt.Errorf("%w: line %d %q: %s", ErrMalformedLine, lineNo, line, why)
}

// ReadFile reads a problem from path. Files ending in .json or .jsonc are
// parsed as JSONC; anything else as the text format.
func ReadFile(path string) (*mdp.MDP, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var m *mdp.MDP
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		m, err = ParseJSON(data)
	default:
		m, err = Read(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Write serialises m in the text format. Only non-zero transitions are
// written; Read(Write(m)) rebuilds an equivalent model.
func Write(w io.Writer, m *mdp.MDP) error {
	bw := bufio.NewWriter(w)

	var (
		states = m.States()
		names  = make([]string, len(states))
	)
	for i, s := range states {
		names[i] = string(s)
	}
	fmt.Fprintf(bw, "states\n\t%s\nendstates\n", strings.Join(names, ", "))

	for a, act := range m.Actions() {
		fmt.Fprintf(bw, "action %s\n", act)
		for s := range states {
			for _, t := range m.Successors(a, s) {
				fmt.Fprintf(bw, "\t%s %s %s\n", states[s], states[t], formatFloat(m.Prob(a, s, t)))
			}
		}
		fmt.Fprintln(bw, "endaction")
	}

	fmt.Fprintln(bw, "reward")
	for i, s := range states {
		fmt.Fprintf(bw, "\t%s %s\n", s, formatFloat(m.Reward(i)))
	}
	fmt.Fprintln(bw, "endreward")

	if init := m.InitialStates(); len(init) > 0 {
		writeList(bw, "initialstate", init)
	}
	if goals := m.GoalStates(); len(goals) > 0 {
		writeList(bw, "goalstate", goals)
	}

	return bw.Flush()
}

func writeList(w io.Writer, name string, states []mdp.State) {
	fmt.Fprintln(w, name)
	for _, s := range states {
		fmt.Fprintf(w, "\t%s\n", s)
	}
	fmt.Fprintf(w, "end%s\n", name)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
