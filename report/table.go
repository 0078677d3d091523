package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/logrusorgru/aurora"

	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/bellman"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/mdp"
)

// WritePolicyTable writes one row per state: state, action, value and, for
// bounded results, the upper bound. Goal states are green and initial states
// blue when color is true.
func WritePolicyTable(w io.Writer, m *mdp.MDP, res bellman.Result, color bool) error {
	var (
		au     = aurora.NewAurora(color)
		tw     = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		header = []string{"STATE", "ACTION", "VALUE"}
	)
	if res.Upper != nil {
		header = append(header, "UPPER")
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for i, s := range m.States() {
		var name fmt.Stringer = au.Reset(string(s))
		switch {
		case m.IsGoal(i):
			name = au.Green(string(s))
		case m.IsInitial(i):
			name = au.Blue(string(s))
		}

		row := []string{
			name.String(),
			string(res.Policy[s]),
			fmt.Sprintf("%.6g", res.Values.At(i)),
		}
		if res.Upper != nil {
			row = append(row, fmt.Sprintf("%.6g", res.Upper.At(i)))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
