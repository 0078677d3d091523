package problem

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tidwall/jsonc"

	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/mdp"
)

// Document is the JSON shape of a problem file.
type Document struct {
	States      []mdp.State                                  `json:"states"`
	Rewards     map[mdp.State]float64                        `json:"rewards"`
	Transitions map[mdp.Action]map[mdp.State]mdp.Distribution `json:"transitions"`
	Initial     []mdp.State                                  `json:"initial,omitempty"`
	Goals       []mdp.State                                  `json:"goals,omitempty"`
}

// Spec converts d to the model description consumed by mdp.New.
func (d Document) Spec() mdp.Spec {
	return mdp.Spec{
		States:        d.States,
		Rewards:       d.Rewards,
		Transitions:   d.Transitions,
		InitialStates: d.Initial,
		GoalStates:    d.Goals,
	}
}

// ParseJSON strips JSONC comments and trailing commas from data, decodes it
// (unknown fields are rejected) and builds the model.
func ParseJSON(data []byte) (*mdp.MDP, error) {
	stripped := jsonc.ToJSON(data)

	var doc Document
	dec := json.NewDecoder(bytes.NewReader(stripped))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing problem: %w", err)
	}

	return mdp.New(doc.Spec())
}

// DocumentOf returns the JSON document describing m. Only non-zero
// transitions are included.
func DocumentOf(m *mdp.MDP) Document {
	states := m.States()
	doc := Document{
		States:      states,
		Rewards:     make(map[mdp.State]float64, len(states)),
		Transitions: make(map[mdp.Action]map[mdp.State]mdp.Distribution, m.NumActions()),
		Initial:     m.InitialStates(),
		Goals:       m.GoalStates(),
	}
	for i, s := range states {
		doc.Rewards[s] = m.Reward(i)
	}
	for a, act := range m.Actions() {
		rows := make(map[mdp.State]mdp.Distribution, len(states))
		for s := range states {
			row := make(mdp.Distribution)
			for _, t := range m.Successors(a, s) {
				row[states[t]] = m.Prob(a, s, t)
			}
			rows[states[s]] = row
		}
		doc.Transitions[act] = rows
	}
	return doc
}

// WriteJSON writes m as indented JSON.
func WriteJSON(w io.Writer, m *mdp.MDP) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(DocumentOf(m))
}
