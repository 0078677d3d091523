package solver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Params is the flat parameter record read from a YAML file or command-line
// flags. Pointer fields distinguish "absent" from zero.
//
// Example file:
//
//	algorithm: lrtdp
//	gamma: 0.95
//	epsilon: 1e-4
//	max_depth: 200
//	seed: 7
type Params struct {
	Algorithm     string   `yaml:"algorithm,omitempty"`
	Gamma         *float64 `yaml:"gamma,omitempty"`
	Epsilon       *float64 `yaml:"epsilon,omitempty"`
	Horizon       *int     `yaml:"horizon,omitempty"`
	Sweeps        *int     `yaml:"sweeps,omitempty"`
	Tau           *float64 `yaml:"tau,omitempty"`
	Trials        *int     `yaml:"trials,omitempty"`
	MaxDepth      int      `yaml:"max_depth,omitempty"`
	MaxIterations int      `yaml:"max_iterations,omitempty"`
	MaxTrials     int      `yaml:"max_trials,omitempty"`
	Seed          int64    `yaml:"seed,omitempty"`
}

// Config resolves p to exactly one solver configuration.
//
// With an algorithm name, that algorithm's required parameters must be
// present. Without one, {gamma, horizon} selects FiniteHorizon and
// {gamma, epsilon} selects InfiniteHorizon; any other shape is rejected with
// ErrIncompleteParameters. Value ranges are checked later by the solvers.
func (p Params) Config() (Config, error) {
	if p.Gamma == nil {
		return nil, fmt.Errorf("%w: gamma is required", ErrIncompleteParameters)
	}
	g := *p.Gamma

	if p.Algorithm == "" {
		switch {
		case p.Horizon != nil && p.Epsilon == nil:
			return FiniteHorizon{Gamma: g, Horizon: *p.Horizon}, nil
		case p.Epsilon != nil && p.Horizon == nil:
			return InfiniteHorizon{Gamma: g, Epsilon: *p.Epsilon, MaxIterations: p.MaxIterations}, nil
		default:
			return nil, fmt.Errorf("%w: without an algorithm, give exactly one of horizon or epsilon", ErrIncompleteParameters)
		}
	}

	algo, err := ParseAlgorithm(p.Algorithm)
	if err != nil {
		return nil, err
	}

	switch algo {
	case FiniteHorizonValueIteration:
		if err = p.require(algo, "horizon", p.Horizon != nil); err != nil {
			return nil, err
		}
		return FiniteHorizon{Gamma: g, Horizon: *p.Horizon}, nil

	case ValueIteration:
		if err = p.require(algo, "epsilon", p.Epsilon != nil); err != nil {
			return nil, err
		}
		return InfiniteHorizon{Gamma: g, Epsilon: *p.Epsilon, MaxIterations: p.MaxIterations}, nil

	case PolicyIteration:
		return Policy{Gamma: g, MaxIterations: p.MaxIterations}, nil

	case ModifiedPolicyIteration:
		if err = p.require(algo, "epsilon", p.Epsilon != nil); err != nil {
			return nil, err
		}
		if err = p.require(algo, "sweeps", p.Sweeps != nil); err != nil {
			return nil, err
		}
		return ModifiedPolicy{Gamma: g, Epsilon: *p.Epsilon, Sweeps: *p.Sweeps, MaxIterations: p.MaxIterations}, nil

	case RTDP:
		if (p.Trials == nil) == (p.Epsilon == nil) {
			return nil, fmt.Errorf("%w: %s needs exactly one of trials or epsilon", ErrIncompleteParameters, algo)
		}
		c := Trial{Gamma: g, MaxDepth: p.MaxDepth, Seed: p.Seed, MaxTrials: p.MaxTrials}
		if p.Trials != nil {
			c.Trials = *p.Trials
		} else {
			c.Epsilon = *p.Epsilon
		}
		return c, nil

	case LRTDP:
		if err = p.require(algo, "epsilon", p.Epsilon != nil); err != nil {
			return nil, err
		}
		return Labeled{Gamma: g, Epsilon: *p.Epsilon, MaxDepth: p.MaxDepth, Seed: p.Seed, MaxTrials: p.MaxTrials}, nil

	case BRTDP:
		if err = p.require(algo, "epsilon", p.Epsilon != nil); err != nil {
			return nil, err
		}
		if err = p.require(algo, "tau", p.Tau != nil); err != nil {
			return nil, err
		}
		return Bounded{Gamma: g, Epsilon: *p.Epsilon, Tau: *p.Tau, MaxDepth: p.MaxDepth, Seed: p.Seed, MaxTrials: p.MaxTrials}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, algo)
}

func (p Params) require(algo Algorithm, field string, present bool) error {
	if present {
		return nil
	}
	return fmt.Errorf("%w: %s requires %s", ErrIncompleteParameters, algo, field)
}

// DecodeParams reads YAML parameters from r, rejecting unknown fields.
// An empty document yields zero Params.
func DecodeParams(r io.Reader) (Params, error) {
	var p Params
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Params{}, fmt.Errorf("failed to parse parameters: %w", err)
	}
	return p, nil
}

// ReadParams loads YAML parameters from path.
func ReadParams(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("failed to read parameters file: %w", err)
	}
	return DecodeParams(bytes.NewReader(data))
}

// Encode writes p as YAML to w.
func (p Params) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return err
	}
	return enc.Close()
}
