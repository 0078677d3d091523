// Package report turns solver results into artifacts: JSON or CBOR
// summaries, HTML residual charts and coloured policy tables.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/bellman"
)

// ErrUnknownFormat indicates an output format ParseFormat does not know.
var ErrUnknownFormat = errors.New("report: unknown format")

// Format selects the encoding of a Summary.
type Format int

const (
	// JSON is indented JSON.
	JSON Format = iota
	// CBOR is Core Deterministic CBOR (RFC 8949 §4.2).
	CBOR
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case CBOR:
		return "cbor"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat maps "json" or "cbor" (case-insensitive) to its Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return JSON, nil
	case "cbor":
		return CBOR, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// encMode encodes with sorted map keys and smallest encodings, so equal
// summaries always produce identical bytes.
var encMode cbor.EncMode

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic("report: CBOR encoder initialization failed: " + err.Error())
	}
}

// Stats mirrors bellman.Stats with stable field names.
type Stats struct {
	Iterations   int       `json:"iterations" cbor:"iterations"`
	Backups      int       `json:"backups" cbor:"backups"`
	MaxResiduals []float64 `json:"max_residuals,omitempty" cbor:"max_residuals,omitempty"`
	Converged    bool      `json:"converged" cbor:"converged"`
	Solved       int       `json:"solved,omitempty" cbor:"solved,omitempty"`
}

// Summary is the serialisable form of a solver result.
type Summary struct {
	Algorithm string             `json:"algorithm" cbor:"algorithm"`
	Policy    map[string]string  `json:"policy" cbor:"policy"`
	Values    map[string]float64 `json:"values" cbor:"values"`
	Upper     map[string]float64 `json:"upper,omitempty" cbor:"upper,omitempty"`
	Stats     Stats              `json:"stats" cbor:"stats"`
}

// Summarize converts res into a Summary labelled with algorithm.
func Summarize(algorithm string, res bellman.Result) Summary {
	s := Summary{
		Algorithm: algorithm,
		Policy:    make(map[string]string, len(res.Policy)),
		Stats: Stats{
			Iterations:   res.Stats.Iterations,
			Backups:      res.Stats.Backups,
			MaxResiduals: res.Stats.MaxResiduals,
			Converged:    res.Stats.Converged,
			Solved:       res.Stats.Solved,
		},
	}
	for st, a := range res.Policy {
		s.Policy[string(st)] = string(a)
	}
	if res.Values != nil {
		s.Values = stringKeys(res.Values.Map())
	}
	if res.Upper != nil {
		s.Upper = stringKeys(res.Upper.Map())
	}
	return s
}

func stringKeys[K ~string](in map[K]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[string(k)] = v
	}
	return out
}

// Encode writes s to w in format f.
func Encode(w io.Writer, s Summary, f Format) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case CBOR:
		return encMode.NewEncoder(w).Encode(s)
	}
	return fmt.Errorf("%w: %s", ErrUnknownFormat, f)
}

// DecodeCBOR decodes a Summary produced by Encode with CBOR.
func DecodeCBOR(data []byte) (Summary, error) {
	var s Summary
	if err := cbor.Unmarshal(data, &s); err != nil {
		return Summary{}, fmt.Errorf("decoding summary: %w", err)
	}
	return s, nil
}
