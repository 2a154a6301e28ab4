// Package result renders evolution results.
//
// The result document has two fields:
//
//	state_membership_history: [ {state: membership}, ... ]   // steps + 1 entries
//	blocking_history:         [ {"B": b, "C": c}, ... ]        // steps entries
//
// Membership objects keep the StateSet order. Files are written as JSON with
// four-space indentation, or as YAML.
package result

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/fmmfsm/internal/engine"
)

// Format selects the serialization of a result file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ValidFormats lists the accepted result formats.
var ValidFormats = []Format{FormatJSON, FormatYAML}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range ValidFormats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid result format %q: must be one of %v", s, ValidFormats)
}

// Vector is a membership vector rendered in StateSet order.
type Vector struct {
	States engine.StateSet
	Values engine.MembershipVector
}

// MarshalJSON writes the vector as an object whose keys follow States.
func (v Vector) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range v.States {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(s)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v.Values[s])
		if err != nil {
			return nil, fmt.Errorf("state %q: %w", s, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML writes the vector as a mapping whose keys follow States.
func (v Vector) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, s := range v.States {
		key := &yaml.Node{}
		if err := key.Encode(s); err != nil {
			return nil, err
		}
		val := &yaml.Node{}
		if err := val.Encode(v.Values[s]); err != nil {
			return nil, fmt.Errorf("state %q: %w", s, err)
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}

// Document is the persisted form of an evolution result.
type Document struct {
	StateMembershipHistory []Vector                `json:"state_membership_history" yaml:"state_membership_history"`
	BlockingHistory        []engine.BlockingRecord `json:"blocking_history" yaml:"blocking_history"`
}

// FromResult builds the document for res.
func FromResult(res *engine.Result) *Document {
	doc := &Document{
		StateMembershipHistory: make([]Vector, len(res.History)),
		BlockingHistory:        make([]engine.BlockingRecord, len(res.Blocking)),
	}
	for i, v := range res.History {
		doc.StateMembershipHistory[i] = Vector{States: res.States, Values: v}
	}
	copy(doc.BlockingHistory, res.Blocking)
	return doc
}

// Encode serializes the document in the given format.
func (d *Document) Encode(format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(d, "", "    ")
		if err != nil {
			return nil, fmt.Errorf("encode result: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return nil, fmt.Errorf("encode result: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode result: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("invalid result format %q", format)
	}
}

// DefaultDir returns the directory results are written to when none is
// given: "computed/FMMFSM" next to the configuration file.
func DefaultDir(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), "computed", "FMMFSM")
}

// Path returns the result file path for a configuration file name. The
// configuration name is kept whole, so "gear1.json" yields
// "gear1.jsonResult.json".
func Path(dir, inputName string, format Format) string {
	return filepath.Join(dir, inputName+"Result."+string(format))
}

// Save writes res under dir and returns the written path. The directory is
// created if needed.
func Save(dir, inputName string, format Format, res *engine.Result) (string, error) {
	data, err := FromResult(res).Encode(format)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create result directory: %w", err)
	}
	path := Path(dir, inputName, format)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write result: %w", err)
	}
	return path, nil
}
