package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TwoStateJSON is the A -> B machine: A moves to B under condition c and B
// is absorbing. Two steps of event e give {A:1,B:0}, {A:0,B:1}, {A:0,B:1}.
const TwoStateJSON = `{
    "initial_state_memberships": {"A": 1.0, "B": 0.0},
    "input_fuzzified": {"e": {"c": 1.0}},
    "transition_probabilities": {
        "A": {"c": {"B": 1.0}},
        "B": {"c": {"B": 1.0}}
    },
    "input_schedule": [["e", 2]]
}
`

// TwoStateYAML is TwoStateJSON in YAML syntax.
const TwoStateYAML = `initial_state_memberships:
  A: 1.0
  B: 0.0
input_fuzzified:
  e:
    c: 1.0
transition_probabilities:
  A:
    c:
      B: 1.0
  B:
    c:
      B: 1.0
input_schedule:
  - [e, 2]
`

// TwoStateCUE is TwoStateJSON in CUE syntax, using a shared definition for
// the absorbing row.
const TwoStateCUE = `_absorb: {c: {B: 1.0}}

initial_state_memberships: {A: 1.0, B: 0.0}
input_fuzzified: e: c: 1.0
transition_probabilities: {
	A: _absorb
	B: _absorb
}
input_schedule: [["e", 2]]
`

// GearJSON models a three-gear transmission driven by fuzzified throttle.
const GearJSON = `{
    "initial_state_memberships": {"gear1": 1.0, "gear2": 0.0, "gear3": 0.0},
    "input_fuzzified": {
        "accelerate": {"high": 0.8, "low": 0.2},
        "cruise": {"high": 0.4, "low": 0.6},
        "brake": {"high": 0.0, "low": 1.0}
    },
    "transition_probabilities": {
        "gear1": {"high": {"gear1": 0.2, "gear2": 0.8}, "low": {"gear1": 1.0}},
        "gear2": {"high": {"gear2": 0.3, "gear3": 0.7}, "low": {"gear1": 0.6, "gear2": 0.4}},
        "gear3": {"high": {"gear3": 1.0}, "low": {"gear2": 0.5, "gear3": 0.5}}
    },
    "input_schedule": [["accelerate", 3], ["cruise", 2], ["brake", 2]]
}
`

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
