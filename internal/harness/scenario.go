package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultTolerance is the absolute tolerance used when a scenario does not
// set one.
const DefaultTolerance = 1e-9

// Scenario defines a conformance test scenario.
// A scenario evolves one configuration and asserts on the resulting
// membership history and blocking history.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is the path to the machine configuration (JSON, YAML or CUE).
	// Relative paths are resolved against the scenario's base path.
	Config string `yaml:"config"`

	// RunID is an optional fixed run ID for deterministic storage.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// Tolerance is the absolute tolerance for numeric comparisons.
	// Zero means DefaultTolerance.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// Assertions validate the evolution.
	// Supported types: membership_at, blocking_at, step_count, final_state
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one aspect of an evolution.
type Assertion struct {
	// Type specifies the assertion type:
	// - "membership_at": membership values of the vector at Step
	// - "blocking_at": blocking record of Step
	// - "step_count": number of evolved steps
	// - "final_state": membership values of the last stored vector
	Type string `yaml:"type"`

	// Step indexes the history (membership_at) or the blocking history
	// (blocking_at).
	Step *int `yaml:"step,omitempty"`

	// Expect maps state names to expected membership values
	// (membership_at, final_state). Subset match - only listed states are
	// checked.
	Expect map[string]float64 `yaml:"expect,omitempty"`

	// B and C are the expected blocking values (blocking_at).
	B *float64 `yaml:"b,omitempty"`
	C *float64 `yaml:"c,omitempty"`

	// Count is the expected number of steps (step_count).
	Count *int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertMembershipAt = "membership_at"
	AssertBlockingAt   = "blocking_at"
	AssertStepCount    = "step_count"
	AssertFinalState   = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// A relative config path is resolved against the scenario file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the config path relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve config path BEFORE validation
	if scenario.Config != "" && !filepath.IsAbs(scenario.Config) && basePath != "" {
		scenario.Config = filepath.Join(basePath, scenario.Config)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Config == "" {
		return fmt.Errorf("config is required")
	}

	if _, err := os.Stat(s.Config); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", s.Config)
	}

	if s.Tolerance < 0 {
		return fmt.Errorf("tolerance must be non-negative")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertMembershipAt:
		if a.Step == nil || *a.Step < 0 {
			return fmt.Errorf("assertions[%d]: non-negative step is required for membership_at", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for membership_at", index)
		}
	case AssertBlockingAt:
		if a.Step == nil || *a.Step < 0 {
			return fmt.Errorf("assertions[%d]: non-negative step is required for blocking_at", index)
		}
		if a.B == nil && a.C == nil {
			return fmt.Errorf("assertions[%d]: b or c is required for blocking_at", index)
		}
	case AssertStepCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for step_count", index)
		}
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
