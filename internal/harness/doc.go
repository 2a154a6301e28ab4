// Package harness provides conformance testing for machine configurations.
//
// The harness evolves a configuration, records the run in an isolated
// store, reads it back and validates the stored history against
// declarative assertions.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	config: ../configs/two_state.json
//	run_id: test-run-two-state
//	tolerance: 1e-9
//	assertions:
//	  - type: step_count
//	    count: 2
//	  - type: membership_at
//	    step: 1
//	    expect: { A: 0.0, B: 1.0 }
//	  - type: blocking_at
//	    step: 0
//	    b: 0.0
//	    c: 1.0
//	  - type: final_state
//	    expect: { B: 1.0 }
//
// # Assertion Types
//
//   - membership_at: Membership values of history entry N (subset match)
//   - blocking_at: B and/or C of blocking record N
//   - step_count: Number of evolved steps
//   - final_state: Membership values of the last vector, read from the store
//
// # Deterministic Testing
//
// The harness uses:
//   - Fixed run IDs (from scenario.run_id or "test-run-default")
//   - In-memory SQLite database (isolated per scenario)
//
// Evolution itself is deterministic, so the rendered history can be compared
// byte for byte against golden files.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/two_state.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
