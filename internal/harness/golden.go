package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/fmmfsm/internal/engine"
	"github.com/roach88/fmmfsm/internal/result"
)

// RunWithGolden executes a scenario and compares the rendered evolution
// against a golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the evolution doesn't match the golden
// file or if any scenario assertion fails.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	res, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range res.Errors {
		t.Error(msg)
	}

	AssertGolden(t, scenario.Name, res.Run)
	return nil
}

// AssertGolden compares an evolution against a golden file without running
// a scenario.
func AssertGolden(t *testing.T, name string, run *engine.Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(result.FormatText(run)))
}
