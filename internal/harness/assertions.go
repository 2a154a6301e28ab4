package harness

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/roach88/fmmfsm/internal/engine"
	"github.com/roach88/fmmfsm/internal/result"
	"github.com/roach88/fmmfsm/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	History  string // Rendered evolution for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.History != "" {
		fmt.Fprintf(&buf, "\nFull history:\n")
		for _, line := range strings.Split(strings.TrimRight(e.History, "\n"), "\n") {
			fmt.Fprintf(&buf, "  %s\n", line)
		}
	}

	return buf.String()
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store     *store.Store
	Ctx       context.Context
	RunID     string
	Tolerance float64
}

func (a *AssertionContext) tolerance() float64 {
	if a == nil || a.Tolerance == 0 {
		return DefaultTolerance
	}
	return a.Tolerance
}

// assertMembershipAt checks the history vector at assertion.Step.
func assertMembershipAt(res *engine.Result, assertion Assertion, tol float64) error {
	step := *assertion.Step
	if step >= len(res.History) {
		return &AssertionError{
			Type:     AssertMembershipAt,
			Expected: fmt.Sprintf("history entry %d", step),
			Actual:   fmt.Sprintf("history has %d entries", len(res.History)),
			History:  result.FormatText(res),
		}
	}
	return compareVector(AssertMembershipAt, res, res.History[step], assertion.Expect, tol)
}

// assertBlockingAt checks the blocking record at assertion.Step.
func assertBlockingAt(res *engine.Result, assertion Assertion, tol float64) error {
	step := *assertion.Step
	if step >= len(res.Blocking) {
		return &AssertionError{
			Type:     AssertBlockingAt,
			Expected: fmt.Sprintf("blocking record %d", step),
			Actual:   fmt.Sprintf("blocking history has %d records", len(res.Blocking)),
			History:  result.FormatText(res),
		}
	}

	rec := res.Blocking[step]
	if (assertion.B != nil && !approxEqual(rec.B, *assertion.B, tol)) ||
		(assertion.C != nil && !approxEqual(rec.C, *assertion.C, tol)) {
		return &AssertionError{
			Type:     AssertBlockingAt,
			Expected: fmt.Sprintf("step %d %s", step, formatBlocking(assertion.B, assertion.C)),
			Actual:   fmt.Sprintf("step %d B=%g C=%g", step, rec.B, rec.C),
			History:  result.FormatText(res),
		}
	}
	return nil
}

// assertStepCount checks the number of evolved steps.
func assertStepCount(res *engine.Result, assertion Assertion) error {
	if res.Steps() != *assertion.Count {
		return &AssertionError{
			Type:     AssertStepCount,
			Expected: fmt.Sprintf("%d steps", *assertion.Count),
			Actual:   fmt.Sprintf("%d steps", res.Steps()),
		}
	}
	return nil
}

// assertFinalState reads the run back from the store and checks its last
// vector. This exercises the persisted history rather than the in-memory one.
func assertFinalState(actx *AssertionContext, assertion Assertion) error {
	run, err := actx.Store.ReadRun(actx.Ctx, actx.RunID)
	if err != nil {
		return fmt.Errorf("final_state: %w", err)
	}
	return compareVector(AssertFinalState, run.Result, run.Result.Final(), assertion.Expect, actx.tolerance())
}

func compareVector(kind string, res *engine.Result, actual engine.MembershipVector, expect map[string]float64, tol float64) error {
	states := make([]string, 0, len(expect))
	for state := range expect {
		states = append(states, state)
	}
	sort.Strings(states)

	for _, state := range states {
		got, ok := actual[state]
		if !ok {
			return &AssertionError{
				Type:     kind,
				Expected: fmt.Sprintf("%s=%g", state, expect[state]),
				Actual:   fmt.Sprintf("state %q not in state set", state),
				History:  result.FormatText(res),
			}
		}
		if !approxEqual(got, expect[state], tol) {
			return &AssertionError{
				Type:     kind,
				Expected: fmt.Sprintf("%s=%g", state, expect[state]),
				Actual:   fmt.Sprintf("%s=%g", state, got),
				History:  result.FormatText(res),
			}
		}
	}
	return nil
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func formatBlocking(b, c *float64) string {
	var parts []string
	if b != nil {
		parts = append(parts, fmt.Sprintf("B=%g", *b))
	}
	if c != nil {
		parts = append(parts, fmt.Sprintf("C=%g", *c))
	}
	return strings.Join(parts, " ")
}

// EvaluateAssertions evaluates all assertions against the evolution.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides database access for final_state assertions.
func EvaluateAssertions(res *engine.Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string
	tol := actx.tolerance()

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertMembershipAt:
			err = assertMembershipAt(res, assertion, tol)
		case AssertBlockingAt:
			err = assertBlockingAt(res, assertion, tol)
		case AssertStepCount:
			err = assertStepCount(res, assertion)
		case AssertFinalState:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: final_state requires database context", i)
			} else {
				err = assertFinalState(actx, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
