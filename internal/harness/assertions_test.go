package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fmmfsm/internal/engine"
	"github.com/roach88/fmmfsm/internal/store"
)

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func evolution() *engine.Result {
	return &engine.Result{
		States: engine.StateSet{"A", "B"},
		History: []engine.MembershipVector{
			{"A": 1, "B": 0},
			{"A": 0, "B": 1},
			{"A": 0, "B": 1},
		},
		Blocking: []engine.BlockingRecord{
			{B: 0, C: 1},
			{B: 1, C: 0},
		},
	}
}

func TestAssertMembershipAt(t *testing.T) {
	res := evolution()

	err := assertMembershipAt(res, Assertion{Step: intPtr(1), Expect: map[string]float64{"B": 1}}, DefaultTolerance)
	assert.NoError(t, err)

	err = assertMembershipAt(res, Assertion{Step: intPtr(1), Expect: map[string]float64{"B": 0.5}}, DefaultTolerance)
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertMembershipAt, ae.Type)
	assert.Equal(t, "B=0.5", ae.Expected)
	assert.Equal(t, "B=1", ae.Actual)
	assert.Contains(t, err.Error(), "Full history:")
	assert.Contains(t, err.Error(), "step 2: A=0.000000 B=1.000000")
}

func TestAssertMembershipAt_Tolerance(t *testing.T) {
	res := evolution()
	a := Assertion{Step: intPtr(0), Expect: map[string]float64{"A": 0.99}}

	assert.Error(t, assertMembershipAt(res, a, DefaultTolerance))
	assert.NoError(t, assertMembershipAt(res, a, 0.02))
}

func TestAssertMembershipAt_OutOfRange(t *testing.T) {
	err := assertMembershipAt(evolution(), Assertion{Step: intPtr(3), Expect: map[string]float64{"A": 0}}, DefaultTolerance)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history has 3 entries")
}

func TestAssertMembershipAt_UnknownState(t *testing.T) {
	err := assertMembershipAt(evolution(), Assertion{Step: intPtr(0), Expect: map[string]float64{"Z": 0}}, DefaultTolerance)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `state "Z" not in state set`)
}

func TestAssertBlockingAt(t *testing.T) {
	res := evolution()

	assert.NoError(t, assertBlockingAt(res, Assertion{Step: intPtr(0), B: floatPtr(0), C: floatPtr(1)}, DefaultTolerance))
	assert.NoError(t, assertBlockingAt(res, Assertion{Step: intPtr(1), B: floatPtr(1)}, DefaultTolerance))

	err := assertBlockingAt(res, Assertion{Step: intPtr(1), C: floatPtr(1)}, DefaultTolerance)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected: step 1 C=1")
	assert.Contains(t, err.Error(), "Actual: step 1 B=1 C=0")

	// The final vector has no blocking record.
	err = assertBlockingAt(res, Assertion{Step: intPtr(2), B: floatPtr(0)}, DefaultTolerance)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocking history has 2 records")
}

func TestAssertStepCount(t *testing.T) {
	assert.NoError(t, assertStepCount(evolution(), Assertion{Count: intPtr(2)}))

	err := assertStepCount(evolution(), Assertion{Count: intPtr(3)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected: 3 steps")
	assert.Contains(t, err.Error(), "Actual: 2 steps")
}

func TestAssertFinalState_ReadsStore(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.WriteRun(ctx, store.Run{ID: "r1", ConfigName: "c", ConfigHash: "h", Result: evolution()}))

	actx := &AssertionContext{Store: st, Ctx: ctx, RunID: "r1"}
	assert.NoError(t, assertFinalState(actx, Assertion{Expect: map[string]float64{"A": 0, "B": 1}}))
	assert.Error(t, assertFinalState(actx, Assertion{Expect: map[string]float64{"A": 1}}))

	missing := &AssertionContext{Store: st, Ctx: ctx, RunID: "absent"}
	err = assertFinalState(missing, Assertion{Expect: map[string]float64{"A": 0}})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrRunNotFound)
}

func TestEvaluateAssertions(t *testing.T) {
	assertions := []Assertion{
		{Type: AssertStepCount, Count: intPtr(2)},
		{Type: AssertMembershipAt, Step: intPtr(0), Expect: map[string]float64{"A": 0}},
		{Type: AssertFinalState, Expect: map[string]float64{"B": 1}},
		{Type: "bogus"},
	}

	errs := EvaluateAssertions(evolution(), assertions, nil)
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "membership_at")
	assert.Contains(t, errs[1], "final_state requires database context")
	assert.Contains(t, errs[2], `unknown assertion type "bogus"`)
}
