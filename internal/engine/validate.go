package engine

import (
	"fmt"
	"maps"
	"slices"
)

// Validate checks the model and schedule against each other and returns the
// first problem found as a *ConfigError.
//
// Checks, in order:
//   - the StateSet is non-empty and free of duplicates
//   - the initial memberships cover exactly the StateSet
//   - every state named by the transition relation is in the StateSet
//   - every scheduled event has a fuzzification and a non-negative repeat count
//
// Missing transition entries and out-of-range values are not errors.
func (m *Model) Validate(schedule Schedule) error {
	if len(m.States) == 0 {
		return NewConfigError(ErrCodeEmptyStateSet, "initial_state_memberships",
			"at least one state is required")
	}

	seen := make(map[string]bool, len(m.States))
	for _, s := range m.States {
		if seen[s] {
			return NewConfigError(ErrCodeInvalidValue, "initial_state_memberships."+s,
				"state %q declared twice", s)
		}
		seen[s] = true
		if _, ok := m.Initial[s]; !ok {
			return NewConfigError(ErrCodeMissingField, "initial_state_memberships."+s,
				"no initial membership for state %q", s)
		}
	}
	for _, s := range slices.Sorted(maps.Keys(m.Initial)) {
		if !seen[s] {
			return NewConfigError(ErrCodeUnknownState, "initial_state_memberships."+s,
				"state %q is not in the state set", s)
		}
	}

	if err := m.validateTransitions(seen); err != nil {
		return err
	}

	for i, p := range schedule {
		field := fmt.Sprintf("input_schedule[%d]", i)
		if _, ok := m.Inputs[p.Event]; !ok {
			return NewConfigError(ErrCodeUnknownEvent, field,
				"input event %q has no entry in input_fuzzified", p.Event)
		}
		if p.Repeat < 0 {
			return NewConfigError(ErrCodeNegativeRepeat, field,
				"repeat count %d for event %q is negative", p.Repeat, p.Event)
		}
	}

	return nil
}

// validateTransitions rejects transition rows whose current or next state is
// outside the StateSet. Iteration is sorted so the reported error is stable.
func (m *Model) validateTransitions(states map[string]bool) error {
	for _, cur := range slices.Sorted(maps.Keys(m.Transitions)) {
		if !states[cur] {
			return NewConfigError(ErrCodeUnknownState, "transition_probabilities."+cur,
				"current state %q is not in the state set", cur)
		}
		byCondition := m.Transitions[cur]
		for _, cond := range slices.Sorted(maps.Keys(byCondition)) {
			for _, next := range slices.Sorted(maps.Keys(byCondition[cond])) {
				if !states[next] {
					return NewConfigError(ErrCodeUnknownState,
						fmt.Sprintf("transition_probabilities.%s.%s.%s", cur, cond, next),
						"next state %q is not in the state set", next)
				}
			}
		}
	}
	return nil
}
