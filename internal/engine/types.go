package engine

import (
	"maps"
	"slices"
)

// StateSet is the ordered collection of state identifiers for a run.
// The order is the declaration order of the initial memberships and is used
// for every enumeration and rendering.
type StateSet []string

// Contains reports whether the set holds state.
func (s StateSet) Contains(state string) bool {
	return slices.Contains(s, state)
}

// MembershipVector maps each state to its membership degree at one step.
// Vectors are never mutated once appended to a History.
type MembershipVector map[string]float64

// Clone returns an independent copy of the vector.
func (v MembershipVector) Clone() MembershipVector {
	return maps.Clone(v)
}

// InputFuzzification maps an input event ID to the membership of that event
// in each named input condition.
type InputFuzzification map[string]map[string]float64

// Conditions returns the condition names of event in sorted order.
// Returns nil for an unknown event.
func (f InputFuzzification) Conditions(event string) []string {
	conds, ok := f[event]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(conds))
}

// TransitionRelation maps current state -> input condition -> next state ->
// transition weight.
type TransitionRelation map[string]map[string]map[string]float64

// Weight returns φ(current, condition)(next).
//
// An absent current state, condition or next state means the transition
// carries no mass: the lookup returns 0 and never fails.
func (r TransitionRelation) Weight(current, condition, next string) float64 {
	byCondition, ok := r[current]
	if !ok {
		return 0
	}
	targets, ok := byCondition[condition]
	if !ok {
		return 0
	}
	w, ok := targets[next]
	if !ok {
		return 0
	}
	return w
}

// Phase applies one input event for Repeat consecutive steps.
type Phase struct {
	Event  string `json:"event" yaml:"event"`
	Repeat int    `json:"repeat" yaml:"repeat"`
}

// Schedule is the ordered list of phases driving an evolution.
type Schedule []Phase

// TotalSteps returns the number of discrete steps the schedule produces.
func (s Schedule) TotalSteps() int {
	total := 0
	for _, p := range s {
		total += p.Repeat
	}
	return total
}

// BlockingRecord holds the self-loop mass (B) and the cross-transition
// mass (C) of one step.
type BlockingRecord struct {
	B float64 `json:"B" yaml:"B"`
	C float64 `json:"C" yaml:"C"`
}

// Model is the static part of a fuzzy state machine: its states, initial
// memberships, fuzzified inputs and transition relation.
type Model struct {
	States      StateSet
	Initial     MembershipVector
	Inputs      InputFuzzification
	Transitions TransitionRelation
}

// Result is the terminal output of an evolution.
//
// INVARIANTS:
//   - len(History) == 1 + schedule.TotalSteps()
//   - len(Blocking) == schedule.TotalSteps()
//   - Blocking[i] was computed from History[i]
type Result struct {
	States   StateSet
	History  []MembershipVector
	Blocking []BlockingRecord
}

// Steps returns the number of evolved steps (excluding the initial vector).
func (r *Result) Steps() int {
	return len(r.Blocking)
}

// Final returns the last membership vector in the history.
func (r *Result) Final() MembershipVector {
	if len(r.History) == 0 {
		return nil
	}
	return r.History[len(r.History)-1]
}
