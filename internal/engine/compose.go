package engine

// forEachContribution enumerates every (current, condition, next) triple of
// the step driven by event and passes its AND value to fn.
//
// Order: current states in StateSet order, conditions sorted by name, next
// states in StateSet order. For a fixed next state this visits contributions
// in (current, condition) order, which both NextState and Blocking rely on
// for reproducible floating-point results.
func forEachContribution(m *Model, current MembershipVector, event string, fn func(cur, next string, v float64)) {
	conditions := m.Inputs.Conditions(event)
	degrees := m.Inputs[event]

	for _, cur := range m.States {
		mCur := current[cur]
		for _, cond := range conditions {
			sCond := degrees[cond]
			for _, next := range m.States {
				fn(cur, next, And(mCur, sCond, m.Transitions.Weight(cur, cond, next)))
			}
		}
	}
}

// NextState computes the membership vector that follows current when event
// is applied for one step.
//
// Each next state x receives OR over all (y, z) of AND(m(y), s(z), φ(y,z)(x)).
// A state with no accumulated contribution gets 0. The returned vector is new
// and has exactly the keys of m.States.
func NextState(m *Model, current MembershipVector, event string) MembershipVector {
	incoming := make(map[string][]float64, len(m.States))
	forEachContribution(m, current, event, func(_, next string, v float64) {
		incoming[next] = append(incoming[next], v)
	})

	next := make(MembershipVector, len(m.States))
	for _, s := range m.States {
		next[s] = Or(incoming[s]...)
	}
	return next
}

// Blocking computes the blocking record of the step that applies event to
// current. Contributions whose current and next state coincide go to B, the
// rest to C. It must be called with the pre-step vector.
func Blocking(m *Model, current MembershipVector, event string) BlockingRecord {
	var self, cross []float64
	forEachContribution(m, current, event, func(cur, next string, v float64) {
		if cur == next {
			self = append(self, v)
		} else {
			cross = append(cross, v)
		}
	})
	return BlockingRecord{B: Or(self...), C: Or(cross...)}
}
