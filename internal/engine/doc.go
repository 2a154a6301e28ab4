// Package engine implements the fuzzy finite state machine evolution engine.
//
// The engine advances a membership vector (degree to which the machine is in
// each state) one discrete step at a time by composing it with the fuzzified
// input event and the fuzzy transition relation:
//
//	next(x) = OR over (y, z) of AND(m(y), s(z), φ(y, z)(x))
//
// where AND is the arithmetic product and OR is the probabilistic sum
// 1 - Π(1 - v). Alongside every step the engine reports a blocking record:
// the OR of all self-transition contributions (B) and of all
// cross-transition contributions (C), both computed from the pre-step vector.
//
// ARCHITECTURE:
//
// Evolution is a pure, single-threaded computation:
//   - Model.Validate rejects malformed configurations before any step runs
//   - Evolve walks the schedule phase by phase, step by step
//   - Each step produces a fresh MembershipVector; history entries are never
//     mutated after they are appended
//
// Enumeration order is fixed (states in StateSet order, conditions sorted by
// name) so repeated runs agree bit for bit.
//
// Values outside [0,1] are neither rejected nor clamped; they propagate
// through the arithmetic unchanged.
package engine
