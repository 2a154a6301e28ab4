// Package config loads fuzzy state machine configurations.
//
// A configuration document carries four required fields:
//
//	initial_state_memberships: { state: membership }
//	input_fuzzified:           { event: { condition: membership } }
//	transition_probabilities:  { state: { condition: { next_state: weight } } }
//	input_schedule:            [ [event, repeat], ... ]
//
// Documents may be written as JSON, CUE or YAML. All three are evaluated with
// the CUE SDK and unified with an embedded #Config schema before any value is
// extracted, so shape errors are reported with file positions.
//
// Validation is fail-fast: Load returns the first problem as an
// *engine.ConfigError naming the offending field, and nothing is returned
// for a document that would start an evolution with partial data.
//
// Identifiers are NFC-normalized. Memberships and weights outside [0,1] are
// accepted and logged at Warn; they are never clamped.
package config
