package engine

// And is the fuzzy conjunction: the product of all values.
//
// An empty input returns 1, the multiplicative identity. The engine always
// calls And with exactly three operands.
func And(values ...float64) float64 {
	result := 1.0
	for _, v := range values {
		result *= v
	}
	return result
}

// Or is the fuzzy disjunction (probabilistic sum): 1 - Π(1 - v).
//
// An empty input returns 0, which is the membership given to a state that
// receives no transition mass in a step.
func Or(values ...float64) float64 {
	if len(values) == 0 {
		return 0
	}
	complement := 1.0
	for _, v := range values {
		complement *= 1 - v
	}
	return 1 - complement
}
