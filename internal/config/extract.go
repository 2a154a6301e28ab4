package config

import (
	"fmt"
	"log/slog"

	"cuelang.org/go/cue"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/fmmfsm/internal/engine"
)

// field is one struct field in declaration order.
type field struct {
	label string
	value cue.Value
}

// extract copies the schema-checked CUE value into a Document.
func extract(name string, v cue.Value) (*Document, error) {
	doc := &Document{Name: name}

	initial, err := fieldsOf(v.LookupPath(cue.ParsePath(FieldInitial)), FieldInitial)
	if err != nil {
		return nil, err
	}
	doc.Initial = make(engine.MembershipVector, len(initial))
	for _, f := range initial {
		m, err := number(f.value, FieldInitial+"."+f.label)
		if err != nil {
			return nil, err
		}
		doc.States = append(doc.States, f.label)
		doc.Initial[f.label] = m
	}

	if doc.Inputs, err = extractInputs(v.LookupPath(cue.ParsePath(FieldInputs))); err != nil {
		return nil, err
	}
	if doc.Transitions, err = extractTransitions(v.LookupPath(cue.ParsePath(FieldTransitions))); err != nil {
		return nil, err
	}
	if doc.Schedule, err = extractSchedule(v.LookupPath(cue.ParsePath(FieldSchedule))); err != nil {
		return nil, err
	}

	return doc, nil
}

func extractInputs(v cue.Value) (engine.InputFuzzification, error) {
	events, err := fieldsOf(v, FieldInputs)
	if err != nil {
		return nil, err
	}

	inputs := make(engine.InputFuzzification, len(events))
	for _, ev := range events {
		path := FieldInputs + "." + ev.label
		conds, err := fieldsOf(ev.value, path)
		if err != nil {
			return nil, err
		}
		degrees := make(map[string]float64, len(conds))
		for _, c := range conds {
			if degrees[c.label], err = number(c.value, path+"."+c.label); err != nil {
				return nil, err
			}
		}
		inputs[ev.label] = degrees
	}
	return inputs, nil
}

func extractTransitions(v cue.Value) (engine.TransitionRelation, error) {
	rows, err := fieldsOf(v, FieldTransitions)
	if err != nil {
		return nil, err
	}

	rel := make(engine.TransitionRelation, len(rows))
	for _, row := range rows {
		rowPath := FieldTransitions + "." + row.label
		conds, err := fieldsOf(row.value, rowPath)
		if err != nil {
			return nil, err
		}
		byCondition := make(map[string]map[string]float64, len(conds))
		for _, c := range conds {
			condPath := rowPath + "." + c.label
			targets, err := fieldsOf(c.value, condPath)
			if err != nil {
				return nil, err
			}
			weights := make(map[string]float64, len(targets))
			for _, t := range targets {
				if weights[t.label], err = number(t.value, condPath+"."+t.label); err != nil {
					return nil, err
				}
			}
			byCondition[c.label] = weights
		}
		rel[row.label] = byCondition
	}
	return rel, nil
}

func extractSchedule(v cue.Value) (engine.Schedule, error) {
	list, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	schedule := engine.Schedule{}
	for i := 0; list.Next(); i++ {
		path := fmt.Sprintf("%s[%d]", FieldSchedule, i)

		entry, err := list.Value().List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if !entry.Next() {
			return nil, engine.NewConfigError(engine.ErrCodeInvalidValue, path, "entry must be [event, repeat]")
		}
		event, err := entry.Value().String()
		if err != nil {
			return nil, engine.NewConfigError(engine.ErrCodeInvalidValue, path, "event must be a string: %v", err)
		}
		if !entry.Next() {
			return nil, engine.NewConfigError(engine.ErrCodeInvalidValue, path, "entry must be [event, repeat]")
		}
		repeat, err := entry.Value().Int64()
		if err != nil {
			return nil, engine.NewConfigError(engine.ErrCodeInvalidValue, path, "repeat must be an integer: %v", err)
		}

		schedule = append(schedule, engine.Phase{Event: norm.NFC.String(event), Repeat: int(repeat)})
	}
	return schedule, nil
}

// fieldsOf lists the regular fields of a struct value with NFC-normalized
// labels. Two labels that normalize to the same identifier are rejected.
func fieldsOf(v cue.Value, path string) ([]field, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []field
	seen := make(map[string]bool)
	for iter.Next() {
		label := norm.NFC.String(iter.Selector().Unquoted())
		if seen[label] {
			return nil, engine.NewConfigError(engine.ErrCodeInvalidValue, path+"."+label,
				"identifier %q is declared twice after normalization", label)
		}
		seen[label] = true
		out = append(out, field{label: label, value: iter.Value()})
	}
	return out, nil
}

// number reads a membership or weight. Out-of-range values are logged and
// kept as they are.
func number(v cue.Value, path string) (float64, error) {
	f, err := v.Float64()
	if err != nil {
		return 0, engine.NewConfigError(engine.ErrCodeInvalidValue, path, "not a number: %v", err)
	}
	if f < 0 || f > 1 {
		slog.Warn("value outside [0,1] passed through unchanged", "field", path, "value", f)
	}
	return f, nil
}
