package engine

import (
	"log/slog"
)

// Evolve runs the schedule against the model starting from m.Initial.
//
// The model and schedule are validated first; a malformed configuration
// returns a *ConfigError and no step is executed. Otherwise, for every phase
// and every repetition, the blocking record is computed from the current
// vector, then the vector is advanced and appended to the history.
//
// A phase with Repeat == 0 contributes nothing. An empty schedule yields a
// history holding only the initial vector and no blocking records.
func Evolve(m *Model, schedule Schedule) (*Result, error) {
	if err := m.Validate(schedule); err != nil {
		return nil, err
	}

	total := schedule.TotalSteps()
	current := m.Initial.Clone()
	res := &Result{
		States:   m.States,
		History:  make([]MembershipVector, 0, total+1),
		Blocking: make([]BlockingRecord, 0, total),
	}
	res.History = append(res.History, current)

	step := 0
	for _, phase := range schedule {
		for range phase.Repeat {
			rec := Blocking(m, current, phase.Event)
			res.Blocking = append(res.Blocking, rec)

			current = NextState(m, current, phase.Event)
			res.History = append(res.History, current)
			step++

			slog.Debug("step evolved",
				"step", step,
				"event", phase.Event,
				"blocking", rec.B,
				"cross", rec.C,
			)
		}
	}

	slog.Info("evolution complete",
		"states", len(m.States),
		"phases", len(schedule),
		"steps", step,
	)
	return res, nil
}
