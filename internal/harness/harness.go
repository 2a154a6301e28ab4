package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/fmmfsm/internal/config"
	"github.com/roach88/fmmfsm/internal/engine"
	"github.com/roach88/fmmfsm/internal/store"
	"github.com/roach88/fmmfsm/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenarios with a fixed run ID against an isolated store.
type Harness struct {
	store  *store.Store
	runGen engine.RunIDGenerator
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Load and validate the configuration
// 3. Evolve the schedule
// 4. Record the run and read it back
// 5. Evaluate assertions against the stored run
//
// A malformed configuration is returned as an error, not as a failed result.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		runGen: testutil.NewFixedRunIDGenerator(scenario.RunID),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	return h.run(context.Background(), scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	doc, err := config.Load(scenario.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	evolved, err := engine.Evolve(doc.Model(), doc.Schedule)
	if err != nil {
		return nil, fmt.Errorf("failed to evolve: %w", err)
	}

	hash, err := doc.Hash()
	if err != nil {
		return nil, fmt.Errorf("failed to hash config: %w", err)
	}

	runID := h.runGen.Generate()
	if err := h.store.WriteRun(ctx, store.Run{
		ID:         runID,
		ConfigName: doc.Name,
		ConfigHash: hash,
		Result:     evolved,
	}); err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	stored, err := h.store.ReadRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to read run back: %w", err)
	}

	h.logger.Debug("scenario evolved",
		"scenario", scenario.Name,
		"run_id", runID,
		"steps", evolved.Steps(),
	)

	res := NewResult()
	res.RunID = runID
	res.Steps = stored.Result.Steps()
	res.Run = stored.Result

	actx := &AssertionContext{
		Store:     h.store,
		Ctx:       ctx,
		RunID:     runID,
		Tolerance: scenario.Tolerance,
	}
	for _, msg := range EvaluateAssertions(stored.Result, scenario.Assertions, actx) {
		res.AddError(msg)
	}

	return res, nil
}
