package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fmmfsm/internal/result"
	"github.com/roach88/fmmfsm/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
}

// HistoryRun is the JSON payload for a single stored run.
type HistoryRun struct {
	store.RunSummary
	Result *result.Document `json:"result"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List or show recorded runs",
		Long: `List runs recorded with "run --db", or show one run in full.

Without a run ID, lists every run in insertion order. With a run ID,
prints that run's membership and blocking histories.

Examples:
  fmmfsm history --db ./runs.db
  fmmfsm history --db ./runs.db 01927f3a-... --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runShowRun(opts, args[0], cmd)
			}
			return runListRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run store (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runListRuns(opts *HistoryOptions, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	if runs == nil {
		runs = []store.RunSummary{}
	}

	if opts.Format == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(CLIResponse{Status: "ok", Data: runs})
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%4d  %s  %s  states=%d steps=%d\n", r.Seq, r.ID, r.ConfigName, r.States, r.Steps)
		if opts.Verbose {
			fmt.Fprintf(w, "      hash %s\n", r.ConfigHash)
		}
	}
	return nil
}

func runShowRun(opts *HistoryOptions, runID string, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	run, err := st.ReadRun(cmd.Context(), runID)
	if errors.Is(err, store.ErrRunNotFound) {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("run not found: %s", runID), nil)
		return WrapExitError(ExitFailure, "run not found", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	if opts.Format == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(CLIResponse{
			Status: "ok",
			RunID:  run.ID,
			Data: HistoryRun{
				RunSummary: store.RunSummary{
					ID:         run.ID,
					Seq:        run.Seq,
					ConfigName: run.ConfigName,
					ConfigHash: run.ConfigHash,
					States:     len(run.Result.States),
					Steps:      run.Result.Steps(),
				},
				Result: result.FromResult(run.Result),
			},
		})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s (#%d)\n", run.ID, run.Seq)
	fmt.Fprintf(w, "Config: %s\n", run.ConfigName)
	fmt.Fprintf(w, "Hash: %s\n", run.ConfigHash)
	fmt.Fprintln(w)
	fmt.Fprint(w, result.FormatText(run.Result))
	return nil
}
