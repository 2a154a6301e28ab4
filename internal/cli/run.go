package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/fmmfsm/internal/config"
	"github.com/roach88/fmmfsm/internal/engine"
	"github.com/roach88/fmmfsm/internal/result"
	"github.com/roach88/fmmfsm/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	OutDir       string // result directory; defaults to <config dir>/computed/FMMFSM
	NoSave       bool
	Database     string // optional run store
	ResultFormat string // "json" | "yaml"

	// RunIDGenerator allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDGenerator engine.RunIDGenerator
}

// RunOutput is the JSON payload of the run command.
type RunOutput struct {
	Config     string           `json:"config"`
	ConfigHash string           `json:"config_hash"`
	States     []string         `json:"states"`
	Steps      int              `json:"steps"`
	ResultPath string           `json:"result_path,omitempty"`
	Result     *result.Document `json:"result"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <config>",
		Short: "Evolve a configuration through its input schedule",
		Long: `Evolve a machine configuration through its input schedule.

The configuration (JSON, YAML or CUE) is validated, evolved step by step,
and the membership and blocking histories are written to
<config dir>/computed/FMMFSM/<config file name>Result.<format>.
With --db the run is also recorded in a SQLite run store.

Examples:
  fmmfsm run ./cases/gear1.json
  fmmfsm run ./cases/gear1.json --result-format yaml --out ./results
  fmmfsm run ./cases/gear1.json --db ./runs.db --format json
  fmmfsm run ./cases/gear1.json --no-save --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvolve(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.OutDir, "out", "", "result directory (default <config dir>/computed/FMMFSM)")
	cmd.Flags().BoolVar(&opts.NoSave, "no-save", false, "do not write the result file")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run store (optional)")
	cmd.Flags().StringVar(&opts.ResultFormat, "result-format", string(result.FormatJSON), "result file format (json|yaml)")

	return cmd
}

func runEvolve(opts *RunOptions, configPath string, cmd *cobra.Command) error {
	configureLogging(cmd.ErrOrStderr(), opts.Verbose)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	resultFormat, err := result.ParseFormat(opts.ResultFormat)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid flag", err)
	}

	slog.Info("loading configuration", "path", configPath)
	doc, err := config.Load(configPath)
	if err != nil {
		return configFailure(formatter, err)
	}

	hash, err := doc.Hash()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash configuration", err)
	}
	slog.Info("configuration loaded",
		"name", doc.Name,
		"states", len(doc.States),
		"phases", len(doc.Schedule),
		"hash", hash,
	)

	evolved, err := engine.Evolve(doc.Model(), doc.Schedule)
	if err != nil {
		return configFailure(formatter, err)
	}

	out := RunOutput{
		Config:     doc.Name,
		ConfigHash: hash,
		States:     doc.States,
		Steps:      evolved.Steps(),
		Result:     result.FromResult(evolved),
	}

	if !opts.NoSave {
		dir := opts.OutDir
		if dir == "" {
			dir = result.DefaultDir(configPath)
		}
		path, err := result.Save(dir, doc.Name, resultFormat, evolved)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to save result", err)
		}
		out.ResultPath = path
		slog.Info("result saved", "path", path)
	}

	var runID string
	if opts.Database != "" {
		runID, err = recordRun(cmd, opts, doc.Name, hash, evolved)
		if err != nil {
			return err
		}
	}

	if opts.Format == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(CLIResponse{Status: "ok", Data: out, RunID: runID})
	}

	w := cmd.OutOrStdout()
	fmt.Fprint(w, result.FormatText(evolved))
	if out.ResultPath != "" {
		fmt.Fprintf(w, "Result saved to %s\n", out.ResultPath)
	}
	if runID != "" {
		fmt.Fprintf(w, "Run recorded as %s\n", runID)
	}
	return nil
}

// recordRun writes the evolution to the run store and returns its ID.
func recordRun(cmd *cobra.Command, opts *RunOptions, name, hash string, evolved *engine.Result) (string, error) {
	st, err := store.Open(opts.Database)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	gen := opts.RunIDGenerator
	if gen == nil {
		gen = engine.UUIDv7Generator{}
	}
	runID := gen.Generate()

	if err := st.WriteRun(cmd.Context(), store.Run{
		ID:         runID,
		ConfigName: name,
		ConfigHash: hash,
		Result:     evolved,
	}); err != nil {
		return "", WrapExitError(ExitCommandError, "failed to record run", err)
	}
	slog.Info("run recorded", "run_id", runID, "db", opts.Database)
	return runID, nil
}

// configFailure reports a load or validation error. Malformed configurations
// exit with ExitFailure; anything else (unreadable file, unsupported
// extension) is a command error.
func configFailure(formatter *OutputFormatter, err error) error {
	if !engine.IsMalformed(err) {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	code := errorCodeFor(err)
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitFailure, "malformed configuration", err)
}
