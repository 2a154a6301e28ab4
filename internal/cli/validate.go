package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fmmfsm/internal/config"
	"github.com/roach88/fmmfsm/internal/engine"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool            `json:"valid"`
	Config string          `json:"config"`
	Hash   string          `json:"hash,omitempty"`
	States []string        `json:"states,omitempty"`
	Steps  int             `json:"steps"`
	Errors []ValidationErr `json:"errors,omitempty"`
}

// ValidationErr is one configuration problem.
type ValidationErr struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate a configuration without evolving it",
		Long: `Validate a machine configuration without evolving it.

Checks syntax, required fields, value shapes, and that every state and
event referenced is declared. Nothing is written.

Exit codes:
  0 - Configuration is valid
  1 - Configuration is malformed
  2 - Command error (file not found, unsupported extension)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, configPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	formatter.VerboseLog("Validating %s", configPath)

	doc, err := config.Load(configPath)
	if err != nil {
		if !engine.IsMalformed(err) {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to load configuration", err)
		}
		return outputValidationError(formatter, configPath, err)
	}

	hash, err := doc.Hash()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash configuration", err)
	}

	formatter.VerboseLog("States: %v", []string(doc.States))
	formatter.VerboseLog("Phases: %d", len(doc.Schedule))

	return outputValidateSuccess(formatter, ValidationResult{
		Valid:  true,
		Config: doc.Name,
		Hash:   hash,
		States: doc.States,
		Steps:  doc.Schedule.TotalSteps(),
	})
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, res ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(res)
	}

	fmt.Fprintf(formatter.Writer, "✓ %s valid (%d states, %d steps)\n", res.Config, len(res.States), res.Steps)
	return nil
}

// outputValidationError outputs a malformed-configuration error.
func outputValidationError(formatter *OutputFormatter, configPath string, err error) error {
	verr := ValidationErr{
		Code:    errorCodeFor(err),
		Message: err.Error(),
	}
	kind := ""
	var cfgErr *engine.ConfigError
	if errors.As(err, &cfgErr) {
		kind = string(cfgErr.Code)
		verr.Field = cfgErr.Field
		verr.Message = cfgErr.Message
	}

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Config: configPath,
				Errors: []ValidationErr{verr},
			},
			Error: &CLIError{
				Code:    verr.Code,
				Message: verr.Message,
				Details: map[string]string{"kind": kind, "field": verr.Field},
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if encErr := encoder.Encode(response); encErr != nil {
			return encErr
		}
		return WrapExitError(ExitFailure, "validation failed", err)
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	if verr.Field != "" {
		fmt.Fprintf(formatter.Writer, "%s\n", verr.Field)
	}
	fmt.Fprintf(formatter.Writer, "  %s: %s\n", verr.Code, verr.Message)

	return WrapExitError(ExitFailure, "validation failed", err)
}
