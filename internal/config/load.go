package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"

	"github.com/roach88/fmmfsm/internal/engine"
)

//go:embed schema.cue
var schemaCUE string

// Top-level field names of a configuration document.
const (
	FieldInitial     = "initial_state_memberships"
	FieldInputs      = "input_fuzzified"
	FieldTransitions = "transition_probabilities"
	FieldSchedule    = "input_schedule"
)

// requiredFields are checked in this order so the first missing one is reported.
var requiredFields = []string{FieldInitial, FieldInputs, FieldTransitions, FieldSchedule}

// Format identifies the syntax of a configuration file.
type Format int

const (
	// FormatJSON is a plain JSON document.
	FormatJSON Format = iota
	// FormatCUE is a CUE document; it may use CUE expressions.
	FormatCUE
	// FormatYAML is a YAML document.
	FormatYAML
)

// String returns the conventional name of the format.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCUE:
		return "cue"
	case FormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".cue":
		return FormatCUE, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("unsupported config format %q (want .json, .cue, .yaml or .yml)", filepath.Ext(path))
	}
}

// Document is a parsed and validated configuration.
type Document struct {
	// Name is the base name of the source file, e.g. "gear1.json".
	Name string

	// States is the ordered StateSet, in declaration order of
	// initial_state_memberships.
	States      engine.StateSet
	Initial     engine.MembershipVector
	Inputs      engine.InputFuzzification
	Transitions engine.TransitionRelation
	Schedule    engine.Schedule
}

// Model returns the engine model described by the document.
func (d *Document) Model() *engine.Model {
	return &engine.Model{
		States:      d.States,
		Initial:     d.Initial,
		Inputs:      d.Inputs,
		Transitions: d.Transitions,
	}
}

// Load reads, parses and validates the configuration at path.
func Load(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	slog.Debug("configuration read", "path", path, "format", format.String(), "content", string(data))

	return Parse(filepath.Base(path), data, format)
}

// Parse parses and validates a configuration held in memory. name is used
// for error positions and as Document.Name.
func Parse(name string, data []byte, format Format) (*Document, error) {
	ctx := cuecontext.New()

	value, err := compile(ctx, name, data, format)
	if err != nil {
		return nil, err
	}

	for _, field := range requiredFields {
		if !value.LookupPath(cue.ParsePath(field)).Exists() {
			return nil, engine.NewConfigError(engine.ErrCodeMissingField, field,
				"required field is missing")
		}
	}

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	doc, err := extract(name, value)
	if err != nil {
		return nil, err
	}

	if err := doc.Model().Validate(doc.Schedule); err != nil {
		return nil, err
	}

	slog.Debug("configuration parsed",
		"name", name,
		"states", len(doc.States),
		"events", len(doc.Inputs),
		"phases", len(doc.Schedule),
		"steps", doc.Schedule.TotalSteps(),
	)
	return doc, nil
}

// compile turns raw bytes into a CUE value. JSON is a subset of CUE and
// compiles directly; YAML goes through the CUE YAML decoder.
func compile(ctx *cue.Context, name string, data []byte, format Format) (cue.Value, error) {
	var value cue.Value
	switch format {
	case FormatYAML:
		file, err := cueyaml.Extract(name, data)
		if err != nil {
			return cue.Value{}, formatCUEError(err)
		}
		value = ctx.BuildFile(file)
	case FormatJSON, FormatCUE:
		value = ctx.CompileBytes(data, cue.Filename(name))
	default:
		return cue.Value{}, fmt.Errorf("unsupported config format %s", format)
	}

	if err := value.Err(); err != nil {
		return cue.Value{}, formatCUEError(err)
	}
	return value, nil
}

// formatCUEError converts the first CUE error into a ConfigError carrying
// its source position.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return engine.NewConfigError(engine.ErrCodeInvalidValue, "", "%v", err)
	}

	first := errs[0]
	field := strings.Join(first.Path(), ".")
	msg := first.Error()
	if positions := cueerrors.Positions(first); len(positions) > 0 && positions[0].IsValid() {
		pos := positions[0]
		msg = fmt.Sprintf("%s:%d:%d: %s", pos.Filename(), pos.Line(), pos.Column(), msg)
	}
	return engine.NewConfigError(engine.ErrCodeInvalidValue, field, "%s", msg)
}
