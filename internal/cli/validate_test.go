package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fmmfsm/internal/testutil"
)

func TestValidateValidConfig(t *testing.T) {
	configPath := testutil.WriteFile(t, t.TempDir(), "gear1.json", testutil.GearJSON)

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{configPath})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "✓ gear1.json valid (3 states, 7 steps)\n", buf.String())
}

func TestValidateValidConfigJSON(t *testing.T) {
	configPath := testutil.WriteFile(t, t.TempDir(), "two.yaml", testutil.TwoStateYAML)

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{configPath})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, "two.yaml", resp.Data.Config)
	assert.Equal(t, []string{"A", "B"}, resp.Data.States)
	assert.Equal(t, 2, resp.Data.Steps)
	assert.Len(t, resp.Data.Hash, 64)
}

func TestValidateMalformedConfigs(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantCode string
		field    string
	}{
		{
			name:     "missing schedule",
			content:  `{"initial_state_memberships": {"A": 1}, "input_fuzzified": {}, "transition_probabilities": {}}`,
			wantCode: ErrCodeMissingField,
			field:    "input_schedule",
		},
		{
			name: "unknown event",
			content: `{"initial_state_memberships": {"A": 1}, "input_fuzzified": {"e": {"c": 1}},
				"transition_probabilities": {}, "input_schedule": [["x", 1]]}`,
			wantCode: ErrCodeUnknownEvent,
			field:    "input_schedule[0]",
		},
		{
			name: "unknown state",
			content: `{"initial_state_memberships": {"A": 1}, "input_fuzzified": {"e": {"c": 1}},
				"transition_probabilities": {"Q": {"c": {"A": 1}}}, "input_schedule": []}`,
			wantCode: ErrCodeUnknownState,
			field:    "transition_probabilities.Q",
		},
		{
			name: "empty state set",
			content: `{"initial_state_memberships": {}, "input_fuzzified": {},
				"transition_probabilities": {}, "input_schedule": []}`,
			wantCode: ErrCodeEmptyStateSet,
			field:    "initial_state_memberships",
		},
		{
			name: "string membership",
			content: `{"initial_state_memberships": {"A": "high"}, "input_fuzzified": {},
				"transition_probabilities": {}, "input_schedule": []}`,
			wantCode: ErrCodeInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := testutil.WriteFile(t, t.TempDir(), "bad.json", tt.content)

			buf := &bytes.Buffer{}
			cmd := NewValidateCommand(&RootOptions{Format: "json"})
			cmd.SetOut(buf)
			cmd.SetArgs([]string{configPath})

			err := cmd.Execute()
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))

			var resp struct {
				Status string           `json:"status"`
				Data   ValidationResult `json:"data"`
				Error  *CLIError        `json:"error"`
			}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
			assert.Equal(t, "error", resp.Status)
			assert.False(t, resp.Data.Valid)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			require.Len(t, resp.Data.Errors, 1)
			if tt.field != "" {
				assert.Equal(t, tt.field, resp.Data.Errors[0].Field)
			}
		})
	}
}

func TestValidateMalformedText(t *testing.T) {
	configPath := testutil.WriteFile(t, t.TempDir(), "bad.json",
		`{"initial_state_memberships": {"A": 1}, "input_fuzzified": {"e": {"c": 1}},
		"transition_probabilities": {}, "input_schedule": [["x", 1]]}`)

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{configPath})

	err := cmd.Execute()
	require.Error(t, err)

	output := buf.String()
	assert.Contains(t, output, "✗ Validation failed")
	assert.Contains(t, output, "input_schedule[0]")
	assert.Contains(t, output, "E102:")
}

func TestValidateNonExistentFile(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "absent.json")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E001]")
}

func TestValidateUnsupportedExtension(t *testing.T) {
	configPath := testutil.WriteFile(t, t.TempDir(), "machine.toml", "x = 1\n")

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{configPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "unsupported config format")
}

func TestValidateVerbose(t *testing.T) {
	configPath := testutil.WriteFile(t, t.TempDir(), "two.json", testutil.TwoStateJSON)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "json", Verbose: true})
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{configPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stderr.String(), "States: [A B]")
	assert.True(t, json.Valid(stdout.Bytes()), "verbose logs must not corrupt JSON output")
}
