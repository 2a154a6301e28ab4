package result

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/fmmfsm/internal/engine"
)

func twoStateResult() *engine.Result {
	return &engine.Result{
		States: engine.StateSet{"B", "A"},
		History: []engine.MembershipVector{
			{"A": 1, "B": 0},
			{"A": 0, "B": 1},
			{"A": 0, "B": 1},
		},
		Blocking: []engine.BlockingRecord{
			{B: 0, C: 1},
			{B: 1, C: 0},
		},
	}
}

func TestDocument_EncodeJSON(t *testing.T) {
	data, err := FromResult(twoStateResult()).Encode(FormatJSON)
	require.NoError(t, err)

	text := string(data)
	// Keys follow the StateSet order, not alphabetical order.
	assert.Less(t, strings.Index(text, `"B": 0`), strings.Index(text, `"A": 1`))
	assert.Contains(t, text, "\n    \"state_membership_history\": [")
	assert.True(t, strings.HasSuffix(text, "}\n"))

	var decoded struct {
		History  []map[string]float64    `json:"state_membership_history"`
		Blocking []engine.BlockingRecord `json:"blocking_history"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.History, 3)
	require.Len(t, decoded.Blocking, 2)
	assert.Equal(t, map[string]float64{"A": 0, "B": 1}, decoded.History[2])
	assert.Equal(t, engine.BlockingRecord{B: 0, C: 1}, decoded.Blocking[0])
}

func TestDocument_EncodeYAML(t *testing.T) {
	data, err := FromResult(twoStateResult()).Encode(FormatYAML)
	require.NoError(t, err)

	var decoded struct {
		History  []map[string]float64 `yaml:"state_membership_history"`
		Blocking []map[string]float64 `yaml:"blocking_history"`
	}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	require.Len(t, decoded.History, 3)
	assert.InDelta(t, 1.0, decoded.History[0]["A"], 1e-12)
	assert.InDelta(t, 1.0, decoded.Blocking[1]["B"], 1e-12)
}

func TestDocument_EmptyBlocking(t *testing.T) {
	res := &engine.Result{
		States:   engine.StateSet{"A"},
		History:  []engine.MembershipVector{{"A": 0.5}},
		Blocking: []engine.BlockingRecord{},
	}

	data, err := FromResult(res).Encode(FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"blocking_history": []`)
}

func TestDocument_InvalidFormat(t *testing.T) {
	_, err := FromResult(twoStateResult()).Encode("xml")
	assert.Error(t, err)

	_, err = ParseFormat("xml")
	assert.Error(t, err)

	f, err := ParseFormat("yaml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
}

func TestPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "gear1.jsonResult.json"), Path("out", "gear1.json", FormatJSON))
	assert.Equal(t, filepath.Join("out", "gear1.jsonResult.yaml"), Path("out", "gear1.json", FormatYAML))
	assert.Equal(t, filepath.Join("cases", "gear", "computed", "FMMFSM"), DefaultDir(filepath.Join("cases", "gear", "gear1.json")))
}

func TestSave_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "computed", "FMMFSM")

	path, err := Save(dir, "two.json", FormatJSON, twoStateResult())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "two.jsonResult.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestFormatText(t *testing.T) {
	want := "step 0: B=0.000000 A=1.000000 blocking(B=0.000000 C=1.000000)\n" +
		"step 1: B=1.000000 A=0.000000 blocking(B=1.000000 C=0.000000)\n" +
		"step 2: B=1.000000 A=0.000000\n"

	assert.Equal(t, want, FormatText(twoStateResult()))
}
