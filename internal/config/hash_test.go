package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fmmfsm/internal/testutil"
)

func TestHash_StableAcrossFormats(t *testing.T) {
	fromJSON, err := Parse("two.json", []byte(testutil.TwoStateJSON), FormatJSON)
	require.NoError(t, err)
	fromYAML, err := Parse("two.yaml", []byte(testutil.TwoStateYAML), FormatYAML)
	require.NoError(t, err)
	fromCUE, err := Parse("other-name.cue", []byte(testutil.TwoStateCUE), FormatCUE)
	require.NoError(t, err)

	h1, err := fromJSON.Hash()
	require.NoError(t, err)
	h2, err := fromYAML.Hash()
	require.NoError(t, err)
	h3, err := fromCUE.Hash()
	require.NoError(t, err)

	assert.Len(t, h1, 64)
	assert.Equal(t, h1, h2)
	assert.Equal(t, h1, h3)
}

func TestHash_SensitiveToContent(t *testing.T) {
	doc, err := Parse("two.json", []byte(testutil.TwoStateJSON), FormatJSON)
	require.NoError(t, err)
	base, err := doc.Hash()
	require.NoError(t, err)

	doc.Schedule[0].Repeat = 3
	changed, err := doc.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, base, changed)

	doc.Schedule[0].Repeat = 2
	doc.Transitions["A"]["c"]["B"] = 0.5
	changed, err = doc.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, base, changed)
}

func TestHash_StateOrderMatters(t *testing.T) {
	doc, err := Parse("two.json", []byte(testutil.TwoStateJSON), FormatJSON)
	require.NoError(t, err)
	base, err := doc.Hash()
	require.NoError(t, err)

	doc.States = []string{"B", "A"}
	reordered, err := doc.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, base, reordered)
}
