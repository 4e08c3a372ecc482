package report

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/bookgest/internal/sink"
)

func wordCount(s string) (int, error) { return len(strings.Fields(s)), nil }

func TestCountTokens(t *testing.T) {
	out, err := sink.NewJSONL(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)
	require.NoError(t, out.WriteProcessed("84", "en", "one two three"))
	require.NoError(t, out.WriteProcessed("2000", "es", "uno dos"))

	got, err := CountTokens(context.Background(), out, wordCount)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Total)
	assert.Equal(t, []FileTokens{
		{Name: "2000_es.txt", BookID: "2000", Lang: "es", Tokens: 2},
		{Name: "84_en.txt", BookID: "84", Lang: "en", Tokens: 3},
	}, got.Files)
}

func TestCost(t *testing.T) {
	tok := &Tokens{Total: 2_500_000}
	assert.InDelta(t, 0.05, tok.Cost(EmbeddingPrices[0]), 1e-9)
	assert.InDelta(t, 2.5, tok.Cost(Price{PerMillion: 1}), 1e-9)
}

func TestWriteText(t *testing.T) {
	tok := &Tokens{
		Files: []FileTokens{{Name: "84_en.txt", Tokens: 1234567}},
		Total: 1234567,
	}
	var buf bytes.Buffer
	require.NoError(t, tok.WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, "84_en.txt")
	assert.Contains(t, out, "1,234,567")
	assert.Contains(t, out, "OpenAI text-embedding-3-small")
	assert.Contains(t, out, "$0.0247")
	assert.Contains(t, out, "$1.2346")
}
