package segment

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPunkt(t *testing.T) *Punkt {
	t.Helper()
	p, err := NewPunkt(nil)
	require.NoError(t, err)
	return p
}

func TestPunkt_SplitsSentences(t *testing.T) {
	got, err := newPunkt(t).Split("Call me Ishmael. Some years ago I went to sea. Why not?", "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"Call me Ishmael.", "Some years ago I went to sea.", "Why not?"}, got)
}

func TestPunkt_NeverCrossesParagraphs(t *testing.T) {
	text := "The first paragraph ends without a stop\n\nthe second starts in lower case. It ends here."
	got, err := newPunkt(t).Split(text, "en")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "The first paragraph ends without a stop", got[0])
}

func TestPunkt_CoversInput(t *testing.T) {
	text := "Mr. Bennet was among the earliest of those who waited on Mr. Bingley. He had always intended to visit him.\n\nShe was silent."
	got, err := newPunkt(t).Split(text, "en")
	require.NoError(t, err)
	assert.Equal(t, strings.Join(strings.Fields(text), " "), strings.Join(strings.Fields(strings.Join(got, " ")), " "))
	for _, s := range got {
		assert.NotEmpty(t, s)
	}
}

func TestPunkt_LanguageModels(t *testing.T) {
	p := newPunkt(t)

	got, err := p.Split("Es war einmal ein König. Er hatte drei Töchter.", "de")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// No bundled Latin model; the English one is used.
	got, err = p.Split("Gallia est omnis divisa in partes tres. Quarum unam incolunt Belgae.", "la")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = p.Split("Unknown tag. Still splits.", "unknown")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestPunkt_UnbundledModelFallsBackToEnglish(t *testing.T) {
	var logs bytes.Buffer
	p, err := NewPunkt(slog.New(slog.NewTextHandler(&logs, nil)))
	require.NoError(t, err)

	for _, lang := range []string{"de", "fr", "es", "de"} {
		got, err := p.Split("Il était une fois un roi. Er hatte drei Töchter.", lang)
		require.NoError(t, err, lang)
		assert.Len(t, got, 2, lang)
	}
	// Logged once per missing model, not per call.
	assert.Equal(t, 1, strings.Count(logs.String(), "model=german"))
}

func TestPunkt_Empty(t *testing.T) {
	got, err := newPunkt(t).Split("  \n\n ", "en")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParagraphs(t *testing.T) {
	assert.Equal(t, []string{"a", "b\nc"}, Paragraphs("\n\na \n\n\n\nb\nc\n\n"))
}
