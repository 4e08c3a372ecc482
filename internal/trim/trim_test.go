package trim

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// numberedLines builds n lines "line 1".."line n" and replaces the 1-based
// positions in overrides.
func numberedLines(n int, overrides map[int]string) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
		if v, ok := overrides[i+1]; ok {
			lines[i] = v
		}
	}
	return lines
}

func defaultTrimmer(t *testing.T) *Trimmer {
	t.Helper()
	tr, err := New(DefaultPolicy())
	require.NoError(t, err)
	return tr
}

func TestTrim_HeaderLateInDocumentCuts(t *testing.T) {
	lines := numberedLines(100, map[int]string{85: "CONTENTS"})
	got, res := defaultTrimmer(t).Apply(strings.Join(lines, "\n"))

	assert.Equal(t, strings.Join(lines[:84], "\n"), got)
	assert.Equal(t, 84, res.Cut)
	assert.Equal(t, 16, res.Dropped())
	assert.Equal(t, "CONTENTS", res.Header)
}

func TestTrim_HeaderEarlyInDocumentKept(t *testing.T) {
	lines := numberedLines(100, map[int]string{5: "CONTENTS"})
	text := strings.Join(lines, "\n")
	got, res := defaultTrimmer(t).Apply(text)

	assert.Equal(t, text, got)
	assert.Equal(t, 0, res.Dropped())
	assert.Contains(t, got, "CONTENTS")
}

func TestTrim_FirstQualifyingHeaderWins(t *testing.T) {
	lines := numberedLines(100, map[int]string{
		10: "INDEX",
		60: "  Bibliography  ",
		90: "NOTES",
	})
	got, res := defaultTrimmer(t).Apply(strings.Join(lines, "\n"))
	assert.Equal(t, 59, res.Cut)
	assert.Equal(t, "Bibliography", res.Header)
	assert.True(t, strings.HasSuffix(got, "line 59"))
	assert.Contains(t, got, "INDEX")
}

func TestTrim_HeaderMatching(t *testing.T) {
	tests := []struct {
		header string
		cuts   bool
	}{
		{"TABLE OF CONTENTS", true},
		{"index", true},
		{"General Index", true},
		{"LIST OF ILLUSTRATIONS", true},
		{"APPENDICES", true},
		{"FOOTNOTES", true},
		{"TRANSCRIBER'S NOTES", true},
		{"Transcribers Note", true},
		{"INDEX TO VOLUME II", false},
		{"THE NOTES OF A DREAMER", false},
		{"Some notes on dreams", false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			lines := numberedLines(20, map[int]string{15: tt.header})
			_, res := defaultTrimmer(t).Apply(strings.Join(lines, "\n"))
			if tt.cuts {
				assert.Equal(t, 14, res.Cut)
			} else {
				assert.Equal(t, 20, res.Cut)
			}
		})
	}
}

func TestTrim_ThresholdIsStrict(t *testing.T) {
	// 10 lines put the threshold at 3.0; index 3 sits on it and is kept.
	lines := numberedLines(10, map[int]string{5: "INDEX"})
	_, res := defaultTrimmer(t).Apply(strings.Join(lines, "\n"))
	assert.Equal(t, 4, res.Cut)

	lines = numberedLines(10, map[int]string{4: "INDEX"})
	_, res = defaultTrimmer(t).Apply(strings.Join(lines, "\n"))
	assert.Equal(t, 10, res.Cut)
}

func TestTrim_TOCRowsAreNoOpByDefault(t *testing.T) {
	lines := numberedLines(40, map[int]string{
		2:  "CHAPTER I ........ 12",
		3:  "CHAPTER II ....... 40",
		30: "INDEX",
	})
	_, res := defaultTrimmer(t).Apply(strings.Join(lines, "\n"))
	assert.Equal(t, 2, res.TOCRows)
	assert.Equal(t, 29, res.Cut)
}

func TestTrim_TOCRowsGuard(t *testing.T) {
	p := DefaultPolicy()
	p.TOCRowsGuard = true
	p.Headers = append(p.Headers, `^APPENDIX\b.*`)
	p.CutoffFraction = 0
	tr, err := New(p)
	require.NoError(t, err)

	lines := numberedLines(40, map[int]string{
		3:  "APPENDIX A .......... 301",
		35: "APPENDIX B",
	})
	_, res := tr.Apply(strings.Join(lines, "\n"))
	assert.Equal(t, 1, res.TOCRows)
	assert.Equal(t, 34, res.Cut, "guarded TOC row must not trigger the cut")

	p.TOCRowsGuard = false
	tr, err = New(p)
	require.NoError(t, err)
	_, res = tr.Apply(strings.Join(lines, "\n"))
	assert.Equal(t, 2, res.Cut)
}

func TestTrim_OnlyEverRemovesSuffix(t *testing.T) {
	lines := numberedLines(50, map[int]string{45: "GLOSSARY"})
	text := strings.Join(lines, "\n")
	got := defaultTrimmer(t).Trim(text)
	assert.True(t, strings.HasPrefix(text, got))
	assert.LessOrEqual(t, len(got), len(text))
}

func TestTrim_EmptyAndNoHeaders(t *testing.T) {
	assert.Equal(t, "", defaultTrimmer(t).Trim(""))

	tr, err := New(Policy{})
	require.NoError(t, err)
	text := strings.Join(numberedLines(10, map[int]string{9: "INDEX"}), "\n")
	assert.Equal(t, text, tr.Trim(text))
}

func TestNew_RejectsBadPolicy(t *testing.T) {
	_, err := New(Policy{CutoffFraction: 1.5})
	assert.Error(t, err)

	_, err = New(Policy{TOCFraction: -0.1})
	assert.Error(t, err)

	_, err = New(Policy{Headers: []string{"(unclosed"}})
	assert.Error(t, err)
}

func TestLoadPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
headers:
  - '^EPILOGUE$'
cutoff_fraction: 0.5
toc_rows_guard: true
`), 0o644))

	p, err := LoadPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"^EPILOGUE$"}, p.Headers)
	assert.Equal(t, 0.5, p.CutoffFraction)
	assert.Equal(t, 0.25, p.TOCFraction)
	assert.True(t, p.TOCRowsGuard)

	tr, err := New(p)
	require.NoError(t, err)
	lines := numberedLines(10, map[int]string{4: "EPILOGUE", 8: "Epilogue"})
	_, res := tr.Apply(strings.Join(lines, "\n"))
	assert.Equal(t, 7, res.Cut)
}

func TestLoadPolicy_Errors(t *testing.T) {
	_, err := LoadPolicy(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("headers: [unterminated"), 0o644))
	_, err = LoadPolicy(path)
	assert.Error(t, err)
}
