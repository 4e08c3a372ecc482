// Package dedup drops repeated paragraphs from a document.
package dedup

import (
	"regexp"
	"strings"
)

var spaceRuns = regexp.MustCompile(`\s+`)

// Stats counts the outcome of one Paragraphs call.
type Stats struct {
	Kept    int
	Dropped int // Repeated paragraphs only; empty ones are not counted.
}

// Key returns the comparison key for a paragraph: lowercase with every
// whitespace run collapsed to a single space.
func Key(paragraph string) string {
	return spaceRuns.ReplaceAllString(strings.ToLower(strings.TrimSpace(paragraph)), " ")
}

// Paragraphs keeps the first occurrence of each paragraph and re-joins the
// survivors with a blank line.
func Paragraphs(text string) string {
	out, _ := ParagraphsWithStats(text)
	return out
}

// ParagraphsWithStats is Paragraphs plus kept/dropped counts.
func ParagraphsWithStats(text string) (string, Stats) {
	var (
		st   Stats
		kept []string
		seen = make(map[string]struct{})
	)
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		k := Key(p)
		if _, dup := seen[k]; dup {
			st.Dropped++
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, p)
	}
	st.Kept = len(kept)
	return strings.Join(kept, "\n\n"), st
}
