// Package normalize canonicalizes unicode form and whitespace layout of
// extracted book text.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	blankRuns  = regexp.MustCompile(`\n{3,}`)
	decoration = regexp.MustCompile(`(?m)^[*\-=]{3,}[\p{Z}\t\v\f\x{85}]*$`)
)

// Normalizer applies a fixed sequence of canonicalization steps.
type Normalizer struct {
	form norm.Form
}

// New returns a Normalizer using the given composed unicode form.
func New(form norm.Form) *Normalizer {
	return &Normalizer{form: form}
}

// ParseForm maps a configuration value to a composed unicode form.
func ParseForm(name string) (norm.Form, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "NFKC":
		return norm.NFKC, nil
	case "NFC":
		return norm.NFC, nil
	default:
		return norm.NFKC, fmt.Errorf("unsupported normal form %q (want NFC or NFKC)", name)
	}
}

// DefaultForm is compatibility composition, which also folds ligatures and
// full-width forms.
const DefaultForm = norm.NFKC

var defaultNormalizer = New(DefaultForm)

// Text normalizes s with the default NFKC normalizer.
func Text(s string) string {
	return defaultNormalizer.Normalize(s)
}

// Normalize returns s with composed unicode, no carriage returns, no
// decoration rule lines, no trailing whitespace per line and no run of three
// or more newlines.
//
// A single pass can expose new work (a removed rule line leaves a blank run,
// the final trim can turn "  ***" into a rule line), so passes repeat until
// the text is stable. Every pass after the first only deletes characters.
func (n *Normalizer) Normalize(s string) string {
	for {
		next := n.pass(s)
		if next == s {
			return next
		}
		s = next
	}
}

func (n *Normalizer) pass(s string) string {
	s = n.form.String(s)
	s = strings.ReplaceAll(s, "\r", "")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	s = decoration.ReplaceAllString(s, "")
	s = rtrimLines(s)
	return strings.TrimSpace(s)
}

func rtrimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	return strings.Join(lines, "\n")
}
