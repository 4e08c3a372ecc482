// Package trim removes trailing back matter (index, bibliography, notes and
// similar sections) from normalized book text.
package trim

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultHeaders are matched against the trimmed, upper-cased line. Each is
// anchored at the start; all but the transcriber pattern are anchored at the
// end too.
var DefaultHeaders = []string{
	`^CONTENTS$`,
	`^TABLE OF CONTENTS$`,
	`^TOC$`,
	`^INDEX$`,
	`^INDEX OF AUTHORS$`,
	`^INDEX OF SUBJECTS$`,
	`^GENERAL INDEX$`,
	`^BIBLIOGRAPHY$`,
	`^REFERENCES$`,
	`^ILLUSTRATIONS$`,
	`^LIST OF ILLUSTRATIONS$`,
	`^APPENDIX$`,
	`^APPENDICES$`,
	`^GLOSSARY$`,
	`^FOOTNOTES$`,
	`^NOTES$`,
	`^TRANSCRIBERS?`,
}

// tocRow matches table-of-contents rows such as "CHAPTER I ...... 12".
var tocRow = regexp.MustCompile(`.+\.{2,}\s*\d+$`)

// Policy configures trailing-section detection.
type Policy struct {
	// Headers are regular expressions for noise section titles.
	Headers []string `yaml:"headers"`
	// CutoffFraction is the share of lines a header must lie beyond to cut.
	CutoffFraction float64 `yaml:"cutoff_fraction"`
	// TOCFraction is the leading share of lines scanned for TOC rows.
	TOCFraction float64 `yaml:"toc_fraction"`
	// TOCRowsGuard makes TOC rows skip header matching. When false, TOC
	// rows are recognized but do not change the cut decision.
	TOCRowsGuard bool `yaml:"toc_rows_guard"`
}

// DefaultPolicy returns the stock header set with a 30% cutoff.
func DefaultPolicy() Policy {
	headers := make([]string, len(DefaultHeaders))
	copy(headers, DefaultHeaders)
	return Policy{
		Headers:        headers,
		CutoffFraction: 0.30,
		TOCFraction:    0.25,
	}
}

// LoadPolicy reads a YAML policy file. Fields absent from the file keep
// their default values.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read trim policy: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse trim policy %s: %w", path, err)
	}
	return p, nil
}

// Trimmer applies a compiled Policy.
type Trimmer struct {
	headers  *regexp.Regexp
	cutoff   float64
	tocShare float64
	tocGuard bool
}

// Result describes one trim decision.
type Result struct {
	Lines   int    // Line count of the input.
	Cut     int    // Index of the first dropped line; Lines when nothing is cut.
	Header  string // The matched header line, empty when nothing is cut.
	TOCRows int    // TOC rows recognized in the leading TOCFraction.
}

// Dropped reports how many lines the cut removes.
func (r Result) Dropped() int {
	return r.Lines - r.Cut
}

// New compiles p. Header patterns are combined into one alternation and
// matched case-insensitively.
func New(p Policy) (*Trimmer, error) {
	if p.CutoffFraction < 0 || p.CutoffFraction > 1 {
		return nil, fmt.Errorf("cutoff fraction %.2f out of range [0,1]", p.CutoffFraction)
	}
	if p.TOCFraction < 0 || p.TOCFraction > 1 {
		return nil, fmt.Errorf("toc fraction %.2f out of range [0,1]", p.TOCFraction)
	}

	t := &Trimmer{
		cutoff:   p.CutoffFraction,
		tocShare: p.TOCFraction,
		tocGuard: p.TOCRowsGuard,
	}
	if len(p.Headers) > 0 {
		parts := make([]string, 0, len(p.Headers))
		for _, h := range p.Headers {
			if _, err := regexp.Compile(h); err != nil {
				return nil, fmt.Errorf("header pattern %q: %w", h, err)
			}
			parts = append(parts, "(?:"+h+")")
		}
		t.headers = regexp.MustCompile("(?i)" + strings.Join(parts, "|"))
	}
	return t, nil
}

// Trim drops every line from the first qualifying noise header to the end.
// A header qualifies only when its index is beyond CutoffFraction of the
// line count. Text without a qualifying header is returned trimmed.
func (t *Trimmer) Trim(text string) string {
	out, _ := t.Apply(text)
	return out
}

// Apply trims text and returns the decision alongside the result.
func (t *Trimmer) Apply(text string) (string, Result) {
	lines := strings.Split(text, "\n")
	res := t.inspect(lines)
	return strings.TrimSpace(strings.Join(lines[:res.Cut], "\n")), res
}

func (t *Trimmer) inspect(lines []string) Result {
	total := float64(len(lines))
	res := Result{Lines: len(lines), Cut: len(lines)}

	for i, line := range lines {
		clean := strings.ToUpper(strings.TrimSpace(line))

		if float64(i) < total*t.tocShare && tocRow.MatchString(clean) {
			res.TOCRows++
			if t.tocGuard {
				continue
			}
		}

		if t.headers != nil && t.headers.MatchString(clean) && float64(i) > total*t.cutoff {
			res.Cut = i
			res.Header = strings.TrimSpace(line)
			return res
		}
	}
	return res
}
