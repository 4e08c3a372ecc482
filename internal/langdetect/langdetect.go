// Package langdetect tags a document with the language of its opening text.
package langdetect

import (
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"

	"github.com/dgallion1/bookgest/internal/book"
)

// DefaultSampleChars is how much leading text is classified.
const DefaultSampleChars = 4000

// DefaultLanguages is the stock candidate set.
var DefaultLanguages = []string{"en", "de", "fr", "nl", "it", "es", "sv", "da", "pt", "fi", "pl", "cs", "la"}

var supported = map[string]lingua.Language{
	"en": lingua.English,
	"de": lingua.German,
	"fr": lingua.French,
	"nl": lingua.Dutch,
	"it": lingua.Italian,
	"es": lingua.Spanish,
	"sv": lingua.Swedish,
	"da": lingua.Danish,
	"pt": lingua.Portuguese,
	"fi": lingua.Finnish,
	"pl": lingua.Polish,
	"cs": lingua.Czech,
	"la": lingua.Latin,
	"hu": lingua.Hungarian,
	"ru": lingua.Russian,
	"el": lingua.Greek,
	"no": lingua.Bokmal,
}

// Detector classifies text into a closed set of two-letter codes or
// book.LangUnknown.
type Detector interface {
	Detect(text string) string
}

// Options configures a Lingua detector.
type Options struct {
	Languages   []string // Two-letter codes; DefaultLanguages when empty.
	SampleChars int      // DefaultSampleChars when zero.
	// MinDistance is lingua's minimum relative distance in [0, 0.99].
	// Higher values return unknown more often on short or mixed samples.
	MinDistance float64
}

// Lingua wraps a lingua-go detector restricted to the configured candidates.
// It is safe for concurrent use.
type Lingua struct {
	detector lingua.LanguageDetector
	codes    map[lingua.Language]string
	sample   int
}

// NewLingua builds the statistical models for the candidate languages. This
// is expensive and should happen once per process.
func NewLingua(opts Options) (*Lingua, error) {
	codes := opts.Languages
	if len(codes) == 0 {
		codes = DefaultLanguages
	}
	if opts.MinDistance < 0 || opts.MinDistance > 0.99 {
		return nil, fmt.Errorf("minimum relative distance %.2f out of range [0,0.99]", opts.MinDistance)
	}

	l := &Lingua{
		codes:  make(map[lingua.Language]string, len(codes)),
		sample: opts.SampleChars,
	}
	if l.sample <= 0 {
		l.sample = DefaultSampleChars
	}

	langs := make([]lingua.Language, 0, len(codes))
	for _, c := range codes {
		c = strings.ToLower(strings.TrimSpace(c))
		lang, ok := supported[c]
		if !ok {
			return nil, fmt.Errorf("unsupported language code %q", c)
		}
		if _, dup := l.codes[lang]; dup {
			continue
		}
		l.codes[lang] = c
		langs = append(langs, lang)
	}
	if len(langs) < 2 {
		return nil, fmt.Errorf("need at least two candidate languages, got %d", len(langs))
	}

	l.detector = lingua.NewLanguageDetectorBuilder().
		FromLanguages(langs...).
		WithMinimumRelativeDistance(opts.MinDistance).
		Build()
	return l, nil
}

// Detect classifies the leading sample of text.
func (l *Lingua) Detect(text string) string {
	s := Sample(text, l.sample)
	if strings.TrimSpace(s) == "" {
		return book.LangUnknown
	}
	lang, ok := l.detector.DetectLanguageOf(s)
	if !ok {
		return book.LangUnknown
	}
	if code, ok := l.codes[lang]; ok {
		return code
	}
	return book.LangUnknown
}

// Sample returns the first n characters of text, counted in runes.
func Sample(text string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range text {
		if i == n {
			return text[:pos]
		}
		i++
	}
	return text
}

// Static always reports Lang, or book.LangUnknown for blank text. Pipelines
// under test use it in place of the statistical model.
type Static struct {
	Lang string
}

// Detect implements Detector.
func (s Static) Detect(text string) string {
	if strings.TrimSpace(text) == "" || s.Lang == "" {
		return book.LangUnknown
	}
	return s.Lang
}
