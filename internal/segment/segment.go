// Package segment splits document text into sentences.
package segment

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	sentencesdata "github.com/neurosnap/sentences/data"
)

// Segmenter splits one document into ordered, non-empty sentences.
type Segmenter interface {
	Split(text, lang string) ([]string, error)
}

// punktModels maps two-letter codes to Punkt training files. Only some are
// bundled with a given release of the data package; the rest fall back.
var punktModels = map[string]string{
	"en": "english",
	"de": "german",
	"fr": "french",
	"nl": "dutch",
	"it": "italian",
	"es": "spanish",
	"sv": "swedish",
	"da": "danish",
	"pt": "portuguese",
	"fi": "finnish",
	"pl": "polish",
	"cs": "czech",
	"el": "greek",
	"no": "norwegian",
}

const fallbackModel = "english"

// Punkt segments with the unsupervised Punkt models bundled in
// neurosnap/sentences. Languages without a model, mapped or not, use the
// English one. Models load lazily, once each, and are shared across
// goroutines.
type Punkt struct {
	mu     sync.Mutex
	models map[string]*sentences.DefaultSentenceTokenizer
	log    *slog.Logger
}

// NewPunkt returns a Punkt segmenter with the English model preloaded so
// a broken data bundle fails at startup. log may be nil.
func NewPunkt(log *slog.Logger) (*Punkt, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	p := &Punkt{models: make(map[string]*sentences.DefaultSentenceTokenizer), log: log}
	if _, err := p.load(fallbackModel); err != nil {
		return nil, err
	}
	return p, nil
}

// Split tokenizes each blank-line separated paragraph on its own, so no
// sentence crosses a paragraph break.
func (p *Punkt) Split(text, lang string) ([]string, error) {
	name, ok := punktModels[lang]
	if !ok {
		name = fallbackModel
	}
	tok, err := p.model(name)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, para := range Paragraphs(text) {
		for _, s := range tok.Tokenize(para) {
			if t := strings.TrimSpace(s.Text); t != "" {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

// model returns the tokenizer for name. A missing model is replaced by the
// English one, logged the first time and cached under name.
func (p *Punkt) model(name string) (*sentences.DefaultSentenceTokenizer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if tok, ok := p.models[name]; ok {
		return tok, nil
	}
	tok, err := p.loadLocked(name)
	if err == nil || name == fallbackModel {
		return tok, err
	}
	p.log.Warn("punkt model unavailable, using english", "model", name, "error", err)
	tok, err = p.loadLocked(fallbackModel)
	if err != nil {
		return nil, err
	}
	p.models[name] = tok
	return tok, nil
}

func (p *Punkt) load(name string) (*sentences.DefaultSentenceTokenizer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loadLocked(name)
}

func (p *Punkt) loadLocked(name string) (*sentences.DefaultSentenceTokenizer, error) {
	if tok, ok := p.models[name]; ok {
		return tok, nil
	}
	b, err := sentencesdata.Asset("data/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("load %s punkt data: %w", name, err)
	}
	training, err := sentences.LoadTraining(b)
	if err != nil {
		return nil, fmt.Errorf("parse %s punkt data: %w", name, err)
	}
	tok := sentences.NewSentenceTokenizer(training)
	p.models[name] = tok
	return tok, nil
}

// Paragraphs splits text on blank lines, trimming each paragraph and
// dropping empty ones.
func Paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Func adapts a plain function to Segmenter.
type Func func(text, lang string) ([]string, error)

// Split implements Segmenter.
func (f Func) Split(text, lang string) ([]string, error) {
	return f(text, lang)
}
