package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgallion1/bookgest/internal/book"
	"github.com/dgallion1/bookgest/internal/chunker"
	"github.com/dgallion1/bookgest/internal/dedup"
	"github.com/dgallion1/bookgest/internal/extract"
	"github.com/dgallion1/bookgest/internal/langdetect"
	"github.com/dgallion1/bookgest/internal/metrics"
	"github.com/dgallion1/bookgest/internal/normalize"
	"github.com/dgallion1/bookgest/internal/segment"
	"github.com/dgallion1/bookgest/internal/trim"
)

// ErrEmptyDocument reports a document with no text left after cleaning.
var ErrEmptyDocument = errors.New("document has no text after cleaning")

// Stage names, in execution order.
const (
	StageExtract   = "extract"
	StageNormalize = "normalize"
	StageTrim      = "trim"
	StageDedup     = "dedup"
	StageDetect    = "langdetect"
	StageSegment   = "segment"
	StageChunk     = "chunk"
)

// Options wires the stage components. Detector and Segmenter are required;
// the rest fall back to defaults.
type Options struct {
	Normalizer *normalize.Normalizer
	Trimmer    *trim.Trimmer
	Detector   langdetect.Detector
	Segmenter  segment.Segmenter
	Builder    *chunker.Builder

	Stats   *StageStats
	Metrics *metrics.Metrics
}

// Pipeline turns one raw document into ordered chunk records. It holds no
// per-document state and is safe for concurrent use.
type Pipeline struct {
	normalizer *normalize.Normalizer
	trimmer    *trim.Trimmer
	detector   langdetect.Detector
	segmenter  segment.Segmenter
	builder    *chunker.Builder
	stats      *StageStats
	metrics    *metrics.Metrics
}

// New validates opts and fills defaults.
func New(opts Options) (*Pipeline, error) {
	if opts.Detector == nil {
		return nil, errors.New("pipeline: language detector required")
	}
	if opts.Segmenter == nil {
		return nil, errors.New("pipeline: sentence segmenter required")
	}
	p := &Pipeline{
		normalizer: opts.Normalizer,
		trimmer:    opts.Trimmer,
		detector:   opts.Detector,
		segmenter:  opts.Segmenter,
		builder:    opts.Builder,
		stats:      opts.Stats,
		metrics:    opts.Metrics,
	}
	if p.normalizer == nil {
		p.normalizer = normalize.New(normalize.DefaultForm)
	}
	if p.trimmer == nil {
		t, err := trim.New(trim.DefaultPolicy())
		if err != nil {
			return nil, err
		}
		p.trimmer = t
	}
	if p.builder == nil {
		p.builder = chunker.New(chunker.DefaultConfig(), nil)
	}
	return p, nil
}

// Result is everything Process learned about one document.
type Result struct {
	BookID      string
	Lang        string
	ContentHash string
	// Text is the cleaned, deduplicated text the sentences were cut from.
	Text      string
	Sentences int
	Chunks    []book.Chunk
	Trim      trim.Result
	Dedup     dedup.Stats
}

// Process runs every stage on raw. A document that cleans down to nothing
// yields a Result with no chunks and ErrEmptyDocument. Cancellation is
// checked between stages; a cancelled document returns ctx.Err() and no
// chunks.
func (p *Pipeline) Process(ctx context.Context, raw book.Raw) (*Result, error) {
	res := &Result{
		BookID:      raw.ID,
		Lang:        book.LangUnknown,
		ContentHash: ContentHashHex(raw.Content),
	}

	var (
		text      string
		sentences []string
	)
	steps := []struct {
		name string
		run  func() error
	}{
		{StageExtract, func() error {
			text = extract.WithMarkers(book.DecodeText(raw.Content), extract.Markers{Start: raw.StartMarker, End: raw.EndMarker})
			return nil
		}},
		{StageNormalize, func() error {
			text = p.normalizer.Normalize(text)
			return nil
		}},
		{StageTrim, func() error {
			text, res.Trim = p.trimmer.Apply(text)
			return nil
		}},
		{StageDedup, func() error {
			text, res.Dedup = dedup.ParagraphsWithStats(text)
			res.Text = text
			if text == "" {
				return ErrEmptyDocument
			}
			return nil
		}},
		{StageDetect, func() error {
			res.Lang = p.detector.Detect(text)
			return nil
		}},
		{StageSegment, func() error {
			var err error
			sentences, err = p.segmenter.Split(text, res.Lang)
			if err != nil {
				return fmt.Errorf("segment: %w", err)
			}
			res.Sentences = len(sentences)
			return nil
		}},
		{StageChunk, func() error {
			res.Chunks = chunker.Records(raw.ID, res.Lang, p.builder.Build(sentences))
			return nil
		}},
	}

	for _, st := range steps {
		if err := ctx.Err(); err != nil {
			res.Chunks = nil
			return res, err
		}
		start := time.Now()
		err := st.run()
		p.observe(st.name, time.Since(start))
		if err != nil {
			res.Chunks = nil
			return res, err
		}
	}
	return res, nil
}

func (p *Pipeline) observe(stage string, d time.Duration) {
	if p.stats != nil {
		p.stats.Record(stage, d)
	}
	p.metrics.ObserveStage(stage, d)
}
