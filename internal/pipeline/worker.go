package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/dgallion1/bookgest/internal/book"
	"github.com/dgallion1/bookgest/internal/metrics"
	"github.com/dgallion1/bookgest/internal/parser"
	"github.com/dgallion1/bookgest/internal/store"
)

// Document is one book file to ingest.
type Document struct {
	BookID   string
	Title    string
	Author   string
	Filename string // Selects the parser by extension.
	Data     []byte
}

// Outcome summarizes one ingested document.
type Outcome struct {
	BookID            string
	Title             string
	Lang              string
	ContentHash       string
	Status            JobStatus
	Sentences         int
	Chunks            int
	ParagraphsDropped int
	LinesTrimmed      int
}

// ChunkWriter persists a document's output.
type ChunkWriter interface {
	WriteChunks(ctx context.Context, bookID string, chunks []book.Chunk) error
	WriteProcessed(bookID, lang, text string) error
}

// Indexer delivers a document's chunk stream to the embedding/index service.
type Indexer interface {
	PutChunks(ctx context.Context, bookID string, chunks []book.Chunk) error
}

// WorkerOptions toggles optional ingest steps.
type WorkerOptions struct {
	WriteProcessed bool // Also dump the cleaned text.
	SkipUnchanged  bool // Skip books whose content hash is already recorded.
}

// Worker ingests single documents: parse, clean, chunk, write, record.
type Worker struct {
	pipe    *Pipeline
	out     ChunkWriter
	store   store.Store
	index   Indexer
	metrics *metrics.Metrics
	log     *slog.Logger
	opts    WorkerOptions
}

// NewWorker wires a Worker. index and m may be nil.
func NewWorker(pipe *Pipeline, out ChunkWriter, st store.Store, index Indexer, m *metrics.Metrics, log *slog.Logger, opts WorkerOptions) *Worker {
	return &Worker{
		pipe:    pipe,
		out:     out,
		store:   st,
		index:   index,
		metrics: m,
		log:     log,
		opts:    opts,
	}
}

// Process runs Ingest for a queued job and mirrors progress into it.
func (w *Worker) Process(ctx context.Context, job *Job) {
	defer job.releaseFileData()

	snap := job.Snapshot()
	doc := Document{
		BookID:   snap.BookID,
		Title:    snap.Title,
		Author:   snap.Author,
		Filename: snap.Filename,
		Data:     job.FileData(),
	}
	out, err := w.Ingest(ctx, doc, func(s JobStatus) { job.SetStatus(s, string(s)) })
	job.SetOutcome(out)
	if err != nil {
		job.AddError(err.Error())
	}
	job.SetStatus(out.Status, "done")
}

// Ingest processes one document end to end. Failures of any kind, panics
// included, are returned as errors with Status failed and never escape as
// panics. Partial output is never written: chunks reach the writer only
// after every stage succeeded. track, if non-nil, sees each phase.
func (w *Worker) Ingest(ctx context.Context, doc Document, track func(JobStatus)) (out Outcome, err error) {
	log := w.log.With("book_id", doc.BookID, "filename", doc.Filename)
	out = Outcome{BookID: doc.BookID, Title: doc.Title, Lang: book.LangUnknown, Status: StatusFailed}
	if track == nil {
		track = func(JobStatus) {}
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while ingesting", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("panic ingesting %s: %v", doc.BookID, r)
			out.Status = StatusFailed
		}
		if out.Status == StatusFailed {
			w.record(ctx, doc, out, err)
		}
		w.metrics.BookDone(string(out.Status), out.Lang, out.Chunks, out.ParagraphsDropped, out.LinesTrimmed)
	}()

	// Phase 1: Parse
	track(StatusParsing)
	raw, title, err := ParseDocument(doc)
	if err != nil {
		log.Error("parse failed", "error", err)
		return out, err
	}
	if out.Title == "" {
		out.Title = title
	}
	out.ContentHash = ContentHashHex(raw.Content)

	// Phase 1.5: Skip unchanged books.
	if w.opts.SkipUnchanged && w.store != nil {
		prev, err := w.store.Get(ctx, doc.BookID)
		switch {
		case err == nil && store.Unchanged(prev, out.ContentHash):
			log.Info("unchanged book, skipping", "content_hash", out.ContentHash)
			out.Lang = prev.Lang
			out.Chunks = prev.Chunks
			out.Status = StatusDupSkipped
			return out, nil
		case err != nil && !errors.Is(err, store.ErrNotFound):
			log.Warn("manifest lookup failed, proceeding", "error", err)
		}
	}

	// Phase 2: Clean and chunk
	track(StatusCleaning)
	res, err := w.pipe.Process(ctx, raw)
	if res != nil {
		out.Lang = res.Lang
		out.Sentences = res.Sentences
		out.ParagraphsDropped = res.Dedup.Dropped
		out.LinesTrimmed = res.Trim.Dropped()
	}
	if errors.Is(err, ErrEmptyDocument) {
		log.Warn("no text after cleaning")
		out.Status = StatusEmpty
		w.record(ctx, doc, out, nil)
		return out, nil
	}
	if err != nil {
		log.Error("processing failed", "error", err)
		return out, err
	}
	log.Info("chunked book", "lang", res.Lang, "sentences", res.Sentences, "chunks", len(res.Chunks),
		"lines_trimmed", out.LinesTrimmed, "paragraphs_dropped", out.ParagraphsDropped)

	// Phase 3: Write
	track(StatusWriting)
	if err := w.out.WriteChunks(ctx, doc.BookID, res.Chunks); err != nil {
		log.Error("write chunks failed", "error", err)
		return out, fmt.Errorf("write chunks: %w", err)
	}
	out.Chunks = len(res.Chunks)
	if w.opts.WriteProcessed {
		if err := w.out.WriteProcessed(doc.BookID, res.Lang, res.Text); err != nil {
			log.Warn("write processed text failed", "error", err)
		}
	}

	// Phase 4: Deliver
	if w.index != nil {
		track(StatusDelivering)
		if err := w.index.PutChunks(ctx, doc.BookID, res.Chunks); err != nil {
			w.metrics.Delivery("error")
			log.Error("index delivery failed", "error", err)
			return out, fmt.Errorf("deliver chunks: %w", err)
		}
		w.metrics.Delivery("ok")
	}

	out.Status = StatusCompleted
	w.record(ctx, doc, out, nil)
	return out, nil
}

// ParseDocument flattens doc to plain text with the parser its file name
// selects and returns it with the parser's title. A file name without an
// extension is resolved by sniffing the content.
func ParseDocument(doc Document) (book.Raw, string, error) {
	filename := doc.Filename
	if filename == "" {
		filename = doc.BookID
	}
	filename = parser.Resolve(filename, doc.Data)
	p, err := parser.ForFile(filename)
	if err != nil {
		return book.Raw{}, "", err
	}
	parsed, err := p.Parse(bytes.NewReader(doc.Data), filename)
	if err != nil {
		return book.Raw{}, "", fmt.Errorf("parse: %w", err)
	}
	return book.Raw{
		ID:      doc.BookID,
		Title:   doc.Title,
		Author:  doc.Author,
		Content: []byte(parsed.Text),
	}, parsed.Title, nil
}

// record writes the manifest entry. Failures are logged, not returned.
func (w *Worker) record(ctx context.Context, doc Document, out Outcome, cause error) {
	if w.store == nil {
		return
	}
	rec := store.Record{
		BookID:      doc.BookID,
		Title:       out.Title,
		Author:      doc.Author,
		Lang:        out.Lang,
		ContentHash: out.ContentHash,
		Chunks:      out.Chunks,
		Status:      manifestStatus(out.Status),
	}
	if cause != nil {
		rec.Error = cause.Error()
	}
	// Record even when ctx is cancelled so a failed book is retried next run.
	if err := w.store.Put(context.WithoutCancel(ctx), rec); err != nil {
		w.log.Warn("manifest write failed", "book_id", doc.BookID, "error", err)
	}
}

func manifestStatus(s JobStatus) store.Status {
	switch s {
	case StatusCompleted:
		return store.StatusCompleted
	case StatusEmpty:
		return store.StatusEmpty
	default:
		return store.StatusFailed
	}
}
