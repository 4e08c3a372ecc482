package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

// Summary totals one batch run.
type Summary struct {
	Books     int
	Completed int
	Empty     int
	Skipped   int
	Failed    int
	Chunks    int
	Elapsed   time.Duration
	Outcomes  []Outcome // In source order.
}

func (s *Summary) add(o Outcome) {
	switch o.Status {
	case StatusCompleted:
		s.Completed++
	case StatusEmpty:
		s.Empty++
	case StatusDupSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
	if o.Status == StatusCompleted {
		s.Chunks += o.Chunks
	}
}

// Batch ingests every file of a DirSource on a bounded worker pool. One
// failing book never aborts the others.
type Batch struct {
	worker  *Worker
	source  *DirSource
	workers int
	log     *slog.Logger
}

// NewBatch returns a batch runner with the given parallelism.
func NewBatch(w *Worker, src *DirSource, workers int, log *slog.Logger) *Batch {
	if workers < 1 {
		workers = 1
	}
	return &Batch{worker: w, source: src, workers: workers, log: log}
}

// Run processes all books. Per-book failures land in the Summary; the error
// reports a source or pool failure, or ctx cancellation. Books not yet
// started when ctx is cancelled are reported failed.
func (b *Batch) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	files, err := b.source.List(ctx)
	if err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(b.workers, ants.WithPanicHandler(func(p any) {
		b.log.Error("batch task panicked", "panic", p)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create batch worker pool: %w", err)
	}
	defer pool.Release()

	outcomes := make([]Outcome, len(files))
	var wg sync.WaitGroup
	for i, f := range files {
		outcomes[i] = Outcome{BookID: f.BookID, Title: f.Title, Status: StatusFailed}
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			doc, err := b.source.Load(f)
			if err != nil {
				b.log.Error("load book failed", "book_id", f.BookID, "error", err)
				return
			}
			out, err := b.worker.Ingest(ctx, doc, nil)
			if err != nil {
				b.log.Warn("book failed", "book_id", f.BookID, "error", err)
			}
			outcomes[i] = out
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			b.log.Error("submit book task failed", "book_id", f.BookID, "error", err)
		}
	}
	wg.Wait()

	sum := &Summary{Books: len(files), Outcomes: outcomes}
	for _, o := range outcomes {
		sum.add(o)
	}
	sum.Elapsed = time.Since(start)
	b.log.Info("batch finished",
		"books", sum.Books, "completed", sum.Completed, "empty", sum.Empty,
		"skipped", sum.Skipped, "failed", sum.Failed, "chunks", sum.Chunks,
		"elapsed", sum.Elapsed.Round(time.Millisecond))
	return sum, ctx.Err()
}
