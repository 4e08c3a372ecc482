// Package store records the outcome of processing each book so unchanged
// books can be skipped on the next run.
package store

import (
	"context"
	"errors"
	"time"
)

// Status is the final state of one book's last processing attempt.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusEmpty     Status = "empty"
	StatusFailed    Status = "failed"
)

// ErrNotFound is returned by Get for unknown book IDs.
var ErrNotFound = errors.New("book not found")

// Record is the manifest entry for one book.
type Record struct {
	BookID      string    `json:"book_id"`
	Title       string    `json:"title,omitempty"`
	Author      string    `json:"author,omitempty"`
	Lang        string    `json:"lang"`
	ContentHash string    `json:"content_hash"`
	Chunks      int       `json:"chunks"`
	Status      Status    `json:"status"`
	Error       string    `json:"error,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store persists Records keyed by book ID. Put replaces any previous record.
type Store interface {
	Get(ctx context.Context, bookID string) (Record, error)
	Put(ctx context.Context, rec Record) error
	List(ctx context.Context, limit int) ([]Record, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Unchanged reports whether rec already holds a successful result for
// contentHash.
func Unchanged(rec Record, contentHash string) bool {
	return rec.ContentHash == contentHash && rec.Status != StatusFailed
}
