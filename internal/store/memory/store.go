package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dgallion1/bookgest/internal/store"
)

type Store struct {
	mu   sync.RWMutex
	now  func() time.Time
	byID map[string]store.Record
}

func New() *Store {
	return &Store{
		now:  time.Now,
		byID: make(map[string]store.Record),
	}
}

func (s *Store) Get(_ context.Context, bookID string) (store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[bookID]
	if !ok {
		return store.Record{}, store.ErrNotFound
	}
	return rec, nil
}

func (s *Store) Put(_ context.Context, rec store.Record) error {
	if rec.BookID == "" {
		return errors.New("book ID required")
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[rec.BookID] = rec
	return nil
}

// List returns records newest first, ties broken by book ID.
func (s *Store) List(_ context.Context, limit int) ([]store.Record, error) {
	s.mu.RLock()
	out := make([]store.Record, 0, len(s.byID))
	for _, rec := range s.byID {
		out = append(out, rec)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].BookID < out[j].BookID
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

func (s *Store) Close() error { return nil }
