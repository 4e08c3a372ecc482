// Package storetest holds behavior checks shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/bookgest/internal/store"
)

// Run exercises a fresh, empty store returned by open.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("PutGet", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		rec := store.Record{
			BookID:      "1342",
			Title:       "Pride and Prejudice",
			Author:      "Austen, Jane",
			Lang:        "en",
			ContentHash: "abc",
			Chunks:      12,
			Status:      store.StatusCompleted,
			UpdatedAt:   time.UnixMilli(1_700_000_000_000),
		}
		require.NoError(t, s.Put(ctx, rec))

		got, err := s.Get(ctx, "1342")
		require.NoError(t, err)
		assert.Equal(t, rec.Title, got.Title)
		assert.Equal(t, rec.Author, got.Author)
		assert.Equal(t, rec.Chunks, got.Chunks)
		assert.Equal(t, rec.Status, got.Status)
		assert.True(t, rec.UpdatedAt.Equal(got.UpdatedAt))

		_, err = s.Get(ctx, "missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("PutReplaces", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, store.Record{BookID: "1", Lang: "en", ContentHash: "a", Status: store.StatusFailed, Error: "boom"}))
		require.NoError(t, s.Put(ctx, store.Record{BookID: "1", Lang: "de", ContentHash: "b", Chunks: 3, Status: store.StatusCompleted}))

		got, err := s.Get(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "de", got.Lang)
		assert.Equal(t, "b", got.ContentHash)
		assert.Equal(t, "", got.Error)
		assert.False(t, got.UpdatedAt.IsZero())

		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		base := time.UnixMilli(1_700_000_000_000)

		for i, id := range []string{"a", "b", "c"} {
			require.NoError(t, s.Put(ctx, store.Record{
				BookID:    id,
				Lang:      "en",
				Status:    store.StatusCompleted,
				UpdatedAt: base.Add(time.Duration(i) * time.Minute),
			}))
		}

		recs, err := s.List(ctx, 2)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "c", recs[0].BookID)
		assert.Equal(t, "b", recs[1].BookID)
	})

	t.Run("RejectsEmptyID", func(t *testing.T) {
		s := open(t)
		assert.Error(t, s.Put(context.Background(), store.Record{}))
	})
}
