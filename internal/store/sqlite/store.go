package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dgallion1/bookgest/internal/store"
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the manifest database at path. Use
// ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open manifest db: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate manifest db: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure manifest db: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS books (
  book_id      TEXT PRIMARY KEY,
  title        TEXT NOT NULL DEFAULT '',
  author       TEXT NOT NULL DEFAULT '',
  lang         TEXT NOT NULL,
  content_hash TEXT NOT NULL,
  chunks       INTEGER NOT NULL DEFAULT 0,
  status       TEXT NOT NULL,
  error        TEXT NOT NULL DEFAULT '',
  updated_at   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_books_updated_at ON books(updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_books_hash       ON books(content_hash);
`)
	return err
}

func (s *Store) Get(ctx context.Context, bookID string) (store.Record, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT book_id, title, author, lang, content_hash, chunks, status, error, updated_at
FROM books WHERE book_id=?
`, bookID)
	rec, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Record{}, store.ErrNotFound
	}
	return rec, err
}

func (s *Store) Put(ctx context.Context, rec store.Record) error {
	if rec.BookID == "" {
		return errors.New("book ID required")
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO books(book_id, title, author, lang, content_hash, chunks, status, error, updated_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(book_id) DO UPDATE SET
  title=excluded.title,
  author=excluded.author,
  lang=excluded.lang,
  content_hash=excluded.content_hash,
  chunks=excluded.chunks,
  status=excluded.status,
  error=excluded.error,
  updated_at=excluded.updated_at
`, rec.BookID, rec.Title, rec.Author, rec.Lang, rec.ContentHash, rec.Chunks,
		string(rec.Status), rec.Error, rec.UpdatedAt.UnixMilli())
	return err
}

func (s *Store) List(ctx context.Context, limit int) ([]store.Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT book_id, title, author, lang, content_hash, chunks, status, error, updated_at
FROM books
ORDER BY updated_at DESC, book_id
LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]store.Record, 0, limit)
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context) (int, error) {
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM books`)
	var n int
	return n, row.Scan(&n)
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(sc scanner) (store.Record, error) {
	var (
		rec     store.Record
		status  string
		updated int64
	)
	if err := sc.Scan(&rec.BookID, &rec.Title, &rec.Author, &rec.Lang, &rec.ContentHash,
		&rec.Chunks, &status, &rec.Error, &updated); err != nil {
		return store.Record{}, err
	}
	rec.Status = store.Status(status)
	rec.UpdatedAt = time.UnixMilli(updated)
	return rec, nil
}
