// Package catalog reads the book manifest CSV
// (book_id,title,author,plain_text_url) produced by the catalog crawler.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
)

// Entry is one catalog row.
type Entry struct {
	BookID       string
	Title        string
	Author       string
	PlainTextURL string
}

// Catalog is an ordered set of entries addressable by book ID.
type Catalog struct {
	Entries []Entry
	byID    map[string]int
}

var requiredColumns = []string{"book_id"}

// Parse reads a catalog CSV. Columns are matched by header name, so extra
// columns and any column order are accepted. Rows without a book_id are
// skipped; a repeated book_id keeps the first row.
func Parse(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse catalog: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("parse catalog header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("parse catalog: missing %q column", c)
		}
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	c := &Catalog{byID: make(map[string]int)}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse catalog line %d: %w", line, err)
		}
		e := Entry{
			BookID:       field(row, "book_id"),
			Title:        field(row, "title"),
			Author:       field(row, "author"),
			PlainTextURL: field(row, "plain_text_url"),
		}
		if e.BookID == "" {
			continue
		}
		if _, dup := c.byID[e.BookID]; dup {
			continue
		}
		c.byID[e.BookID] = len(c.Entries)
		c.Entries = append(c.Entries, e)
	}
	return c, nil
}

// Load parses the catalog file at path on fs.
func Load(fs afero.Fs, path string) (*Catalog, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Lookup returns the entry for a book ID.
func (c *Catalog) Lookup(bookID string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	i, ok := c.byID[bookID]
	if !ok {
		return Entry{}, false
	}
	return c.Entries[i], true
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Entries)
}
