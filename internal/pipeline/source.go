package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/dgallion1/bookgest/internal/catalog"
	"github.com/dgallion1/bookgest/internal/parser"
	"github.com/dgallion1/bookgest/internal/sink"
)

// SourceFile is one book file found in an input directory.
type SourceFile struct {
	Path   string
	BookID string
	Title  string
	Author string
}

// DirSource lists book files under a directory whose slash-separated
// relative paths match a doublestar pattern. The default pattern "*" keeps the
// listing flat. The book ID is the file name without its extension; catalog
// entries supply title and author.
type DirSource struct {
	fs      afero.Fs
	dir     string
	pattern string
	catalog *catalog.Catalog
}

// NewDirSource returns a flat source over dir. cat may be nil.
func NewDirSource(fs afero.Fs, dir string, cat *catalog.Catalog) *DirSource {
	return &DirSource{fs: fs, dir: dir, pattern: "*", catalog: cat}
}

// WithPattern sets the pattern relative paths must match, e.g. "**/*.txt".
func (s *DirSource) WithPattern(pattern string) (*DirSource, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid input pattern %q", pattern)
	}
	s.pattern = pattern
	return s, nil
}

// List returns every matching parseable file, sorted by path. Hidden files
// and directories, unsupported extensions and names that are not valid book
// IDs are skipped.
func (s *DirSource) List(ctx context.Context) ([]SourceFile, error) {
	var files []SourceFile
	err := afero.Walk(s.fs, s.dir, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		name := fi.Name()
		if fi.IsDir() {
			if p != s.dir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		rel, err := filepath.Rel(s.dir, p)
		if err != nil {
			return nil
		}
		if ok, _ := doublestar.Match(s.pattern, filepath.ToSlash(rel)); !ok {
			return nil
		}
		if _, err := parser.ForFile(name); err != nil {
			return nil
		}
		id := strings.TrimSuffix(name, filepath.Ext(name))
		if !sink.ValidBookID(id) {
			return nil
		}
		f := SourceFile{Path: p, BookID: id}
		if e, ok := s.catalog.Lookup(id); ok {
			f.Title = e.Title
			f.Author = e.Author
		}
		files = append(files, f)
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("read input dir %s: %w", s.dir, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Load reads f into a Document.
func (s *DirSource) Load(f SourceFile) (Document, error) {
	data, err := afero.ReadFile(s.fs, f.Path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", f.Path, err)
	}
	return Document{
		BookID:   f.BookID,
		Title:    f.Title,
		Author:   f.Author,
		Filename: filepath.Base(f.Path),
		Data:     data,
	}, nil
}
