// Package sink writes per-book output: the chunk stream as JSON Lines and,
// optionally, the cleaned text the chunks were built from.
package sink

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/dgallion1/bookgest/internal/book"
)

const (
	chunksDir    = "chunks"
	processedDir = "processed"
)

// ErrNotFound is returned when a book has no chunk file.
var ErrNotFound = errors.New("chunks not found")

// JSONL stores output under a root directory:
//
//	<root>/chunks/<book_id>.jsonl
//	<root>/processed/<book_id>_<lang>.txt
type JSONL struct {
	fs   afero.Fs
	root string
}

// NewJSONL creates the output directories under root.
func NewJSONL(fs afero.Fs, root string) (*JSONL, error) {
	for _, dir := range []string{chunksDir, processedDir} {
		if err := fs.MkdirAll(path.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	return &JSONL{fs: fs, root: root}, nil
}

// ValidBookID reports whether id is safe to use as a file name.
func ValidBookID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`+"\x00")
}

// ChunksPath returns where the chunk stream for bookID is written.
func (s *JSONL) ChunksPath(bookID string) string {
	return path.Join(s.root, chunksDir, bookID+".jsonl")
}

// WriteChunks atomically replaces the chunk stream for bookID. Records go to
// a temporary file that is renamed into place only after every record is
// written; on any error, including cancellation of ctx, the temporary file
// is removed and the previous stream (if any) is left untouched.
func (s *JSONL) WriteChunks(ctx context.Context, bookID string, chunks []book.Chunk) error {
	if !ValidBookID(bookID) {
		return fmt.Errorf("invalid book id %q", bookID)
	}
	return s.atomicWrite(path.Join(s.root, chunksDir), s.ChunksPath(bookID), func(w io.Writer) error {
		return Encode(ctx, w, chunks)
	})
}

// WriteProcessed stores the cleaned text for bookID as <book_id>_<lang>.txt.
func (s *JSONL) WriteProcessed(bookID, lang, text string) error {
	if !ValidBookID(bookID) {
		return fmt.Errorf("invalid book id %q", bookID)
	}
	dir := path.Join(s.root, processedDir)
	return s.atomicWrite(dir, path.Join(dir, bookID+"_"+lang+".txt"), func(w io.Writer) error {
		_, err := io.WriteString(w, text)
		return err
	})
}

func (s *JSONL) atomicWrite(dir, dst string, write func(io.Writer) error) (err error) {
	tmp, err := afero.TempFile(s.fs, dir, ".bookgest-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = s.fs.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = write(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", dst, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	if err = s.fs.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("rename into %s: %w", dst, err)
	}
	return nil
}

// ReadChunks loads the chunk stream for bookID.
func (s *JSONL) ReadChunks(bookID string) ([]book.Chunk, error) {
	if !ValidBookID(bookID) {
		return nil, ErrNotFound
	}
	f, err := s.fs.Open(s.ChunksPath(bookID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open chunks: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// OpenChunks opens the raw chunk stream for bookID for streaming.
func (s *JSONL) OpenChunks(bookID string) (io.ReadCloser, error) {
	if !ValidBookID(bookID) {
		return nil, ErrNotFound
	}
	f, err := s.fs.Open(s.ChunksPath(bookID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

// ProcessedFile is one cleaned-text dump.
type ProcessedFile struct {
	Name   string
	BookID string
	Lang   string
}

// ProcessedFiles lists cleaned-text dumps sorted by name. Names without a
// language suffix report book.LangUnknown.
func (s *JSONL) ProcessedFiles() ([]ProcessedFile, error) {
	infos, err := afero.ReadDir(s.fs, path.Join(s.root, processedDir))
	if err != nil {
		return nil, fmt.Errorf("list processed: %w", err)
	}
	var out []ProcessedFile
	for _, fi := range infos {
		name := fi.Name()
		if fi.IsDir() || !strings.HasSuffix(name, ".txt") {
			continue
		}
		stem := strings.TrimSuffix(name, ".txt")
		pf := ProcessedFile{Name: name, BookID: stem, Lang: book.LangUnknown}
		if i := strings.LastIndexByte(stem, '_'); i > 0 {
			pf.BookID, pf.Lang = stem[:i], stem[i+1:]
		}
		out = append(out, pf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ReadProcessed returns the contents of a cleaned-text dump.
func (s *JSONL) ReadProcessed(name string) (string, error) {
	b, err := afero.ReadFile(s.fs, path.Join(s.root, processedDir, path.Base(name)))
	if err != nil {
		return "", fmt.Errorf("read processed %s: %w", name, err)
	}
	return string(b), nil
}

// Encode writes one JSON object per line. Non-ASCII text and HTML-special
// characters are written unescaped.
func Encode(ctx context.Context, w io.Writer, chunks []book.Chunk) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i := range chunks {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := enc.Encode(&chunks[i]); err != nil {
			return fmt.Errorf("encode chunk %d: %w", chunks[i].ChunkIndex, err)
		}
	}
	return ctx.Err()
}

// Decode reads a JSON Lines chunk stream. Blank lines are ignored. Lines
// have no length limit, since an oversized sentence is stored unsplit.
func Decode(r io.Reader) ([]book.Chunk, error) {
	var out []book.Chunk
	br := bufio.NewReader(r)
	for line := 1; ; line++ {
		raw, err := br.ReadBytes('\n')
		if len(bytes.TrimSpace(raw)) > 0 {
			var c book.Chunk
			if uerr := json.Unmarshal(raw, &c); uerr != nil {
				return nil, fmt.Errorf("decode line %d: %w", line, uerr)
			}
			out = append(out, c)
		}
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read chunks: %w", err)
		}
	}
}
