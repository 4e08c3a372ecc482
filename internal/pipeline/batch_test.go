package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/bookgest/internal/catalog"
	"github.com/dgallion1/bookgest/internal/segment"
	"github.com/dgallion1/bookgest/internal/sink"
	"github.com/dgallion1/bookgest/internal/store/memory"
)

func writeBooks(t *testing.T, fs afero.Fs, books map[string]string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll("/in", 0o755))
	for name, text := range books {
		require.NoError(t, afero.WriteFile(fs, "/in/"+name, []byte(text), 0o644))
	}
}

func TestDirSource_List(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeBooks(t, fs, map[string]string{
		"84.txt":      "a",
		"1342.md":     "b",
		"cover.jpg":   "c",
		".hidden.txt": "d",
	})
	require.NoError(t, fs.MkdirAll("/in/sub", 0o755))

	cat, err := catalog.Parse(strings.NewReader("book_id,title,author,plain_text_url\n84,Frankenstein,Mary Shelley,http://x\n"))
	require.NoError(t, err)

	files, err := NewDirSource(fs, "/in", cat).List(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "1342", files[0].BookID)
	assert.Empty(t, files[0].Title)
	assert.Equal(t, SourceFile{Path: "/in/84.txt", BookID: "84", Title: "Frankenstein", Author: "Mary Shelley"}, files[1])

	doc, err := NewDirSource(fs, "/in", cat).Load(files[1])
	require.NoError(t, err)
	assert.Equal(t, "84.txt", doc.Filename)
	assert.Equal(t, []byte("a"), doc.Data)
}

func TestDirSource_Pattern(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeBooks(t, fs, map[string]string{"84.txt": "a", "1342.md": "b"})
	require.NoError(t, fs.MkdirAll("/in/austen", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/in/austen/105.txt", []byte("c"), 0o644))
	require.NoError(t, fs.MkdirAll("/in/.cache", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/in/.cache/7.txt", []byte("d"), 0o644))

	flat, err := NewDirSource(fs, "/in", nil).List(context.Background())
	require.NoError(t, err)
	assert.Len(t, flat, 2)

	src, err := NewDirSource(fs, "/in", nil).WithPattern("**/*.txt")
	require.NoError(t, err)
	files, err := src.List(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "/in/84.txt", files[0].Path)
	assert.Equal(t, SourceFile{Path: "/in/austen/105.txt", BookID: "105"}, files[1])

	_, err = NewDirSource(fs, "/in", nil).WithPattern("[")
	assert.Error(t, err)
}

func TestDirSource_MissingDir(t *testing.T) {
	_, err := NewDirSource(afero.NewMemMapFs(), "/nope", nil).List(context.Background())
	assert.Error(t, err)
}

func TestBatch_OneFailureDoesNotAbortOthers(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeBooks(t, fs, map[string]string{
		"1.txt": "First book. It has two sentences.",
		"2.txt": "BOOM goes the second book.",
		"3.txt": "Third book here.",
		"4.txt": "\n\n*****\n",
	})
	seg := segment.Func(func(text, lang string) ([]string, error) {
		if strings.Contains(text, "BOOM") {
			panic("segmenter exploded")
		}
		return splitSentences(text, lang)
	})

	out, err := sink.NewJSONL(fs, "/out")
	require.NoError(t, err)
	st := memory.New()
	w := NewWorker(newTestPipeline(t, seg), out, st, nil, nil, discardLogger(), WorkerOptions{})

	sum, err := NewBatch(w, NewDirSource(fs, "/in", nil), 3, discardLogger()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, sum.Books)
	assert.Equal(t, 2, sum.Completed)
	assert.Equal(t, 1, sum.Empty)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 2, sum.Chunks)
	assert.Equal(t, []JobStatus{StatusCompleted, StatusFailed, StatusCompleted, StatusEmpty},
		[]JobStatus{sum.Outcomes[0].Status, sum.Outcomes[1].Status, sum.Outcomes[2].Status, sum.Outcomes[3].Status})

	chunks, err := out.ReadChunks("1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "First book. It has two sentences.", chunks[0].Text)

	_, err = out.ReadChunks("2")
	assert.ErrorIs(t, err, sink.ErrNotFound)

	n, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestBatch_SecondRunSkipsUnchanged(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeBooks(t, fs, map[string]string{"1.txt": "One.", "2.txt": "Two."})
	out, err := sink.NewJSONL(fs, "/out")
	require.NoError(t, err)
	w := NewWorker(newTestPipeline(t, nil), out, memory.New(), nil, nil, discardLogger(), WorkerOptions{SkipUnchanged: true})
	b := NewBatch(w, NewDirSource(fs, "/in", nil), 2, discardLogger())

	sum, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Completed)

	require.NoError(t, afero.WriteFile(fs, "/in/2.txt", []byte("Two, revised."), 0o644))
	sum, err = b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.Completed)
}

func TestBatch_Cancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeBooks(t, fs, map[string]string{"1.txt": "One.", "2.txt": "Two."})
	out, err := sink.NewJSONL(fs, "/out")
	require.NoError(t, err)
	w := NewWorker(newTestPipeline(t, nil), out, nil, nil, nil, discardLogger(), WorkerOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewBatch(w, NewDirSource(fs, "/in", nil), 1, discardLogger()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
