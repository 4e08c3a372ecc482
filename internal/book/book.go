package book

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// LangUnknown tags a document whose language could not be classified.
const LangUnknown = "unknown"

// Raw is one fetched document, before any cleaning.
type Raw struct {
	ID      string // Stable book identifier, e.g. a Gutenberg ebook number.
	Title   string
	Author  string
	Content []byte

	// Boilerplate markers. Empty means the Gutenberg defaults apply.
	StartMarker string
	EndMarker   string
}

// Chunk is a sized run of sentences handed to the embedding/index service.
// Field order is the wire order of the JSON Lines output.
type Chunk struct {
	BookID     string `json:"book_id"`
	Lang       string `json:"lang"`
	ChunkIndex int    `json:"chunk_index"`
	Text       string `json:"text"`
}

// DecodeText turns raw bytes into UTF-8 text. A leading byte order mark is
// stripped and invalid byte sequences are dropped. Replacement characters
// already present in the input are kept.
func DecodeText(b []byte) string {
	valid := bytes.ToValidUTF8(b, nil)
	s, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), valid)
	if err != nil {
		return string(valid)
	}
	return string(s)
}

// ContextBlock joins retrieved chunk texts into the context block embedded
// in a generation prompt.
func ContextBlock(texts []string) string {
	parts := make([]string, 0, len(texts))
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}
