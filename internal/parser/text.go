package parser

import (
	"fmt"
	"io"

	"github.com/dgallion1/bookgest/internal/book"
)

// TextParser handles plain text files. The text is kept verbatim apart from
// decoding, so boilerplate markers survive for the extractor.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	return &Document{
		Title: baseTitle(filename),
		Text:  book.DecodeText(data),
	}, nil
}
