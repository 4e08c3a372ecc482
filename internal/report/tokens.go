// Package report totals exact token counts of processed book text and
// estimates embedding cost.
package report

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dgallion1/bookgest/internal/sink"
)

// Price is an embedding model's cost per million tokens in USD.
type Price struct {
	Model      string
	PerMillion float64
}

// EmbeddingPrices are the reference rates quoted in the report.
var EmbeddingPrices = []Price{
	{Model: "OpenAI text-embedding-3-small", PerMillion: 0.02},
	{Model: "Jina embedding-small", PerMillion: 0.01},
	{Model: "Jina embedding-large", PerMillion: 0.10},
	{Model: "Voyage large", PerMillion: 1.00},
}

// Source lists and reads processed text dumps.
type Source interface {
	ProcessedFiles() ([]sink.ProcessedFile, error)
	ReadProcessed(name string) (string, error)
}

// FileTokens is the token count of one processed file.
type FileTokens struct {
	Name   string `json:"name"`
	BookID string `json:"book_id"`
	Lang   string `json:"lang"`
	Tokens int    `json:"tokens"`
}

// Tokens is a per-file and total token count.
type Tokens struct {
	Files []FileTokens `json:"files"`
	Total int          `json:"total"`
}

// CountTokens counts every processed file in src with count.
func CountTokens(ctx context.Context, src Source, count func(string) (int, error)) (*Tokens, error) {
	files, err := src.ProcessedFiles()
	if err != nil {
		return nil, err
	}
	out := &Tokens{Files: make([]FileTokens, 0, len(files))}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := src.ReadProcessed(f.Name)
		if err != nil {
			return nil, err
		}
		n, err := count(text)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", f.Name, err)
		}
		out.Files = append(out.Files, FileTokens{Name: f.Name, BookID: f.BookID, Lang: f.Lang, Tokens: n})
		out.Total += n
	}
	return out, nil
}

// Cost is the USD price of embedding Total tokens at p.
func (t *Tokens) Cost(p Price) float64 {
	return float64(t.Total) / 1_000_000 * p.PerMillion
}

// WriteText prints the per-file table, the total and the cost estimates.
func (t *Tokens) WriteText(w io.Writer) error {
	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	p.Fprintf(tw, "FILE\tTOKENS\t\n")
	for _, f := range t.Files {
		p.Fprintf(tw, "%s\t%d\t\n", f.Name, f.Tokens)
	}
	p.Fprintf(tw, "TOTAL\t%d\t\n", t.Total)
	if err := tw.Flush(); err != nil {
		return err
	}

	p.Fprintf(w, "\nCost estimates:\n")
	for _, price := range EmbeddingPrices {
		p.Fprintf(w, "  %-32s ($%.2f per 1M)  $%.4f\n", price.Model, price.PerMillion, t.Cost(price))
	}
	return nil
}
