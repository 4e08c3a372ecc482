// Package chunker packs sentences into token-bounded chunks whose leading
// sentences repeat the tail of the previous chunk.
package chunker

import (
	"fmt"
	"strings"

	"github.com/dgallion1/bookgest/internal/book"
)

// Config controls chunking behavior.
type Config struct {
	MaxTokens     int // Upper bound for the sentences added after the overlap seed.
	OverlapTokens int // Budget for sentences carried into the next chunk.

	// TrimSeed drops leading seed sentences until the next sentence fits
	// beside the seed, so every multi-sentence chunk stays within
	// MaxTokens. Off by default: the seed is carried whole even when
	// seed plus the next sentence exceeds MaxTokens.
	TrimSeed bool
}

// DefaultConfig returns the 900/120 defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:     900,
		OverlapTokens: 120,
	}
}

// Validate checks that the bounds are usable.
func (c Config) Validate() error {
	if c.MaxTokens < 1 {
		return fmt.Errorf("max tokens must be at least 1, got %d", c.MaxTokens)
	}
	if c.OverlapTokens < 0 {
		return fmt.Errorf("overlap tokens must not be negative, got %d", c.OverlapTokens)
	}
	if c.OverlapTokens >= c.MaxTokens {
		return fmt.Errorf("overlap tokens (%d) must be less than max tokens (%d)", c.OverlapTokens, c.MaxTokens)
	}
	return nil
}

// Builder turns a document's sentence sequence into chunk texts.
type Builder struct {
	cfg  Config
	size Sizer
}

// New returns a Builder. A nil sizer means EstimateTokens.
func New(cfg Config, size Sizer) *Builder {
	if size == nil {
		size = EstimateTokens
	}
	return &Builder{cfg: cfg, size: size}
}

// sized is a sentence with its cached token estimate.
type sized struct {
	text   string
	tokens int
}

// Build packs sentences in order. A sentence larger than MaxTokens is emitted
// alone and never split. When the next sentence would push the current chunk
// past MaxTokens the chunk is flushed, and the next one starts from the
// longest tail of it that fits in OverlapTokens. Empty input yields nil.
//
// Without TrimSeed a chunk may exceed MaxTokens by at most its seed: the
// sentences after the seed always fit. With TrimSeed every chunk but an
// oversized standalone sentence stays within MaxTokens.
func (b *Builder) Build(sentences []string) []string {
	var (
		chunks  []string
		current []sized
		total   int
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, join(current))
	}

	for _, text := range sentences {
		s := sized{text: text, tokens: b.size(text)}

		if s.tokens > b.cfg.MaxTokens {
			flush()
			chunks = append(chunks, s.text)
			current, total = nil, 0
			continue
		}

		if total+s.tokens > b.cfg.MaxTokens {
			flush()
			current, total = b.overlap(current, s.tokens)
		}

		current = append(current, s)
		total += s.tokens
	}
	flush()

	return chunks
}

// overlap returns the longest suffix of prev whose total stays within
// OverlapTokens, stopping at the first sentence that would exceed it. With
// TrimSeed, leading seed sentences are then dropped until next fits beside
// the seed within MaxTokens.
func (b *Builder) overlap(prev []sized, next int) ([]sized, int) {
	sum := 0
	start := len(prev)
	for i := len(prev) - 1; i >= 0; i-- {
		if sum+prev[i].tokens > b.cfg.OverlapTokens {
			break
		}
		sum += prev[i].tokens
		start = i
	}
	for b.cfg.TrimSeed && start < len(prev) && sum+next > b.cfg.MaxTokens {
		sum -= prev[start].tokens
		start++
	}
	if start == len(prev) {
		return nil, 0
	}
	seed := make([]sized, len(prev)-start)
	copy(seed, prev[start:])
	return seed, sum
}

func join(ss []sized) string {
	parts := make([]string, len(ss))
	for i, s := range ss {
		parts[i] = s.text
	}
	return strings.Join(parts, " ")
}

// Records wraps chunk texts as book.Chunk values with dense zero-based
// indices in emission order.
func Records(bookID, lang string, texts []string) []book.Chunk {
	out := make([]book.Chunk, len(texts))
	for i, t := range texts {
		out[i] = book.Chunk{
			BookID:     bookID,
			Lang:       lang,
			ChunkIndex: i,
			Text:       t,
		}
	}
	return out
}
