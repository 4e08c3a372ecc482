package chunker

import (
	"fmt"
	"unicode/utf8"

	"github.com/tiktoken-go/tokenizer"
)

// Sizer estimates the token size of a string. Builders call it once per
// sentence, so it must be deterministic.
type Sizer func(text string) int

// EstimateTokens gives a rough token count using the ~4 chars/token heuristic:
// max(1, ceil(chars/4)), counted in runes.
func EstimateTokens(text string) int {
	n := (utf8.RuneCountInString(text) + 3) / 4
	if n < 1 {
		return 1
	}
	return n
}

// TiktokenSizer returns a Sizer backed by the cl100k_base encoding. Encoding
// errors fall back to EstimateTokens.
func TiktokenSizer() (Sizer, error) {
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return nil, fmt.Errorf("load cl100k_base: %w", err)
	}
	return func(text string) int {
		ids, _, err := codec.Encode(text)
		if err != nil || len(ids) == 0 {
			return EstimateTokens(text)
		}
		return len(ids)
	}, nil
}

// CountTokens returns the exact cl100k_base token count of text.
func CountTokens(codec tokenizer.Codec, text string) (int, error) {
	ids, _, err := codec.Encode(text)
	if err != nil {
		return 0, fmt.Errorf("encode: %w", err)
	}
	return len(ids), nil
}
