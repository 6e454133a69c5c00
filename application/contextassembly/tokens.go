package contextassembly

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer counts and truncates text against a token budget using the
// o200k_base encoding. When the encoding cannot be loaded it falls
// back to a rune-based estimate of four characters per token.
type Tokenizer struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewTokenizer creates a tokenizer. The encoding is loaded lazily on
// first use.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

func (t *Tokenizer) encoding() *tiktoken.Tiktoken {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding("o200k_base")
		if err == nil {
			t.enc = enc
		}
	})
	return t.enc
}

// Truncate cuts the text to at most budget tokens. The second return
// value reports whether anything was cut.
func (t *Tokenizer) Truncate(text string, budget int) (string, bool) {
	if budget <= 0 || text == "" {
		return text, false
	}

	if enc := t.encoding(); enc != nil {
		tokens := enc.Encode(text, nil, nil)
		if len(tokens) <= budget {
			return text, false
		}
		return enc.Decode(tokens[:budget]), true
	}

	// Fallback estimate: roughly four characters per token
	limit := budget * 4
	if utf8.RuneCountInString(text) <= limit {
		return text, false
	}
	runes := []rune(text)
	return string(runes[:limit]), true
}
