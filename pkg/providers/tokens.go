package providers

import (
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

// Tokenizer estimates the number of tokens in text for a model.
type Tokenizer interface {
	Count(model, text string) int
}

// Approx estimates four characters per token. It needs no encoding tables.
type Approx struct{}

// Count returns ceil(runes / 4).
func (Approx) Count(_ string, text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}

// Tiktoken counts tokens with BPE encodings, resolving the encoding by model
// name and falling back to cl100k_base. Encodings that cannot be loaded fall
// back to Approx.
type Tiktoken struct {
	logger *slog.Logger

	mu        sync.Mutex
	encodings map[string]*tiktoken.Tiktoken
	failed    bool
}

// NewTiktoken creates a Tiktoken counter.
func NewTiktoken(logger *slog.Logger) *Tiktoken {
	return &Tiktoken{
		logger:    logger.With("system", "tokens"),
		encodings: make(map[string]*tiktoken.Tiktoken),
	}
}

// Count returns the number of tokens in text.
func (t *Tiktoken) Count(model, text string) int {
	if text == "" {
		return 0
	}
	enc := t.encoding(model)
	if enc == nil {
		return Approx{}.Count(model, text)
	}
	return len(enc.Encode(text, nil, nil))
}

func (t *Tiktoken) encoding(model string) *tiktoken.Tiktoken {
	t.mu.Lock()
	defer t.mu.Unlock()

	if enc, ok := t.encodings[model]; ok {
		return enc
	}
	if t.failed {
		return nil
	}

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
	}
	if err != nil {
		t.failed = true
		t.logger.Warn("token encoding unavailable, using approximation", "error", err)
		return nil
	}

	t.encodings[model] = enc
	return enc
}
