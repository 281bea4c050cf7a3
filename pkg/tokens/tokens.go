// Package tokens counts model tokens for prompt budgeting and chunking.
package tokens

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const DefaultEncoding = "cl100k_base"

type Counter interface {
	Count(text string) int
}

// Tokenizer can also split text on token boundaries.
type Tokenizer interface {
	Counter
	Encode(text string) []int
	Decode(tokens []int) string
}

type Tiktoken struct {
	name string
	enc  *tiktoken.Tiktoken
}

var (
	cacheMu sync.Mutex
	cache   = map[string]*Tiktoken{}
)

// NewTiktoken loads a BPE encoding. Loaded encodings are shared process-wide.
func NewTiktoken(encoding string) (*Tiktoken, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if t, ok := cache[encoding]; ok {
		return t, nil
	}

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", encoding, err)
	}

	t := &Tiktoken{name: encoding, enc: enc}
	cache[encoding] = t
	return t, nil
}

func (t *Tiktoken) Name() string { return t.name }

func (t *Tiktoken) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

func (t *Tiktoken) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *Tiktoken) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}

const wordsPerToken = 0.75

// Estimator approximates token counts from whitespace-separated words.
type Estimator struct{}

func (Estimator) Count(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	n := int(float64(words) / wordsPerToken)
	if n == 0 {
		n = 1
	}
	return n
}

// NewCounter returns a tiktoken counter, or the word estimator when the
// encoding cannot be loaded. The error is returned alongside the fallback so
// callers can log it.
func NewCounter(encoding string) (Counter, error) {
	t, err := NewTiktoken(encoding)
	if err != nil {
		return Estimator{}, err
	}
	return t, nil
}
