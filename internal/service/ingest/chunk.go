package ingest

import (
	"strings"
	"unicode"

	"github.com/sandevgo/ceramicsrag/pkg/tokens"
)

type Piece struct {
	Text      string
	TokenSize int
	Index     int
}

type ChunkerConfig struct {
	MaxTokens     int
	OverlapTokens int
}

// DefaultChunkerConfig sizes chunks well under the embedding model input
// limit while keeping several chunks in an 8-chunk prompt readable.
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		MaxTokens:     400,
		OverlapTokens: 50,
	}
}

// Chunker packs whole sentences into token-bounded pieces. Consecutive
// pieces overlap by roughly OverlapTokens worth of trailing sentences.
type Chunker struct {
	tok tokens.Tokenizer
	cfg ChunkerConfig
}

func NewChunker(tok tokens.Tokenizer, cfg ChunkerConfig) *Chunker {
	if cfg.MaxTokens <= 0 {
		cfg = DefaultChunkerConfig()
	}
	return &Chunker{tok: tok, cfg: cfg}
}

func (c *Chunker) Split(text string) []Piece {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	sentences := splitSentences(text)

	var (
		pieces  []Piece
		current strings.Builder
		size    int
	)

	flush := func() {
		if current.Len() == 0 {
			return
		}
		pieces = append(pieces, Piece{
			Text:      strings.TrimSpace(current.String()),
			TokenSize: size,
			Index:     len(pieces),
		})
		current.Reset()
		size = 0
	}

	for i, sentence := range sentences {
		n := c.tok.Count(sentence)

		// Sentence alone exceeds the limit: cut it on token boundaries.
		if n > c.cfg.MaxTokens {
			flush()
			for _, part := range c.splitLong(sentence) {
				part.Index = len(pieces)
				pieces = append(pieces, part)
			}
			continue
		}

		if size+n > c.cfg.MaxTokens && current.Len() > 0 {
			flush()
			overlap := c.overlap(sentences, i)
			if overlap != "" && c.tok.Count(overlap)+n <= c.cfg.MaxTokens {
				current.WriteString(overlap)
				size = c.tok.Count(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
		size += n
	}
	flush()

	return pieces
}

func (c *Chunker) splitLong(text string) []Piece {
	ids := c.tok.Encode(text)

	var pieces []Piece
	for i := 0; i < len(ids); i += c.cfg.MaxTokens {
		end := min(i+c.cfg.MaxTokens, len(ids))
		part := strings.TrimSpace(c.tok.Decode(ids[i:end]))
		if part == "" {
			continue
		}
		pieces = append(pieces, Piece{Text: part, TokenSize: end - i})
	}
	return pieces
}

// overlap collects trailing sentences before idx up to OverlapTokens.
func (c *Chunker) overlap(sentences []string, idx int) string {
	if idx == 0 || c.cfg.OverlapTokens <= 0 {
		return ""
	}

	var picked []string
	total := 0
	for i := idx - 1; i >= 0 && total < c.cfg.OverlapTokens; i-- {
		picked = append([]string{sentences[i]}, picked...)
		total += c.tok.Count(sentences[i])
	}
	return strings.Join(picked, " ")
}

var sentenceEnders = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, '！': true, '？': true, '．': true, '…': true,
}

func splitSentences(text string) []string {
	var sentences []string

	for _, para := range splitParagraphs(text) {
		var current strings.Builder
		runes := []rune(para)

		for i, r := range runes {
			current.WriteRune(r)
			if !sentenceEnders[r] {
				continue
			}
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) || isCJK(runes[i+1]) {
				if s := strings.TrimSpace(current.String()); s != "" {
					sentences = append(sentences, s)
				}
				current.Reset()
			}
		}

		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) == 0 {
		return []string{text}
	}
	return sentences
}

func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var result []string
	for _, p := range strings.Split(text, "\n\n") {
		// single newlines inside a paragraph are soft wraps
		p = strings.TrimSpace(strings.ReplaceAll(p, "\n", " "))
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}
