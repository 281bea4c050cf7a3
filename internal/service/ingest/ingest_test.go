package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sandevgo/ceramicsrag/internal/core"
	"github.com/sandevgo/ceramicsrag/internal/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordTokenizer treats every whitespace separated word as one token.
type wordTokenizer struct {
	vocab []string
	ids   map[string]int
}

func newWordTokenizer() *wordTokenizer {
	return &wordTokenizer{ids: map[string]int{}}
}

func (w *wordTokenizer) Count(text string) int { return len(strings.Fields(text)) }

func (w *wordTokenizer) Encode(text string) []int {
	var out []int
	for _, word := range strings.Fields(text) {
		id, ok := w.ids[word]
		if !ok {
			id = len(w.vocab)
			w.vocab = append(w.vocab, word)
			w.ids[word] = id
		}
		out = append(out, id)
	}
	return out
}

func (w *wordTokenizer) Decode(ids []int) string {
	words := make([]string, len(ids))
	for i, id := range ids {
		words[i] = w.vocab[id]
	}
	return strings.Join(words, " ")
}

type lengthEmbedder struct {
	batches int
}

func (e *lengthEmbedder) Model() string { return "length-embed" }

func (e *lengthEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)), 1}, nil
}

func (e *lengthEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.batches++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = e.Embed(ctx, t)
	}
	return out, nil
}

var _ core.BatchEmbedder = (*lengthEmbedder)(nil)

func pieceTexts(pieces []Piece) []string {
	out := make([]string, len(pieces))
	for i, p := range pieces {
		out[i] = p.Text
	}
	return out
}

func TestChunker_Split(t *testing.T) {
	tests := []struct {
		name string
		text string
		cfg  ChunkerConfig
		want []string
	}{
		{"empty", "", ChunkerConfig{MaxTokens: 10}, nil},
		{"whitespace", "  \n\t ", ChunkerConfig{MaxTokens: 10}, nil},
		{"single sentence", "Wedge the clay.", ChunkerConfig{MaxTokens: 10}, []string{"Wedge the clay."}},
		{
			"packs sentences",
			"Centre the clay. Open the form. Pull the walls.",
			ChunkerConfig{MaxTokens: 6},
			[]string{"Centre the clay. Open the form.", "Pull the walls."},
		},
		{
			"overlap carries previous sentence",
			"One two. Three four. Five six.",
			ChunkerConfig{MaxTokens: 4, OverlapTokens: 2},
			[]string{"One two. Three four.", "Three four. Five six."},
		},
		{
			"long sentence cut on token boundaries",
			"a b c d e f g.",
			ChunkerConfig{MaxTokens: 3},
			[]string{"a b c", "d e f", "g."},
		},
		{
			"paragraphs and soft wraps",
			"Glaze\nfiring.\n\nCool slowly.",
			ChunkerConfig{MaxTokens: 10},
			[]string{"Glaze firing. Cool slowly."},
		},
		{
			"cjk sentences",
			"你好世界。这是测试。",
			ChunkerConfig{MaxTokens: 10},
			[]string{"你好世界。 这是测试。"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pieces := NewChunker(newWordTokenizer(), tt.cfg).Split(tt.text)
			if tt.want == nil {
				assert.Empty(t, pieces)
				return
			}
			assert.Equal(t, tt.want, pieceTexts(pieces))
			for i, p := range pieces {
				assert.Equal(t, i, p.Index)
				assert.LessOrEqual(t, p.TokenSize, tt.cfg.MaxTokens)
			}
		})
	}
}

func TestChunker_DefaultConfig(t *testing.T) {
	c := NewChunker(newWordTokenizer(), ChunkerConfig{})
	assert.Equal(t, DefaultChunkerConfig(), c.cfg)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	doc, err := LoadFile(writeFile(t, dir, "notes.md", "# Raku\nFast firing."))
	require.NoError(t, err)
	assert.Equal(t, "notes.md", doc.Source)
	assert.Equal(t, "# Raku\nFast firing.", doc.Text)

	doc, err = LoadFile(writeFile(t, dir, "page.html", "<html><body><p>Celadon is green.</p></body></html>"))
	require.NoError(t, err)
	assert.Contains(t, doc.Text, "Celadon is green.")
	assert.NotContains(t, doc.Text, "<p>")

	_, err = LoadFile(writeFile(t, dir, "scan.pdf", "%PDF"))
	assert.Error(t, err)
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "a")
	b := writeFile(t, dir, "sub/b.md", "b")
	writeFile(t, dir, "sub/image.png", "x")

	files, err := Expand([]string{dir, a})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, files)

	_, err = Expand([]string{filepath.Join(dir, "sub/image.png")})
	assert.Error(t, err)

	_, err = Expand([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func TestBuilder_Build(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	files := []string{
		writeFile(t, dir, "raku.txt", "Raku pots glow. They cool fast."),
		writeFile(t, dir, "glaze.md", "Celadon uses iron. Shino uses feldspar."),
	}
	out := filepath.Join(dir, "out", "index.db")

	emb := &lengthEmbedder{}
	b := NewBuilder(emb, NewChunker(newWordTokenizer(), ChunkerConfig{MaxTokens: 5}), 2)

	stats, err := b.Build(ctx, files, out, false)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, 4, stats.Chunks)
	assert.Equal(t, 2, stats.Dimensions)
	assert.Equal(t, 2, emb.batches)

	idx, err := index.Open(ctx, out, "length-embed")
	require.NoError(t, err)
	assert.Equal(t, 4, idx.Size())

	c, err := idx.Chunk(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Celadon uses iron.", c.Content)
	assert.Equal(t, "glaze.md", c.Source())

	_, err = b.Build(ctx, files, out, false)
	assert.Error(t, err)

	_, err = b.Build(ctx, files, out, true)
	require.NoError(t, err)

	leftovers, err := filepath.Glob(filepath.Join(dir, "out", ".build-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestBuilder_NoContent(t *testing.T) {
	dir := t.TempDir()
	files := []string{writeFile(t, dir, "empty.txt", "   ")}

	b := NewBuilder(&lengthEmbedder{}, NewChunker(newWordTokenizer(), ChunkerConfig{MaxTokens: 6}), 0)
	_, err := b.Build(context.Background(), files, filepath.Join(dir, "index.db"), false)
	assert.Error(t, err)
}
