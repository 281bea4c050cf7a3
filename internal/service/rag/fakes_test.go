package rag

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/sandevgo/ceramicsrag/internal/core"
	"github.com/sandevgo/ceramicsrag/internal/index"
	"github.com/sandevgo/ceramicsrag/internal/storage/sqlite"
	"github.com/stretchr/testify/require"
)

// hashEmbedder maps text to a deterministic 4-dim vector and counts calls.
type hashEmbedder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (e *hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	v := make([]float32, 4)
	for i, r := range strings.ToLower(text) {
		v[(i+int(r))%4] += float32(r%7) + 1
	}
	return v, nil
}

func (e *hashEmbedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// recordingModel captures every prompt it is given.
type recordingModel struct {
	mu      sync.Mutex
	prompts [][]core.Turn
	reply   func(n int) (string, error)
}

func (m *recordingModel) Chat(_ context.Context, turns []core.Turn) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]core.Turn, len(turns))
	copy(cp, turns)
	m.prompts = append(m.prompts, cp)
	if m.reply != nil {
		return m.reply(len(m.prompts))
	}
	return fmt.Sprintf("answer %d", len(m.prompts)), nil
}

func (m *recordingModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

var corpus = []string{
	"Raku clay bodies need plenty of grog to survive thermal shock.",
	"Stoneware fires to maturity around cone 6 to cone 10.",
	"Porcelain is translucent when thin and fired high.",
	"Earthenware stays porous unless glazed.",
	"Celadon glazes get their green from small amounts of iron.",
	"Bisque firing drives off chemically bound water.",
	"Wedging removes air pockets from the clay.",
	"Kiln shelves should be coated with kiln wash.",
	"Reduction atmospheres change copper glazes to red.",
	"Slip trailing decorates leather-hard pots.",
}

func newCorpusIndex(t *testing.T, n int) *index.Flat {
	t.Helper()
	e := &hashEmbedder{}
	records := make([]sqlite.ChunkRecord, 0, n)
	for i := 0; i < n; i++ {
		vec, err := e.Embed(context.Background(), corpus[i])
		require.NoError(t, err)
		records = append(records, sqlite.ChunkRecord{
			ID:        int64(i + 1),
			Content:   corpus[i],
			Metadata:  map[string]any{"source": fmt.Sprintf("doc%d.pdf", i%3)},
			Embedding: vec,
		})
	}
	f, err := index.NewFlat(sqlite.IndexMeta{EmbeddingModel: "hash", Dimensions: 4}, records)
	require.NoError(t, err)
	return f
}
