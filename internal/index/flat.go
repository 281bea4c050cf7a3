// Package index holds the document index loaded from the index artifact.
package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sandevgo/ceramicsrag/internal/core"
	"github.com/sandevgo/ceramicsrag/internal/storage/sqlite"
	"github.com/sandevgo/ceramicsrag/pkg/log"
)

// Flat is an exact, brute-force cosine index. It is immutable after
// construction and safe for concurrent use.
type Flat struct {
	model   string
	dims    int
	builtAt time.Time

	ids     []int64
	vectors [][]float32 // unit length, or all zeros
	chunks  map[int64]core.Chunk
}

var _ core.Index = (*Flat)(nil)

// NewFlat builds an index from records. Every embedding must have meta.Dimensions entries.
func NewFlat(meta sqlite.IndexMeta, records []sqlite.ChunkRecord) (*Flat, error) {
	if meta.Dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %d", core.ErrIndexUnavailable, meta.Dimensions)
	}

	f := &Flat{
		model:   meta.EmbeddingModel,
		dims:    meta.Dimensions,
		builtAt: meta.BuiltAt,
		ids:     make([]int64, 0, len(records)),
		vectors: make([][]float32, 0, len(records)),
		chunks:  make(map[int64]core.Chunk, len(records)),
	}

	for _, rec := range records {
		if len(rec.Embedding) != f.dims {
			return nil, fmt.Errorf("%w: chunk %d has %d dimensions, want %d",
				core.ErrIndexUnavailable, rec.ID, len(rec.Embedding), f.dims)
		}
		if _, dup := f.chunks[rec.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate chunk id %d", core.ErrIndexUnavailable, rec.ID)
		}
		f.ids = append(f.ids, rec.ID)
		f.vectors = append(f.vectors, normalize(rec.Embedding))
		f.chunks[rec.ID] = core.Chunk{ID: rec.ID, Content: rec.Content, Metadata: rec.Metadata}
	}

	return f, nil
}

// Open reads the artifact at path. When expectedModel is set it must match
// the model the artifact was built with.
func Open(ctx context.Context, path, expectedModel string) (*Flat, error) {
	meta, records, err := sqlite.ReadIndex(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrIndexUnavailable, err)
	}

	if expectedModel != "" && meta.EmbeddingModel != expectedModel {
		return nil, fmt.Errorf("%w: index built with %q, embedder uses %q",
			core.ErrIndexUnavailable, meta.EmbeddingModel, expectedModel)
	}

	f, err := NewFlat(meta, records)
	if err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Info().
		Str("path", path).
		Int("chunks", f.Size()).
		Int("dimensions", f.dims).
		Str("model", f.model).
		Msg("index loaded")

	return f, nil
}

// Search returns up to k hits ordered by descending cosine similarity. Equal
// scores are ordered by ascending chunk id.
func (f *Flat) Search(ctx context.Context, vector []float32, k int) ([]core.Hit, error) {
	if len(vector) != f.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", core.ErrEmbedding, len(vector), f.dims)
	}
	if k <= 0 || len(f.ids) == 0 {
		return []core.Hit{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := normalize(vector)
	hits := make([]core.Hit, len(f.ids))
	for i, vec := range f.vectors {
		var dot float64
		for j := range q {
			dot += float64(q[j]) * float64(vec[j])
		}
		hits[i] = core.Hit{ChunkID: f.ids[i], Score: dot}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k:k], nil
}

var errChunkNotFound = errors.New("chunk not found")

func (f *Flat) Chunk(_ context.Context, id int64) (core.Chunk, error) {
	c, ok := f.chunks[id]
	if !ok {
		return core.Chunk{}, fmt.Errorf("%w: %w: %d", core.ErrIndexUnavailable, errChunkNotFound, id)
	}
	return c, nil
}

func (f *Flat) Size() int { return len(f.ids) }

func (f *Flat) Dimensions() int { return f.dims }

func (f *Flat) EmbeddingModel() string { return f.model }

func (f *Flat) BuiltAt() time.Time { return f.builtAt }

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}
