// Package rag answers questions from the document index: it retrieves the
// nearest chunks, assembles a grounded prompt and asks the chat model.
package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sandevgo/ceramicsrag/internal/core"
)

const DefaultTopK = 8

// Retriever embeds a query and looks up its nearest chunks.
type Retriever struct {
	embedder    core.Embedder
	index       core.Index
	defaultTopK int
}

func NewRetriever(embedder core.Embedder, index core.Index, defaultTopK int) (*Retriever, error) {
	if embedder == nil {
		return nil, errors.New("rag: embedder must not be nil")
	}
	if index == nil {
		return nil, errors.New("rag: index must not be nil")
	}
	if defaultTopK <= 0 {
		defaultTopK = DefaultTopK
	}
	return &Retriever{
		embedder:    embedder,
		index:       index,
		defaultTopK: defaultTopK,
	}, nil
}

// Retrieve returns up to k chunks ordered by descending similarity. A k of
// zero or less uses the configured default. Weak matches are still returned.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]core.ScoredChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", core.ErrEmbedding)
	}
	if k <= 0 {
		k = r.defaultTopK
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		if errors.Is(err, core.ErrEmbedding) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", core.ErrEmbedding, err)
	}

	hits, err := r.index.Search(ctx, vector, k)
	if err != nil {
		return nil, err
	}

	results := make([]core.ScoredChunk, 0, len(hits))
	for _, h := range hits {
		chunk, err := r.index.Chunk(ctx, h.ChunkID)
		if err != nil {
			return nil, err
		}
		results = append(results, core.ScoredChunk{Chunk: chunk, Score: h.Score})
	}
	return results, nil
}

func (r *Retriever) DefaultTopK() int {
	return r.defaultTopK
}
