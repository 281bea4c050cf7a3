// Package ingest builds the index artifact from local documents.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/ceramicsrag/internal/core"
	"github.com/sandevgo/ceramicsrag/internal/storage/sqlite"
	"github.com/sandevgo/ceramicsrag/pkg/log"
)

const DefaultBatchSize = 64

type Builder struct {
	embedder  core.BatchEmbedder
	chunker   *Chunker
	batchSize int
}

type Stats struct {
	Files      int
	Chunks     int
	Dimensions int
	Model      string
	Path       string
	Elapsed    time.Duration
}

func NewBuilder(embedder core.BatchEmbedder, chunker *Chunker, batchSize int) *Builder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Builder{embedder: embedder, chunker: chunker, batchSize: batchSize}
}

// Build chunks and embeds files and writes the artifact to out. The artifact
// is assembled in a temporary file and renamed into place when complete. An
// existing out is replaced only when overwrite is set.
func (b *Builder) Build(ctx context.Context, files []string, out string, overwrite bool) (Stats, error) {
	start := time.Now()
	logger := log.FromCtx(ctx)
	stats := Stats{Path: out, Model: b.embedder.Model()}

	if _, err := os.Stat(out); err == nil && !overwrite {
		return stats, fmt.Errorf("%s already exists", out)
	}

	var records []sqlite.ChunkRecord
	for _, path := range files {
		doc, err := LoadFile(path)
		if err != nil {
			return stats, err
		}
		pieces := b.chunker.Split(doc.Text)
		logger.Debug().Str("file", doc.Source).Int("chunks", len(pieces)).Msg("document chunked")

		for _, p := range pieces {
			records = append(records, sqlite.ChunkRecord{
				ID:      int64(len(records) + 1),
				Content: p.Text,
				Metadata: map[string]any{
					"source": doc.Source,
					"chunk":  p.Index,
					"tokens": p.TokenSize,
				},
			})
		}
		stats.Files++
	}
	if len(records) == 0 {
		return stats, errors.New("no content to index")
	}

	for from := 0; from < len(records); from += b.batchSize {
		to := min(from+b.batchSize, len(records))

		texts := make([]string, 0, to-from)
		for _, r := range records[from:to] {
			texts = append(texts, r.Content)
		}

		vectors, err := b.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return stats, err
		}
		for i, v := range vectors {
			records[from+i].Embedding = v
		}
		logger.Info().Int("done", to).Int("total", len(records)).Msg("embedded chunks")
	}

	stats.Dimensions = len(records[0].Embedding)
	stats.Chunks = len(records)

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return stats, err
	}
	tmp := filepath.Join(filepath.Dir(out), ".build-"+uuid.NewString()+".db")
	defer os.Remove(tmp)

	w, err := sqlite.CreateIndex(ctx, tmp, sqlite.IndexMeta{
		EmbeddingModel: stats.Model,
		Dimensions:     stats.Dimensions,
	})
	if err != nil {
		return stats, err
	}

	for from := 0; from < len(records); from += b.batchSize {
		to := min(from+b.batchSize, len(records))
		if err := w.AddChunks(ctx, records[from:to]); err != nil {
			w.Close()
			return stats, err
		}
	}
	if err := w.Close(); err != nil {
		return stats, err
	}

	if err := os.Rename(tmp, out); err != nil {
		return stats, fmt.Errorf("move index into place: %w", err)
	}

	stats.Elapsed = time.Since(start)
	logger.Info().
		Str("path", out).
		Int("files", stats.Files).
		Int("chunks", stats.Chunks).
		Dur("elapsed", stats.Elapsed).
		Msg("index built")

	return stats, nil
}
