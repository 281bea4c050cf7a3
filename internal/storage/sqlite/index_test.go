package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_WriteAndRead(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.db")

	w, err := CreateIndex(ctx, path, IndexMeta{EmbeddingModel: "text-embedding-3-small", Dimensions: 3})
	require.NoError(t, err)
	require.NoError(t, w.AddChunks(ctx, []ChunkRecord{
		{ID: 2, Content: "Celadon is a jade glaze.", Metadata: map[string]any{"source": "glazes.pdf", "page": 4}, Embedding: []float32{0, 1, 0}},
		{ID: 1, Content: "Raku firing is fast.", Embedding: []float32{1, 0, 0.5}},
	}))
	require.NoError(t, w.Close())

	meta, records, err := ReadIndex(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, "text-embedding-3-small", meta.EmbeddingModel)
	assert.Equal(t, 3, meta.Dimensions)
	assert.False(t, meta.BuiltAt.IsZero())

	require.Len(t, records, 2)
	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, []float32{1, 0, 0.5}, records[0].Embedding)
	assert.Empty(t, records[0].Metadata)
	assert.Equal(t, "glazes.pdf", records[1].Metadata["source"])
	assert.EqualValues(t, 4, records[1].Metadata["page"])
}

func TestCreateIndex_Rejects(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	_, err := CreateIndex(ctx, filepath.Join(dir, "zero.db"), IndexMeta{EmbeddingModel: "m"})
	assert.Error(t, err)

	existing := filepath.Join(dir, "existing.db")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o644))
	_, err = CreateIndex(ctx, existing, IndexMeta{EmbeddingModel: "m", Dimensions: 2})
	assert.Error(t, err)

	w, err := CreateIndex(ctx, filepath.Join(dir, "dims.db"), IndexMeta{EmbeddingModel: "m", Dimensions: 2})
	require.NoError(t, err)
	defer w.Close()
	assert.Error(t, w.AddChunks(ctx, []ChunkRecord{{ID: 1, Content: "x", Embedding: []float32{1}}}))
}

func TestReadIndex_Failures(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	_, _, err := ReadIndex(ctx, filepath.Join(dir, "missing.db"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	db, err := NewDB(ctx, filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	db.Close()
	_, _, err = ReadIndex(ctx, filepath.Join(dir, "history.db"))
	assert.Error(t, err)
}

func TestVectorSerialization(t *testing.T) {
	blob, err := serializeVector([]float32{1.5, -2, 0})
	require.NoError(t, err)
	assert.Len(t, blob, 12)

	vec, err := deserializeVector(blob)
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, -2, 0}, vec)

	_, err = deserializeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}
