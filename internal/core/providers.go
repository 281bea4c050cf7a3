package core

import "context"

type ChatModel interface {
	Chat(ctx context.Context, turns []Turn) (string, error)
}

type ModelLister interface {
	Models(ctx context.Context) ([]Model, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type BatchEmbedder interface {
	Embedder
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// Index is the read-only view of the document index.
type Index interface {
	Search(ctx context.Context, vector []float32, k int) ([]Hit, error)
	Chunk(ctx context.Context, id int64) (Chunk, error)
	Size() int
	Dimensions() int
	EmbeddingModel() string
}
