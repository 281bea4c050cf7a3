package core

const (
	AppName       = "ceramics"
	AppUserAgent  = "CeramicsRAG/0.1"
	RepositoryURL = "https://github.com/sandevgo/ceramicsrag"
	AppVersion    = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message of a conversation. Error is set on a user turn whose
// answer could not be produced.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

func (t Turn) Failed() bool {
	return t.Error != ""
}

// Chunk is the smallest retrievable unit of the corpus.
type Chunk struct {
	ID       int64          `json:"-"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// Source returns the file the chunk was cut from.
func (c Chunk) Source() string {
	for _, key := range []string{"source", "file_name"} {
		if v, ok := c.Metadata[key].(string); ok && v != "" {
			return v
		}
	}
	return "Unknown"
}

// Hit is a raw nearest-neighbour match. Score is cosine similarity, higher is closer.
type Hit struct {
	ChunkID int64
	Score   float64
}

type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Answer is the outcome of one successful turn.
type Answer struct {
	Text      string
	Retrieved []ScoredChunk
}

// Response is the wire shape consumed by presentation layers.
// RetrievedDocs and SimilarityScores are aligned by index.
type Response struct {
	Answer           string    `json:"answer"`
	AnswerHTML       string    `json:"answer_html,omitempty"`
	RetrievedDocs    []Chunk   `json:"retrieved_docs"`
	SimilarityScores []float64 `json:"similarity_scores"`
}

func (a *Answer) Response() Response {
	resp := Response{
		Answer:           a.Text,
		RetrievedDocs:    make([]Chunk, len(a.Retrieved)),
		SimilarityScores: make([]float64, len(a.Retrieved)),
	}
	for i, sc := range a.Retrieved {
		resp.RetrievedDocs[i] = sc.Chunk
		resp.SimilarityScores[i] = sc.Score
	}
	return resp
}

// Sources lists distinct source files in retrieval order.
func (a *Answer) Sources() []string {
	seen := make(map[string]bool, len(a.Retrieved))
	var sources []string
	for _, sc := range a.Retrieved {
		src := sc.Chunk.Source()
		if seen[src] {
			continue
		}
		seen[src] = true
		sources = append(sources, src)
	}
	return sources
}

type Model struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContextLength int    `json:"context_length,omitempty"`
}
