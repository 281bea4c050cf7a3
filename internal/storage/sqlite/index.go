package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sandevgo/ceramicsrag/pkg/log"
)

type IndexMeta struct {
	EmbeddingModel string
	Dimensions     int
	BuiltAt        time.Time
}

// ChunkRecord is one stored chunk together with its embedding.
type ChunkRecord struct {
	ID        int64
	Content   string
	Metadata  map[string]any
	Embedding []float32
}

// ReadIndex loads an index artifact without modifying it.
func ReadIndex(ctx context.Context, path string) (IndexMeta, []ChunkRecord, error) {
	var meta IndexMeta

	if _, err := os.Stat(path); err != nil {
		return meta, nil, err
	}

	db, err := sql.Open(driverName, "file:"+path+"?mode=ro")
	if err != nil {
		return meta, nil, fmt.Errorf("failed to open index: %w", err)
	}
	defer db.Close()

	var builtAt sql.NullTime
	err = db.QueryRowContext(ctx, `SELECT embedding_model, dimensions, built_at FROM index_meta WHERE id = 1`).
		Scan(&meta.EmbeddingModel, &meta.Dimensions, &builtAt)
	if errors.Is(err, sql.ErrNoRows) {
		return meta, nil, errors.New("index metadata is missing")
	}
	if err != nil {
		return meta, nil, fmt.Errorf("failed to read index metadata: %w", err)
	}
	meta.BuiltAt = builtAt.Time

	rows, err := db.QueryContext(ctx, `SELECT id, content, metadata, embedding FROM chunks ORDER BY id`)
	if err != nil {
		return meta, nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var records []ChunkRecord
	for rows.Next() {
		var (
			rec      ChunkRecord
			metaJSON string
			blob     []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Content, &metaJSON, &blob); err != nil {
			return meta, nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		if metaJSON != "" {
			if err := json.Unmarshal([]byte(metaJSON), &rec.Metadata); err != nil {
				return meta, nil, fmt.Errorf("chunk %d: bad metadata: %w", rec.ID, err)
			}
		}
		if rec.Embedding, err = deserializeVector(blob); err != nil {
			return meta, nil, fmt.Errorf("chunk %d: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return meta, nil, err
	}

	log.FromCtx(ctx).Debug().Str("path", path).Int("chunks", len(records)).Msg("read index artifact")
	return meta, records, nil
}

// IndexWriter builds a new index artifact.
type IndexWriter struct {
	db   *sql.DB
	dims int
}

// CreateIndex creates an empty artifact at path. An existing file is an error.
func CreateIndex(ctx context.Context, path string, meta IndexMeta) (*IndexWriter, error) {
	if meta.Dimensions <= 0 {
		return nil, fmt.Errorf("invalid dimensions %d", meta.Dimensions)
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("index %s already exists", path)
	}

	db, err := open(ctx, path, indexMigrations)
	if err != nil {
		return nil, err
	}

	builtAt := meta.BuiltAt
	if builtAt.IsZero() {
		builtAt = time.Now().UTC()
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO index_meta (id, embedding_model, dimensions, built_at) VALUES (1, ?, ?, ?)`,
		meta.EmbeddingModel, meta.Dimensions, builtAt)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to write index metadata: %w", err)
	}

	return &IndexWriter{db: db, dims: meta.Dimensions}, nil
}

func (w *IndexWriter) AddChunks(ctx context.Context, records []ChunkRecord) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO chunks (id, content, metadata, embedding) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if len(rec.Embedding) != w.dims {
			return fmt.Errorf("chunk %d: embedding has %d dimensions, want %d", rec.ID, len(rec.Embedding), w.dims)
		}
		metaJSON, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("chunk %d: failed to marshal metadata: %w", rec.ID, err)
		}
		if string(metaJSON) == "null" {
			metaJSON = []byte("{}")
		}
		blob, err := serializeVector(rec.Embedding)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, rec.ID, rec.Content, string(metaJSON), blob); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}

func (w *IndexWriter) Close() error {
	return w.db.Close()
}
