package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/docgate-io/docgate/internal/model"
)

type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// ReplaceForDocument swaps out a document's chunks wholesale inside one
// transaction. Chunks are immutable, so re-processing never patches rows
// in place.
func (r *ChunkRepo) ReplaceForDocument(ctx context.Context, docID string, chunks []*model.Chunk) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = $1`, docID); err != nil {
		return err
	}
	const insert = `
		INSERT INTO chunks (id, document_id, position, page, text, embedding, ctime)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, chunk := range chunks {
		if _, err := tx.ExecContext(ctx, insert,
			chunk.ID,
			docID,
			chunk.Position,
			chunk.Page,
			chunk.Text,
			pgvector.NewVector(chunk.Embedding),
			chunk.Ctime,
		); err != nil {
			return fmt.Errorf("insert chunk %s: %w", chunk.ID, err)
		}
	}
	return tx.Commit()
}

func (r *ChunkRepo) DeleteForDocument(ctx context.Context, docID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = $1`, docID)
	return err
}

// Search runs a cosine nearest-neighbour query against the chunk index and
// joins the parent document for citation metadata. Only chunks of fully
// processed documents are searchable.
func (r *ChunkRepo) Search(ctx context.Context, embedding []float32, k int, filters model.SearchFilters) ([]model.CandidateChunk, error) {
	query := `
		SELECT c.document_id, c.id, d.title, d.uri, c.page, c.text,
		       1 - (c.embedding <=> $1) AS score
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.status = $2
	`
	args := []interface{}{pgvector.NewVector(embedding), model.DocumentStatusProcessed}
	if filters.DocType != "" {
		args = append(args, filters.DocType)
		query += fmt.Sprintf(" AND d.doc_type = $%d", len(args))
	}
	if filters.ProjectID != "" {
		args = append(args, filters.ProjectID)
		query += fmt.Sprintf(" AND d.project_id = $%d", len(args))
	}
	args = append(args, k)
	query += fmt.Sprintf(" ORDER BY c.embedding <=> $1 LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var candidates []model.CandidateChunk
	for rows.Next() {
		var cand model.CandidateChunk
		if err := rows.Scan(&cand.DocumentID, &cand.ChunkID, &cand.Title, &cand.URI, &cand.Page, &cand.Text, &cand.Score); err != nil {
			return nil, err
		}
		candidates = append(candidates, cand)
	}
	return candidates, rows.Err()
}
