package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"
	"github.com/lib/pq"

	"github.com/docgate-io/docgate/internal/model"
	"github.com/docgate-io/docgate/internal/pkg/dbutil"
	appErr "github.com/docgate-io/docgate/internal/pkg/errors"
)

var documentFields = []string{"id", "title", "uri", "doc_type", "status", "client_id", "project_id", "file_key", "mime_type", "size", "created_by", "ctime", "mtime"}

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	data := map[string]interface{}{
		"id":         doc.ID,
		"title":      doc.Title,
		"uri":        doc.URI,
		"doc_type":   doc.DocType,
		"status":     doc.Status,
		"client_id":  doc.ClientID,
		"project_id": doc.ProjectID,
		"file_key":   doc.FileKey,
		"mime_type":  doc.MimeType,
		"size":       doc.Size,
		"created_by": doc.CreatedBy,
		"ctime":      doc.Ctime,
		"mtime":      doc.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("documents", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *DocumentRepo) Get(ctx context.Context, docID string) (*model.Document, error) {
	where := map[string]interface{}{"id": docID}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	return scanDocument(rows)
}

func (r *DocumentRepo) ListByStatus(ctx context.Context, status string, limit int) ([]model.Document, error) {
	where := map[string]interface{}{
		"status":   status,
		"_orderby": "ctime asc",
		"_limit":   []uint{uint(limit)},
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var docs []model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (r *DocumentRepo) ListAll(ctx context.Context, limit int) ([]model.Document, error) {
	where := map[string]interface{}{
		"status !=": model.DocumentStatusDeleted,
		"_orderby":  "ctime desc",
		"_limit":    []uint{uint(limit)},
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var docs []model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (r *DocumentRepo) UpdateStatus(ctx context.Context, docID, status string, mtime int64) error {
	where := map[string]interface{}{"id": docID}
	update := map[string]interface{}{"status": status, "mtime": mtime}
	sqlStr, args, err := builder.BuildUpdate("documents", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

// GetOwnership resolves a single document's owning client/project.
func (r *DocumentRepo) GetOwnership(ctx context.Context, docID string) (*model.Ownership, error) {
	owners, err := r.GetOwnershipBatch(ctx, []string{docID})
	if err != nil {
		return nil, err
	}
	own, ok := owners[docID]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return &own, nil
}

// GetOwnershipBatch resolves ownership for many documents in one round
// trip. Documents missing from the result map do not exist.
func (r *DocumentRepo) GetOwnershipBatch(ctx context.Context, docIDs []string) (map[string]model.Ownership, error) {
	result := make(map[string]model.Ownership, len(docIDs))
	if len(docIDs) == 0 {
		return result, nil
	}
	const query = `
		SELECT id, client_id, project_id
		FROM documents
		WHERE id = ANY($1) AND status != $2
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(docIDs), model.DocumentStatusDeleted)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var own model.Ownership
		if err := rows.Scan(&own.DocumentID, &own.ClientID, &own.ProjectID); err != nil {
			return nil, err
		}
		result[own.DocumentID] = own
	}
	return result, rows.Err()
}

func scanDocument(rows *sql.Rows) (*model.Document, error) {
	var doc model.Document
	if err := rows.Scan(&doc.ID, &doc.Title, &doc.URI, &doc.DocType, &doc.Status, &doc.ClientID, &doc.ProjectID, &doc.FileKey, &doc.MimeType, &doc.Size, &doc.CreatedBy, &doc.Ctime, &doc.Mtime); err != nil {
		return nil, err
	}
	return &doc, nil
}
