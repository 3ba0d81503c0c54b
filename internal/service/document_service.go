package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docgate-io/docgate/internal/ai"
	"github.com/docgate-io/docgate/internal/extract"
	"github.com/docgate-io/docgate/internal/filestore"
	"github.com/docgate-io/docgate/internal/model"
	appErr "github.com/docgate-io/docgate/internal/pkg/errors"
	"github.com/docgate-io/docgate/internal/pkg/timeutil"
	"github.com/docgate-io/docgate/internal/repo"
)

// DocScopeResolver and DocAccessChecker mirror the chat pipeline's
// resolver/filter pair so listing applies the same visibility rules.
type DocScopeResolver interface {
	Resolve(ctx context.Context, email string) model.AccessScope
}

type DocAccessChecker interface {
	Allowed(scope model.AccessScope, own model.Ownership) bool
}

type DocumentService struct {
	docs      *repo.DocumentRepo
	chunks    *repo.ChunkRepo
	projects  *repo.ProjectRepo
	store     filestore.Store
	extractor extract.Extractor
	ai        *ai.Manager
	resolver  DocScopeResolver
	checker   DocAccessChecker
}

func NewDocumentService(docs *repo.DocumentRepo, chunks *repo.ChunkRepo, projects *repo.ProjectRepo, store filestore.Store, extractor extract.Extractor, aiMgr *ai.Manager, resolver DocScopeResolver, checker DocAccessChecker) *DocumentService {
	return &DocumentService{docs: docs, chunks: chunks, projects: projects, store: store, extractor: extractor, ai: aiMgr, resolver: resolver, checker: checker}
}

type UploadRequest struct {
	Title     string
	DocType   string
	ClientID  string
	ProjectID string
	MimeType  string
	Size      int64
	CreatedBy string
	Content   filestore.ReadSeekCloser
}

// Upload stores the raw file and records the document row. Indexing is a
// separate step; fresh uploads are not searchable.
func (s *DocumentService) Upload(ctx context.Context, req UploadRequest) (*model.Document, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || req.Content == nil {
		return nil, appErr.ErrInvalid
	}
	clientID := strings.TrimSpace(req.ClientID)
	projectID := strings.TrimSpace(req.ProjectID)
	if projectID != "" {
		project, err := s.projects.Get(ctx, projectID)
		if err != nil {
			return nil, err
		}
		// A project-owned document always carries its client too.
		if clientID != "" && clientID != project.ClientID {
			return nil, appErr.ErrInvalid
		}
		clientID = project.ClientID
	}

	id := newID()
	fileKey := id
	if err := s.store.Save(ctx, fileKey, req.Content, req.Size); err != nil {
		return nil, fmt.Errorf("save file: %w", err)
	}
	now := timeutil.NowUnix()
	doc := &model.Document{
		ID:        id,
		Title:     title,
		URI:       s.store.URL(fileKey, ""),
		DocType:   strings.TrimSpace(req.DocType),
		Status:    model.DocumentStatusUploaded,
		ClientID:  clientID,
		ProjectID: projectID,
		FileKey:   fileKey,
		MimeType:  req.MimeType,
		Size:      req.Size,
		CreatedBy: req.CreatedBy,
		Ctime:     now,
		Mtime:     now,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, docID string) (*model.Document, error) {
	doc, err := s.docs.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.Status == model.DocumentStatusDeleted {
		return nil, appErr.ErrNotFound
	}
	return doc, nil
}

// GetVisible is Get plus the caller's visibility rules; a document outside
// the caller's scope reads as absent, not forbidden.
func (s *DocumentService) GetVisible(ctx context.Context, email, docID string) (*model.Document, error) {
	doc, err := s.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	scope := s.resolver.Resolve(ctx, email)
	if !s.checker.Allowed(scope, ownershipOf(doc)) {
		return nil, appErr.ErrNotFound
	}
	return doc, nil
}

// ListVisible lists documents under the same access rules the chat filter
// applies, so the catalogue never shows more than chat can cite.
func (s *DocumentService) ListVisible(ctx context.Context, email, status string, limit int) ([]model.Document, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var docs []model.Document
	var err error
	if status != "" {
		docs, err = s.docs.ListByStatus(ctx, status, limit)
	} else {
		docs, err = s.docs.ListAll(ctx, limit)
	}
	if err != nil {
		return nil, err
	}
	scope := s.resolver.Resolve(ctx, email)
	if scope.Unrestricted {
		return docs, nil
	}
	visible := make([]model.Document, 0, len(docs))
	for _, doc := range docs {
		if s.checker.Allowed(scope, ownershipOf(&doc)) {
			visible = append(visible, doc)
		}
	}
	return visible, nil
}

func ownershipOf(doc *model.Document) model.Ownership {
	return model.Ownership{
		DocumentID: doc.ID,
		ClientID:   doc.ClientID,
		ProjectID:  doc.ProjectID,
	}
}

// RequestProcessing queues a document for indexing. Only uploaded or
// failed documents can be queued; queueing a processed document re-indexes
// it.
func (s *DocumentService) RequestProcessing(ctx context.Context, docID string) error {
	doc, err := s.Get(ctx, docID)
	if err != nil {
		return err
	}
	switch doc.Status {
	case model.DocumentStatusUploaded, model.DocumentStatusFailed, model.DocumentStatusProcessed:
	default:
		return appErr.ErrConflict
	}
	return s.docs.UpdateStatus(ctx, docID, model.DocumentStatusProcessingRequested, timeutil.NowUnix())
}

// Process runs the full indexing pipeline for one queued document:
// extract, chunk, embed, swap the chunk set, mark processed. Any failure
// marks the document failed and leaves the previous chunks untouched.
func (s *DocumentService) Process(ctx context.Context, docID string) error {
	doc, err := s.Get(ctx, docID)
	if err != nil {
		return err
	}
	if doc.Status != model.DocumentStatusProcessingRequested {
		return appErr.ErrConflict
	}
	if err := s.docs.UpdateStatus(ctx, docID, model.DocumentStatusProcessing, timeutil.NowUnix()); err != nil {
		return err
	}
	if err := s.index(ctx, doc); err != nil {
		logutil.GetLogger(ctx).Error("document indexing failed",
			zap.String("document_id", docID), zap.Error(err))
		if uerr := s.docs.UpdateStatus(ctx, docID, model.DocumentStatusFailed, timeutil.NowUnix()); uerr != nil {
			logutil.GetLogger(ctx).Error("mark document failed", zap.String("document_id", docID), zap.Error(uerr))
		}
		return err
	}
	return s.docs.UpdateStatus(ctx, docID, model.DocumentStatusProcessed, timeutil.NowUnix())
}

func (s *DocumentService) index(ctx context.Context, doc *model.Document) error {
	file, err := s.store.Open(ctx, doc.FileKey)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()
	result, err := s.extractor.Extract(ctx, file, doc.MimeType)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	pieces := ai.ChunkMarkdown(result.Text)
	if len(pieces) == 0 {
		return fmt.Errorf("no indexable text")
	}
	now := timeutil.NowUnix()
	chunks := make([]*model.Chunk, 0, len(pieces))
	for _, piece := range pieces {
		embedding, err := s.ai.Embed(ctx, piece.Text, ai.TaskTypeDocument)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", piece.Position, err)
		}
		chunks = append(chunks, &model.Chunk{
			ID:         newID(),
			DocumentID: doc.ID,
			Position:   piece.Position,
			Page:       piece.Page,
			Text:       piece.Text,
			Embedding:  embedding,
			Ctime:      now,
		})
	}
	return s.chunks.ReplaceForDocument(ctx, doc.ID, chunks)
}

// Delete soft-deletes the document and removes its chunks from the index.
// The stored file stays for audit; the row keeps its ownership columns.
func (s *DocumentService) Delete(ctx context.Context, docID string) error {
	if _, err := s.Get(ctx, docID); err != nil {
		return err
	}
	if err := s.chunks.DeleteForDocument(ctx, docID); err != nil {
		return err
	}
	return s.docs.UpdateStatus(ctx, docID, model.DocumentStatusDeleted, timeutil.NowUnix())
}

// OpenFile exposes the raw stored file for the local-store download route.
func (s *DocumentService) OpenFile(ctx context.Context, fileKey string) (filestore.ReadSeekCloser, error) {
	return s.store.Open(ctx, fileKey)
}
