package service

import (
	"context"
	"fmt"

	"github.com/docgate-io/docgate/internal/ai"
	"github.com/docgate-io/docgate/internal/model"
	appErr "github.com/docgate-io/docgate/internal/pkg/errors"
)

// ChunkSearcher is the vector index the retriever queries.
type ChunkSearcher interface {
	Search(ctx context.Context, embedding []float32, k int, filters model.SearchFilters) ([]model.CandidateChunk, error)
}

// RetrieveService embeds the query and pulls ranked candidates from the
// chunk index. It knows nothing about access control; callers filter the
// candidates before anything downstream sees them.
type RetrieveService struct {
	ai     *ai.Manager
	chunks ChunkSearcher
}

func NewRetrieveService(aiMgr *ai.Manager, chunks ChunkSearcher) *RetrieveService {
	return &RetrieveService{ai: aiMgr, chunks: chunks}
}

// Retrieve returns up to k candidates ordered by descending similarity.
// Any backend failure surfaces as ErrRetrievalUnavailable: the query fails
// whole, partial results are worse than none.
func (s *RetrieveService) Retrieve(ctx context.Context, query string, k int, filters model.SearchFilters) ([]model.CandidateChunk, error) {
	if k <= 0 {
		return nil, nil
	}
	embedding, err := s.ai.Embed(ctx, query, ai.TaskTypeQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", appErr.ErrRetrievalUnavailable, err)
	}
	candidates, err := s.chunks.Search(ctx, embedding, k, filters)
	if err != nil {
		return nil, fmt.Errorf("%w: search index: %v", appErr.ErrRetrievalUnavailable, err)
	}
	return candidates, nil
}
