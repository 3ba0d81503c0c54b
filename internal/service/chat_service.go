package service

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docgate-io/docgate/internal/model"
	"github.com/docgate-io/docgate/internal/pkg/timeutil"
)

type ScopeResolver interface {
	Resolve(ctx context.Context, email string) model.AccessScope
}

type Retriever interface {
	Retrieve(ctx context.Context, query string, k int, filters model.SearchFilters) ([]model.CandidateChunk, error)
}

type AccessFilter interface {
	Filter(ctx context.Context, scope model.AccessScope, candidates []model.CandidateChunk) []model.CandidateChunk
	FilterCitations(ctx context.Context, scope model.AccessScope, citations []model.Citation) []model.Citation
}

type Composer interface {
	Compose(ctx context.Context, question string, candidates []model.CandidateChunk) (string, []model.Citation, error)
}

// ChatService runs one query through the fixed pipeline: resolve the
// caller's scope, retrieve candidates, drop the inaccessible ones, compose
// an answer from the survivors, then re-check the citations. Filtering
// happens strictly before composition; the composer never receives a chunk
// the caller cannot see.
type ChatService struct {
	resolver  ScopeResolver
	retriever Retriever
	filter    AccessFilter
	composer  Composer

	maxResults int
	overfetch  int
}

func NewChatService(resolver ScopeResolver, retriever Retriever, filter AccessFilter, composer Composer, maxResults, overfetch int) *ChatService {
	if maxResults <= 0 {
		maxResults = 10
	}
	if overfetch <= 0 {
		overfetch = 3
	}
	return &ChatService{
		resolver:   resolver,
		retriever:  retriever,
		filter:     filter,
		composer:   composer,
		maxResults: maxResults,
		overfetch:  overfetch,
	}
}

func (s *ChatService) Query(ctx context.Context, email, question string, filters model.SearchFilters) (*model.ChatResult, error) {
	start := timeutil.NowMillis()
	logger := logutil.GetLogger(ctx).With(zap.String("email", email))

	scope := s.resolver.Resolve(ctx, email)

	// Fetch more than we need; access filtering thins the list and the
	// caller still deserves up to maxResults accessible hits.
	candidates, err := s.retriever.Retrieve(ctx, question, s.maxResults*s.overfetch, filters)
	if err != nil {
		return nil, err
	}

	accessible := s.filter.Filter(ctx, scope, candidates)
	if len(accessible) > s.maxResults {
		accessible = accessible[:s.maxResults]
	}
	if dropped := len(candidates) - len(accessible); dropped > 0 {
		logger.Debug("candidates dropped before composition",
			zap.Int("retrieved", len(candidates)),
			zap.Int("accessible", len(accessible)))
	}

	answer, citations, err := s.composer.Compose(ctx, question, accessible)
	if err != nil {
		return nil, err
	}

	citations = s.filter.FilterCitations(ctx, scope, citations)

	return &model.ChatResult{
		Answer:       answer,
		Citations:    citations,
		QueryTimeMS:  timeutil.NowMillis() - start,
		TotalResults: len(accessible),
	}, nil
}
