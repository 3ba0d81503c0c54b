package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docgate-io/docgate/internal/model"
	appErr "github.com/docgate-io/docgate/internal/pkg/errors"
)

type stubResolver struct {
	scope model.AccessScope
}

func (s *stubResolver) Resolve(ctx context.Context, email string) model.AccessScope {
	return s.scope
}

type stubRetriever struct {
	candidates []model.CandidateChunk
	err        error
	gotK       int
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string, k int, filters model.SearchFilters) ([]model.CandidateChunk, error) {
	s.gotK = k
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

// allowFilter keeps only candidates whose document id is in the allow set.
type allowFilter struct {
	allow           map[string]bool
	citationsPassed int
}

func (f *allowFilter) Filter(ctx context.Context, scope model.AccessScope, candidates []model.CandidateChunk) []model.CandidateChunk {
	if scope.Unrestricted {
		return candidates
	}
	var out []model.CandidateChunk
	for _, cand := range candidates {
		if f.allow[cand.DocumentID] {
			out = append(out, cand)
		}
	}
	return out
}

func (f *allowFilter) FilterCitations(ctx context.Context, scope model.AccessScope, citations []model.Citation) []model.Citation {
	if scope.Unrestricted {
		return citations
	}
	var out []model.Citation
	for _, cit := range citations {
		if f.allow[cit.DocumentID] {
			out = append(out, cit)
		}
	}
	f.citationsPassed = len(out)
	return out
}

// recordingComposer captures exactly what the composer was shown.
type recordingComposer struct {
	seen      []model.CandidateChunk
	answer    string
	citations []model.Citation
	err       error
}

func (r *recordingComposer) Compose(ctx context.Context, question string, candidates []model.CandidateChunk) (string, []model.Citation, error) {
	r.seen = append([]model.CandidateChunk{}, candidates...)
	if r.err != nil {
		return "", nil, r.err
	}
	if len(candidates) == 0 {
		return EmptyAnswer, nil, nil
	}
	return r.answer, r.citations, nil
}

func restrictedScope(projects ...string) model.AccessScope {
	scope := model.AccessScope{
		Role:       model.RoleEndUser,
		ClientIDs:  map[string]struct{}{},
		ProjectIDs: map[string]struct{}{},
	}
	for _, p := range projects {
		scope.ProjectIDs[p] = struct{}{}
	}
	return scope
}

func TestChatQueryComposerNeverSeesInaccessibleChunks(t *testing.T) {
	retriever := &stubRetriever{candidates: []model.CandidateChunk{
		{DocumentID: "mine", Text: "allowed"},
		{DocumentID: "theirs", Text: "secret"},
		{DocumentID: "mine2", Text: "allowed too"},
	}}
	composer := &recordingComposer{answer: "ok"}
	svc := NewChatService(
		&stubResolver{scope: restrictedScope("p1")},
		retriever,
		&allowFilter{allow: map[string]bool{"mine": true, "mine2": true}},
		composer,
		10, 3,
	)

	result, err := svc.Query(context.Background(), "user@example.com", "question", model.SearchFilters{})
	require.NoError(t, err)
	require.Equal(t, 2, result.TotalResults)
	for _, cand := range composer.seen {
		require.NotEqual(t, "theirs", cand.DocumentID)
	}
}

func TestChatQueryOverfetchesBeforeFiltering(t *testing.T) {
	retriever := &stubRetriever{}
	composer := &recordingComposer{}
	svc := NewChatService(&stubResolver{scope: restrictedScope()}, retriever, &allowFilter{}, composer, 10, 3)

	_, err := svc.Query(context.Background(), "user@example.com", "q", model.SearchFilters{})
	require.NoError(t, err)
	require.Equal(t, 30, retriever.gotK)
}

func TestChatQueryCapsAccessibleResults(t *testing.T) {
	var cands []model.CandidateChunk
	allow := map[string]bool{}
	for i := 0; i < 20; i++ {
		id := string(rune('a' + i))
		cands = append(cands, model.CandidateChunk{DocumentID: id})
		allow[id] = true
	}
	composer := &recordingComposer{answer: "ok"}
	svc := NewChatService(&stubResolver{scope: restrictedScope("p1")}, &stubRetriever{candidates: cands}, &allowFilter{allow: allow}, composer, 5, 3)

	result, err := svc.Query(context.Background(), "user@example.com", "q", model.SearchFilters{})
	require.NoError(t, err)
	require.Equal(t, 5, result.TotalResults)
	require.Len(t, composer.seen, 5)
}

func TestChatQueryEmptyAfterFilterYieldsCanonicalAnswer(t *testing.T) {
	retriever := &stubRetriever{candidates: []model.CandidateChunk{
		{DocumentID: "theirs", Text: "secret"},
	}}
	composer := &recordingComposer{}
	svc := NewChatService(&stubResolver{scope: restrictedScope()}, retriever, &allowFilter{allow: map[string]bool{}}, composer, 10, 3)

	result, err := svc.Query(context.Background(), "user@example.com", "q", model.SearchFilters{})
	require.NoError(t, err)
	require.Equal(t, EmptyAnswer, result.Answer)
	require.Empty(t, result.Citations)
	require.Zero(t, result.TotalResults)
	require.Empty(t, composer.seen)
}

func TestChatQueryRetrievalErrorPropagates(t *testing.T) {
	retriever := &stubRetriever{err: appErr.ErrRetrievalUnavailable}
	svc := NewChatService(&stubResolver{scope: restrictedScope()}, retriever, &allowFilter{}, &recordingComposer{}, 10, 3)

	_, err := svc.Query(context.Background(), "user@example.com", "q", model.SearchFilters{})
	require.ErrorIs(t, err, appErr.ErrRetrievalUnavailable)
}

func TestChatQueryCompositionErrorPropagates(t *testing.T) {
	retriever := &stubRetriever{candidates: []model.CandidateChunk{{DocumentID: "mine"}}}
	composer := &recordingComposer{err: appErr.ErrCompositionUnavailable}
	svc := NewChatService(&stubResolver{scope: restrictedScope("p1")}, retriever, &allowFilter{allow: map[string]bool{"mine": true}}, composer, 10, 3)

	_, err := svc.Query(context.Background(), "user@example.com", "q", model.SearchFilters{})
	require.ErrorIs(t, err, appErr.ErrCompositionUnavailable)
}

func TestChatQueryPostFiltersCitations(t *testing.T) {
	retriever := &stubRetriever{candidates: []model.CandidateChunk{{DocumentID: "mine"}}}
	// Composer misbehaves and cites a document it was never shown.
	composer := &recordingComposer{
		answer: "ok",
		citations: []model.Citation{
			{DocumentID: "mine"},
			{DocumentID: "theirs"},
		},
	}
	svc := NewChatService(&stubResolver{scope: restrictedScope("p1")}, retriever, &allowFilter{allow: map[string]bool{"mine": true}}, composer, 10, 3)

	result, err := svc.Query(context.Background(), "user@example.com", "q", model.SearchFilters{})
	require.NoError(t, err)
	require.Len(t, result.Citations, 1)
	require.Equal(t, "mine", result.Citations[0].DocumentID)
}

func TestChatQueryUnrestrictedScopeSkipsNothing(t *testing.T) {
	retriever := &stubRetriever{candidates: []model.CandidateChunk{
		{DocumentID: "a"}, {DocumentID: "b"},
	}}
	composer := &recordingComposer{answer: "ok"}
	svc := NewChatService(
		&stubResolver{scope: model.AccessScope{Role: model.RoleSuperAdmin, Unrestricted: true}},
		retriever,
		&allowFilter{},
		composer,
		10, 3,
	)

	result, err := svc.Query(context.Background(), "root@example.com", "q", model.SearchFilters{})
	require.NoError(t, err)
	require.Equal(t, 2, result.TotalResults)
	require.Len(t, composer.seen, 2)
}
