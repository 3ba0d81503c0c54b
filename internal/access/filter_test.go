package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docgate-io/docgate/internal/model"
)

type fakeOwnershipStore struct {
	owners map[string]model.Ownership
	err    error
	calls  int
}

func (f *fakeOwnershipStore) GetOwnershipBatch(ctx context.Context, docIDs []string) (map[string]model.Ownership, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]model.Ownership, len(docIDs))
	for _, id := range docIDs {
		if own, ok := f.owners[id]; ok {
			out[id] = own
		}
	}
	return out, nil
}

func candidates(docIDs ...string) []model.CandidateChunk {
	out := make([]model.CandidateChunk, 0, len(docIDs))
	for i, id := range docIDs {
		out = append(out, model.CandidateChunk{
			DocumentID: id,
			ChunkID:    id + "-chunk",
			Text:       "text",
			Score:      1.0 - float64(i)*0.1,
		})
	}
	return out
}

func scopeWith(clients, projects []string) model.AccessScope {
	scope := model.AccessScope{
		Role:       model.RoleEndUser,
		ClientIDs:  map[string]struct{}{},
		ProjectIDs: map[string]struct{}{},
	}
	for _, id := range clients {
		scope.ClientIDs[id] = struct{}{}
	}
	for _, id := range projects {
		scope.ProjectIDs[id] = struct{}{}
	}
	return scope
}

func TestFilterProjectAndClientMatch(t *testing.T) {
	store := &fakeOwnershipStore{owners: map[string]model.Ownership{
		"byProject": {DocumentID: "byProject", ClientID: "other", ProjectID: "p1"},
		"byClient":  {DocumentID: "byClient", ClientID: "c1", ProjectID: "otherP"},
		"noMatch":   {DocumentID: "noMatch", ClientID: "cX", ProjectID: "pX"},
	}}
	f := NewFilter(store, false)
	scope := scopeWith([]string{"c1"}, []string{"p1"})

	out := f.Filter(context.Background(), scope, candidates("byProject", "byClient", "noMatch"))
	require.Len(t, out, 2)
	require.Equal(t, "byProject", out[0].DocumentID)
	require.Equal(t, "byClient", out[1].DocumentID)
}

func TestFilterPreservesOrderAndIsIdempotent(t *testing.T) {
	store := &fakeOwnershipStore{owners: map[string]model.Ownership{
		"a": {DocumentID: "a", ProjectID: "p1"},
		"b": {DocumentID: "b", ClientID: "cX"},
		"c": {DocumentID: "c", ProjectID: "p1"},
		"d": {DocumentID: "d", ProjectID: "p1"},
	}}
	f := NewFilter(store, false)
	scope := scopeWith(nil, []string{"p1"})

	first := f.Filter(context.Background(), scope, candidates("a", "b", "c", "d"))
	require.Equal(t, []string{"a", "c", "d"}, docIDs(first))

	second := f.Filter(context.Background(), scope, first)
	require.Equal(t, docIDs(first), docIDs(second))
}

func TestFilterUnrestrictedScopePassesEverythingWithoutLookup(t *testing.T) {
	store := &fakeOwnershipStore{err: errors.New("should not be called")}
	f := NewFilter(store, false)
	scope := model.AccessScope{Role: model.RoleSuperAdmin, Unrestricted: true}

	in := candidates("a", "b")
	out := f.Filter(context.Background(), scope, in)
	require.Equal(t, in, out)
	require.Zero(t, store.calls)
}

func TestFilterFailsClosedOnLookupError(t *testing.T) {
	store := &fakeOwnershipStore{err: errors.New("metadata store down")}
	f := NewFilter(store, false)
	scope := scopeWith([]string{"c1"}, []string{"p1"})

	out := f.Filter(context.Background(), scope, candidates("a", "b", "c"))
	require.Empty(t, out)
}

func TestFilterExcludesUnknownDocuments(t *testing.T) {
	store := &fakeOwnershipStore{owners: map[string]model.Ownership{
		"known": {DocumentID: "known", ProjectID: "p1"},
	}}
	f := NewFilter(store, false)
	scope := scopeWith(nil, []string{"p1"})

	out := f.Filter(context.Background(), scope, candidates("known", "vanished"))
	require.Equal(t, []string{"known"}, docIDs(out))
}

func TestFilterOwnerlessDocumentVisibility(t *testing.T) {
	store := &fakeOwnershipStore{owners: map[string]model.Ownership{
		"legacy": {DocumentID: "legacy"},
	}}
	scope := scopeWith(nil, nil)

	relaxed := NewFilter(store, false)
	out := relaxed.Filter(context.Background(), scope, candidates("legacy"))
	require.Equal(t, []string{"legacy"}, docIDs(out))

	strict := NewFilter(store, true)
	out = strict.Filter(context.Background(), scope, candidates("legacy"))
	require.Empty(t, out)
}

func TestFilterEmptyInput(t *testing.T) {
	f := NewFilter(&fakeOwnershipStore{}, false)
	require.Empty(t, f.Filter(context.Background(), scopeWith(nil, nil), nil))
}

func TestFilterCitationsRemovesInaccessible(t *testing.T) {
	store := &fakeOwnershipStore{owners: map[string]model.Ownership{
		"ok":  {DocumentID: "ok", ProjectID: "p1"},
		"bad": {DocumentID: "bad", ProjectID: "pX"},
	}}
	f := NewFilter(store, false)
	scope := scopeWith(nil, []string{"p1"})

	out := f.FilterCitations(context.Background(), scope, []model.Citation{
		{DocumentID: "ok", Title: "visible"},
		{DocumentID: "bad", Title: "leaked"},
	})
	require.Len(t, out, 1)
	require.Equal(t, "ok", out[0].DocumentID)
}

func TestFilterCitationsFailsClosedOnError(t *testing.T) {
	store := &fakeOwnershipStore{err: errors.New("down")}
	f := NewFilter(store, false)
	scope := scopeWith(nil, []string{"p1"})

	out := f.FilterCitations(context.Background(), scope, []model.Citation{{DocumentID: "a"}})
	require.Empty(t, out)
}

func docIDs(cands []model.CandidateChunk) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.DocumentID)
	}
	return out
}

func TestAllowedMatchesFilterRules(t *testing.T) {
	f := NewFilter(&fakeOwnershipStore{}, false)
	scope := scopeWith([]string{"c1"}, []string{"p1"})

	require.True(t, f.Allowed(scope, model.Ownership{DocumentID: "d", ProjectID: "p1"}))
	require.True(t, f.Allowed(scope, model.Ownership{DocumentID: "d", ClientID: "c1"}))
	require.True(t, f.Allowed(scope, model.Ownership{DocumentID: "d"}))
	require.False(t, f.Allowed(scope, model.Ownership{DocumentID: "d", ClientID: "cX", ProjectID: "pX"}))

	strict := NewFilter(&fakeOwnershipStore{}, true)
	require.False(t, strict.Allowed(scope, model.Ownership{DocumentID: "d"}))
	require.True(t, strict.Allowed(model.AccessScope{Unrestricted: true}, model.Ownership{DocumentID: "d"}))
}
