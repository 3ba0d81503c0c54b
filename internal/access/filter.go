package access

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docgate-io/docgate/internal/model"
)

// OwnershipStore resolves which client/project owns each document.
// Documents missing from the returned map do not exist.
type OwnershipStore interface {
	GetOwnershipBatch(ctx context.Context, docIDs []string) (map[string]model.Ownership, error)
}

// Filter drops every candidate whose owning document is outside the given
// scope. It must run before any retrieved text reaches answer
// composition: composition can paraphrase or aggregate across chunks, so
// stripping citations afterwards cannot undo a leak.
//
// The filter is stable (input order preserved) and fail-closed: a
// candidate whose ownership cannot be resolved is excluded, never
// included.
type Filter struct {
	owners OwnershipStore
	strict bool
}

// NewFilter builds a filter. With strict set, documents that have no
// owning client or project are treated as inaccessible instead of
// globally visible.
func NewFilter(owners OwnershipStore, strict bool) *Filter {
	return &Filter{owners: owners, strict: strict}
}

// Filter returns the subsequence of candidates visible under scope.
func (f *Filter) Filter(ctx context.Context, scope model.AccessScope, candidates []model.CandidateChunk) []model.CandidateChunk {
	if len(candidates) == 0 {
		return nil
	}
	if scope.Unrestricted {
		return candidates
	}
	ids := make([]string, 0, len(candidates))
	for _, cand := range candidates {
		ids = append(ids, cand.DocumentID)
	}
	allowed := f.allowedDocs(ctx, scope, ids)
	out := make([]model.CandidateChunk, 0, len(candidates))
	for _, cand := range candidates {
		if allowed[cand.DocumentID] {
			out = append(out, cand)
		}
	}
	return out
}

// FilterCitations re-checks composed citations against the same scope.
// With a correct upstream filter this removes nothing; it exists so a
// composer bug cannot leak a reference.
func (f *Filter) FilterCitations(ctx context.Context, scope model.AccessScope, citations []model.Citation) []model.Citation {
	if len(citations) == 0 {
		return citations
	}
	if scope.Unrestricted {
		return citations
	}
	ids := make([]string, 0, len(citations))
	for _, cit := range citations {
		ids = append(ids, cit.DocumentID)
	}
	allowed := f.allowedDocs(ctx, scope, ids)
	out := make([]model.Citation, 0, len(citations))
	for _, cit := range citations {
		if allowed[cit.DocumentID] {
			out = append(out, cit)
		} else {
			logutil.GetLogger(ctx).Warn("post-filter removed citation", zap.String("document_id", cit.DocumentID))
		}
	}
	return out
}

func (f *Filter) allowedDocs(ctx context.Context, scope model.AccessScope, docIDs []string) map[string]bool {
	owners, err := f.owners.GetOwnershipBatch(ctx, docIDs)
	if err != nil {
		// Fail closed: no ownership data, no access.
		logutil.GetLogger(ctx).Error("ownership lookup failed, excluding all candidates", zap.Error(err))
		return map[string]bool{}
	}
	allowed := make(map[string]bool, len(docIDs))
	for _, id := range docIDs {
		own, ok := owners[id]
		if !ok {
			// Unknown document, fail closed.
			continue
		}
		allowed[id] = f.allowedOwnership(scope, own)
	}
	return allowed
}

// Allowed reports whether a single document's ownership is visible under
// scope. Listing endpoints use it to apply the same rules the candidate
// filter applies.
func (f *Filter) Allowed(scope model.AccessScope, own model.Ownership) bool {
	return f.allowedOwnership(scope, own)
}

// allowedOwnership applies the inclusion rules in precedence order; the
// first match wins.
func (f *Filter) allowedOwnership(scope model.AccessScope, own model.Ownership) bool {
	if scope.Unrestricted {
		return true
	}
	if own.ClientID == "" && own.ProjectID == "" {
		// Legacy document with no owner: globally visible unless strict
		// ownership is on.
		return !f.strict
	}
	if own.ProjectID != "" && scope.HasProject(own.ProjectID) {
		return true
	}
	if own.ClientID != "" && scope.HasClient(own.ClientID) {
		return true
	}
	return false
}
