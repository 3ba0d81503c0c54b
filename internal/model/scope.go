package model

// AccessScope is the per-request view of what a user may see. It is built
// once by the access resolver, passed by value through the pipeline, and
// discarded after the query.
type AccessScope struct {
	Role         Role
	ClientIDs    map[string]struct{}
	ProjectIDs   map[string]struct{}
	Unrestricted bool
}

// MinimalScope is the fail-safe default: end_user with no assignments.
// Scoped documents are invisible under it; legacy global documents remain
// reachable.
func MinimalScope() AccessScope {
	return AccessScope{
		Role:       RoleEndUser,
		ClientIDs:  map[string]struct{}{},
		ProjectIDs: map[string]struct{}{},
	}
}

func (s AccessScope) HasClient(id string) bool {
	_, ok := s.ClientIDs[id]
	return ok
}

func (s AccessScope) HasProject(id string) bool {
	_, ok := s.ProjectIDs[id]
	return ok
}
