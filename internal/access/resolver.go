package access

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docgate-io/docgate/internal/model"
	appErr "github.com/docgate-io/docgate/internal/pkg/errors"
)

// UserStore is the read-only profile lookup the resolver depends on.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// Resolver turns an authenticated identity into an AccessScope. It is
// read-only and never fails the request: any lookup problem degrades to
// the minimal scope. Degrading to an unrestricted scope on error would be
// a privilege escalation, degrading to a hard failure would take every
// query down with the profile store, so minimal scope is the middle
// ground.
type Resolver struct {
	users UserStore
}

func NewResolver(users UserStore) *Resolver {
	return &Resolver{users: users}
}

func (r *Resolver) Resolve(ctx context.Context, email string) model.AccessScope {
	logger := logutil.GetLogger(ctx).With(zap.String("email", email))
	if email == "" {
		return model.MinimalScope()
	}
	user, err := r.users.GetByEmail(ctx, email)
	if err != nil {
		if !appErr.IsNotFound(err) {
			logger.Error("profile lookup failed, degrading to minimal scope", zap.Error(err))
		}
		return model.MinimalScope()
	}
	if user.Status != model.UserStatusActive {
		logger.Warn("profile not active, degrading to minimal scope", zap.String("status", user.Status))
		return model.MinimalScope()
	}
	if user.Role == model.RoleSuperAdmin {
		return model.AccessScope{
			Role:         model.RoleSuperAdmin,
			ClientIDs:    map[string]struct{}{},
			ProjectIDs:   map[string]struct{}{},
			Unrestricted: true,
		}
	}
	scope := model.AccessScope{
		Role:       user.Role,
		ClientIDs:  make(map[string]struct{}, len(user.ClientIDs)),
		ProjectIDs: make(map[string]struct{}, len(user.ProjectIDs)),
	}
	for _, id := range user.ClientIDs {
		if id != "" {
			scope.ClientIDs[id] = struct{}{}
		}
	}
	for _, id := range user.ProjectIDs {
		if id != "" {
			scope.ProjectIDs[id] = struct{}{}
		}
	}
	return scope
}
