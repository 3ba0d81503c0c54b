package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docgate-io/docgate/internal/model"
	appErr "github.com/docgate-io/docgate/internal/pkg/errors"
)

type fakeUserStore struct {
	users map[string]*model.User
	err   error
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[email]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return user, nil
}

func TestResolverEmptyEmailYieldsMinimalScope(t *testing.T) {
	r := NewResolver(&fakeUserStore{})
	scope := r.Resolve(context.Background(), "")
	require.Equal(t, model.RoleEndUser, scope.Role)
	require.False(t, scope.Unrestricted)
	require.Empty(t, scope.ClientIDs)
	require.Empty(t, scope.ProjectIDs)
}

func TestResolverUnknownUserYieldsMinimalScope(t *testing.T) {
	r := NewResolver(&fakeUserStore{users: map[string]*model.User{}})
	scope := r.Resolve(context.Background(), "ghost@example.com")
	require.Equal(t, model.RoleEndUser, scope.Role)
	require.False(t, scope.Unrestricted)
	require.Empty(t, scope.ClientIDs)
}

func TestResolverLookupErrorDegradesNotEscalates(t *testing.T) {
	r := NewResolver(&fakeUserStore{err: errors.New("db down")})
	scope := r.Resolve(context.Background(), "admin@example.com")
	require.False(t, scope.Unrestricted)
	require.Equal(t, model.RoleEndUser, scope.Role)
	require.Empty(t, scope.ClientIDs)
	require.Empty(t, scope.ProjectIDs)
}

func TestResolverSuspendedUserYieldsMinimalScope(t *testing.T) {
	r := NewResolver(&fakeUserStore{users: map[string]*model.User{
		"sus@example.com": {
			Email:      "sus@example.com",
			Role:       model.RoleAccountAdmin,
			Status:     model.UserStatusSuspended,
			ClientIDs:  []string{"c1"},
			ProjectIDs: []string{"p1"},
		},
	}})
	scope := r.Resolve(context.Background(), "sus@example.com")
	require.Equal(t, model.RoleEndUser, scope.Role)
	require.Empty(t, scope.ClientIDs)
	require.Empty(t, scope.ProjectIDs)
}

func TestResolverSuperAdminIsUnrestricted(t *testing.T) {
	r := NewResolver(&fakeUserStore{users: map[string]*model.User{
		"root@example.com": {
			Email:  "root@example.com",
			Role:   model.RoleSuperAdmin,
			Status: model.UserStatusActive,
		},
	}})
	scope := r.Resolve(context.Background(), "root@example.com")
	require.True(t, scope.Unrestricted)
	require.Equal(t, model.RoleSuperAdmin, scope.Role)
}

func TestResolverBuildsAssignmentSets(t *testing.T) {
	r := NewResolver(&fakeUserStore{users: map[string]*model.User{
		"user@example.com": {
			Email:      "user@example.com",
			Role:       model.RoleEndUser,
			Status:     model.UserStatusActive,
			ClientIDs:  []string{"c1", "c2", ""},
			ProjectIDs: []string{"p1"},
		},
	}})
	scope := r.Resolve(context.Background(), "user@example.com")
	require.False(t, scope.Unrestricted)
	require.True(t, scope.HasClient("c1"))
	require.True(t, scope.HasClient("c2"))
	require.False(t, scope.HasClient(""))
	require.True(t, scope.HasProject("p1"))
	require.False(t, scope.HasProject("p2"))
}
