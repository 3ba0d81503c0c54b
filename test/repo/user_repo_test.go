package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docgate-io/docgate/internal/model"
	appErr "github.com/docgate-io/docgate/internal/pkg/errors"
	"github.com/docgate-io/docgate/internal/pkg/timeutil"
	"github.com/docgate-io/docgate/internal/repo"
	"github.com/docgate-io/docgate/test/testutil"
)

func TestUserRepoCreateAndLookup(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	users := repo.NewUserRepo(db)
	ctx := context.Background()
	now := timeutil.NowUnix()
	user := &model.User{
		ID:           "user-lookup-1",
		Email:        "lookup1@example.com",
		Name:         "Lookup One",
		Role:         model.RoleEndUser,
		Status:       model.UserStatusActive,
		PasswordHash: "hash",
		ClientIDs:    []string{"c1"},
		ProjectIDs:   []string{"p1", "p2"},
		Ctime:        now,
		Mtime:        now,
	}
	require.NoError(t, users.Create(ctx, user))

	got, err := users.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, model.RoleEndUser, got.Role)
	require.Equal(t, []string{"c1"}, got.ClientIDs)
	require.Equal(t, []string{"p1", "p2"}, got.ProjectIDs)

	_, err = users.GetByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestUserRepoUpdateAssignments(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	users := repo.NewUserRepo(db)
	ctx := context.Background()
	now := timeutil.NowUnix()
	user := &model.User{
		ID:           "user-assign-1",
		Email:        "assign1@example.com",
		Role:         model.RoleProjectAdmin,
		Status:       model.UserStatusActive,
		PasswordHash: "hash",
		Ctime:        now,
		Mtime:        now,
	}
	require.NoError(t, users.Create(ctx, user))

	require.NoError(t, users.UpdateAssignments(ctx, user.ID, []string{"c9"}, []string{"p9"}, timeutil.NowUnix()))
	got, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"c9"}, got.ClientIDs)
	require.Equal(t, []string{"p9"}, got.ProjectIDs)

	require.NoError(t, users.UpdateStatus(ctx, user.ID, model.UserStatusSuspended, timeutil.NowUnix()))
	got, err = users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, model.UserStatusSuspended, got.Status)
}
