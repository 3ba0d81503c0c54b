package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docgate-io/docgate/internal/config"
	"github.com/docgate-io/docgate/internal/model"
	appErr "github.com/docgate-io/docgate/internal/pkg/errors"
	"github.com/docgate-io/docgate/internal/pkg/password"
	"github.com/docgate-io/docgate/internal/pkg/timeutil"
	"github.com/docgate-io/docgate/internal/repo"
)

// runBootstrap seeds the default tenant hierarchy and the first super
// admin account. It is idempotent: rows that already exist are left
// alone, so re-running after a config change is safe.
func runBootstrap(cfg *config.Config, database *sql.DB) error {
	ctx := context.Background()
	logger := logutil.GetLogger(ctx)

	clientID := cfg.Access.DefaultClientID
	projectID := cfg.Access.DefaultProjectID
	adminEmail := cfg.Access.SuperAdminEmail
	if clientID == "" || projectID == "" || adminEmail == "" {
		return fmt.Errorf("access.default_client_id, access.default_project_id and access.super_admin_email are required for bootstrap")
	}

	clients := repo.NewClientRepo(database)
	projects := repo.NewProjectRepo(database)
	users := repo.NewUserRepo(database)
	now := timeutil.NowUnix()

	if _, err := clients.Get(ctx, clientID); err != nil {
		if !appErr.IsNotFound(err) {
			return err
		}
		if err := clients.Create(ctx, &model.Client{
			ID:        clientID,
			Name:      "Default Client",
			Status:    model.TenantStatusActive,
			CreatedBy: "bootstrap",
			Ctime:     now,
			Mtime:     now,
		}); err != nil {
			return fmt.Errorf("create default client: %w", err)
		}
		logger.Info("default client created", zap.String("client_id", clientID))
	}

	if _, err := projects.Get(ctx, projectID); err != nil {
		if !appErr.IsNotFound(err) {
			return err
		}
		if err := projects.Create(ctx, &model.Project{
			ID:        projectID,
			ClientID:  clientID,
			Name:      "Default Project",
			Status:    model.TenantStatusActive,
			CreatedBy: "bootstrap",
			Ctime:     now,
			Mtime:     now,
		}); err != nil {
			return fmt.Errorf("create default project: %w", err)
		}
		logger.Info("default project created", zap.String("project_id", projectID))
	}

	if _, err := users.GetByEmail(ctx, adminEmail); err == nil {
		logger.Info("super admin already exists", zap.String("email", adminEmail))
		return nil
	} else if !appErr.IsNotFound(err) {
		return err
	}

	plain := os.Getenv("DOCGATE_ADMIN_PASSWORD")
	generated := false
	if plain == "" {
		plain = randomPassword()
		generated = true
	}
	hash, err := password.Hash(plain)
	if err != nil {
		return err
	}
	if err := users.Create(ctx, &model.User{
		ID:           newBootstrapID(),
		Email:        adminEmail,
		Name:         "Super Admin",
		Role:         model.RoleSuperAdmin,
		Status:       model.UserStatusActive,
		PasswordHash: hash,
		ClientIDs:    []string{clientID},
		ProjectIDs:   []string{projectID},
		Ctime:        now,
		Mtime:        now,
	}); err != nil {
		return fmt.Errorf("create super admin: %w", err)
	}
	logger.Info("super admin created", zap.String("email", adminEmail))
	if generated {
		// Printed once on purpose; the hash is all that lands in the db.
		fmt.Printf("generated super admin password: %s\n", plain)
	}
	return nil
}

func randomPassword() string {
	bytes := make([]byte, 12)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func newBootstrapID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
