package service

import (
	"context"
	"strings"

	"github.com/docgate-io/docgate/internal/model"
	appErr "github.com/docgate-io/docgate/internal/pkg/errors"
	"github.com/docgate-io/docgate/internal/pkg/password"
	"github.com/docgate-io/docgate/internal/pkg/timeutil"
	"github.com/docgate-io/docgate/internal/repo"
)

// AdminService manages tenants and accounts. Handlers enforce the role
// gate before any of these run; the service itself only validates shape
// and referential rules.
type AdminService struct {
	clients  *repo.ClientRepo
	projects *repo.ProjectRepo
	users    *repo.UserRepo
}

func NewAdminService(clients *repo.ClientRepo, projects *repo.ProjectRepo, users *repo.UserRepo) *AdminService {
	return &AdminService{clients: clients, projects: projects, users: users}
}

func (s *AdminService) CreateClient(ctx context.Context, name, domain, createdBy string) (*model.Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErr.ErrInvalid
	}
	now := timeutil.NowUnix()
	client := &model.Client{
		ID:        newID(),
		Name:      name,
		Domain:    strings.TrimSpace(domain),
		Status:    model.TenantStatusActive,
		CreatedBy: createdBy,
		Ctime:     now,
		Mtime:     now,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *AdminService) ListClients(ctx context.Context) ([]model.Client, error) {
	return s.clients.List(ctx)
}

// SetClientStatus is the only mutation clients support; deactivation keeps
// the row so ownership history stays intact.
func (s *AdminService) SetClientStatus(ctx context.Context, clientID, status string) error {
	if status != model.TenantStatusActive && status != model.TenantStatusInactive {
		return appErr.ErrInvalid
	}
	if _, err := s.clients.Get(ctx, clientID); err != nil {
		return err
	}
	return s.clients.UpdateStatus(ctx, clientID, status, timeutil.NowUnix())
}

func (s *AdminService) CreateProject(ctx context.Context, clientID, name, code, createdBy string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" || clientID == "" {
		return nil, appErr.ErrInvalid
	}
	client, err := s.clients.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client.Status != model.TenantStatusActive {
		return nil, appErr.ErrInvalid
	}
	now := timeutil.NowUnix()
	project := &model.Project{
		ID:        newID(),
		ClientID:  clientID,
		Name:      name,
		Code:      strings.TrimSpace(code),
		Status:    model.TenantStatusActive,
		CreatedBy: createdBy,
		Ctime:     now,
		Mtime:     now,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *AdminService) ListProjects(ctx context.Context, clientID string) ([]model.Project, error) {
	return s.projects.List(ctx, clientID)
}

func (s *AdminService) SetProjectStatus(ctx context.Context, projectID, status string) error {
	if status != model.TenantStatusActive && status != model.TenantStatusInactive {
		return appErr.ErrInvalid
	}
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return err
	}
	return s.projects.UpdateStatus(ctx, projectID, status, timeutil.NowUnix())
}

func (s *AdminService) CreateUser(ctx context.Context, email, name, plainPassword string, role model.Role, clientIDs, projectIDs []string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || plainPassword == "" {
		return nil, appErr.ErrInvalid
	}
	if !role.Valid() {
		return nil, appErr.ErrInvalid
	}
	if err := s.checkAssignments(ctx, clientIDs, projectIDs); err != nil {
		return nil, err
	}
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, err
	}
	now := timeutil.NowUnix()
	user := &model.User{
		ID:           newID(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		Role:         role,
		Status:       model.UserStatusActive,
		PasswordHash: hash,
		ClientIDs:    clientIDs,
		ProjectIDs:   projectIDs,
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// UpdateUserAssignments replaces the user's client/project sets wholesale.
// The next scope resolution picks the new sets up; issued tokens are not
// revoked.
func (s *AdminService) UpdateUserAssignments(ctx context.Context, userID string, clientIDs, projectIDs []string) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	if err := s.checkAssignments(ctx, clientIDs, projectIDs); err != nil {
		return err
	}
	return s.users.UpdateAssignments(ctx, userID, clientIDs, projectIDs, timeutil.NowUnix())
}

func (s *AdminService) SetUserStatus(ctx context.Context, userID, status string) error {
	if status != model.UserStatusActive && status != model.UserStatusSuspended {
		return appErr.ErrInvalid
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	return s.users.UpdateStatus(ctx, userID, status, timeutil.NowUnix())
}

func (s *AdminService) checkAssignments(ctx context.Context, clientIDs, projectIDs []string) error {
	for _, id := range clientIDs {
		if _, err := s.clients.Get(ctx, id); err != nil {
			return err
		}
	}
	for _, id := range projectIDs {
		if _, err := s.projects.Get(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
