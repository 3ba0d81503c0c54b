package service

import (
	"context"
	"strings"
	"time"

	"github.com/docgate-io/docgate/internal/model"
	appErr "github.com/docgate-io/docgate/internal/pkg/errors"
	"github.com/docgate-io/docgate/internal/pkg/jwt"
	"github.com/docgate-io/docgate/internal/pkg/password"
	"github.com/docgate-io/docgate/internal/repo"
)

// AuthService handles login only; accounts are provisioned by admins or
// the bootstrap command, there is no self-registration.
type AuthService struct {
	users     *repo.UserRepo
	jwtSecret []byte
	jwtTTL    time.Duration
}

func NewAuthService(users *repo.UserRepo, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{users: users, jwtSecret: secret, jwtTTL: ttl}
}

func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", appErr.ErrUnauthorized
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		return nil, "", appErr.ErrUnauthorized
	}
	if user.Status != model.UserStatusActive {
		return nil, "", appErr.ErrForbidden
	}
	token, err := jwt.GenerateToken(user.ID, user.Email, string(user.Role), s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
