package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/authbite/internal/identity/entity"
	"github.com/shandysiswandi/authbite/internal/pkg/goerror"
)

type AuthenticateInput struct {
	Username string
	Password string
}

type AuthResult struct {
	OK                   bool
	RequiresSecondFactor bool
}

// Authenticate checks the password of a user. It never tells apart an unknown
// user from a wrong password; only storage failures surface as errors.
func (s *Usecase) Authenticate(ctx context.Context, in AuthenticateInput) (*AuthResult, error) {
	ctx, span := s.startSpan(ctx, "Authenticate")
	defer span.End()

	user, err := s.authenticate(ctx, in.Username, in.Password)
	if errors.Is(err, errInvalidCredentials) {
		return &AuthResult{}, nil
	}
	if err != nil {
		return nil, err
	}

	return &AuthResult{OK: true, RequiresSecondFactor: user.HasActiveTotp()}, nil
}

func (s *Usecase) authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errInvalidCredentials
	}

	user, err := s.repoUser.FindByUsername(ctx, username)
	if errors.Is(err, goerror.ErrNotFound) {
		s.verifyPassword(s.dummyHash(), password)
		slog.WarnContext(ctx, "user account not found", "username", username)
		return nil, errInvalidCredentials
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo find user by username", "username", username, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.verifyPassword(user.PasswordHash, password) {
		slog.WarnContext(ctx, "password user account not match", "username", username)
		return nil, errInvalidCredentials
	}

	return user, nil
}
