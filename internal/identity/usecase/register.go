package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/authbite/internal/identity/entity"
	"github.com/shandysiswandi/authbite/internal/pkg/goerror"
	"github.com/shandysiswandi/authbite/internal/pkg/hash"
)

type RegisterInput struct {
	Username  string `validate:"required,username"`
	Password  string `validate:"required,notblank"`
	Enable2FA bool
}

type RegisterOutput struct {
	Username string
	// Pending is set only when Enable2FA was requested.
	Pending *entity.PendingEnrollment
}

func (s *Usecase) Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	_, err := s.repoUser.FindByUsername(ctx, in.Username)
	if err == nil {
		slog.WarnContext(ctx, "username already registered", "username", in.Username)
		return nil, goerror.NewBusiness("username already registered", goerror.CodeConflict)
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo find user by username", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	passHash, err := s.passwordHasher().Hash(in.Password)
	if errors.Is(err, hash.ErrEmptyPlaintext) {
		return nil, goerror.NewInvalidInput(nil, "password", "password is a required field")
	}
	if errors.Is(err, hash.ErrPlaintextTooLong) {
		return nil, goerror.NewInvalidInput(nil, "password",
			fmt.Sprintf("password exceeds the %d-byte limit", hash.BcryptMaxInput))
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	created, err := s.repoUser.Create(ctx, entity.User{
		Username:     in.Username,
		PasswordHash: string(passHash),
		CreatedAt:    s.clock.Now(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create user", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !created {
		slog.WarnContext(ctx, "username already registered", "username", in.Username)
		return nil, goerror.NewBusiness("username already registered", goerror.CodeConflict)
	}

	out := &RegisterOutput{Username: in.Username}
	if !in.Enable2FA {
		return out, nil
	}

	pending, err := s.beginEnrollment(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	out.Pending = pending

	return out, nil
}
