package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/authbite/internal/identity/entity"
	"github.com/shandysiswandi/authbite/internal/pkg/goerror"
)

type BeginTotpEnrollmentInput struct {
	Username string `validate:"required"`
}

// BeginTotpEnrollment issues a new pending secret for a registered user that
// has no active second factor yet.
func (s *Usecase) BeginTotpEnrollment(ctx context.Context, in BeginTotpEnrollmentInput) (*entity.PendingEnrollment, error) {
	ctx, span := s.startSpan(ctx, "BeginTotpEnrollment")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.repoUser.FindByUsername(ctx, in.Username)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "username", in.Username)
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo find user by username", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	if user.HasActiveTotp() {
		return nil, goerror.NewBusiness("TOTP is already enabled", goerror.CodeConflict)
	}

	return s.beginEnrollment(ctx, user.Username)
}

func (s *Usecase) beginEnrollment(ctx context.Context, username string) (*entity.PendingEnrollment, error) {
	secret, err := s.totp.GenerateSecret()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate totp secret", "username", username, "error", err)
		return nil, goerror.NewServer(err)
	}

	uri, err := s.totp.ProvisioningURI(username, secret)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build provisioning uri", "username", username, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	pending := entity.PendingEnrollment{
		Username:  username,
		Secret:    secret,
		URI:       uri,
		ExpiresAt: now.Add(s.cfg.GetMinute("modules.identity.totp.enrollment_ttl_minutes")),
	}
	s.pending.put(now, pending)

	return &pending, nil
}
