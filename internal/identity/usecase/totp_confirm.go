package usecase

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/authbite/internal/pkg/goerror"
	"github.com/shandysiswandi/authbite/internal/pkg/otp"
)

type ConfirmTotpEnrollmentInput struct {
	Username string `validate:"required"`
	Secret   string `validate:"required"`
	Code     string `validate:"required"`
}

// ConfirmTotpEnrollment activates the pending secret of a user once a code
// computed from it verifies. The secret must be the one this service issued.
// Any mismatch returns false and changes nothing.
func (s *Usecase) ConfirmTotpEnrollment(ctx context.Context, in ConfirmTotpEnrollmentInput) (bool, error) {
	ctx, span := s.startSpan(ctx, "ConfirmTotpEnrollment")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)
	in.Secret = otp.NormalizeSecret(in.Secret)
	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return false, goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()

	pending, ok := s.pending.get(now, in.Username)
	if !ok {
		slog.WarnContext(ctx, "no pending totp enrollment", "username", in.Username)
		return false, nil
	}

	if subtle.ConstantTimeCompare([]byte(pending.Secret), []byte(in.Secret)) != 1 {
		slog.WarnContext(ctx, "totp secret does not match pending enrollment", "username", in.Username)
		return false, nil
	}

	if _, ok := s.totp.Verify(pending.Secret, in.Code, now); !ok {
		slog.WarnContext(ctx, "invalid totp code for enrollment", "username", in.Username)
		return false, nil
	}

	updated, err := s.repoUser.UpdateTotp(ctx, pending.Username, pending.Secret, true)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo update user totp", "username", pending.Username, "error", err)
		return false, goerror.NewServer(err)
	}
	if !updated {
		slog.WarnContext(ctx, "user account not found for enrollment", "username", pending.Username)
		return false, nil
	}

	s.pending.take(pending.Username, pending.Secret)

	return true, nil
}
