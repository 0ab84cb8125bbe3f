package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/authbite/internal/identity/entity"
	"github.com/shandysiswandi/authbite/internal/pkg/goerror"
)

type VerifySecondFactorInput struct {
	Username string
	Code     string
}

// VerifySecondFactor checks code against the active secret of the user. With
// replay protection on, a code is accepted once per time step.
func (s *Usecase) VerifySecondFactor(ctx context.Context, in VerifySecondFactorInput) (bool, error) {
	ctx, span := s.startSpan(ctx, "VerifySecondFactor")
	defer span.End()

	user, err := s.repoUser.FindByUsername(ctx, strings.TrimSpace(in.Username))
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "username", in.Username)
		return false, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo find user by username", "username", in.Username, "error", err)
		return false, goerror.NewServer(err)
	}

	return s.verifySecondFactor(ctx, user, in.Code)
}

func (s *Usecase) verifySecondFactor(ctx context.Context, user *entity.User, code string) (bool, error) {
	if !user.HasActiveTotp() {
		slog.WarnContext(ctx, "totp is not enabled", "username", user.Username)
		return false, nil
	}

	step, ok := s.totp.Verify(user.TotpSecret, strings.TrimSpace(code), s.clock.Now())
	if !ok {
		slog.WarnContext(ctx, "invalid totp code", "username", user.Username)
		return false, nil
	}

	if s.replay == nil || !s.cfg.GetBool("modules.identity.totp.replay_protection") {
		return true, nil
	}

	key, err := s.replayKey(user.Username)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash replay key", "username", user.Username, "error", err)
		return false, goerror.NewServer(err)
	}

	accepted, err := s.replay.Accept(ctx, key, step, s.totp.AcceptanceWindow())
	if err != nil {
		slog.ErrorContext(ctx, "failed to record totp step", "username", user.Username, "error", err)
		return false, goerror.NewServer(err)
	}
	if !accepted {
		slog.WarnContext(ctx, "totp code already used", "username", user.Username, "step", step)
		return false, nil
	}

	return true, nil
}
