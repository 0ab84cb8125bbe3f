package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/authbite/internal/pkg/goerror"
	"github.com/shandysiswandi/authbite/internal/pkg/jwt"
)

type ProfileOutput struct {
	Username    string
	TotpEnabled bool
	CreatedAt   time.Time
}

func (s *Usecase) Profile(ctx context.Context) (*ProfileOutput, error) {
	ctx, span := s.startSpan(ctx, "Profile")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	user, err := s.repoUser.FindByUsername(ctx, clm.Username)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "username", clm.Username)
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo find user by username", "username", clm.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ProfileOutput{
		Username:    user.Username,
		TotpEnabled: user.HasActiveTotp(),
		CreatedAt:   user.CreatedAt,
	}, nil
}
