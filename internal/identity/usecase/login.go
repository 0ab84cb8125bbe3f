package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/authbite/internal/pkg/goerror"
)

type LoginInput struct {
	Username string
	Password string
	Code     string
}

type LoginOutput struct {
	RequiresSecondFactor bool
	//
	AccessToken string
	TokenType   string
	ExpiresIn   int64
}

// Login runs the password check and, when the account has TOTP enabled, the
// second factor. A missing code is not a failure: the caller is told a code
// is required.
func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	user, err := s.authenticate(ctx, in.Username, in.Password)
	if err != nil {
		return nil, err
	}

	if user.HasActiveTotp() {
		if strings.TrimSpace(in.Code) == "" {
			return &LoginOutput{RequiresSecondFactor: true}, nil
		}

		ok, err := s.verifySecondFactor(ctx, user, in.Code)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errInvalidCredentials
		}
	}

	token, err := s.jwt.Generate(user.Username)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access jwt token", "username", user.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &LoginOutput{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.cfg.GetMinute("jwt.ttl_minutes").Seconds()),
	}, nil
}
