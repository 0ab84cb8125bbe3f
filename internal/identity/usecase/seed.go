package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/authbite/internal/identity/entity"
	"github.com/shandysiswandi/authbite/internal/pkg/goerror"
)

const (
	demoUsername = "demo"
	demoPassword = "Password123!"
)

// SeedDefaultAccount creates the demo account when it does not exist yet and
// reports whether it did.
func (s *Usecase) SeedDefaultAccount(ctx context.Context) (bool, error) {
	ctx, span := s.startSpan(ctx, "SeedDefaultAccount")
	defer span.End()

	_, err := s.repoUser.FindByUsername(ctx, demoUsername)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		return false, err
	}

	passHash, err := s.passwordHasher().Hash(demoPassword)
	if err != nil {
		return false, err
	}

	created, err := s.repoUser.Create(ctx, entity.User{
		Username:     demoUsername,
		PasswordHash: string(passHash),
		CreatedAt:    s.clock.Now(),
	})
	if err != nil {
		return false, err
	}

	if created {
		slog.WarnContext(ctx, "demo account seeded with a well-known password", "username", demoUsername)
	}

	return created, nil
}
