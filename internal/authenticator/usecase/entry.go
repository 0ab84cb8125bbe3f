package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/authbite/internal/authenticator/entity"
	"github.com/shandysiswandi/authbite/internal/pkg/goerror"
	"github.com/shandysiswandi/authbite/internal/pkg/otp"
)

type AddInput struct {
	Name   string `validate:"required"`
	Secret string `validate:"required,base32secret"`
}

// Add stores a new entry. The secret may be given as displayed by the issuer,
// grouped with spaces and in any case.
func (s *Usecase) Add(ctx context.Context, in AddInput) (*entity.Entry, error) {
	ctx, span := s.startSpan(ctx, "Add")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	in.Secret = otp.NormalizeSecret(strings.TrimSpace(in.Secret))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	entry := entity.Entry{
		ID:     s.uuid.Generate(),
		Name:   in.Name,
		Secret: in.Secret,
		Owner:  ownerOf(ctx),
	}

	if err := s.repoEntry.Add(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to repo add entry", "name", entry.Name, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &entry, nil
}

type RemoveInput struct {
	ID string `validate:"required"`
}

func (s *Usecase) Remove(ctx context.Context, in RemoveInput) error {
	ctx, span := s.startSpan(ctx, "Remove")
	defer span.End()

	in.ID = strings.TrimSpace(in.ID)
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	removed, err := s.repoEntry.Remove(ctx, ownerOf(ctx), in.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo remove entry", "id", in.ID, "error", err)
		return goerror.NewServer(err)
	}
	if !removed {
		slog.WarnContext(ctx, "entry not found", "id", in.ID)
		return goerror.NewBusiness("entry not found", goerror.CodeNotFound)
	}

	return nil
}

// List returns the entries of the caller. HTTP callers see only what they
// stored; the CLI sees entries without an owner.
func (s *Usecase) List(ctx context.Context) ([]entity.Entry, error) {
	ctx, span := s.startSpan(ctx, "List")
	defer span.End()

	entries, err := s.repoEntry.List(ctx, ownerOf(ctx))
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list entries", "error", err)
		return nil, goerror.NewServer(err)
	}

	return entries, nil
}

// ComputeCurrentCode returns the code of entry valid at now.
func (s *Usecase) ComputeCurrentCode(entry entity.Entry, now time.Time) (string, error) {
	if strings.TrimSpace(entry.Secret) == "" {
		return "", goerror.NewInvalidInput(nil, "secret", "secret is a required field")
	}

	code, err := s.totp.ComputeCode(otp.NormalizeSecret(entry.Secret), now)
	if err != nil {
		return "", goerror.NewInvalidInput(nil, "secret", "secret must be a valid base32 secret")
	}

	return code, nil
}
