package db

import (
	"context"

	"github.com/shandysiswandi/authbite/internal/identity/entity"
)

const queryCreateUser = `
INSERT INTO identity_users (username, password_hash, totp_secret, totp_enabled, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT DO NOTHING`

func (s *DB) Create(ctx context.Context, user entity.User) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "Create")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, queryCreateUser,
		user.Username,
		user.PasswordHash,
		nullableText(user.TotpSecret),
		user.TotpEnabled,
		user.CreatedAt,
	)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() == 1, nil
}
