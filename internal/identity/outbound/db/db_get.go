package db

import (
	"context"

	"github.com/samber/lo"
	"github.com/shandysiswandi/authbite/internal/identity/entity"
)

const queryFindUserByUsername = `
SELECT username, password_hash, totp_secret, totp_enabled, created_at
FROM identity_users
WHERE lower(username) = lower($1)`

func (s *DB) FindByUsername(ctx context.Context, username string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "FindByUsername")
	defer func() { s.endSpan(span, err) }()

	var (
		user   entity.User
		secret *string
	)
	err = s.conn.QueryRow(ctx, queryFindUserByUsername, username).Scan(
		&user.Username,
		&user.PasswordHash,
		&secret,
		&user.TotpEnabled,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	user.TotpSecret = lo.FromPtr(secret)
	return &user, nil
}
