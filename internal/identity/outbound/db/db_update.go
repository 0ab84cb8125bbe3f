package db

import "context"

const queryUpdateUserTotp = `
UPDATE identity_users
SET totp_secret = $2, totp_enabled = $3
WHERE lower(username) = lower($1)`

func (s *DB) UpdateTotp(ctx context.Context, username, secret string, enabled bool) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "UpdateTotp")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, queryUpdateUserTotp, username, nullableText(secret), enabled)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() > 0, nil
}
