package entity

import (
	"strings"
	"time"
)

// User is the persisted credential record. Username is unique ignoring case
// and is kept as it was entered.
type User struct {
	Username     string
	PasswordHash string
	TotpSecret   string
	TotpEnabled  bool
	CreatedAt    time.Time
}

// HasActiveTotp reports whether login must be gated by a second factor.
// A secret that was never confirmed does not count.
func (u *User) HasActiveTotp() bool {
	return u != nil && u.TotpEnabled && u.TotpSecret != ""
}

// UsernameKey folds a username into the form used for lookups.
func UsernameKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
