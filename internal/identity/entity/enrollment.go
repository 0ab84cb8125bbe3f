package entity

import "time"

// PendingEnrollment is a TOTP secret handed to a user but not yet proven by a
// valid code. It lives only in memory and never gates login.
type PendingEnrollment struct {
	Username  string
	Secret    string
	URI       string
	ExpiresAt time.Time
}

// Expired reports whether the enrollment can no longer be confirmed at now.
func (p PendingEnrollment) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}
