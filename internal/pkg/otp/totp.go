package otp

import (
	"crypto/rand"
	"io"
	"time"

	"github.com/pquerna/otp"
)

// TOTP binds an issuer and a fixed set of Options so callers only deal with
// secrets, codes and time.
type TOTP struct {
	issuer string
	opts   Options
	random io.Reader
}

// NewTOTP constructs a TOTP instance with sensible defaults.
//
// If digits is not 6 or 8, it falls back to 6 digits. A zero period means 30
// seconds and a zero skew means one step of drift each way.
func NewTOTP(issuer string, period, skew uint, digits otp.Digits) *TOTP {
	opts := DefaultOptions()
	opts.Digits = digits
	opts.Period = period
	if skew > 0 {
		opts.Drift = skew
	}

	return &TOTP{
		issuer: issuer,
		opts:   opts.normalize(),
		random: rand.Reader,
	}
}

// Issuer returns the issuer written into provisioning URIs.
func (o *TOTP) Issuer() string {
	return o.issuer
}

// Period returns the time step in seconds.
func (o *TOTP) Period() uint {
	return o.opts.Period
}

// GenerateSecret returns a fresh DefaultSecretSize-byte Base32 secret.
func (o *TOTP) GenerateSecret() (string, error) {
	return GenerateSecret(o.random, DefaultSecretSize)
}

// ComputeCode returns the code for secret at the given instant.
func (o *TOTP) ComputeCode(secret string, at time.Time) (string, error) {
	return ComputeCode(secret, at.Unix(), o.opts)
}

// Verify checks code against secret at now and returns the matched step.
func (o *TOTP) Verify(secret, code string, now time.Time) (uint64, bool) {
	return VerifyCode(secret, code, now, o.opts)
}

// ProvisioningURI builds the otpauth URI for username under the bound issuer.
func (o *TOTP) ProvisioningURI(username, secret string) (string, error) {
	return BuildProvisioningURI(username, o.issuer, secret, o.opts)
}

// SecondsRemaining returns the validity left for the code at now.
func (o *TOTP) SecondsRemaining(now time.Time) int {
	return SecondsRemaining(now, o.opts.Period)
}

// AcceptanceWindow bounds how long any single code can keep verifying: the
// drift window on both sides plus the step the code belongs to.
func (o *TOTP) AcceptanceWindow() time.Duration {
	steps := 2*o.opts.Drift + 2
	return time.Duration(steps*o.opts.Period) * time.Second
}
