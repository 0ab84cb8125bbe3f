package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base32"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

const (
	// DefaultSecretSize is the secret length in bytes (160 bits, RFC 4226).
	DefaultSecretSize = 20
	// DefaultPeriod is the time step in seconds.
	DefaultPeriod uint = 30
	// DefaultDrift is the number of steps accepted on each side of now.
	DefaultDrift uint = 1
)

var (
	// ErrInvalidSecret is returned when a secret is not decodable Base32.
	ErrInvalidSecret = errors.New("otp: secret is not valid base32")

	// ErrInvalidTime is returned for instants before the Unix epoch.
	ErrInvalidTime = errors.New("otp: time is before unix epoch")

	// ErrInvalidSecretSize is returned when asked for a non-positive secret size.
	ErrInvalidSecretSize = errors.New("otp: secret size must be positive")
)

var b32NoPadding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Options are the RFC 6238 parameters shared by issuer and verifier.
type Options struct {
	Period    uint
	Digits    otp.Digits
	Algorithm otp.Algorithm
	Drift     uint
}

// DefaultOptions returns the parameters every common authenticator app
// understands: SHA1, 6 digits, 30 second period, one step of drift.
func DefaultOptions() Options {
	return Options{
		Period:    DefaultPeriod,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
		Drift:     DefaultDrift,
	}
}

func (o Options) normalize() Options {
	if o.Period == 0 {
		o.Period = DefaultPeriod
	}
	if o.Digits != otp.DigitsSix && o.Digits != otp.DigitsEight {
		o.Digits = otp.DigitsSix
	}
	return o
}

// GenerateSecret draws size bytes from r and returns them Base32 encoded,
// uppercase and without padding.
func GenerateSecret(r io.Reader, size int) (string, error) {
	if size <= 0 {
		return "", ErrInvalidSecretSize
	}
	if r == nil {
		r = rand.Reader
	}

	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}

	return b32NoPadding.EncodeToString(buf), nil
}

// NormalizeSecret strips spaces and dashes and uppercases the secret, which is
// how authenticator apps display them for manual entry.
func NormalizeSecret(secret string) string {
	secret = strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '\t' {
			return -1
		}
		return r
	}, secret)
	return strings.ToUpper(secret)
}

// ValidateSecret reports whether secret decodes as Base32 with at least one byte.
func ValidateSecret(secret string) error {
	secret = strings.TrimRight(strings.ToUpper(strings.TrimSpace(secret)), "=")
	if secret == "" {
		return ErrInvalidSecret
	}

	decoded, err := b32NoPadding.DecodeString(secret)
	if err != nil || len(decoded) == 0 {
		return ErrInvalidSecret
	}

	return nil
}

// Counter returns the time step containing unixSeconds.
func Counter(unixSeconds int64, period uint) (uint64, error) {
	if unixSeconds < 0 {
		return 0, ErrInvalidTime
	}
	if period == 0 {
		period = DefaultPeriod
	}
	return uint64(unixSeconds) / uint64(period), nil
}

// ComputeCode returns the zero-padded code for secret at unixSeconds.
func ComputeCode(secret string, unixSeconds int64, opts Options) (string, error) {
	opts = opts.normalize()

	counter, err := Counter(unixSeconds, opts.Period)
	if err != nil {
		return "", err
	}

	return computeAt(secret, counter, opts)
}

func computeAt(secret string, counter uint64, opts Options) (string, error) {
	if err := ValidateSecret(secret); err != nil {
		return "", err
	}

	code, err := hotp.GenerateCodeCustom(secret, counter, hotp.ValidateOpts{
		Digits:    opts.Digits,
		Algorithm: opts.Algorithm,
	})
	if err != nil {
		return "", ErrInvalidSecret
	}

	return code, nil
}

// VerifyCode accepts code when it matches any step in
// [counter(now)-Drift, counter(now)+Drift] and returns the matched step.
//
// Any problem with the inputs yields false: a caller cannot tell a wrong code
// from a broken secret.
func VerifyCode(secret, code string, now time.Time, opts Options) (uint64, bool) {
	opts = opts.normalize()

	code = strings.TrimSpace(code)
	if secret == "" || len(code) != opts.Digits.Length() {
		return 0, false
	}

	current, err := Counter(now.Unix(), opts.Period)
	if err != nil {
		return 0, false
	}

	drift := uint64(opts.Drift)
	start := uint64(0)
	if current > drift {
		start = current - drift
	}

	var (
		matched uint64
		ok      bool
	)
	// Every step in the window is computed so timing does not reveal which one matched.
	for step := start; step <= current+drift; step++ {
		expected, err := computeAt(secret, step, opts)
		if err != nil {
			return 0, false
		}

		if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) == 1 && !ok {
			matched, ok = step, true
		}
	}

	return matched, ok
}

// SecondsRemaining returns how long the code valid at now stays valid.
func SecondsRemaining(now time.Time, period uint) int {
	if period == 0 {
		period = DefaultPeriod
	}
	p := int64(period)
	return int(p - now.Unix()%p)
}
