package hash

import "errors"

var (
	// ErrEmptyPlaintext is returned when asked to hash an empty password.
	ErrEmptyPlaintext = errors.New("hash: plaintext is empty")

	// ErrPlaintextTooLong is returned when the plaintext exceeds what the
	// algorithm can take without silent truncation.
	ErrPlaintextTooLong = errors.New("hash: plaintext is too long")
)

// Hash is a one-way hasher with a matching verifier.
//
// Hash output is self-describing: everything needed to verify (algorithm,
// cost, salt) is recoverable from the token. Verify never returns an error;
// malformed tokens simply do not match.
type Hash interface {
	Hash(plaintext string) ([]byte, error)
	Verify(hashed, plaintext string) bool
}
