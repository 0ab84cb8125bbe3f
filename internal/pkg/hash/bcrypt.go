package hash

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// BcryptMaxInput is the bcrypt input limit in bytes, pepper included.
const BcryptMaxInput = 72

// Bcrypt implements Hash using bcrypt.
//
// Pepper is appended to the plaintext before hashing/verifying. Keep the pepper
// secret and store it in configuration, never next to the hashes.
type Bcrypt struct {
	cost   int
	pepper string
}

// NewBcrypt returns a bcrypt-based hasher. A cost outside bcrypt's range falls
// back to bcrypt.DefaultCost.
func NewBcrypt(cost int, pepper string) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost, pepper: pepper}
}

// Hash hashes plaintext using bcrypt.
func (h *Bcrypt) Hash(plaintext string) ([]byte, error) {
	if plaintext == "" {
		return nil, ErrEmptyPlaintext
	}

	if len(plaintext)+len(h.pepper) > BcryptMaxInput {
		return nil, ErrPlaintextTooLong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext+h.pepper), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, ErrPlaintextTooLong
	}

	return hashed, err
}

// Verify returns true when plaintext matches the hashed value.
func (h *Bcrypt) Verify(hashed, plaintext string) bool {
	if hashed == "" || plaintext == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext+h.pepper)) == nil
}
