// Package replay remembers the last accepted TOTP time step per key so a code
// cannot be used twice inside its validity window.
package replay

import (
	"context"
	"time"
)

// Guard accepts a step for key only when it is newer than the last accepted one.
type Guard interface {
	// Accept records step for key and reports true when step is strictly
	// greater than the previously accepted step. The record expires after ttl.
	Accept(ctx context.Context, key string, step uint64, ttl time.Duration) (bool, error)
}
