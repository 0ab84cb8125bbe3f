// Package clock provides a tiny time abstraction.
//
// Business code depends on Clocker instead of calling time.Now directly, so
// TOTP windows, enrollment expiry and token lifetimes can be tested with a
// Frozen clock.
package clock
