// Package otp implements time-based one-time passwords (RFC 6238).
//
// The package functions are pure: every operation takes the instant to use,
// nothing here reads the wall clock. TOTP binds an issuer and parameters for
// the usual 2FA flow: issue a secret, hand the provisioning URI to an
// authenticator app, then verify the codes the user types.
package otp
