// Package hash provides one-way hashing for passwords and keyed digests.
//
// Store only the token returned by Hash; verify user input with Verify.
// Bcrypt is the default password hasher, Argon2id is selectable by config.
// HMACSHA256 derives deterministic lookup keys.
package hash
