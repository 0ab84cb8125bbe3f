// Package jwt issues and verifies HS512 access tokens whose subject is the
// account username, and carries verified claims through a request context.
package jwt
