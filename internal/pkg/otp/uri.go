package otp

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shandysiswandi/authbite/internal/pkg/goerror"
)

// BuildProvisioningURI returns the otpauth URI an authenticator app imports:
//
//	otpauth://totp/{issuer:username}?secret=..&issuer=..&algorithm=SHA1&digits=6&period=30
//
// The label and the issuer parameter are escaped independently with RFC 3986
// data escaping (space is %20, colon is %3A).
func BuildProvisioningURI(username, issuer, secret string, opts Options) (string, error) {
	opts = opts.normalize()

	fields := make([]string, 0, 6)
	if strings.TrimSpace(username) == "" {
		fields = append(fields, "username", "username is required")
	}
	if strings.TrimSpace(issuer) == "" {
		fields = append(fields, "issuer", "issuer is required")
	}
	if strings.TrimSpace(secret) == "" {
		fields = append(fields, "secret", "secret is required")
	}
	if len(fields) > 0 {
		return "", goerror.NewInvalidInput(nil, fields...)
	}

	var b strings.Builder
	b.WriteString("otpauth://totp/")
	b.WriteString(escapeData(issuer + ":" + username))
	b.WriteString("?secret=")
	b.WriteString(escapeData(secret))
	b.WriteString("&issuer=")
	b.WriteString(escapeData(issuer))
	b.WriteString("&algorithm=")
	b.WriteString(opts.Algorithm.String())
	b.WriteString("&digits=")
	b.WriteString(strconv.Itoa(opts.Digits.Length()))
	b.WriteString("&period=")
	b.WriteString(strconv.FormatUint(uint64(opts.Period), 10))

	return b.String(), nil
}

// escapeData percent-encodes everything outside the RFC 3986 unreserved set.
func escapeData(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
