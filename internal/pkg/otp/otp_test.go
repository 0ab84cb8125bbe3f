package otp_test

import (
	"bytes"
	"crypto/rand"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	libotp "github.com/pquerna/otp"
	"github.com/shandysiswandi/authbite/internal/pkg/goerror"
	"github.com/shandysiswandi/authbite/internal/pkg/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rfcSecret is the RFC 6238 SHA1 seed "12345678901234567890" in Base32.
const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

var base32Pattern = regexp.MustCompile(`^[A-Z2-7]+$`)

func TestGenerateSecret(t *testing.T) {
	t.Parallel()

	t.Run("default size from crypto rand", func(t *testing.T) {
		t.Parallel()

		s, err := otp.GenerateSecret(rand.Reader, otp.DefaultSecretSize)
		require.NoError(t, err)
		assert.Len(t, s, 32)
		assert.Regexp(t, base32Pattern, s)
		assert.NoError(t, otp.ValidateSecret(s))
	})

	t.Run("deterministic reader", func(t *testing.T) {
		t.Parallel()

		s, err := otp.GenerateSecret(bytes.NewReader([]byte("12345678901234567890")), 20)
		require.NoError(t, err)
		assert.Equal(t, rfcSecret, s)
	})

	t.Run("unique secrets", func(t *testing.T) {
		t.Parallel()

		seen := make(map[string]struct{})
		for range 50 {
			s, err := otp.GenerateSecret(nil, otp.DefaultSecretSize)
			require.NoError(t, err)
			_, dup := seen[s]
			require.False(t, dup)
			seen[s] = struct{}{}
		}
	})

	t.Run("short reader", func(t *testing.T) {
		t.Parallel()

		_, err := otp.GenerateSecret(bytes.NewReader([]byte("short")), 20)
		assert.Error(t, err)
	})

	t.Run("invalid size", func(t *testing.T) {
		t.Parallel()

		_, err := otp.GenerateSecret(rand.Reader, 0)
		assert.ErrorIs(t, err, otp.ErrInvalidSecretSize)
	})
}

func TestComputeCode_RFC6238Vectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		unix   int64
		digits libotp.Digits
		want   string
	}{
		{59, libotp.DigitsEight, "94287082"},
		{1111111109, libotp.DigitsEight, "07081804"},
		{1111111111, libotp.DigitsEight, "14050471"},
		{1234567890, libotp.DigitsEight, "89005924"},
		{2000000000, libotp.DigitsEight, "69279037"},
		{59, libotp.DigitsSix, "287082"},
		{1111111109, libotp.DigitsSix, "081804"},
		{1234567890, libotp.DigitsSix, "005924"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			opts := otp.DefaultOptions()
			opts.Digits = tt.digits

			got, err := otp.ComputeCode(rfcSecret, tt.unix, opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, tt.digits.Length())
		})
	}
}

func TestComputeCode_Deterministic(t *testing.T) {
	t.Parallel()

	secret, err := otp.GenerateSecret(rand.Reader, otp.DefaultSecretSize)
	require.NoError(t, err)

	for _, ts := range []int64{0, 29, 30, 1700000000, 4102444800} {
		a, err := otp.ComputeCode(secret, ts, otp.DefaultOptions())
		require.NoError(t, err)
		b, err := otp.ComputeCode(secret, ts, otp.DefaultOptions())
		require.NoError(t, err)

		assert.Equal(t, a, b)
		assert.Regexp(t, `^[0-9]{6}$`, a)
	}
}

func TestComputeCode_SameStepSameCode(t *testing.T) {
	t.Parallel()

	a, err := otp.ComputeCode(rfcSecret, 30, otp.DefaultOptions())
	require.NoError(t, err)
	b, err := otp.ComputeCode(rfcSecret, 59, otp.DefaultOptions())
	require.NoError(t, err)
	c, err := otp.ComputeCode(rfcSecret, 60, otp.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, b, c)
}

func TestComputeCode_AcceptsLowercaseAndPadding(t *testing.T) {
	t.Parallel()

	want, err := otp.ComputeCode(rfcSecret, 59, otp.DefaultOptions())
	require.NoError(t, err)

	got, err := otp.ComputeCode(strings.ToLower(rfcSecret), 59, otp.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestComputeCode_Errors(t *testing.T) {
	t.Parallel()

	_, err := otp.ComputeCode("not base32!", 59, otp.DefaultOptions())
	assert.ErrorIs(t, err, otp.ErrInvalidSecret)

	_, err = otp.ComputeCode("", 59, otp.DefaultOptions())
	assert.ErrorIs(t, err, otp.ErrInvalidSecret)

	_, err = otp.ComputeCode(rfcSecret, -1, otp.DefaultOptions())
	assert.ErrorIs(t, err, otp.ErrInvalidTime)
}

func TestVerifyCode_DriftWindow(t *testing.T) {
	t.Parallel()

	opts := otp.DefaultOptions()

	tests := []struct {
		name   string
		issued int64
		now    int64
		want   bool
	}{
		{"same step", 59, 59, true},
		{"previous step", 30, 60, true},
		{"next step", 90, 60, true},
		{"thirty one seconds later inside window", 91, 60, true},
		{"thirty one seconds later outside window", 90, 59, false},
		{"two steps back", 0, 60, false},
		{"two steps ahead", 120, 59, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			code, err := otp.ComputeCode(rfcSecret, tt.issued, opts)
			require.NoError(t, err)

			step, ok := otp.VerifyCode(rfcSecret, code, time.Unix(tt.now, 0), opts)
			assert.Equal(t, tt.want, ok)
			if ok {
				assert.Equal(t, uint64(tt.issued)/30, step)
			}
		})
	}
}

func TestVerifyCode_ZeroDriftIsExact(t *testing.T) {
	t.Parallel()

	opts := otp.DefaultOptions()
	opts.Drift = 0

	code, err := otp.ComputeCode(rfcSecret, 30, opts)
	require.NoError(t, err)

	_, ok := otp.VerifyCode(rfcSecret, code, time.Unix(45, 0), opts)
	assert.True(t, ok)
	_, ok = otp.VerifyCode(rfcSecret, code, time.Unix(60, 0), opts)
	assert.False(t, ok)
}

func TestVerifyCode_NeverErrors(t *testing.T) {
	t.Parallel()

	now := time.Unix(59, 0)
	opts := otp.DefaultOptions()

	tests := []struct {
		name   string
		secret string
		code   string
	}{
		{"wrong code", rfcSecret, "000000"},
		{"bad base32", "!!!!", "287082"},
		{"empty secret", "", "287082"},
		{"empty code", rfcSecret, ""},
		{"short code", rfcSecret, "28708"},
		{"long code", rfcSecret, "2870820"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, ok := otp.VerifyCode(tt.secret, tt.code, now, opts)
			assert.False(t, ok)
		})
	}

	_, ok := otp.VerifyCode(rfcSecret, " 287082 ", now, opts)
	assert.True(t, ok)
}

func TestVerifyCode_NearEpoch(t *testing.T) {
	t.Parallel()

	code, err := otp.ComputeCode(rfcSecret, 0, otp.DefaultOptions())
	require.NoError(t, err)

	step, ok := otp.VerifyCode(rfcSecret, code, time.Unix(10, 0), otp.DefaultOptions())
	assert.True(t, ok)
	assert.Equal(t, uint64(0), step)
}

func TestBuildProvisioningURI(t *testing.T) {
	t.Parallel()

	uri, err := otp.BuildProvisioningURI("alice@example.com", "Acme Corp", rfcSecret, otp.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t,
		"otpauth://totp/Acme%20Corp%3Aalice%40example.com?secret="+rfcSecret+
			"&issuer=Acme%20Corp&algorithm=SHA1&digits=6&period=30",
		uri,
	)

	u, err := url.Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, "otpauth", u.Scheme)
	assert.Equal(t, "totp", u.Host)
	assert.Equal(t, "/Acme Corp:alice@example.com", u.Path)
	assert.Equal(t, "Acme Corp", u.Query().Get("issuer"))
}

func TestBuildProvisioningURI_SecretRoundTrip(t *testing.T) {
	t.Parallel()

	for range 20 {
		secret, err := otp.GenerateSecret(rand.Reader, otp.DefaultSecretSize)
		require.NoError(t, err)

		uri, err := otp.BuildProvisioningURI("bob", "authbite", secret, otp.DefaultOptions())
		require.NoError(t, err)

		u, err := url.Parse(uri)
		require.NoError(t, err)
		assert.Equal(t, secret, u.Query().Get("secret"))
	}
}

func TestBuildProvisioningURI_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		issuer   string
		secret   string
		field    string
	}{
		{"blank username", "   ", "authbite", rfcSecret, "username"},
		{"blank issuer", "alice", "", rfcSecret, "issuer"},
		{"blank secret", "alice", "authbite", "\t", "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := otp.BuildProvisioningURI(tt.username, tt.issuer, tt.secret, otp.DefaultOptions())
			require.Error(t, err)

			var gerr *goerror.Error
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, goerror.CodeInvalidInput, gerr.Code())
			assert.Contains(t, gerr.Fields(), tt.field)
		})
	}
}

func TestSecondsRemaining(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 30, otp.SecondsRemaining(time.Unix(0, 0), 30))
	assert.Equal(t, 1, otp.SecondsRemaining(time.Unix(59, 0), 30))
	assert.Equal(t, 20, otp.SecondsRemaining(time.Unix(70, 0), 30))
	assert.Equal(t, 20, otp.SecondsRemaining(time.Unix(70, 0), 0))
}

func TestNormalizeAndValidateSecret(t *testing.T) {
	t.Parallel()

	assert.Equal(t, rfcSecret, otp.NormalizeSecret("gezd gnbv-gy3t qojq gezd gnbv gy3t qojq"))
	assert.NoError(t, otp.ValidateSecret(rfcSecret))
	assert.NoError(t, otp.ValidateSecret(rfcSecret+"===="))
	assert.ErrorIs(t, otp.ValidateSecret(""), otp.ErrInvalidSecret)
	assert.ErrorIs(t, otp.ValidateSecret("ABC1"), otp.ErrInvalidSecret)
}

func TestTOTP_Engine(t *testing.T) {
	t.Parallel()

	engine := otp.NewTOTP("authbite", 0, 0, 0)
	assert.Equal(t, "authbite", engine.Issuer())
	assert.Equal(t, uint(30), engine.Period())

	secret, err := engine.GenerateSecret()
	require.NoError(t, err)
	assert.Len(t, secret, 32)

	now := time.Unix(1700000000, 0)
	code, err := engine.ComputeCode(secret, now)
	require.NoError(t, err)

	step, ok := engine.Verify(secret, code, now.Add(30*time.Second))
	assert.True(t, ok)
	assert.Equal(t, uint64(now.Unix()/30), step)

	_, ok = engine.Verify(secret, code, now.Add(90*time.Second))
	assert.False(t, ok)

	uri, err := engine.ProvisioningURI("carol", secret)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "otpauth://totp/authbite%3Acarol?secret="+secret))
	assert.Equal(t, 10, engine.SecondsRemaining(time.Unix(50, 0)))
}

func TestTOTP_AcceptanceWindow(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 120*time.Second, otp.NewTOTP("acme", 30, 1, libotp.DigitsSix).AcceptanceWindow())
	assert.Equal(t, 180*time.Second, otp.NewTOTP("acme", 30, 2, libotp.DigitsSix).AcceptanceWindow())
	assert.Equal(t, 240*time.Second, otp.NewTOTP("acme", 60, 1, libotp.DigitsSix).AcceptanceWindow())
}
