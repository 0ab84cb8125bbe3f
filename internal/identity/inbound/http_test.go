package inbound_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/authbite/internal/identity/inbound"
	"github.com/shandysiswandi/authbite/internal/identity/outbound/file"
	"github.com/shandysiswandi/authbite/internal/identity/usecase"
	"github.com/shandysiswandi/authbite/internal/pkg/clock"
	"github.com/shandysiswandi/authbite/internal/pkg/config"
	"github.com/shandysiswandi/authbite/internal/pkg/hash"
	"github.com/shandysiswandi/authbite/internal/pkg/instrument"
	"github.com/shandysiswandi/authbite/internal/pkg/jwt"
	"github.com/shandysiswandi/authbite/internal/pkg/otp"
	"github.com/shandysiswandi/authbite/internal/pkg/replay"
	"github.com/shandysiswandi/authbite/internal/pkg/router"
	"github.com/shandysiswandi/authbite/internal/pkg/uid"
	"github.com/shandysiswandi/authbite/internal/pkg/validator"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   map[string]string `json:"error"`
}

type server struct {
	handler http.Handler
	clock   *clock.Frozen
	totp    *otp.TOTP
}

func newServer(t *testing.T) *server {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte("app:\n  name: authbite\n"), config.WithDefaults(config.Defaults()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cfg.Close() })

	val, err := validator.NewV10Validator()
	require.NoError(t, err)

	clk := clock.NewFrozen(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	signer, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("k", 64)),
		Issuer:    "authbite",
		Audiences: []string{"authbite"},
		TTL:       15 * time.Minute,
		Clock:     clk,
		UUID:      uid.NewUUID(),
	})
	require.NoError(t, err)

	store, err := file.NewFile(context.Background(), afero.NewMemMapFs(), "data/users.json", instrument.NewNoop())
	require.NoError(t, err)

	totp := otp.NewTOTP("Authbite", 30, 1, 6)

	uc := usecase.New(usecase.Dependency{
		RepoUser:   store,
		Validator:  val,
		Config:     cfg,
		HMAC:       hash.NewHMACSHA256("replay-key"),
		Bcrypt:     hash.NewBcrypt(bcrypt.MinCost, ""),
		Argon2ID:   hash.NewArgon2id(""),
		Totp:       totp,
		Replay:     replay.NewMemory(clk),
		Clock:      clk,
		JWT:        signer,
		Instrument: instrument.NewNoop(),
	})

	r := router.NewRouter(router.Config{Config: cfg, UUID: uid.NewUUID(), JWT: signer})
	inbound.RegisterHTTPEndpoint(r, uc)

	return &server{handler: r, clock: clk, totp: totp}
}

func (s *server) do(t *testing.T, method, path, payload, token string) (int, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func (s *server) code(t *testing.T, secret string) string {
	t.Helper()

	code, err := s.totp.ComputeCode(secret, s.clock.Now())
	require.NoError(t, err)
	return code
}

func TestHTTP_RegisterAndLogin(t *testing.T) {
	t.Parallel()

	s := newServer(t)

	status, env := s.do(t, http.MethodPost, "/api/v1/identity/register", `{"username":"alice","password":"pw1"}`, "")
	require.Equal(t, http.StatusCreated, status)
	var reg inbound.RegisterResponse
	require.NoError(t, json.Unmarshal(env.Data, &reg))
	assert.Equal(t, "alice", reg.Username)
	assert.Nil(t, reg.PendingEnrollment)

	status, env = s.do(t, http.MethodPost, "/api/v1/identity/register", `{"username":"ALICE","password":"pw2"}`, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "username already registered", env.Message)

	status, env = s.do(t, http.MethodPost, "/api/v1/identity/register", `{"username":"","password":""}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, env.Error, "username")
	assert.Contains(t, env.Error, "password")

	status, env = s.do(t, http.MethodPost, "/api/v1/identity/login", `{"username":"alice","password":"pw1"}`, "")
	require.Equal(t, http.StatusOK, status)
	var login inbound.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.False(t, login.RequiresSecondFactor)
	assert.Equal(t, "Bearer", login.TokenType)
	assert.Equal(t, int64(900), login.ExpiresIn)

	status, env = s.do(t, http.MethodGet, "/api/v1/identity/me", "", login.AccessToken)
	require.Equal(t, http.StatusOK, status)
	var me inbound.ProfileResponse
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "alice", me.Username)
	assert.False(t, me.TotpEnabled)

	status, _ = s.do(t, http.MethodGet, "/api/v1/identity/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHTTP_TotpFlow(t *testing.T) {
	t.Parallel()

	s := newServer(t)

	status, env := s.do(t, http.MethodPost, "/api/v1/identity/register", `{"username":"bob","password":"pw","enable_2fa":true}`, "")
	require.Equal(t, http.StatusCreated, status)
	var reg inbound.RegisterResponse
	require.NoError(t, json.Unmarshal(env.Data, &reg))
	require.NotNil(t, reg.PendingEnrollment)
	secret := reg.PendingEnrollment.Secret
	assert.Contains(t, reg.PendingEnrollment.URI, "secret="+secret)

	status, env = s.do(t, http.MethodPost, "/api/v1/identity/mfa/totp/confirm",
		`{"username":"bob","secret":"`+secret+`","code":"`+s.code(t, secret)+`"}`, "")
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env = s.do(t, http.MethodPost, "/api/v1/identity/login", `{"username":"bob","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, status)
	var login inbound.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.True(t, login.RequiresSecondFactor)
	assert.Empty(t, login.AccessToken)

	s.clock.Advance(30 * time.Second)
	status, env = s.do(t, http.MethodPost, "/api/v1/identity/login",
		`{"username":"bob","password":"pw","code":"`+s.code(t, secret)+`"}`, "")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.NotEmpty(t, login.AccessToken)

	status, _ = s.do(t, http.MethodPost, "/api/v1/identity/mfa/totp/setup", "", login.AccessToken)
	assert.Equal(t, http.StatusConflict, status)
}

func TestHTTP_TotpSetupForExistingUser(t *testing.T) {
	t.Parallel()

	s := newServer(t)

	status, _ := s.do(t, http.MethodPost, "/api/v1/identity/register", `{"username":"carol","password":"pw"}`, "")
	require.Equal(t, http.StatusCreated, status)

	status, env := s.do(t, http.MethodPost, "/api/v1/identity/login", `{"username":"carol","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, status)
	var login inbound.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &login))

	status, _ = s.do(t, http.MethodPost, "/api/v1/identity/mfa/totp/setup", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = s.do(t, http.MethodPost, "/api/v1/identity/mfa/totp/setup", "", login.AccessToken)
	require.Equal(t, http.StatusOK, status)
	var pending inbound.PendingEnrollmentResponse
	require.NoError(t, json.Unmarshal(env.Data, &pending))
	assert.NotEmpty(t, pending.Secret)
	assert.Equal(t, s.clock.Now().Add(10*time.Minute), pending.ExpiresAt.UTC())

	status, _ = s.do(t, http.MethodPost, "/api/v1/identity/mfa/totp/confirm",
		`{"username":"carol","secret":"`+pending.Secret+`","code":"`+s.code(t, pending.Secret)+`"}`, "")
	assert.Equal(t, http.StatusOK, status)
}

func TestHTTP_UniformUnauthorized(t *testing.T) {
	t.Parallel()

	s := newServer(t)

	status, env := s.do(t, http.MethodPost, "/api/v1/identity/register", `{"username":"dave","password":"pw","enable_2fa":true}`, "")
	require.Equal(t, http.StatusCreated, status)
	var reg inbound.RegisterResponse
	require.NoError(t, json.Unmarshal(env.Data, &reg))

	forged := "JBSWY3DPEHPK3PXP"

	requests := []struct {
		path    string
		payload string
	}{
		{"/api/v1/identity/login", `{"username":"ghost","password":"pw"}`},
		{"/api/v1/identity/login", `{"username":"dave","password":"wrong"}`},
		{"/api/v1/identity/mfa/totp/confirm", `{"username":"dave","secret":"` + forged + `","code":"` + s.code(t, forged) + `"}`},
		{"/api/v1/identity/mfa/totp/confirm", `{"username":"ghost","secret":"` + forged + `","code":"` + s.code(t, forged) + `"}`},
	}

	var bodies []envelope
	for _, req := range requests {
		status, env := s.do(t, http.MethodPost, req.path, req.payload, "")
		assert.Equal(t, http.StatusUnauthorized, status, req.payload)
		bodies = append(bodies, env)
	}

	for _, b := range bodies[1:] {
		assert.Equal(t, bodies[0], b)
	}
	assert.Equal(t, "invalid credentials", bodies[0].Message)
}

func TestHTTP_InvalidBody(t *testing.T) {
	t.Parallel()

	s := newServer(t)

	status, _ := s.do(t, http.MethodPost, "/api/v1/identity/login", `{"username":`, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/identity/login", `{"username":"a","role":"admin"}`, "")
	assert.Equal(t, http.StatusBadRequest, status)
}
