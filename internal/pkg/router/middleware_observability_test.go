package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/authbite/internal/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskSet(t *testing.T) {
	t.Parallel()

	cfg, err := config.NewViperFromBytes("yaml", []byte("instrument:\n  log_mask_fields: \"Password, secret,,\"\n"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cfg.Close() })

	masks := newMaskSet(cfg)
	assert.Len(t, masks, 2)

	got := masks.body([]byte(`{"username":"alice","password":"pw","data":[{"secret":"JBSW"}]}`), false)
	assert.Equal(t, map[string]any{
		"username": "alice",
		"password": "***",
		"data":     []any{map[string]any{"secret": "***"}},
	}, got)

	h := http.Header{"Password": {"x"}, "Accept": {"json"}}
	assert.Equal(t, "***", masks.headers(h).Get("Password"))
	assert.Equal(t, "x", h.Get("Password"), "original headers untouched")

	assert.Nil(t, masks.body(nil, false))
	assert.Equal(t, "plain...(truncated)", masks.body([]byte("plain"), true))
	assert.Equal(t, "<binary body omitted>", masks.body([]byte{0xff, 0xfe}, false))
}

func TestCaptureRequestBody_RestoresBody(t *testing.T) {
	t.Parallel()

	payload := strings.Repeat("a", maxLoggedBodyBytes+10)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))

	captured, truncated := captureRequestBody(req)
	assert.True(t, truncated)
	assert.Len(t, captured, maxLoggedBodyBytes)

	rest, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, payload, string(rest))
}

func TestStatusRecorder_CapsBody(t *testing.T) {
	t.Parallel()

	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	_, err := rec.Write([]byte(strings.Repeat("b", maxLoggedBodyBytes+1)))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.statusCode())
	assert.True(t, rec.capped)
	assert.Equal(t, maxLoggedBodyBytes, rec.body.Len())
	assert.Equal(t, maxLoggedBodyBytes+1, rec.bytes)
}
