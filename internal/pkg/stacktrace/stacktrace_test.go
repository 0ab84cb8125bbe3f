package stacktrace_test

import (
	"testing"

	"github.com/shandysiswandi/authbite/internal/pkg/stacktrace"
	"github.com/stretchr/testify/assert"
)

func TestInternalPaths(t *testing.T) {
	t.Parallel()

	stack := []byte(`goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/authbite/internal/pkg/router.middlewareRecoverer.func1.1()
	/app/internal/pkg/router/middleware_recover.go:30 +0x9c
panic({0x6b0e40?, 0x8a5c10?})
	/usr/local/go/src/runtime/panic.go:770 +0x132
github.com/shandysiswandi/authbite/internal/identity/inbound.(*Endpoint).Login(...)
	/app/internal/identity/inbound/http_endpoint.go:51
net/http.HandlerFunc.ServeHTTP(0xc0000a4000?, {0x8b2a30?, 0xc0000b6000?}, 0x0?)
	/usr/local/go/src/net/http/server.go:2171 +0x29
`)

	assert.Equal(t, []string{
		"internal/pkg/router/middleware_recover.go:30",
		"internal/identity/inbound/http_endpoint.go:51",
	}, stacktrace.InternalPaths(stack))
}

func TestInternalPaths_NoInternalFrames(t *testing.T) {
	t.Parallel()

	assert.Empty(t, stacktrace.InternalPaths([]byte("goroutine 1 [running]:\nmain.main()\n\t/app/main.go:5 +0x1\n")))
	assert.Empty(t, stacktrace.InternalPaths(nil))
}
