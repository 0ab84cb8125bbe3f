package uid_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shandysiswandi/authbite/internal/pkg/uid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUID_Generate(t *testing.T) {
	t.Parallel()

	gen := uid.NewUUID()
	a, b := gen.Generate(), gen.Generate()

	assert.NotEqual(t, a, b)
	assert.True(t, uid.IsUUID(a))

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestIsUUID(t *testing.T) {
	t.Parallel()

	assert.True(t, uid.IsUUID("0190b0b4-7d6e-7c3a-9d1e-2f3a4b5c6d7e"))
	assert.False(t, uid.IsUUID(""))
	assert.False(t, uid.IsUUID("github"))
}
