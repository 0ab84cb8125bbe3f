package clock_test

import (
	"testing"
	"time"

	"github.com/shandysiswandi/authbite/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
)

func TestFrozen(t *testing.T) {
	t.Parallel()

	start := time.Unix(59, 0)
	c := clock.NewFrozen(start)
	assert.Equal(t, start, c.Now())

	c.Advance(31 * time.Second)
	assert.Equal(t, time.Unix(90, 0), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestTimeClocker(t *testing.T) {
	t.Parallel()

	before := time.Now()
	got := clock.New().Now()
	assert.False(t, got.Before(before))
}
