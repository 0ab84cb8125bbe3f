package replay

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/authbite/internal/pkg/clock"
)

type memoryEntry struct {
	step      uint64
	expiresAt time.Time
}

// Memory is a process-local Guard.
type Memory struct {
	mu      sync.Mutex
	clock   clock.Clocker
	entries map[string]memoryEntry
}

// NewMemory returns an empty in-process guard.
func NewMemory(clk clock.Clocker) *Memory {
	if clk == nil {
		clk = clock.New()
	}
	return &Memory{clock: clk, entries: make(map[string]memoryEntry)}
}

// Accept implements Guard.
func (m *Memory) Accept(_ context.Context, key string, step uint64, ttl time.Duration) (bool, error) {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}

	if last, ok := m.entries[key]; ok && step <= last.step {
		return false, nil
	}

	m.entries[key] = memoryEntry{step: step, expiresAt: now.Add(ttl)}
	return true, nil
}
