package usecase

import (
	"sync"
	"time"

	"github.com/shandysiswandi/authbite/internal/identity/entity"
)

// pendingEnrollments holds issued but unconfirmed TOTP secrets, one per user.
// A newer enrollment replaces the previous one.
type pendingEnrollments struct {
	mu    sync.Mutex
	items map[string]entity.PendingEnrollment
}

func newPendingEnrollments() *pendingEnrollments {
	return &pendingEnrollments{items: make(map[string]entity.PendingEnrollment)}
}

func (p *pendingEnrollments) put(now time.Time, e entity.PendingEnrollment) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for k, v := range p.items {
		if v.Expired(now) {
			delete(p.items, k)
		}
	}
	p.items[entity.UsernameKey(e.Username)] = e
}

func (p *pendingEnrollments) get(now time.Time, username string) (entity.PendingEnrollment, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := entity.UsernameKey(username)
	e, ok := p.items[key]
	if !ok {
		return entity.PendingEnrollment{}, false
	}
	if e.Expired(now) {
		delete(p.items, key)
		return entity.PendingEnrollment{}, false
	}
	return e, true
}

// take removes the enrollment for username only if it still holds secret, so a
// concurrent newer enrollment is not lost.
func (p *pendingEnrollments) take(username, secret string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := entity.UsernameKey(username)
	if e, ok := p.items[key]; ok && e.Secret == secret {
		delete(p.items, key)
	}
}
