package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shandysiswandi/authbite/internal/identity/entity"
	"github.com/shandysiswandi/authbite/internal/pkg/clock"
	"github.com/shandysiswandi/authbite/internal/pkg/config"
	"github.com/shandysiswandi/authbite/internal/pkg/goerror"
	"github.com/shandysiswandi/authbite/internal/pkg/hash"
	"github.com/shandysiswandi/authbite/internal/pkg/instrument"
	"github.com/shandysiswandi/authbite/internal/pkg/jwt"
	"github.com/shandysiswandi/authbite/internal/pkg/replay"
	"github.com/shandysiswandi/authbite/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// errInvalidCredentials is the only error an authentication failure produces,
// whichever check failed.
var errInvalidCredentials = goerror.NewBusiness("invalid credentials", goerror.CodeUnauthorized)

const (
	hashDriverArgon2id = "argon2id"
	argon2idPrefix     = "$argon2id$"
)

type repoUser interface {
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	Create(ctx context.Context, user entity.User) (bool, error)
	UpdateTotp(ctx context.Context, username, secret string, enabled bool) (bool, error)
}

type totpEngine interface {
	GenerateSecret() (string, error)
	Verify(secret, code string, now time.Time) (uint64, bool)
	ProvisioningURI(username, secret string) (string, error)
	AcceptanceWindow() time.Duration
}

type Usecase struct {
	repoUser  repoUser
	validator validator.Validator
	cfg       config.Config
	hmac      hash.Hash
	bcrypt    hash.Hash
	argon2id  hash.Hash
	totp      totpEngine
	replay    replay.Guard
	clock     clock.Clocker
	jwt       jwt.JWT
	ins       instrument.Instrumentation

	pending *pendingEnrollments

	dummyOnce sync.Once
	dummy     string
}

type Dependency struct {
	RepoUser  repoUser
	Validator validator.Validator
	Config    config.Config
	HMAC      hash.Hash
	Bcrypt    hash.Hash
	Argon2ID  hash.Hash
	Totp      totpEngine
	// Replay may be nil, which disables replay protection regardless of config.
	Replay     replay.Guard
	Clock      clock.Clocker
	JWT        jwt.JWT
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoUser:  dep.RepoUser,
		validator: dep.Validator,
		cfg:       dep.Config,
		hmac:      dep.HMAC,
		bcrypt:    dep.Bcrypt,
		argon2id:  dep.Argon2ID,
		totp:      dep.Totp,
		replay:    dep.Replay,
		clock:     dep.Clock,
		jwt:       dep.JWT,
		ins:       dep.Instrument,
		pending:   newPendingEnrollments(),
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

// passwordHasher returns the hasher new passwords are stored with.
func (s *Usecase) passwordHasher() hash.Hash {
	if strings.EqualFold(s.cfg.GetString("hash.driver"), hashDriverArgon2id) {
		return s.argon2id
	}
	return s.bcrypt
}

// verifyPassword picks the hasher from the token itself so records written
// before a hash.driver change keep working.
func (s *Usecase) verifyPassword(hashed, password string) bool {
	if strings.HasPrefix(hashed, argon2idPrefix) {
		return s.argon2id.Verify(hashed, password)
	}
	return s.bcrypt.Verify(hashed, password)
}

// dummyHash is verified against when the username is unknown so both paths
// cost one password verification.
func (s *Usecase) dummyHash() string {
	s.dummyOnce.Do(func() {
		if h, err := s.passwordHasher().Hash("authbite-dummy-password"); err == nil {
			s.dummy = string(h)
		}
	})
	return s.dummy
}

// replayKey keeps raw usernames out of the replay store.
func (s *Usecase) replayKey(username string) (string, error) {
	key, err := s.hmac.Hash(entity.UsernameKey(username))
	if err != nil {
		return "", err
	}
	return string(key), nil
}
