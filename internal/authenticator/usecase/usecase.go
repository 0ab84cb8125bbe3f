package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/authbite/internal/authenticator/entity"
	"github.com/shandysiswandi/authbite/internal/pkg/clock"
	"github.com/shandysiswandi/authbite/internal/pkg/instrument"
	"github.com/shandysiswandi/authbite/internal/pkg/jwt"
	"github.com/shandysiswandi/authbite/internal/pkg/uid"
	"github.com/shandysiswandi/authbite/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoEntry interface {
	List(ctx context.Context, owner string) ([]entity.Entry, error)
	Add(ctx context.Context, entry entity.Entry) error
	Remove(ctx context.Context, owner, id string) (bool, error)
}

type totpEngine interface {
	ComputeCode(secret string, at time.Time) (string, error)
	SecondsRemaining(now time.Time) int
	Period() uint
}

type Usecase struct {
	repoEntry repoEntry
	validator validator.Validator
	totp      totpEngine
	uuid      uid.StringID
	clock     clock.Clocker
	ins       instrument.Instrumentation
}

type Dependency struct {
	RepoEntry  repoEntry
	Validator  validator.Validator
	Totp       totpEngine
	UUID       uid.StringID
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoEntry: dep.RepoEntry,
		validator: dep.Validator,
		totp:      dep.Totp,
		uuid:      dep.UUID,
		clock:     dep.Clock,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("authenticator.usecase").Start(ctx, name)
}

// ownerOf returns the authenticated username, or "" for local callers such as
// the CLI.
func ownerOf(ctx context.Context) string {
	if clm := jwt.GetAuth(ctx); clm != nil {
		return clm.Username
	}
	return ""
}
