package authenticator

import (
	"context"

	"github.com/shandysiswandi/authbite/internal/authenticator/inbound"
	"github.com/shandysiswandi/authbite/internal/authenticator/outbound/file"
	"github.com/shandysiswandi/authbite/internal/authenticator/usecase"
	"github.com/shandysiswandi/authbite/internal/pkg/clock"
	"github.com/shandysiswandi/authbite/internal/pkg/instrument"
	"github.com/shandysiswandi/authbite/internal/pkg/otp"
	"github.com/shandysiswandi/authbite/internal/pkg/router"
	"github.com/shandysiswandi/authbite/internal/pkg/uid"
	"github.com/shandysiswandi/authbite/internal/pkg/validator"
	"github.com/spf13/afero"
)

// Codes from third-party issuers almost always use these parameters, so they
// are fixed rather than read from config.
const (
	entryPeriod = 30
	entryDrift  = 1
	entryDigits = 6
)

type Dependency struct {
	Fs         afero.Fs                   `validate:"required"`
	Path       string                     `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	// Router is optional; the CLI builds the module without one.
	Router *router.Router
}

// New builds the authenticator usecase over the secret file and, when a
// router is given, mounts its HTTP endpoints.
func New(ctx context.Context, dep Dependency) (*usecase.Usecase, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	store, err := file.NewFile(ctx, dep.Fs, dep.Path, dep.UUID, dep.Instrument)
	if err != nil {
		return nil, err
	}

	uc := usecase.New(usecase.Dependency{
		RepoEntry:  store,
		Validator:  dep.Validator,
		Totp:       otp.NewTOTP("", entryPeriod, entryDrift, entryDigits),
		UUID:       dep.UUID,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
	})

	if dep.Router != nil {
		inbound.RegisterHTTPEndpoint(dep.Router, uc)
	}

	return uc, nil
}
