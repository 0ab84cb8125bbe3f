package identity

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/authbite/internal/identity/entity"
	"github.com/shandysiswandi/authbite/internal/identity/inbound"
	"github.com/shandysiswandi/authbite/internal/identity/outbound/db"
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
	"github.com/shandysiswandi/authbite/internal/pkg/validator"
	"github.com/spf13/afero"
)

const (
	StoreDriverFile     = "file"
	StoreDriverPostgres = "postgres"
)

type userStore interface {
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	Create(ctx context.Context, user entity.User) (bool, error)
	UpdateTotp(ctx context.Context, username, secret string, enabled bool) (bool, error)
}

type Dependency struct {
	// DBConn is required only when modules.identity.store.driver is postgres.
	DBConn *pgxpool.Pool
	// Fs backs the file store.
	Fs afero.Fs `validate:"required"`
	// Replay may be nil, which disables replay protection.
	Replay     replay.Guard
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Bcrypt     hash.Hash                  `validate:"required"`
	Argon2ID   hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Totp       *otp.TOTP                  `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

// New wires the identity module onto the router and returns its usecase so
// the caller can run setup steps such as seeding.
func New(ctx context.Context, dep Dependency) (*usecase.Usecase, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	var repoUser userStore

	switch driver := dep.Config.GetString("modules.identity.store.driver"); driver {
	case StoreDriverPostgres:
		if dep.DBConn == nil {
			return nil, fmt.Errorf("identity: store driver %q needs a database connection", driver)
		}
		repoUser = db.NewDB(dep.DBConn, dep.Instrument)
	case StoreDriverFile, "":
		fileStore, err := file.NewFile(ctx, dep.Fs, dep.Config.GetString("modules.identity.store.file.path"), dep.Instrument)
		if err != nil {
			return nil, err
		}
		repoUser = fileStore
	default:
		return nil, fmt.Errorf("identity: unknown store driver %q", driver)
	}

	uc := usecase.New(usecase.Dependency{
		RepoUser:   repoUser,
		Validator:  dep.Validator,
		Config:     dep.Config,
		HMAC:       dep.HMAC,
		Bcrypt:     dep.Bcrypt,
		Argon2ID:   dep.Argon2ID,
		Totp:       dep.Totp,
		Replay:     dep.Replay,
		Clock:      dep.Clock,
		JWT:        dep.JWT,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return uc, nil
}
