package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/authbite/internal/authenticator"
	"github.com/shandysiswandi/authbite/internal/identity"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.identity.enabled") {
		uc, err := identity.New(a.ctx, identity.Dependency{
			DBConn:     a.dbConn,
			Fs:         a.fs,
			Replay:     a.replay,
			Router:     a.router,
			Config:     a.config,
			Instrument: a.ins,
			HMAC:       a.hmac,
			Bcrypt:     a.bcrypt,
			Argon2ID:   a.argon2id,
			Clock:      a.clock,
			Totp:       a.totp,
			Validator:  a.validator,
			JWT:        a.jwt,
		})
		if err != nil {
			slog.Error("failed to init module identity", "error", err)
			os.Exit(1)
		}

		if a.config.GetBool("modules.identity.seed_demo_account") {
			if _, err := uc.SeedDefaultAccount(a.ctx); err != nil {
				slog.Error("failed to seed demo account", "error", err)
				os.Exit(1)
			}
		}
	}

	if a.config.GetBool("modules.authenticator.enabled") {
		if _, err := authenticator.New(a.ctx, authenticator.Dependency{
			Fs:         a.fs,
			Path:       a.config.GetString("modules.authenticator.file.path"),
			Instrument: a.ins,
			UUID:       a.uuid,
			Clock:      a.clock,
			Validator:  a.validator,
			Router:     a.router,
		}); err != nil {
			slog.Error("failed to init module authenticator", "error", err)
			os.Exit(1)
		}
	}
}
