package inbound

import (
	"context"

	"github.com/shandysiswandi/authbite/internal/identity/entity"
	"github.com/shandysiswandi/authbite/internal/identity/usecase"
	"github.com/shandysiswandi/authbite/internal/pkg/router"
)

type uc interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.RegisterOutput, error)
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)

	BeginTotpEnrollment(ctx context.Context, in usecase.BeginTotpEnrollmentInput) (*entity.PendingEnrollment, error)
	ConfirmTotpEnrollment(ctx context.Context, in usecase.ConfirmTotpEnrollmentInput) (bool, error)

	Profile(ctx context.Context) (*usecase.ProfileOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Authentication
	r.POST("/api/v1/identity/register", end.Register)
	r.POST("/api/v1/identity/login", end.Login)

	// MFA (TOTP)
	r.POST("/api/v1/identity/mfa/totp/setup", end.TOTPSetup) // need authenticated
	r.POST("/api/v1/identity/mfa/totp/confirm", end.TOTPConfirm)

	// User Profile (need authenticated)
	r.GET("/api/v1/identity/me", end.Profile)
}
