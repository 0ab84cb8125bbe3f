package inbound

import (
	"net/http"
	"time"

	"github.com/shandysiswandi/authbite/internal/identity/entity"
)

type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Enable2FA bool   `json:"enable_2fa"`
}

type RegisterResponse struct {
	Username          string                     `json:"username"`
	PendingEnrollment *PendingEnrollmentResponse `json:"pending_enrollment,omitempty"`
}

func (RegisterResponse) StatusCode() int {
	return http.StatusCreated
}

func (r RegisterResponse) Message() string {
	if r.PendingEnrollment != nil {
		return "Registration successful. Scan the provisioning URI and confirm with a code to enable TOTP."
	}
	return "Registration successful."
}

type PendingEnrollmentResponse struct {
	Secret    string    `json:"secret"`
	URI       string    `json:"uri"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newPendingEnrollmentResponse(p *entity.PendingEnrollment) *PendingEnrollmentResponse {
	if p == nil {
		return nil
	}
	return &PendingEnrollmentResponse{
		Secret:    p.Secret,
		URI:       p.URI,
		ExpiresAt: p.ExpiresAt,
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

type LoginResponse struct {
	RequiresSecondFactor bool   `json:"requires_second_factor,omitempty"`
	AccessToken          string `json:"access_token,omitempty"`
	TokenType            string `json:"token_type,omitempty"`
	ExpiresIn            int64  `json:"expires_in,omitempty"`
}

type TOTPConfirmRequest struct {
	Username string `json:"username"`
	Secret   string `json:"secret"`
	Code     string `json:"code"`
}

type TOTPConfirmResponse struct{}

func (TOTPConfirmResponse) Message() string {
	return "TOTP has been enabled."
}

type ProfileResponse struct {
	Username    string    `json:"username"`
	TotpEnabled bool      `json:"totp_enabled"`
	CreatedAt   time.Time `json:"created_at"`
}
