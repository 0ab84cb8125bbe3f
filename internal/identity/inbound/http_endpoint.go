package inbound

import (
	"github.com/shandysiswandi/authbite/internal/identity/usecase"
	"github.com/shandysiswandi/authbite/internal/pkg/goerror"
	"github.com/shandysiswandi/authbite/internal/pkg/jwt"
	"github.com/shandysiswandi/authbite/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for registration, login and TOTP enrollment.
type HTTPEndpoint struct {
	uc uc
}

// Register creates a new user account.
// @Summary Register user
// @Description Creates a new account. With enable_2fa a pending TOTP enrollment is returned.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration payload"
// @Success 201 {object} router.successResponse{data=RegisterResponse} "Registration result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 409 {object} router.errorResponse "Username already registered"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/register [post]
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Register(r.Context(), usecase.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		Enable2FA: req.Enable2FA,
	})
	if err != nil {
		return nil, err
	}

	return RegisterResponse{
		Username:          resp.Username,
		PendingEnrollment: newPendingEnrollmentResponse(resp.Pending),
	}, nil
}

// Login authenticates a user and returns an access token, or asks for a code.
// @Summary Authenticate user
// @Description Validates credentials and the TOTP code when the account has one enabled.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} router.successResponse{data=LoginResponse} "Authentication result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid credentials"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/login [post]
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Username: req.Username,
		Password: req.Password,
		Code:     req.Code,
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		RequiresSecondFactor: resp.RequiresSecondFactor,
		AccessToken:          resp.AccessToken,
		TokenType:            resp.TokenType,
		ExpiresIn:            resp.ExpiresIn,
	}, nil
}

// TOTPSetup starts TOTP enrollment for the authenticated user.
// @Summary Setup TOTP
// @Description Issues a new TOTP secret and provisioning URI that must be confirmed.
// @Tags Identity, Profile Security
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=PendingEnrollmentResponse} "Pending enrollment"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 409 {object} router.errorResponse "TOTP already enabled"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/mfa/totp/setup [post]
func (h *HTTPEndpoint) TOTPSetup(r *router.Request) (any, error) {
	clm := jwt.GetAuth(r.Context())
	if clm == nil {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	resp, err := h.uc.BeginTotpEnrollment(r.Context(), usecase.BeginTotpEnrollmentInput{
		Username: clm.Username,
	})
	if err != nil {
		return nil, err
	}

	return newPendingEnrollmentResponse(resp), nil
}

// TOTPConfirm verifies a TOTP code against the pending secret to activate it.
// @Summary Confirm TOTP
// @Description Activates the pending TOTP secret when the code verifies.
// @Tags Identity, Profile Security
// @Accept json
// @Produce json
// @Param request body TOTPConfirmRequest true "TOTP confirmation payload"
// @Success 200 {object} router.successResponse "TOTP enabled"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid credentials"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/mfa/totp/confirm [post]
func (h *HTTPEndpoint) TOTPConfirm(r *router.Request) (any, error) {
	var req TOTPConfirmRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	ok, err := h.uc.ConfirmTotpEnrollment(r.Context(), usecase.ConfirmTotpEnrollmentInput{
		Username: req.Username,
		Secret:   req.Secret,
		Code:     req.Code,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, goerror.NewBusiness("invalid credentials", goerror.CodeUnauthorized)
	}

	return TOTPConfirmResponse{}, nil
}

// Profile returns the authenticated user's profile.
// @Summary Get profile
// @Description Returns the username, TOTP status and creation time of the caller.
// @Tags Identity, Profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=ProfileResponse} "Profile"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/me [get]
func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	resp, err := h.uc.Profile(r.Context())
	if err != nil {
		return nil, err
	}

	return ProfileResponse{
		Username:    resp.Username,
		TotpEnabled: resp.TotpEnabled,
		CreatedAt:   resp.CreatedAt,
	}, nil
}
