package inbound

import (
	"github.com/shandysiswandi/authbite/internal/authenticator/usecase"
	"github.com/shandysiswandi/authbite/internal/pkg/router"
)

// HTTPEndpoint exposes the authenticator entries over HTTP.
type HTTPEndpoint struct {
	uc uc
}

// Codes lists every entry with its current code.
// @Summary List codes
// @Description Returns entries with the code valid now and the seconds it stays valid.
// @Tags Authenticator
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=CodesResponse} "Current codes"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/authenticator/entries [get]
func (h *HTTPEndpoint) Codes(r *router.Request) (any, error) {
	resp, err := h.uc.Codes(r.Context())
	if err != nil {
		return nil, err
	}

	items := make([]CodeResponse, 0, len(resp.Items))
	for _, it := range resp.Items {
		items = append(items, CodeResponse{ID: it.ID, Name: it.Name, Code: it.Code})
	}

	return CodesResponse{
		Items:            items,
		Period:           resp.Period,
		SecondsRemaining: resp.SecondsRemaining,
	}, nil
}

// Add stores a new TOTP secret.
// @Summary Add entry
// @Description Stores a labelled Base32 secret. Spaces are ignored and case does not matter.
// @Tags Authenticator
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body AddEntryRequest true "Entry payload"
// @Success 201 {object} router.successResponse{data=EntryResponse} "Created entry"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/authenticator/entries [post]
func (h *HTTPEndpoint) Add(r *router.Request) (any, error) {
	var req AddEntryRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	entry, err := h.uc.Add(r.Context(), usecase.AddInput{
		Name:   req.Name,
		Secret: req.Secret,
	})
	if err != nil {
		return nil, err
	}

	return EntryResponse{ID: entry.ID, Name: entry.Name}, nil
}

// Remove deletes an entry by ID.
// @Summary Remove entry
// @Tags Authenticator
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Success 204 "No Content"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 404 {object} router.errorResponse "Entry not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/authenticator/entries/{id} [delete]
func (h *HTTPEndpoint) Remove(r *router.Request) (any, error) {
	if err := h.uc.Remove(r.Context(), usecase.RemoveInput{ID: r.GetParam("id")}); err != nil {
		return nil, err
	}

	return nil, nil
}
