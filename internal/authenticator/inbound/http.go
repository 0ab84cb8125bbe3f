package inbound

import (
	"context"

	"github.com/shandysiswandi/authbite/internal/authenticator/entity"
	"github.com/shandysiswandi/authbite/internal/authenticator/usecase"
	"github.com/shandysiswandi/authbite/internal/pkg/router"
)

type uc interface {
	Add(ctx context.Context, in usecase.AddInput) (*entity.Entry, error)
	Remove(ctx context.Context, in usecase.RemoveInput) error
	List(ctx context.Context) ([]entity.Entry, error)
	Codes(ctx context.Context) (*usecase.CodesOutput, error)
}

// RegisterHTTPEndpoint mounts the entry endpoints. All of them need an
// authenticated caller.
func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.GET("/api/v1/authenticator/entries", end.Codes)
	r.POST("/api/v1/authenticator/entries", end.Add)
	r.DELETE("/api/v1/authenticator/entries/:id", end.Remove)
}
