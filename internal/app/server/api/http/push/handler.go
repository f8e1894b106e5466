package push

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"medsync/internal/app/server/api/http/apierr"
	"medsync/internal/domain/push"
)

type Handler struct {
	service    push.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service push.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.validateOp(), h.validate)
}

func (h *Handler) validate(ctx context.Context, input *validateInput) (*validateOutput, error) {
	response, err := h.service.Process(ctx, input.Body)
	if err != nil {
		h.log.Warn("push batch rejected", "collection", input.Body.Collection, "error", err)
		return nil, apierr.FromDomain(err)
	}

	return &validateOutput{Body: response}, nil
}
