package sync

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"medsync/internal/app/server/api/http/apierr"
	"medsync/internal/domain/sync"
)

type Handler struct {
	service    sync.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service sync.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.pullOp(), h.pull)
}

func (h *Handler) pull(ctx context.Context, input *pullInput) (*pullOutput, error) {
	response, err := h.service.Run(ctx, input.Body)
	if err != nil {
		h.log.Error("sync pull failed", "device_id", input.Body.DeviceID, "error", err)
		return nil, apierr.FromDomain(err)
	}

	return &pullOutput{Body: response}, nil
}
