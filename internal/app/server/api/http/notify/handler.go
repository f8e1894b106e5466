package notify

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"medsync/internal/app/server/api/http/apierr"
	"medsync/internal/domain/errs"
	"medsync/internal/domain/notify"
	"medsync/internal/domain/session"
)

type Handler struct {
	notifier          notify.Servicer
	sessions          session.Registrar
	window            time.Duration
	log               *slog.Logger
	middleware        huma.Middlewares
	triggerMiddleware huma.Middlewares
}

// NewHandler создает обработчики триггера и сессий. Для триггера отдельная
// цепочка middleware: его вызывает хранилище, а не устройство.
func NewHandler(notifier notify.Servicer, sessions session.Registrar, window time.Duration, log *slog.Logger, middleware, triggerMiddleware huma.Middlewares) *Handler {
	return &Handler{
		notifier:          notifier,
		sessions:          sessions,
		window:            window,
		log:               log,
		middleware:        middleware,
		triggerMiddleware: triggerMiddleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.triggerOp(), h.trigger)
	huma.Register(api, h.heartbeatOp(), h.heartbeat)
	huma.Register(api, h.realtimeOp(), h.realtime)
}

func (h *Handler) trigger(ctx context.Context, input *triggerInput) (*triggerOutput, error) {
	ev, err := notify.ParseEvent(input.RawBody, input.Method)
	if err != nil {
		h.log.Warn("unresolvable trigger event", "error", err)
		return nil, apierr.FromDomain(err)
	}

	notified, err := h.notifier.Notify(ctx, ev)
	if err != nil {
		h.log.Error("change fan-out failed", "collection", ev.CollectionID, "error", err)
		return nil, apierr.FromDomain(err)
	}

	return &triggerOutput{Body: TriggerResponse{
		Success:    true,
		Notified:   notified,
		Collection: ev.CollectionID,
		Document:   ev.DocumentID,
	}}, nil
}

func (h *Handler) heartbeat(ctx context.Context, input *heartbeatInput) (*heartbeatOutput, error) {
	s, err := h.sessions.Heartbeat(ctx, input.Body.DeviceID, input.Body.UserID, input.Body.Collections)
	if err != nil {
		return nil, apierr.FromDomain(err)
	}

	return &heartbeatOutput{Body: HeartbeatResponse{
		Success:   true,
		Session:   s,
		ExpiresAt: s.LastHeartbeat.Add(h.window),
	}}, nil
}

func (h *Handler) realtime(ctx context.Context, input *realtimeInput) (*realtimeOutput, error) {
	updates, err := h.notifier.Poll(ctx, input.DeviceID)
	if err != nil {
		if errs.KindOf(err) == errs.KindFatal {
			h.log.Error("realtime poll failed", "device_id", input.DeviceID, "error", err)
		}
		return nil, apierr.FromDomain(err)
	}

	return &realtimeOutput{Body: RealtimeResponse{Success: true, Updates: updates}}, nil
}
