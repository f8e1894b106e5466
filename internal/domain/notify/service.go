package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/exp/slog"

	"medsync/internal/domain/document"
	"medsync/internal/domain/errs"
	"medsync/internal/domain/session"
	"medsync/internal/telemetry"
)

const defaultPollLimit = 50

type Servicer interface {
	Notify(ctx context.Context, ev Event) (int, error)
	Poll(ctx context.Context, deviceID string) ([]RealtimeUpdate, error)
}

// Notifier рассылает уведомления об изменениях устройствам с активной сессией.
// Доставка не гарантируется: устройства забирают записи опросом.
type Notifier struct {
	sessions  session.Registrar
	repo      Repository
	pollLimit int
	now       func() time.Time
	log       *slog.Logger
	notified  metric.Int64Counter
}

func NewNotifier(sessions session.Registrar, repo Repository, pollLimit int, log *slog.Logger) *Notifier {
	if pollLimit <= 0 {
		pollLimit = defaultPollLimit
	}
	return &Notifier{
		sessions:  sessions,
		repo:      repo,
		pollLimit: pollLimit,
		now:       time.Now,
		log:       log.With("component", "change_notifier"),
		notified:  telemetry.Counter("medsync.notify.sessions", "Sessions notified about document changes"),
	}
}

// Notify создает уведомления для всех подходящих сессий и возвращает их число.
// Сбой по одной сессии логируется и не прерывает рассылку.
func (n *Notifier) Notify(ctx context.Context, ev Event) (int, error) {
	sessions, err := n.sessions.Active(ctx, ev.CollectionID)
	if err != nil {
		return 0, fmt.Errorf("find sessions for %s: %w", ev.CollectionID, err)
	}

	ts := n.now().UTC()
	notified := 0
	for _, s := range sessions {
		if err := n.notifySession(ctx, s, ev, ts); err != nil {
			n.log.Warn("failed to notify device",
				"device_id", s.DeviceID,
				"collection", ev.CollectionID,
				"error", errs.Item(s.DeviceID, err),
			)
			continue
		}
		notified++
	}

	n.notified.Add(ctx, int64(notified), metric.WithAttributes(attribute.String("collection", ev.CollectionID)))
	n.log.Info("change fan-out finished",
		"collection", ev.CollectionID,
		"document_id", ev.DocumentID,
		"operation", ev.Operation,
		"sessions", len(sessions),
		"notified", notified,
	)
	return notified, nil
}

func (n *Notifier) notifySession(ctx context.Context, s session.Session, ev Event, ts time.Time) error {
	notification := &Notification{
		ID:         uuid.Must(uuid.NewV4()).String(),
		DeviceID:   s.DeviceID,
		UserID:     s.UserID,
		Collection: ev.CollectionID,
		DocumentID: ev.DocumentID,
		Operation:  ev.Operation,
		Status:     StatusPending,
		Timestamp:  ts,
	}
	if err := n.repo.CreateNotification(ctx, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	update := &RealtimeUpdate{
		ID:       uuid.Must(uuid.NewV4()).String(),
		DeviceID: s.DeviceID,
		Payload: document.Fields{
			"type":       "document_change",
			"collection": ev.CollectionID,
			"documentId": ev.DocumentID,
			"operation":  string(ev.Operation),
			"timestamp":  ts.Format(time.RFC3339Nano),
		},
		CreatedAt: ts,
	}
	if err := n.repo.CreateRealtimeUpdate(ctx, update); err != nil {
		return fmt.Errorf("create realtime update: %w", err)
	}
	return nil
}

// Poll отдает недоставленные обновления устройства и помечает их доставленными
func (n *Notifier) Poll(ctx context.Context, deviceID string) ([]RealtimeUpdate, error) {
	if deviceID == "" {
		return nil, errs.BadRequest("deviceId is required")
	}

	updates, err := n.repo.ListUndelivered(ctx, deviceID, n.pollLimit)
	if err != nil {
		return nil, fmt.Errorf("list realtime updates: %w", err)
	}
	if len(updates) == 0 {
		return updates, nil
	}

	ids := make([]string, len(updates))
	for i, u := range updates {
		ids[i] = u.ID
	}
	if err := n.repo.MarkDelivered(ctx, ids); err != nil {
		// повторная доставка допустима
		n.log.Warn("failed to mark updates delivered", "device_id", deviceID, "error", err)
	}
	return updates, nil
}
