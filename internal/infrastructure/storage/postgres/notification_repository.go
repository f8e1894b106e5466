package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/exp/slog"

	"medsync/internal/domain/notify"
)

type NotificationRepository struct {
	db  *Storage
	log *slog.Logger
}

func NewNotificationRepository(db *Storage, log *slog.Logger) *NotificationRepository {
	return &NotificationRepository{
		db:  db,
		log: log.With("component", "notification_repository"),
	}
}

func (r *NotificationRepository) CreateNotification(ctx context.Context, n *notify.Notification) error {
	query := `INSERT INTO ` + r.db.tables.Notifications + `
		(id, device_id, user_id, collection, document_id, operation, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.pool.Exec(ctx, query,
		n.ID, n.DeviceID, n.UserID, n.Collection, n.DocumentID, string(n.Operation), n.Status, n.Timestamp)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) CreateRealtimeUpdate(ctx context.Context, u *notify.RealtimeUpdate) error {
	payload, err := json.Marshal(u.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	query := `INSERT INTO ` + r.db.tables.Realtime + ` (id, device_id, payload, delivered, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.pool.Exec(ctx, query, u.ID, u.DeviceID, payload, u.Delivered, u.CreatedAt); err != nil {
		return fmt.Errorf("create realtime update: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ListUndelivered(ctx context.Context, deviceID string, limit int) ([]notify.RealtimeUpdate, error) {
	query := `SELECT id, device_id, payload, delivered, created_at FROM ` + r.db.tables.Realtime + `
		WHERE device_id = $1 AND NOT delivered
		ORDER BY created_at, id LIMIT $2`

	rows, err := r.db.pool.Query(ctx, query, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("list realtime updates: %w", err)
	}
	defer rows.Close()

	out := []notify.RealtimeUpdate{}
	for rows.Next() {
		var (
			u   notify.RealtimeUpdate
			raw []byte
		)
		if err := rows.Scan(&u.ID, &u.DeviceID, &raw, &u.Delivered, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan realtime update: %w", err)
		}
		if err := json.Unmarshal(raw, &u.Payload); err != nil {
			return nil, fmt.Errorf("decode payload of %s: %w", u.ID, err)
		}
		u.CreatedAt = u.CreatedAt.UTC()
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate realtime updates: %w", err)
	}
	return out, nil
}

func (r *NotificationRepository) MarkDelivered(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE ` + r.db.tables.Realtime + ` SET delivered = true WHERE id = ANY($1)`
	if _, err := r.db.pool.Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}
	return nil
}
