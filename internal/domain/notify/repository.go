package notify

import (
	"context"
)

type Repository interface {
	CreateNotification(ctx context.Context, n *Notification) error
	CreateRealtimeUpdate(ctx context.Context, u *RealtimeUpdate) error
	ListUndelivered(ctx context.Context, deviceID string, limit int) ([]RealtimeUpdate, error)
	MarkDelivered(ctx context.Context, ids []string) error
}
