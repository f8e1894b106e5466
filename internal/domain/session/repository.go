package session

import (
	"context"
	"time"
)

type Repository interface {
	// Upsert создает или обновляет сессию по deviceId
	Upsert(ctx context.Context, s *Session) error
	// ListActive сессии со status=active, подписанные на collection,
	// с lastHeartbeat строго позже since
	ListActive(ctx context.Context, collection string, since time.Time, limit int) ([]Session, error)
}
