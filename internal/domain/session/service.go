package session

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"medsync/internal/domain/errs"
)

const (
	DefaultWindow = 300 * time.Second
	DefaultLimit  = 100
)

type Registrar interface {
	Heartbeat(ctx context.Context, deviceID, userID string, collections []string) (*Session, error)
	Active(ctx context.Context, collection string) ([]Session, error)
}

// Registry учет устройств с живым heartbeat
type Registry struct {
	repo   Repository
	window time.Duration
	limit  int
	now    func() time.Time
	log    *slog.Logger
}

func NewRegistry(repo Repository, window time.Duration, limit int, log *slog.Logger) *Registry {
	if window <= 0 {
		window = DefaultWindow
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Registry{
		repo:   repo,
		window: window,
		limit:  limit,
		now:    time.Now,
		log:    log.With("component", "session_registry"),
	}
}

// Heartbeat создает или продлевает сессию устройства
func (r *Registry) Heartbeat(ctx context.Context, deviceID, userID string, collections []string) (*Session, error) {
	if deviceID == "" || userID == "" {
		return nil, errs.BadRequest("%v: deviceId and userId are required", ErrInvalidHeartbeat)
	}

	s := &Session{
		DeviceID:      deviceID,
		UserID:        userID,
		Collections:   collections,
		Status:        StatusActive,
		LastHeartbeat: r.now().UTC(),
	}
	if err := r.repo.Upsert(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	r.log.Debug("heartbeat", "device_id", deviceID, "collections", collections)
	return s, nil
}

// Active возвращает активные сессии, подписанные на коллекцию
func (r *Registry) Active(ctx context.Context, collection string) ([]Session, error) {
	since := r.now().Add(-r.window)
	sessions, err := r.repo.ListActive(ctx, collection, since, r.limit)
	if err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}
	return sessions, nil
}
