package postgres

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"medsync/internal/domain/session"
)

type SessionRepository struct {
	db  *Storage
	log *slog.Logger
}

func NewSessionRepository(db *Storage, log *slog.Logger) *SessionRepository {
	return &SessionRepository{
		db:  db,
		log: log.With("component", "session_repository"),
	}
}

func (r *SessionRepository) Upsert(ctx context.Context, s *session.Session) error {
	query := `INSERT INTO ` + r.db.tables.Sessions + ` (device_id, user_id, collections, status, last_heartbeat)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (device_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			collections = EXCLUDED.collections,
			status = EXCLUDED.status,
			last_heartbeat = EXCLUDED.last_heartbeat`

	collections := s.Collections
	if collections == nil {
		collections = []string{}
	}
	_, err := r.db.pool.Exec(ctx, query, s.DeviceID, s.UserID, collections, string(s.Status), s.LastHeartbeat)
	if err != nil {
		r.log.Error("failed to upsert session", "device_id", s.DeviceID, "error", err)
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) ListActive(ctx context.Context, collection string, since time.Time, limit int) ([]session.Session, error) {
	query := `SELECT device_id, user_id, collections, status, last_heartbeat FROM ` + r.db.tables.Sessions + `
		WHERE status = $1 AND $2 = ANY(collections) AND last_heartbeat > $3
		ORDER BY device_id LIMIT $4`

	rows, err := r.db.pool.Query(ctx, query, string(session.StatusActive), collection, since, limit)
	if err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}
	defer rows.Close()

	out := []session.Session{}
	for rows.Next() {
		var (
			s      session.Session
			status string
		)
		if err := rows.Scan(&s.DeviceID, &s.UserID, &s.Collections, &status, &s.LastHeartbeat); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.Status = session.Status(status)
		s.LastHeartbeat = s.LastHeartbeat.UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}
