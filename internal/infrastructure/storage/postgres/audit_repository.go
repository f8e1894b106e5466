package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/exp/slog"

	"medsync/internal/domain/sync"
)

type AuditRepository struct {
	db  *Storage
	log *slog.Logger
}

func NewAuditRepository(db *Storage, log *slog.Logger) *AuditRepository {
	return &AuditRepository{
		db:  db,
		log: log.With("component", "audit_repository"),
	}
}

func (r *AuditRepository) Append(ctx context.Context, e *sync.AuditEntry) error {
	results, err := json.Marshal(e.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	query := `INSERT INTO ` + r.db.tables.Audit + `
		(id, device_id, user_id, facility_id, sync_timestamp, last_sync_timestamp, collections, status, results)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.db.pool.Exec(ctx, query,
		e.ID, e.DeviceID, e.UserID, e.FacilityID, e.SyncTimestamp, e.LastSyncTimestamp, e.Collections, e.Status, results)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}
