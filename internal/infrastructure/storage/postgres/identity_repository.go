package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/exp/slog"

	"medsync/internal/domain/permission"
)

type IdentityRepository struct {
	db  *Storage
	log *slog.Logger
}

func NewIdentityRepository(db *Storage, log *slog.Logger) *IdentityRepository {
	return &IdentityRepository{
		db:  db,
		log: log.With("component", "identity_repository"),
	}
}

func (r *IdentityRepository) FindByID(ctx context.Context, userID string) (*permission.Identity, error) {
	query := `SELECT id, role, facility_id FROM ` + r.db.tables.Users + ` WHERE id = $1`

	var (
		id       permission.Identity
		facility *string
	)
	err := r.db.pool.QueryRow(ctx, query, userID).Scan(&id.UserID, &id.Role, &facility)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, permission.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if facility != nil {
		id.FacilityID = *facility
	}
	return &id, nil
}
