package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/exp/slog"

	"medsync/internal/domain/document"
)

// DocumentRepository коллекции документов в одной таблице с JSONB-полем data
type DocumentRepository struct {
	db  *Storage
	log *slog.Logger
}

func NewDocumentRepository(db *Storage, log *slog.Logger) *DocumentRepository {
	return &DocumentRepository{
		db:  db,
		log: log.With("component", "document_repository"),
	}
}

func (r *DocumentRepository) Get(ctx context.Context, collection, id string) (*document.Document, error) {
	query := `SELECT id, facility_id, data, created_at, updated_at FROM ` + r.db.tables.Documents + `
		WHERE collection = $1 AND id = $2`

	d, err := scanDocument(r.db.pool.QueryRow(ctx, query, collection, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, document.ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	d.Collection = collection
	return d, nil
}

// List возвращает страницу документов, упорядоченных по id, общее число
// подходящих под фильтр и число оставшихся после курсора
func (r *DocumentRepository) List(ctx context.Context, collection string, filter document.Filter) (*document.Page, error) {
	where := ` WHERE collection = $1 AND updated_at > $2 AND ($3::text IS NULL OR facility_id = $3)`

	var total, remaining int
	countQuery := `SELECT count(*), count(*) FILTER (WHERE id > $4) FROM ` + r.db.tables.Documents + where
	if err := r.db.pool.QueryRow(ctx, countQuery, collection, filter.UpdatedAfter, filter.FacilityID, filter.AfterID).Scan(&total, &remaining); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageQuery := `SELECT id, facility_id, data, created_at, updated_at FROM ` + r.db.tables.Documents + where +
		` AND id > $4 ORDER BY id LIMIT $5`
	rows, err := r.db.pool.Query(ctx, pageQuery, collection, filter.UpdatedAfter, filter.FacilityID, filter.AfterID, filter.Limit)
	if err != nil {
		r.log.Error("failed to list documents", "collection", collection, "error", err)
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	page := &document.Page{Total: total, Remaining: remaining, Documents: []document.Document{}}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.Collection = collection
		page.Documents = append(page.Documents, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return page, nil
}

func (r *DocumentRepository) Create(ctx context.Context, collection, id string, data document.Fields) (*document.Document, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	facility := data.String(document.FacilityField)

	query := `INSERT INTO ` + r.db.tables.Documents + ` (collection, id, facility_id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now()) RETURNING created_at, updated_at`

	d := &document.Document{ID: id, Collection: collection, FacilityID: facility, Data: data.Clone()}
	if err := r.db.pool.QueryRow(ctx, query, collection, id, facility, raw).Scan(&d.CreatedAt, &d.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, document.ErrAlreadyExists
		}
		return nil, fmt.Errorf("create document: %w", err)
	}
	return d, nil
}

// Update заменяет содержимое документа целиком
func (r *DocumentRepository) Update(ctx context.Context, collection, id string, data document.Fields) (*document.Document, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	facility := data.String(document.FacilityField)

	query := `UPDATE ` + r.db.tables.Documents + ` SET data = $3, facility_id = $4, updated_at = now()
		WHERE collection = $1 AND id = $2 RETURNING created_at, updated_at`

	d := &document.Document{ID: id, Collection: collection, FacilityID: facility, Data: data.Clone()}
	if err := r.db.pool.QueryRow(ctx, query, collection, id, raw, facility).Scan(&d.CreatedAt, &d.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, document.ErrNotFound
		}
		return nil, fmt.Errorf("update document: %w", err)
	}
	return d, nil
}

func scanDocument(row pgx.Row) (*document.Document, error) {
	var (
		d   document.Document
		raw []byte
	)
	if err := row.Scan(&d.ID, &d.FacilityID, &raw, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &d.Data); err != nil {
		return nil, fmt.Errorf("decode data of %s: %w", d.ID, err)
	}
	d.CreatedAt = d.CreatedAt.UTC()
	d.UpdatedAt = d.UpdatedAt.UTC()
	return &d, nil
}

// TombstoneRepository журнал удалений. Наполняется триггером на таблице документов.
type TombstoneRepository struct {
	db  *Storage
	log *slog.Logger
}

func NewTombstoneRepository(db *Storage, log *slog.Logger) *TombstoneRepository {
	return &TombstoneRepository{
		db:  db,
		log: log.With("component", "tombstone_repository"),
	}
}

func (r *TombstoneRepository) ListSince(ctx context.Context, collection string, filter document.TombstoneFilter) ([]document.Tombstone, error) {
	query := `SELECT id::text, document_id, facility_id, deleted_at FROM ` + r.db.tables.Tombstones + `
		WHERE collection = $1 AND deleted_at > $2 AND ($3::text IS NULL OR facility_id = $3)
		ORDER BY deleted_at, id LIMIT $4`

	rows, err := r.db.pool.Query(ctx, query, collection, filter.DeletedAfter, filter.FacilityID, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("list tombstones: %w", err)
	}
	defer rows.Close()

	out := []document.Tombstone{}
	for rows.Next() {
		var (
			t         document.Tombstone
			deletedAt time.Time
		)
		if err := rows.Scan(&t.ID, &t.DocumentID, &t.FacilityID, &deletedAt); err != nil {
			return nil, fmt.Errorf("scan tombstone: %w", err)
		}
		t.Collection = collection
		t.DeletedAt = deletedAt.UTC()
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tombstones: %w", err)
	}
	return out, nil
}
