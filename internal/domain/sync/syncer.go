package sync

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/exp/slog"

	"medsync/internal/domain/document"
	"medsync/internal/domain/errs"
	"medsync/internal/domain/permission"
	"medsync/internal/telemetry"
)

// Syncer выгружает изменения и удаления одной коллекции
type Syncer struct {
	store      document.Store
	tombstones document.TombstoneLog
	log        *slog.Logger
}

func NewSyncer(store document.Store, tombstones document.TombstoneLog, log *slog.Logger) *Syncer {
	return &Syncer{
		store:      store,
		tombstones: tombstones,
		log:        log.With("component", "collection_syncer"),
	}
}

// SyncCollection выгружает документы, изменённые строго после lastSync, постранично
// по курсору (id последнего документа страницы), и удаления из журнала.
// Страницы внутри коллекции читаются последовательно.
func (s *Syncer) SyncCollection(ctx context.Context, collection string, lastSync time.Time, scope permission.Scope, paging Paging) errs.Result[*CollectionResult] {
	ctx, span := telemetry.Tracer().Start(ctx, "sync.collection",
		trace.WithAttributes(attribute.String("collection", collection)))
	defer span.End()

	paging = paging.withDefaults()
	res := newCollectionResult()

	// без учреждения и без глобального доступа видеть нечего
	if scope.Empty() {
		res.Success = true
		return errs.OK(res)
	}

	var facility *string
	if !scope.CanAccessAllFacilities {
		facility = scope.FacilityID
	}

	if err := s.pullUpdates(ctx, collection, lastSync, facility, paging, res); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return errs.Fail[*CollectionResult](errs.Item(collection, err))
	}

	tombstones, err := s.tombstones.ListSince(ctx, collection, document.TombstoneFilter{
		DeletedAfter: lastSync,
		FacilityID:   facility,
		Limit:        paging.DeletedLimit,
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return errs.Fail[*CollectionResult](errs.Item(collection, fmt.Errorf("list tombstones: %w", err)))
	}
	for _, t := range tombstones {
		res.Deleted = append(res.Deleted, TombstoneRecord{
			ID:        t.DocumentID,
			DeletedAt: t.DeletedAt,
			Operation: document.OpDelete,
		})
	}

	res.Success = true
	span.SetAttributes(
		attribute.Int("updated", len(res.Updated)),
		attribute.Int("deleted", len(res.Deleted)),
		attribute.Int("pages", res.PagesFetched),
	)
	return errs.OK(res)
}

func (s *Syncer) pullUpdates(ctx context.Context, collection string, lastSync time.Time, facility *string, paging Paging, res *CollectionResult) error {
	cursor := paging.Cursor
	for res.PagesFetched < paging.MaxPages {
		page, err := s.store.List(ctx, collection, document.Filter{
			UpdatedAfter: lastSync,
			FacilityID:   facility,
			AfterID:      cursor,
			Limit:        paging.PageLimit,
		})
		if err != nil {
			return fmt.Errorf("list changes after %q: %w", cursor, err)
		}

		for _, d := range page.Documents {
			res.Updated = append(res.Updated, ChangeRecord{
				ID:        d.ID,
				Data:      d.Data,
				UpdatedAt: d.UpdatedAt,
				Operation: document.OpUpdate,
			})
		}
		res.PagesFetched++

		// Total не учитывает курсор и срабатывает на первом вызове, Remaining -
		// при продолжении с pageCursor
		if len(page.Documents) == 0 || page.Total <= len(res.Updated) || page.Remaining <= len(page.Documents) {
			res.HasMore = false
			res.NextCursor = nil
			return nil
		}

		cursor = page.Documents[len(page.Documents)-1].ID
		next := cursor
		res.HasMore = true
		res.NextCursor = &next
	}

	// страницы кончились раньше данных: клиент продолжит с NextCursor
	s.log.Debug("page budget exhausted",
		"collection", collection, "pages", res.PagesFetched, "next_cursor", cursor)
	return nil
}
