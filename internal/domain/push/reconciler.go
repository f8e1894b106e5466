package push

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"medsync/internal/domain/document"
)

// Outcome результат upsert одного документа
type Outcome struct {
	ID        string
	Operation document.Operation
	Timestamp time.Time
}

// Reconciler обновляет документ по id, а если его нет - создает с тем же id.
// Версии не сравниваются: побеждает последняя запись.
type Reconciler struct {
	store document.Store
	log   *slog.Logger
}

func NewReconciler(store document.Store, log *slog.Logger) *Reconciler {
	return &Reconciler{
		store: store,
		log:   log.With("component", "upsert_reconciler"),
	}
}

// Upsert выполняет слепую запись очищенного документа
func (r *Reconciler) Upsert(ctx context.Context, collection, id string, fields document.Fields) (Outcome, error) {
	doc, err := r.store.Update(ctx, collection, id, fields)
	if err == nil {
		return Outcome{ID: doc.ID, Operation: document.OpUpdate, Timestamp: doc.UpdatedAt}, nil
	}
	if !errors.Is(err, document.ErrNotFound) {
		return Outcome{}, fmt.Errorf("update %s/%s: %w", collection, id, err)
	}

	r.log.Debug("document not found, creating", "collection", collection, "id", id)
	doc, err = r.store.Create(ctx, collection, id, fields)
	if errors.Is(err, document.ErrAlreadyExists) {
		// документ создан параллельной записью между Update и Create
		r.log.Debug("document created concurrently, updating", "collection", collection, "id", id)
		doc, err = r.store.Update(ctx, collection, id, fields)
		if err != nil {
			return Outcome{}, fmt.Errorf("update %s/%s after create conflict: %w", collection, id, err)
		}
		return Outcome{ID: doc.ID, Operation: document.OpUpdate, Timestamp: doc.UpdatedAt}, nil
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("create %s/%s: %w", collection, id, err)
	}
	return Outcome{ID: doc.ID, Operation: document.OpCreate, Timestamp: doc.CreatedAt}, nil
}
