package document

import (
	"context"
)

// Store CRUD-интерфейс хранилища документов
type Store interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	List(ctx context.Context, collection string, filter Filter) (*Page, error)
	Create(ctx context.Context, collection, id string, data Fields) (*Document, error)
	Update(ctx context.Context, collection, id string, data Fields) (*Document, error)
}

// TombstoneLog журнал удалений, только добавление и чтение
type TombstoneLog interface {
	ListSince(ctx context.Context, collection string, filter TombstoneFilter) ([]Tombstone, error)
}
