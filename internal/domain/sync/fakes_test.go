package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	gosync "sync"
	"time"

	"medsync/internal/domain/document"
	"medsync/internal/domain/permission"
)

var errStoreDown = errors.New("store unavailable")

// fakeStore упрощенное хранилище с той же семантикой фильтра, что и у PostgreSQL
type fakeStore struct {
	docs       map[string][]document.Document
	tombstones []document.Tombstone
	failOn     map[string]bool
	failTombs  map[string]bool

	mu      gosync.Mutex
	filters []document.Filter
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs:      make(map[string][]document.Document),
		failOn:    make(map[string]bool),
		failTombs: make(map[string]bool),
	}
}

func (f *fakeStore) add(collection string, n int, facility string, updatedAt time.Time) {
	start := len(f.docs[collection])
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-%05d", facility, start+i)
		f.docs[collection] = append(f.docs[collection], document.Document{
			ID:         id,
			Collection: collection,
			FacilityID: facility,
			Data:       document.Fields{"facilityId": facility, "seq": float64(start + i)},
			UpdatedAt:  updatedAt,
		})
	}
}

func (f *fakeStore) Get(context.Context, string, string) (*document.Document, error) {
	return nil, document.ErrNotFound
}

func (f *fakeStore) Create(context.Context, string, string, document.Fields) (*document.Document, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeStore) Update(context.Context, string, string, document.Fields) (*document.Document, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeStore) List(_ context.Context, collection string, filter document.Filter) (*document.Page, error) {
	f.mu.Lock()
	f.filters = append(f.filters, filter)
	f.mu.Unlock()

	if f.failOn[collection] {
		return nil, errStoreDown
	}

	var matched []document.Document
	for _, d := range f.docs[collection] {
		if !d.UpdatedAt.After(filter.UpdatedAfter) {
			continue
		}
		if filter.FacilityID != nil && d.FacilityID != *filter.FacilityID {
			continue
		}
		matched = append(matched, d)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	page := &document.Page{Total: len(matched)}
	for _, d := range matched {
		if filter.AfterID != "" && d.ID <= filter.AfterID {
			continue
		}
		page.Remaining++
		if len(page.Documents) >= filter.Limit {
			continue
		}
		page.Documents = append(page.Documents, d)
	}
	return page, nil
}

func (f *fakeStore) ListSince(_ context.Context, collection string, filter document.TombstoneFilter) ([]document.Tombstone, error) {
	if f.failTombs[collection] {
		return nil, errStoreDown
	}
	var out []document.Tombstone
	for _, t := range f.tombstones {
		if t.Collection != collection || !t.DeletedAt.After(filter.DeletedAfter) {
			continue
		}
		if filter.FacilityID != nil && t.FacilityID != *filter.FacilityID {
			continue
		}
		if len(out) >= filter.Limit {
			break
		}
		out = append(out, t)
	}
	return out, nil
}

type fakeAudit struct {
	mu      gosync.Mutex
	entries []AuditEntry
	err     error
}

func (a *fakeAudit) Append(_ context.Context, e *AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.entries = append(a.entries, *e)
	return nil
}

type staticResolver struct {
	scope permission.Scope
}

func (r staticResolver) Resolve(context.Context, string, string) permission.Scope {
	return r.scope
}

func facilityScope(id string) permission.Scope {
	return permission.Scope{Role: "nurse", FacilityID: &id}
}
