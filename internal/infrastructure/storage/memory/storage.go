// Package memory хранилище в памяти процесса. Используется в тестах и при
// локальном запуске без PostgreSQL.
package memory

import (
	"context"
	"slices"
	"sort"
	gosync "sync"
	"time"

	"medsync/internal/domain/document"
	"medsync/internal/domain/notify"
	"medsync/internal/domain/permission"
	"medsync/internal/domain/session"
	"medsync/internal/domain/sync"
)

type docKey struct {
	collection string
	id         string
}

type Storage struct {
	mu gosync.RWMutex

	documents  map[docKey]document.Document
	tombstones []document.Tombstone
	identities map[string]permission.Identity
	sessions   map[string]session.Session
	notes      []notify.Notification
	updates    []notify.RealtimeUpdate
	audit      []sync.AuditEntry

	now func() time.Time
}

func New() *Storage {
	return &Storage{
		documents:  make(map[docKey]document.Document),
		identities: make(map[string]permission.Identity),
		sessions:   make(map[string]session.Session),
		now:        time.Now,
	}
}

// SetClock подменяет источник времени
func (s *Storage) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// documents

func (s *Storage) Get(_ context.Context, collection, id string) (*document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.documents[docKey{collection, id}]
	if !ok {
		return nil, document.ErrNotFound
	}
	return &d, nil
}

func (s *Storage) List(_ context.Context, collection string, filter document.Filter) (*document.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []document.Document
	for k, d := range s.documents {
		if k.collection != collection || !d.UpdatedAt.After(filter.UpdatedAfter) {
			continue
		}
		if filter.FacilityID != nil && d.FacilityID != *filter.FacilityID {
			continue
		}
		matched = append(matched, d)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	page := &document.Page{Total: len(matched), Documents: []document.Document{}}
	for _, d := range matched {
		if filter.AfterID != "" && d.ID <= filter.AfterID {
			continue
		}
		page.Remaining++
		if filter.Limit > 0 && len(page.Documents) >= filter.Limit {
			continue
		}
		page.Documents = append(page.Documents, d)
	}
	return page, nil
}

func (s *Storage) Create(_ context.Context, collection, id string, data document.Fields) (*document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := docKey{collection, id}
	if _, ok := s.documents[key]; ok {
		return nil, document.ErrAlreadyExists
	}
	ts := s.now().UTC()
	d := document.Document{
		ID:         id,
		Collection: collection,
		FacilityID: data.String(document.FacilityField),
		Data:       data.Clone(),
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	s.documents[key] = d
	return &d, nil
}

func (s *Storage) Update(_ context.Context, collection, id string, data document.Fields) (*document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := docKey{collection, id}
	d, ok := s.documents[key]
	if !ok {
		return nil, document.ErrNotFound
	}
	d.Data = data.Clone()
	d.FacilityID = data.String(document.FacilityField)
	d.UpdatedAt = s.now().UTC()
	s.documents[key] = d
	return &d, nil
}

// PutDocument кладет документ как есть, с его отметками времени
func (s *Storage) PutDocument(d document.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.FacilityID == "" {
		d.FacilityID = d.Data.String(document.FacilityField)
	}
	s.documents[docKey{d.Collection, d.ID}] = d
}

// tombstones

func (s *Storage) AppendTombstone(t document.Tombstone) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tombstones = append(s.tombstones, t)
}

func (s *Storage) ListSince(_ context.Context, collection string, filter document.TombstoneFilter) ([]document.Tombstone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []document.Tombstone{}
	for _, t := range s.tombstones {
		if t.Collection != collection || !t.DeletedAt.After(filter.DeletedAfter) {
			continue
		}
		if filter.FacilityID != nil && t.FacilityID != *filter.FacilityID {
			continue
		}
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
		out = append(out, t)
	}
	return out, nil
}

// identities

func (s *Storage) PutIdentity(i permission.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[i.UserID] = i
}

func (s *Storage) FindByID(_ context.Context, userID string) (*permission.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.identities[userID]
	if !ok {
		return nil, permission.ErrUserNotFound
	}
	return &i, nil
}

// sessions

func (s *Storage) Upsert(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *sess
	stored.Collections = slices.Clone(sess.Collections)
	s.sessions[sess.DeviceID] = stored
	return nil
}

func (s *Storage) ListActive(_ context.Context, collection string, since time.Time, limit int) ([]session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []session.Session{}
	for _, sess := range s.sessions {
		if !sess.ActiveSince(since) || !sess.Watches(collection) {
			continue
		}
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// notifications

func (s *Storage) CreateNotification(_ context.Context, n *notify.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, *n)
	return nil
}

func (s *Storage) CreateRealtimeUpdate(_ context.Context, u *notify.RealtimeUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, *u)
	return nil
}

func (s *Storage) ListUndelivered(_ context.Context, deviceID string, limit int) ([]notify.RealtimeUpdate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []notify.RealtimeUpdate{}
	for _, u := range s.updates {
		if u.DeviceID != deviceID || u.Delivered {
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, u)
	}
	return out, nil
}

func (s *Storage) MarkDelivered(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.updates {
		if slices.Contains(ids, s.updates[i].ID) {
			s.updates[i].Delivered = true
		}
	}
	return nil
}

func (s *Storage) Notifications() []notify.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notes)
}

// audit

func (s *Storage) Append(_ context.Context, entry *sync.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, *entry)
	return nil
}

func (s *Storage) AuditEntries() []sync.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.audit)
}

func (s *Storage) Ping(context.Context) error {
	return nil
}
