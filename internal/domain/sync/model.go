package sync

import (
	"time"

	"medsync/internal/domain/document"
)

const (
	DefaultPageLimit    = 100
	DefaultMaxPageLimit = 500
	DefaultMaxPages     = 10
	DefaultDeletedLimit = 50
	DefaultSyncInterval = 5 * time.Minute

	CompressionGzipBase64 = "gzip+base64"

	AuditStatusCompleted = "completed"
	AuditStatusPartial   = "partial"
)

// ChangeRecord снимок изменённого документа
type ChangeRecord struct {
	ID        string             `json:"id"`
	Data      document.Fields    `json:"data"`
	UpdatedAt time.Time          `json:"updatedAt"`
	Operation document.Operation `json:"operation"`
}

// TombstoneRecord удалённый документ. ID - id исходного документа, а не записи журнала.
type TombstoneRecord struct {
	ID        string             `json:"id"`
	DeletedAt time.Time          `json:"deletedAt"`
	Operation document.Operation `json:"operation"`
}

// CollectionResult результат синхронизации одной коллекции
type CollectionResult struct {
	Success      bool              `json:"success"`
	Updated      []ChangeRecord    `json:"updated"`
	Deleted      []TombstoneRecord `json:"deleted"`
	HasMore      bool              `json:"hasMore"`
	NextCursor   *string           `json:"nextCursor"`
	PagesFetched int               `json:"pagesFetched"`
	Error        string            `json:"error,omitempty"`
}

func newCollectionResult() *CollectionResult {
	return &CollectionResult{
		Updated: []ChangeRecord{},
		Deleted: []TombstoneRecord{},
	}
}

// Paging ограничения выборки одной коллекции
type Paging struct {
	PageLimit    int
	MaxPages     int
	DeletedLimit int
	// Cursor id последнего документа предыдущего ответа
	Cursor string
}

func (p Paging) withDefaults() Paging {
	if p.PageLimit <= 0 {
		p.PageLimit = DefaultPageLimit
	}
	if p.MaxPages <= 0 {
		p.MaxPages = DefaultMaxPages
	}
	if p.DeletedLimit <= 0 {
		p.DeletedLimit = DefaultDeletedLimit
	}
	return p
}

// AuditEntry запись журнала операций синхронизации
type AuditEntry struct {
	ID                string                 `json:"id"`
	DeviceID          string                 `json:"deviceId"`
	UserID            string                 `json:"userId"`
	FacilityID        string                 `json:"facilityId,omitempty"`
	SyncTimestamp     time.Time              `json:"syncTimestamp"`
	LastSyncTimestamp time.Time              `json:"lastSyncTimestamp"`
	Collections       []string               `json:"collections"`
	Status            string                 `json:"status"`
	Results           map[string]AuditResult `json:"results"`
}

// AuditResult краткие итоги по коллекции для журнала
type AuditResult struct {
	Success bool   `json:"success"`
	Updated int    `json:"updated"`
	Deleted int    `json:"deleted"`
	HasMore bool   `json:"hasMore"`
	Error   string `json:"error,omitempty"`
}

// ServiceConfig конфигурация сервиса синхронизации
type ServiceConfig struct {
	DefaultCollections []string
	PageLimit          int
	MaxPageLimit       int
	MaxPages           int
	DeletedLimit       int
	SyncInterval       time.Duration
}

func (c *ServiceConfig) withDefaults() *ServiceConfig {
	out := *c
	if out.PageLimit <= 0 {
		out.PageLimit = DefaultPageLimit
	}
	if out.MaxPageLimit <= 0 {
		out.MaxPageLimit = DefaultMaxPageLimit
	}
	if out.MaxPages <= 0 {
		out.MaxPages = DefaultMaxPages
	}
	if out.DeletedLimit <= 0 {
		out.DeletedLimit = DefaultDeletedLimit
	}
	if out.SyncInterval <= 0 {
		out.SyncInterval = DefaultSyncInterval
	}
	out.DefaultCollections = append([]string(nil), c.DefaultCollections...)
	return &out
}
