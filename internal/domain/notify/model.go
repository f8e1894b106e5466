package notify

import (
	"time"

	"medsync/internal/domain/document"
)

const StatusPending = "pending"

// Event событие изменения документа в хранилище
type Event struct {
	DocumentID   string
	CollectionID string
	DatabaseID   string
	// Operation выводится из HTTP-метода и не гарантирована
	Operation document.Operation
}

// Notification ожидающее уведомление для устройства
type Notification struct {
	ID         string             `json:"id"`
	DeviceID   string             `json:"deviceId"`
	UserID     string             `json:"userId"`
	Collection string             `json:"collection"`
	DocumentID string             `json:"documentId"`
	Operation  document.Operation `json:"operation"`
	Status     string             `json:"status"`
	Timestamp  time.Time          `json:"timestamp"`
}

// RealtimeUpdate запись, которую устройство забирает опросом
type RealtimeUpdate struct {
	ID        string          `json:"id"`
	DeviceID  string          `json:"deviceId"`
	Payload   document.Fields `json:"payload"`
	Delivered bool            `json:"delivered"`
	CreatedAt time.Time       `json:"createdAt"`
}
