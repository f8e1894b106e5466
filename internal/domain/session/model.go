package session

import (
	"slices"
	"time"
)

// Status состояние сессии синхронизации устройства
type Status string

const (
	StatusActive Status = "active"
	StatusIdle   Status = "idle"
)

// Session сессия синхронизации устройства. Явно не удаляется: устаревшей
// считается при чтении, если heartbeat вышел за окно.
type Session struct {
	DeviceID      string    `json:"deviceId"`
	UserID        string    `json:"userId"`
	Collections   []string  `json:"collections"`
	Status        Status    `json:"status"`
	LastHeartbeat time.Time `json:"lastHeartbeat"`
}

// ActiveSince сообщает, активна ли сессия с heartbeat строго позже since
func (s Session) ActiveSince(since time.Time) bool {
	return s.Status == StatusActive && s.LastHeartbeat.After(since)
}

// Watches сообщает, подписана ли сессия на коллекцию
func (s Session) Watches(collection string) bool {
	return slices.Contains(s.Collections, collection)
}
