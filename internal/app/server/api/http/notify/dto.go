package notify

import (
	"time"

	"medsync/internal/domain/notify"
	"medsync/internal/domain/session"
)

type triggerInput struct {
	Method  string `header:"X-Trigger-Method" doc:"HTTP method of the originating store call"`
	RawBody []byte
}

type TriggerResponse struct {
	Success    bool   `json:"success"`
	Notified   int    `json:"notified"`
	Collection string `json:"collection"`
	Document   string `json:"document"`
}

type triggerOutput struct {
	Body TriggerResponse
}

type HeartbeatRequest struct {
	DeviceID    string   `json:"deviceId,omitempty"`
	UserID      string   `json:"userId,omitempty"`
	Collections []string `json:"collections,omitempty"`
}

type heartbeatInput struct {
	Body HeartbeatRequest
}

type HeartbeatResponse struct {
	Success   bool             `json:"success"`
	Session   *session.Session `json:"session"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

type heartbeatOutput struct {
	Body HeartbeatResponse
}

type realtimeInput struct {
	DeviceID string `path:"deviceId" doc:"Device identifier"`
}

type RealtimeResponse struct {
	Success bool                    `json:"success"`
	Updates []notify.RealtimeUpdate `json:"updates"`
}

type realtimeOutput struct {
	Body RealtimeResponse
}
