package sync

import (
	"time"
)

// Request запрос инкрементальной выгрузки
type Request struct {
	DeviceID          string   `json:"deviceId,omitempty"`
	UserID            string   `json:"userId,omitempty"`
	FacilityID        string   `json:"facilityId,omitempty"`
	LastSyncTimestamp string   `json:"lastSyncTimestamp,omitempty" example:"2024-01-01T00:00:00.000Z"`
	Collections       []string `json:"collections,omitempty"`
	PageLimit         int      `json:"pageLimit,omitempty" minimum:"0"`
	PageCursor        string   `json:"pageCursor,omitempty"`
	Compress          bool     `json:"compress,omitempty"`
}

// Response ответ на запрос выгрузки. Results присутствует всегда, при
// успешном сжатии он null, а данные лежат в CompressedResults.
type Response struct {
	Success             bool                         `json:"success"`
	SyncTimestamp       time.Time                    `json:"syncTimestamp"`
	Results             map[string]*CollectionResult `json:"results"`
	CompressedResults   string                       `json:"compressedResults,omitempty"`
	Compression         *string                      `json:"compression"`
	NextSyncRecommended time.Time                    `json:"nextSyncRecommended"`
}
