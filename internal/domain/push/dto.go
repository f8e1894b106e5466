package push

import (
	"medsync/internal/domain/document"
)

// Mode режим обработки пакета
type Mode string

const (
	ModeValidate Mode = "validate"
	ModeUpsert   Mode = "upsert"
)

// Request пакет документов от устройства
type Request struct {
	Collection string            `json:"collection,omitempty"`
	Documents  []document.Fields `json:"documents,omitempty"`
	Mode       Mode              `json:"mode,omitempty" doc:"validate or upsert, validate by default"`
}

// Totals итоги обработки пакета
type Totals struct {
	Valid     int `json:"valid"`
	Invalid   int `json:"invalid"`
	Processed int `json:"processed"`
}

// ItemResult результат по одному документу
type ItemResult struct {
	ID        string             `json:"id,omitempty"`
	Valid     bool               `json:"valid"`
	Errors    []string           `json:"errors,omitempty"`
	Operation document.Operation `json:"operation,omitempty"`
	UpdatedAt string             `json:"updatedAt,omitempty"`
	CreatedAt string             `json:"createdAt,omitempty"`
}

// Response ответ на пакет
type Response struct {
	Success    bool         `json:"success"`
	Collection string       `json:"collection"`
	Mode       Mode         `json:"mode"`
	Totals     Totals       `json:"totals"`
	Results    []ItemResult `json:"results"`
}
