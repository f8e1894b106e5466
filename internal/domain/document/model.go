package document

import (
	"time"
)

// FacilityField имя поля документа, по которому ограничивается доступ
const FacilityField = "facilityId"

// Fields произвольный набор полей документа (значения JSON: string, float64,
// bool, nil, map[string]any, []any). Схема зависит от коллекции.
type Fields map[string]any

// Clone возвращает поверхностную копию
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// String возвращает строковое значение поля или пустую строку
func (f Fields) String(key string) string {
	s, _ := f[key].(string)
	return s
}

// Document документ коллекции в хранилище
type Document struct {
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	FacilityID string    `json:"facility_id,omitempty"`
	Data       Fields    `json:"data"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Filter условия выборки изменённых документов. Все условия объединяются через AND.
type Filter struct {
	UpdatedAfter time.Time
	// FacilityID nil - без ограничения по учреждению
	FacilityID *string
	// AfterID курсор: только документы с id строго больше
	AfterID string
	Limit   int
}

// Page страница выборки
type Page struct {
	Documents []Document
	// Total количество документов, подходящих под фильтр без учёта курсора
	Total int
	// Remaining количество подходящих документов после курсора, включая эту страницу
	Remaining int
}

// Tombstone запись журнала удалений
type Tombstone struct {
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	DocumentID string    `json:"document_id"`
	FacilityID string    `json:"facility_id,omitempty"`
	DeletedAt  time.Time `json:"deleted_at"`
}

// TombstoneFilter условия выборки из журнала удалений
type TombstoneFilter struct {
	DeletedAfter time.Time
	FacilityID   *string
	Limit        int
}

// Operation вид изменения документа
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)
