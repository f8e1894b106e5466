package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"medsync/internal/domain/document"
)

// reservedKeys поля, которые назначает сервер
var reservedKeys = map[string]struct{}{
	"id":        {},
	"createdAt": {},
	"updatedAt": {},
}

// Result результат проверки документа
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// IsReserved сообщает, является ли поле служебным
func IsReserved(key string) bool {
	if strings.HasPrefix(key, "$") {
		return true
	}
	_, ok := reservedKeys[key]
	return ok
}

// Sanitize возвращает копию документа без служебных полей
func Sanitize(doc document.Fields) document.Fields {
	out := make(document.Fields, len(doc))
	for k, v := range doc {
		if IsReserved(k) {
			continue
		}
		out[k] = v
	}
	return out
}

// Validate проверяет документ по правилам коллекции. Ошибки собираются все, без
// остановки на первой.
func Validate(rules RuleSet, doc document.Fields) Result {
	var problems []string

	for _, field := range rules.Required {
		if isEmpty(doc, field) {
			problems = append(problems, fmt.Sprintf("field %q is required", field))
		}
	}

	// порядок сообщений не должен зависеть от обхода map
	fields := make([]string, 0, len(rules.Types))
	for field := range rules.Types {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		value, ok := doc[field]
		if !ok || value == nil {
			continue
		}
		want := rules.Types[field]
		if !matches(want, value) {
			problems = append(problems, fmt.Sprintf("field %q must be of type %s", field, want))
		}
	}

	return Result{Valid: len(problems) == 0, Errors: problems}
}

func isEmpty(doc document.Fields, field string) bool {
	value, ok := doc[field]
	if !ok || value == nil {
		return true
	}
	if s, isString := value.(string); isString && s == "" {
		return true
	}
	return false
}

func matches(want FieldType, value any) bool {
	switch want {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeNumber:
		return isNumber(value)
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeObject:
		switch value.(type) {
		case map[string]any, document.Fields:
			return true
		}
		return false
	case TypeArray:
		_, ok := value.([]any)
		return ok
	default:
		// неизвестные типы не проверяются
		return true
	}
}

func isNumber(value any) bool {
	switch n := value.(type) {
	case float64:
		return !math.IsNaN(n)
	case float32:
		return !math.IsNaN(float64(n))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}
