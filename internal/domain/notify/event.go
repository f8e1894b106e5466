package notify

import (
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"medsync/internal/domain/document"
	"medsync/internal/domain/errs"
)

// Пути, по которым ищутся идентификаторы в событии хранилища. Событие может
// быть самим документом или конвертом с полем document.
var (
	documentIDPaths   = []string{"$id", "id", "document.$id", "document.id", "documentId"}
	collectionIDPaths = []string{"$collectionId", "collectionId", "collection", "document.$collectionId", "document.collectionId"}
	databaseIDPaths   = []string{"$databaseId", "databaseId", "document.$databaseId", "document.databaseId"}
	methodPaths       = []string{"method", "verb", "request.method"}
)

// OperationFromMethod выводит вид изменения из HTTP-метода
func OperationFromMethod(method string) document.Operation {
	switch strings.ToUpper(strings.TrimSpace(method)) {
	case http.MethodPost:
		return document.OpCreate
	case http.MethodPut, http.MethodPatch:
		return document.OpUpdate
	case http.MethodDelete:
		return document.OpDelete
	default:
		return document.OpUpdate
	}
}

// ParseEvent извлекает идентификаторы из события. method - метод из заголовка
// запроса, если он есть; иначе берется из тела.
func ParseEvent(raw []byte, method string) (Event, error) {
	if !gjson.ValidBytes(raw) {
		return Event{}, errs.BadRequest("%v", ErrMalformedEvent)
	}

	ev := Event{
		DocumentID:   firstString(raw, documentIDPaths),
		CollectionID: firstString(raw, collectionIDPaths),
		DatabaseID:   firstString(raw, databaseIDPaths),
	}
	if ev.DocumentID == "" || ev.CollectionID == "" {
		return Event{}, errs.BadRequest("%v", ErrUnresolvedTarget)
	}

	if method == "" {
		method = firstString(raw, methodPaths)
	}
	ev.Operation = OperationFromMethod(method)
	return ev, nil
}

func firstString(raw []byte, paths []string) string {
	for _, p := range paths {
		if v := gjson.GetBytes(raw, p); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}
