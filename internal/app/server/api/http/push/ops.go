package push

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) validateOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-validate",
		Method:      http.MethodPost,
		Path:        "/api/sync/validate",
		Summary:     "Проверить и сохранить пакет документов",
		Description: "Очищает служебные поля, проверяет документы по правилам коллекции и в режиме upsert сохраняет их по id",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}
