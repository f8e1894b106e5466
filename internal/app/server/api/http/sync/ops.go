package sync

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) pullOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-pull",
		Method:      http.MethodPost,
		Path:        "/api/sync/pull",
		Summary:     "Получить изменения для синхронизации",
		Description: "Возвращает документы, измененные и удаленные после lastSyncTimestamp, по каждой коллекции с постраничным курсором",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}
