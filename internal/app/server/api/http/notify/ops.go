package notify

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) triggerOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-trigger",
		Method:      http.MethodPost,
		Path:        "/api/sync/trigger",
		Summary:     "Событие изменения документа",
		Description: "Принимает событие хранилища и создает уведомления для устройств с активной сессией на коллекцию",
		Tags:        []string{"sync"},
		Middlewares: h.triggerMiddleware,
	}
}

func (h *Handler) heartbeatOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-heartbeat",
		Method:      http.MethodPost,
		Path:        "/api/sync/heartbeat",
		Summary:     "Продлить сессию синхронизации",
		Description: "Создает или обновляет сессию устройства и список коллекций, об изменениях в которых оно хочет знать",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) realtimeOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-realtime",
		Method:      http.MethodGet,
		Path:        "/api/sync/realtime/{deviceId}",
		Summary:     "Забрать уведомления об изменениях",
		Description: "Возвращает недоставленные уведомления устройства и помечает их доставленными",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}
