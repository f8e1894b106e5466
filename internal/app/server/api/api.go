// POST /api/sync/validate          # Проверка и upsert пакета документов
// POST /api/sync/pull              # Инкрементальная выгрузка по коллекциям
// POST /api/sync/trigger           # Событие изменения от хранилища (bearer-секрет)
// POST /api/sync/heartbeat         # Продление сессии устройства
// GET  /api/sync/realtime/{id}     # Опрос уведомлений устройства
// GET  /api/v1/health              # Проверка состояния

package api

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"

	healthAPI "medsync/internal/app/server/api/http/health"
	"medsync/internal/app/server/api/http/middleware"
	"medsync/internal/app/server/api/http/middleware/auth"
	"medsync/internal/app/server/api/http/middleware/logger"
	notifyAPI "medsync/internal/app/server/api/http/notify"
	pushAPI "medsync/internal/app/server/api/http/push"
	syncAPI "medsync/internal/app/server/api/http/sync"
	"medsync/internal/domain/notify"
	"medsync/internal/domain/push"
	"medsync/internal/domain/session"
	"medsync/internal/domain/sync"
)

// Services доменные сервисы, которые обслуживает API
type Services struct {
	Storage         healthAPI.Pinger
	Sync            sync.Servicer
	Push            push.Servicer
	Notifier        notify.Servicer
	Sessions        session.Registrar
	HeartbeatWindow time.Duration
	TriggerToken    string
}

type Handlers struct {
	Health *healthAPI.Handler
	Sync   *syncAPI.Handler
	Push   *pushAPI.Handler
	Notify *notifyAPI.Handler
}

// New создает *chi.Mux с ВСЕМИ операциями через huma.Register
func New(services *Services, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()
	mux.Use(chimw.Recoverer)

	config := huma.DefaultConfig("MedSync API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, config)

	h := handlers(services, log)
	h.Health.SetupRoutes(API)
	h.Sync.SetupRoutes(API)
	h.Push.SetupRoutes(API)
	h.Notify.SetupRoutes(API)

	return mux
}

func handlers(services *Services, log *slog.Logger) *Handlers {
	loggerMW := logger.New(log)
	authMW := auth.New(services.TriggerToken, log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(services.Storage, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	syncHandler := syncAPI.NewHandler(services.Sync, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	pushHandler := pushAPI.NewHandler(services.Push, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	deviceMW := middlewares.GetAllAndClear()
	middlewares.Add(loggerMW.Middleware(), authMW.Middleware())
	notifyHandler := notifyAPI.NewHandler(services.Notifier, services.Sessions, services.HeartbeatWindow, log, deviceMW, middlewares.GetAllAndClear())

	return &Handlers{
		Health: healthHandler,
		Sync:   syncHandler,
		Push:   pushHandler,
		Notify: notifyHandler,
	}
}
