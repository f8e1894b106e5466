// Package server собирает подсистему синхронизации: хранилище, доменные
// сервисы и HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/exp/slog"

	"medsync/internal/app/server/api"
	"medsync/internal/app/server/config"
	"medsync/internal/domain/document"
	"medsync/internal/domain/notify"
	"medsync/internal/domain/permission"
	"medsync/internal/domain/push"
	"medsync/internal/domain/session"
	"medsync/internal/domain/sync"
	"medsync/internal/domain/validation"
	"medsync/internal/infrastructure/storage/memory"
	"medsync/internal/infrastructure/storage/postgres"
)

// Repositories реализации хранилища, общие для всех сервисов
type Repositories struct {
	Documents  document.Store
	Tombstones document.TombstoneLog
	Identities permission.IdentityRepository
	Sessions   session.Repository
	Notify     notify.Repository
	Audit      sync.AuditRepository
	Pinger     interface{ Ping(context.Context) error }
	Close      func() error
}

type App struct {
	cfg    *config.Config
	log    *slog.Logger
	repos  *Repositories
	sync   *sync.Service
	router http.Handler
}

// New открывает хранилище по конфигурации и собирает приложение
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	repos, err := OpenRepositories(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	app, err := NewWithRepositories(cfg, repos, log)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}
	return app, nil
}

// OpenRepositories выбирает хранилище по STORAGE_DRIVER
func OpenRepositories(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Repositories, error) {
	switch cfg.DB.Driver {
	case config.DriverMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		return MemoryRepositories(memory.New()), nil
	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.DB.DatabaseURI, postgres.Tables{
			Documents:     cfg.Tables.Documents,
			Tombstones:    cfg.Tables.Tombstones,
			Users:         cfg.Tables.Users,
			Sessions:      cfg.Tables.Sessions,
			Notifications: cfg.Tables.Notifications,
			Realtime:      cfg.Tables.Realtime,
			Audit:         cfg.Tables.Audit,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return &Repositories{
			Documents:  postgres.NewDocumentRepository(db, log),
			Tombstones: postgres.NewTombstoneRepository(db, log),
			Identities: postgres.NewIdentityRepository(db, log),
			Sessions:   postgres.NewSessionRepository(db, log),
			Notify:     postgres.NewNotificationRepository(db, log),
			Audit:      postgres.NewAuditRepository(db, log),
			Pinger:     db,
			Close:      db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.DB.Driver)
	}
}

// MemoryRepositories все репозитории поверх одного хранилища в памяти
func MemoryRepositories(s *memory.Storage) *Repositories {
	return &Repositories{
		Documents:  s,
		Tombstones: s,
		Identities: s,
		Sessions:   s,
		Notify:     s,
		Audit:      s,
		Pinger:     s,
		Close:      func() error { return nil },
	}
}

// NewWithRepositories собирает сервисы и роутер поверх готовых репозиториев
func NewWithRepositories(cfg *config.Config, repos *Repositories, log *slog.Logger) (*App, error) {
	rules, err := validation.LoadRegistry(cfg.Validation.RulesPath)
	if err != nil {
		return nil, err
	}
	log.Info("validation rules loaded", "collections", rules.Len(), "path", cfg.Validation.RulesPath)

	resolver := permission.NewResolver(repos.Identities, cfg.Sync.GlobalRoles, log)
	syncService := sync.NewService(
		sync.NewSyncer(repos.Documents, repos.Tombstones, log),
		resolver,
		repos.Audit,
		log,
		&sync.ServiceConfig{
			DefaultCollections: cfg.Sync.DefaultCollections,
			PageLimit:          cfg.Sync.PageLimit,
			MaxPageLimit:       cfg.Sync.MaxPageLimit,
			MaxPages:           cfg.Sync.MaxPages,
			DeletedLimit:       cfg.Sync.DeletedLimit,
			SyncInterval:       cfg.Sync.Interval,
		},
	)
	pushService := push.NewService(rules, push.NewReconciler(repos.Documents, log), cfg.Sync.PushWorkers, log)
	registry := session.NewRegistry(repos.Sessions, cfg.Sync.HeartbeatWindow, cfg.Sync.SessionLimit, log)
	notifier := notify.NewNotifier(registry, repos.Notify, cfg.Sync.PollLimit, log)

	router := api.New(&api.Services{
		Storage:         repos.Pinger,
		Sync:            syncService,
		Push:            pushService,
		Notifier:        notifier,
		Sessions:        registry,
		HeartbeatWindow: cfg.Sync.HeartbeatWindow,
		TriggerToken:    cfg.Sync.TriggerToken,
	}, log)

	return &App{
		cfg:    cfg,
		log:    log.With("component", "app"),
		repos:  repos,
		sync:   syncService,
		router: router,
	}, nil
}

func (a *App) Handler() http.Handler {
	return a.router
}

// Run обслуживает HTTP до отмены ctx, затем дожидается активных запросов и
// фоновых записей журнала
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.RunAddress,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server started", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	a.sync.Wait()
	return errors.Join(err, a.Close())
}

func (a *App) Close() error {
	return a.repos.Close()
}
