// Package postgres реализации репозиториев подсистемы синхронизации поверх PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"
)

// PgxPool минимальный интерфейс пула соединений. Реализуется *pgxpool.Pool и pgxmock.PgxPoolIface.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Tables имена таблиц. Меняются конфигурацией, миграции создают значения по умолчанию.
type Tables struct {
	Documents     string
	Tombstones    string
	Users         string
	Sessions      string
	Notifications string
	Realtime      string
	Audit         string
}

func DefaultTables() Tables {
	return Tables{
		Documents:     "documents",
		Tombstones:    "deletion_log",
		Users:         "users",
		Sessions:      "sync_sessions",
		Notifications: "sync_notifications",
		Realtime:      "realtime_updates",
		Audit:         "sync_operations",
	}
}

// withDefaults заполняет пустые имена и экранирует все имена для подстановки в SQL
func (t Tables) withDefaults() Tables {
	def := DefaultTables()
	pick := func(v, fallback string) string {
		if v == "" {
			v = fallback
		}
		return pgx.Identifier{v}.Sanitize()
	}
	return Tables{
		Documents:     pick(t.Documents, def.Documents),
		Tombstones:    pick(t.Tombstones, def.Tombstones),
		Users:         pick(t.Users, def.Users),
		Sessions:      pick(t.Sessions, def.Sessions),
		Notifications: pick(t.Notifications, def.Notifications),
		Realtime:      pick(t.Realtime, def.Realtime),
		Audit:         pick(t.Audit, def.Audit),
	}
}

type Storage struct {
	pool   PgxPool
	tables Tables
	log    *slog.Logger
}

// New открывает пул соединений и проверяет доступность базы
func New(ctx context.Context, dsn string, tables Tables, log *slog.Logger) (*Storage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return NewWithPool(pool, tables, log), nil
}

// NewWithPool оборачивает готовый пул, в тестах - pgxmock
func NewWithPool(pool PgxPool, tables Tables, log *slog.Logger) *Storage {
	return &Storage{
		pool:   pool,
		tables: tables.withDefaults(),
		log:    log.With("component", "postgres"),
	}
}

func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func isUniqueViolation(err error) bool {
	var pg *pgconn.PgError
	return errors.As(err, &pg) && pg.Code == "23505"
}
