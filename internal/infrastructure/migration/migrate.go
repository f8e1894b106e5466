package migration

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	// Blank import required for PostgreSQL driver registration for migrations
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"golang.org/x/exp/slog"
)

// Migrator - интерфейс для самой библиотеки migrate.Migrate
type Migrator interface {
	Up() error
	Down() error
	Close() (error, error)
}

// MigrationEngine - фабрика для создания мигратора (чтобы не лезть в ФС и БД в тестах)
type MigrationEngine func(sourceURL, databaseURL string) (Migrator, error)

type Migration struct {
	source      string
	databaseURI string
	engine      MigrationEngine
	log         *slog.Logger
}

func NewMigration(migrationsPath, databaseURI string, engine MigrationEngine, log *slog.Logger) *Migration {
	if engine == nil {
		engine = DefaultEngine
	}
	return &Migration{
		source:      "file://" + migrationsPath,
		databaseURI: databaseURI,
		engine:      engine,
		log:         log.With("component", "migration"),
	}
}

// DefaultEngine - реальная реализация для продакшена
func DefaultEngine(sourceURL, databaseURL string) (Migrator, error) {
	return migrate.New(sourceURL, databaseURL)
}

// Up применяет все новые миграции. Отсутствие изменений ошибкой не считается.
func (mg *Migration) Up() error {
	return mg.run("up", Migrator.Up)
}

// Down откатывает все миграции
func (mg *Migration) Down() error {
	return mg.run("down", Migrator.Down)
}

func (mg *Migration) run(direction string, step func(Migrator) error) (err error) {
	m, err := mg.engine(mg.source, mg.databaseURI)
	if err != nil {
		return err
	}
	defer func() {
		serr, dberr := m.Close()
		if serr != nil {
			err = errors.Join(err, fmt.Errorf("migration source error: %w", serr))
		}
		if dberr != nil {
			err = errors.Join(err, fmt.Errorf("migration database error: %w", dberr))
		}
	}()

	if err := step(m); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("no new migrations", "direction", direction)
			return nil
		}
		return fmt.Errorf("migration %s: %w", direction, err)
	}
	mg.log.Info("migrations applied", "direction", direction, "source", mg.source)
	return nil
}
