package postgres

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func newDB(t *testing.T) (*Storage, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewWithPool(mock, Tables{}, slog.Default()), mock
}

func TestTables_WithDefaults(t *testing.T) {
	tables := Tables{Audit: "audit log"}.withDefaults()

	assert.Equal(t, `"documents"`, tables.Documents)
	assert.Equal(t, `"deletion_log"`, tables.Tombstones)
	assert.Equal(t, `"audit log"`, tables.Audit)
}

func TestStorage_Ping(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()

	mock.ExpectPing()
	require.NoError(t, db.Ping(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
