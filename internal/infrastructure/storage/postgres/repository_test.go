package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"medsync/internal/domain/document"
	"medsync/internal/domain/notify"
	"medsync/internal/domain/permission"
	"medsync/internal/domain/session"
	"medsync/internal/domain/sync"
)

func TestIdentityRepository_FindByID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewIdentityRepository(db, slog.Default())

	facility := "f1"
	mock.ExpectQuery(`SELECT id, role, facility_id FROM "users" WHERE id = \$1`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "role", "facility_id"}).AddRow("u1", "nurse", &facility))
	mock.ExpectQuery(`SELECT id, role, facility_id FROM "users" WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	id, err := r.FindByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, permission.Identity{UserID: "u1", Role: "nurse", FacilityID: "f1"}, *id)

	_, err = r.FindByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, permission.ErrUserNotFound)
}

func TestSessionRepository_Upsert(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSessionRepository(db, slog.Default())

	s := &session.Session{DeviceID: "d1", UserID: "u1", Status: session.StatusActive, LastHeartbeat: ts}
	mock.ExpectExec(`INSERT INTO "sync_sessions"`).
		WithArgs("d1", "u1", []string{}, "active", ts).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, r.Upsert(context.Background(), s))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_ListActive(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSessionRepository(db, slog.Default())

	since := ts.Add(-5 * time.Minute)
	mock.ExpectQuery(`FROM "sync_sessions"`).
		WithArgs("active", "patients", since, 100).
		WillReturnRows(pgxmock.NewRows([]string{"device_id", "user_id", "collections", "status", "last_heartbeat"}).
			AddRow("d1", "u1", []string{"patients"}, "active", ts))

	out, err := r.ListActive(context.Background(), "patients", since, 100)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, session.StatusActive, out[0].Status)
	assert.True(t, out[0].Watches("patients"))
}

func TestNotificationRepository_Create(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNotificationRepository(db, slog.Default())

	n := &notify.Notification{
		ID: "n1", DeviceID: "d1", UserID: "u1", Collection: "patients",
		DocumentID: "p1", Operation: document.OpUpdate, Status: notify.StatusPending, Timestamp: ts,
	}
	mock.ExpectExec(`INSERT INTO "sync_notifications"`).
		WithArgs("n1", "d1", "u1", "patients", "p1", "update", "pending", ts).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	u := &notify.RealtimeUpdate{ID: "r1", DeviceID: "d1", Payload: document.Fields{"type": "document_change"}, CreatedAt: ts}
	mock.ExpectExec(`INSERT INTO "realtime_updates"`).
		WithArgs("r1", "d1", []byte(`{"type":"document_change"}`), false, ts).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, r.CreateNotification(context.Background(), n))
	require.NoError(t, r.CreateRealtimeUpdate(context.Background(), u))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_Poll(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNotificationRepository(db, slog.Default())

	mock.ExpectQuery(`FROM "realtime_updates"`).
		WithArgs("d1", 50).
		WillReturnRows(pgxmock.NewRows([]string{"id", "device_id", "payload", "delivered", "created_at"}).
			AddRow("r1", "d1", []byte(`{"documentId":"p1"}`), false, ts))
	mock.ExpectExec(`UPDATE "realtime_updates" SET delivered = true`).
		WithArgs([]string{"r1"}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	out, err := r.ListUndelivered(context.Background(), "d1", 50)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "p1", out[0].Payload["documentId"])

	require.NoError(t, r.MarkDelivered(context.Background(), []string{"r1"}))
	require.NoError(t, r.MarkDelivered(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository_Append(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAuditRepository(db, slog.Default())

	e := &sync.AuditEntry{
		ID: "a1", DeviceID: "d1", UserID: "u1", FacilityID: "f1",
		SyncTimestamp: ts, LastSyncTimestamp: ts.Add(-time.Hour),
		Collections: []string{"patients"}, Status: sync.AuditStatusCompleted,
		Results: map[string]sync.AuditResult{"patients": {Success: true, Updated: 2}},
	}
	mock.ExpectExec(`INSERT INTO "sync_operations"`).
		WithArgs("a1", "d1", "u1", "f1", ts, ts.Add(-time.Hour), []string{"patients"}, "completed", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO "sync_operations"`).
		WillReturnError(errors.New("relation does not exist"))

	require.NoError(t, r.Append(context.Background(), e))
	err := r.Append(context.Background(), e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append audit entry")
}
