package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"medsync/internal/domain/errs"
)

// MockRepository is a mock implementation of the Repository interface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Upsert(ctx context.Context, s *Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockRepository) ListActive(ctx context.Context, collection string, since time.Time, limit int) ([]Session, error) {
	args := m.Called(ctx, collection, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Session), args.Error(1)
}

func fixedNow() time.Time {
	return time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
}

func TestRegistry_Heartbeat(t *testing.T) {
	repo := new(MockRepository)
	r := NewRegistry(repo, 0, 0, slog.Default())
	r.now = fixedNow

	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(s *Session) bool {
		return s.DeviceID == "d1" &&
			s.UserID == "u1" &&
			s.Status == StatusActive &&
			s.LastHeartbeat.Equal(fixedNow())
	})).Return(nil)

	s, err := r.Heartbeat(context.Background(), "d1", "u1", []string{"patients"})
	require.NoError(t, err)
	assert.Equal(t, []string{"patients"}, s.Collections)

	repo.AssertExpectations(t)
}

func TestRegistry_Heartbeat_MissingIDs(t *testing.T) {
	r := NewRegistry(new(MockRepository), 0, 0, slog.Default())

	_, err := r.Heartbeat(context.Background(), "", "u1", nil)
	assert.Equal(t, errs.KindRequest, errs.KindOf(err))
}

func TestRegistry_Heartbeat_RepositoryError(t *testing.T) {
	repo := new(MockRepository)
	r := NewRegistry(repo, 0, 0, slog.Default())

	repo.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("database error"))

	_, err := r.Heartbeat(context.Background(), "d1", "u1", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")
}

func TestRegistry_Active_UsesWindowAndLimit(t *testing.T) {
	repo := new(MockRepository)
	r := NewRegistry(repo, time.Minute, 10, slog.Default())
	r.now = fixedNow

	want := []Session{{DeviceID: "d1", Status: StatusActive}}
	repo.On("ListActive", mock.Anything, "patients", fixedNow().Add(-time.Minute), 10).Return(want, nil)

	got, err := r.Active(context.Background(), "patients")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	repo.AssertExpectations(t)
}

func TestSession_ActiveSince(t *testing.T) {
	now := fixedNow()
	since := now.Add(-DefaultWindow)
	s := Session{Status: StatusActive, LastHeartbeat: now.Add(-299 * time.Second)}
	assert.True(t, s.ActiveSince(since))

	s.LastHeartbeat = since
	assert.False(t, s.ActiveSince(since))

	s = Session{Status: StatusIdle, LastHeartbeat: now}
	assert.False(t, s.ActiveSince(since))
}
