package push

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"medsync/internal/domain/document"
)

// MockStore is a mock implementation of document.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, collection, id string) (*document.Document, error) {
	args := m.Called(ctx, collection, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *MockStore) List(ctx context.Context, collection string, filter document.Filter) (*document.Page, error) {
	args := m.Called(ctx, collection, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Page), args.Error(1)
}

func (m *MockStore) Create(ctx context.Context, collection, id string, data document.Fields) (*document.Document, error) {
	args := m.Called(ctx, collection, id, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *MockStore) Update(ctx context.Context, collection, id string, data document.Fields) (*document.Document, error) {
	args := m.Called(ctx, collection, id, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func TestReconciler_Upsert_Update(t *testing.T) {
	store := new(MockStore)
	r := NewReconciler(store, slog.Default())
	fields := document.Fields{"firstName": "Ada"}
	updatedAt := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	store.On("Update", mock.Anything, "patients", "p1", fields).
		Return(&document.Document{ID: "p1", UpdatedAt: updatedAt}, nil)

	out, err := r.Upsert(context.Background(), "patients", "p1", fields)
	require.NoError(t, err)
	assert.Equal(t, Outcome{ID: "p1", Operation: document.OpUpdate, Timestamp: updatedAt}, out)

	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconciler_Upsert_FallbackToCreate(t *testing.T) {
	store := new(MockStore)
	r := NewReconciler(store, slog.Default())
	fields := document.Fields{"firstName": "Ada"}
	createdAt := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	store.On("Update", mock.Anything, "patients", "new-id", fields).Return(nil, document.ErrNotFound)
	store.On("Create", mock.Anything, "patients", "new-id", fields).
		Return(&document.Document{ID: "new-id", CreatedAt: createdAt, UpdatedAt: createdAt}, nil)

	out, err := r.Upsert(context.Background(), "patients", "new-id", fields)
	require.NoError(t, err)
	assert.Equal(t, "new-id", out.ID)
	assert.Equal(t, document.OpCreate, out.Operation)
	assert.Equal(t, createdAt, out.Timestamp)

	store.AssertExpectations(t)
}

func TestReconciler_Upsert_StoreError(t *testing.T) {
	store := new(MockStore)
	r := NewReconciler(store, slog.Default())
	fields := document.Fields{"firstName": "Ada"}

	store.On("Update", mock.Anything, "patients", "p1", fields).Return(nil, errors.New("deadlock detected"))

	_, err := r.Upsert(context.Background(), "patients", "p1", fields)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "deadlock detected")
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconciler_Upsert_CreateConflictRetriesUpdate(t *testing.T) {
	store := new(MockStore)
	r := NewReconciler(store, slog.Default())
	fields := document.Fields{"firstName": "Ada"}
	updatedAt := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)

	store.On("Update", mock.Anything, "patients", "p1", fields).Return(nil, document.ErrNotFound).Once()
	store.On("Create", mock.Anything, "patients", "p1", fields).Return(nil, document.ErrAlreadyExists).Once()
	store.On("Update", mock.Anything, "patients", "p1", fields).
		Return(&document.Document{ID: "p1", UpdatedAt: updatedAt}, nil).Once()

	out, err := r.Upsert(context.Background(), "patients", "p1", fields)
	require.NoError(t, err)
	assert.Equal(t, Outcome{ID: "p1", Operation: document.OpUpdate, Timestamp: updatedAt}, out)

	store.AssertExpectations(t)
	store.AssertNumberOfCalls(t, "Update", 2)
}

func TestReconciler_Upsert_CreateConflictUpdateFails(t *testing.T) {
	store := new(MockStore)
	r := NewReconciler(store, slog.Default())
	fields := document.Fields{"firstName": "Ada"}

	store.On("Update", mock.Anything, "patients", "p1", fields).Return(nil, document.ErrNotFound).Once()
	store.On("Create", mock.Anything, "patients", "p1", fields).Return(nil, document.ErrAlreadyExists).Once()
	store.On("Update", mock.Anything, "patients", "p1", fields).Return(nil, errors.New("connection reset")).Once()

	_, err := r.Upsert(context.Background(), "patients", "p1", fields)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	store.AssertExpectations(t)
}

func TestReconciler_Upsert_CreateError(t *testing.T) {
	store := new(MockStore)
	r := NewReconciler(store, slog.Default())
	fields := document.Fields{"firstName": "Ada"}

	store.On("Update", mock.Anything, "patients", "p1", fields).Return(nil, document.ErrNotFound)
	store.On("Create", mock.Anything, "patients", "p1", fields).Return(nil, errors.New("disk full"))

	_, err := r.Upsert(context.Background(), "patients", "p1", fields)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create patients/p1")
}
