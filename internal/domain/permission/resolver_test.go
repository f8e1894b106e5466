package permission

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type MockIdentityRepository struct {
	mock.Mock
}

func (m *MockIdentityRepository) FindByID(ctx context.Context, userID string) (*Identity, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Identity), args.Error(1)
}

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name         string
		identity     *Identity
		lookupErr    error
		hint         string
		wantRole     string
		wantFacility *string
		wantGlobal   bool
	}{
		{
			name:         "facility staff",
			identity:     &Identity{UserID: "u1", Role: "nurse", FacilityID: "f1"},
			hint:         "f2",
			wantRole:     "nurse",
			wantFacility: ptr("f1"),
		},
		{
			name:         "admin sees all facilities",
			identity:     &Identity{UserID: "u1", Role: "admin", FacilityID: "f1"},
			wantRole:     "admin",
			wantFacility: ptr("f1"),
			wantGlobal:   true,
		},
		{
			name:         "identity without facility falls back to hint",
			identity:     &Identity{UserID: "u1", Role: "doctor"},
			hint:         "f9",
			wantRole:     "doctor",
			wantFacility: ptr("f9"),
		},
		{
			name:      "unknown user degrades without hint",
			lookupErr: ErrUserNotFound,
			wantRole:  RoleUnknown,
		},
		{
			name:         "store error degrades to hint",
			lookupErr:    errors.New("connection refused"),
			hint:         "f3",
			wantRole:     RoleUnknown,
			wantFacility: ptr("f3"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockIdentityRepository)
			if tt.identity != nil {
				repo.On("FindByID", mock.Anything, "u1").Return(tt.identity, nil)
			} else {
				repo.On("FindByID", mock.Anything, "u1").Return(nil, tt.lookupErr)
			}
			r := NewResolver(repo, []string{"admin", "super_admin"}, slog.Default())

			scope := r.Resolve(context.Background(), "u1", tt.hint)

			assert.Equal(t, tt.wantRole, scope.Role)
			assert.Equal(t, tt.wantGlobal, scope.CanAccessAllFacilities)
			if tt.wantFacility == nil {
				assert.Nil(t, scope.FacilityID)
			} else {
				require.NotNil(t, scope.FacilityID)
				assert.Equal(t, *tt.wantFacility, *scope.FacilityID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestScope_Empty(t *testing.T) {
	f1 := "f1"
	assert.True(t, Scope{}.Empty())
	assert.False(t, Scope{CanAccessAllFacilities: true}.Empty())
	assert.False(t, Scope{FacilityID: &f1}.Empty())
}

func ptr(s string) *string { return &s }
