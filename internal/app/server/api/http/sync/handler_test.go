package sync

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"medsync/internal/domain/errs"
	"medsync/internal/domain/sync"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Run(ctx context.Context, req sync.Request) (*sync.Response, error) {
	args := m.Called(ctx, req)
	// Безопасное приведение nil к указателю
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.Response), args.Error(1)
}

func newAPI(t *testing.T, svc sync.Servicer) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewHandler(svc, slog.Default(), huma.Middlewares{}).SetupRoutes(api)
	return api
}

func TestHandler_pull(t *testing.T) {
	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	req := sync.Request{DeviceID: "dev-1", UserID: "u-1", Collections: []string{"patients"}}

	svc := new(MockService)
	svc.On("Run", mock.Anything, req).Return(&sync.Response{
		Success:       true,
		SyncTimestamp: ts,
		Results: map[string]*sync.CollectionResult{
			"patients": {Success: true, Updated: []sync.ChangeRecord{{ID: "p1"}}, Deleted: []sync.TombstoneRecord{}, PagesFetched: 1},
		},
		NextSyncRecommended: ts.Add(5 * time.Minute),
	}, nil)

	resp := newAPI(t, svc).Post("/api/sync/pull", map[string]any{
		"deviceId":    "dev-1",
		"userId":      "u-1",
		"collections": []string{"patients"},
	})

	require.Equal(t, http.StatusOK, resp.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Nil(t, body["compression"])
	results := body["results"].(map[string]any)
	patients := results["patients"].(map[string]any)
	assert.Equal(t, false, patients["hasMore"])
	assert.Nil(t, patients["nextCursor"])
	svc.AssertExpectations(t)
}

func TestHandler_pull_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "missing ids", err: errs.BadRequest("deviceId and userId are required"), status: http.StatusBadRequest},
		{name: "unexpected", err: errors.New("permission lookup exploded"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Run", mock.Anything, mock.Anything).Return(nil, tt.err)

			resp := newAPI(t, svc).Post("/api/sync/pull", map[string]any{})

			assert.Equal(t, tt.status, resp.Code)
			assert.Contains(t, resp.Body.String(), tt.err.Error())
			assert.NotContains(t, resp.Body.String(), "results")
		})
	}
}

func TestHandler_pull_ResultsShape(t *testing.T) {
	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	gzip := sync.CompressionGzipBase64

	tests := []struct {
		name string
		resp *sync.Response
		want string
	}{
		{
			name: "empty results kept",
			resp: &sync.Response{Success: true, SyncTimestamp: ts, Results: map[string]*sync.CollectionResult{}},
			want: `"results":{}`,
		},
		{
			name: "compressed results null",
			resp: &sync.Response{Success: true, SyncTimestamp: ts, CompressedResults: "H4sI", Compression: &gzip},
			want: `"results":null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Run", mock.Anything, mock.Anything).Return(tt.resp, nil)

			resp := newAPI(t, svc).Post("/api/sync/pull", map[string]any{"deviceId": "dev-1", "userId": "u-1"})

			require.Equal(t, http.StatusOK, resp.Code)
			assert.Contains(t, resp.Body.String(), tt.want)
		})
	}
}
