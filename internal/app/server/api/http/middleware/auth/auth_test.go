package auth

import (
	"context"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"
)

type pingOutput struct {
	Body struct {
		OK bool `json:"ok"`
	}
}

func register(api huma.API, a *Auth) {
	huma.Register(api, huma.Operation{
		OperationID: "ping",
		Method:      http.MethodPost,
		Path:        "/ping",
		Middlewares: huma.Middlewares{a.Middleware()},
	}, func(_ context.Context, _ *struct{}) (*pingOutput, error) {
		out := &pingOutput{}
		out.Body.OK = true
		return out, nil
	})
}

func TestAuth_Middleware(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		header []any
		status int
	}{
		{name: "disabled", token: "", status: http.StatusOK},
		{name: "valid token", token: "s3cret", header: []any{"Authorization: Bearer s3cret"}, status: http.StatusOK},
		{name: "missing header", token: "s3cret", status: http.StatusUnauthorized},
		{name: "wrong token", token: "s3cret", header: []any{"Authorization: Bearer guess"}, status: http.StatusUnauthorized},
		{name: "wrong scheme", token: "s3cret", header: []any{"Authorization: Basic s3cret"}, status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, api := humatest.New(t)
			register(api, New(tt.token, slog.Default()))

			resp := api.Post("/ping", tt.header...)
			assert.Equal(t, tt.status, resp.Code)
			if tt.status == http.StatusUnauthorized {
				assert.Contains(t, resp.Body.String(), "Unauthorized")
			}
		})
	}
}
