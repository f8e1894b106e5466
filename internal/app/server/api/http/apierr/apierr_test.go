package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medsync/internal/domain/errs"
)

func TestFromDomain(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "bad request", err: errs.BadRequest("deviceId is required"), status: http.StatusBadRequest},
		{name: "unknown collection", err: fmt.Errorf("rules: %w", errs.ErrUnknownCollection), status: http.StatusBadRequest},
		{name: "fatal", err: errors.New("database is down"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromDomain(tt.err)
			var se huma.StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.GetStatus())
			assert.Contains(t, err.Error(), tt.err.Error())
		})
	}

	assert.NoError(t, FromDomain(nil))
}
