package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SigNoz/marketplace-go-app/internal/apperr"
	"github.com/SigNoz/marketplace-go-app/internal/logger"
	"github.com/SigNoz/marketplace-go-app/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, "created", map[string]int{"id": 7})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	env := decode(t, rec)
	assert.Equal(t, StatusSuccess, env.Status)
	assert.Equal(t, http.StatusCreated, env.StatusCode)
	assert.Equal(t, "created", env.Message)
	assert.Nil(t, env.PageInfo)
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", apperr.NotFound("shop not found"), http.StatusNotFound, "shop not found"},
		{"wrapped conflict", fmt.Errorf("failed to add: %w", apperr.Conflict("already added")), http.StatusConflict, "already added"},
		{"forbidden", apperr.Forbidden("nope"), http.StatusForbidden, "nope"},
		{"unauthorized", apperr.Unauthorized("no token"), http.StatusUnauthorized, "no token"},
		{"internal", errors.New("dial tcp: connection refused"), http.StatusInternalServerError, InternalMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			Error(rec, req, logger.NewNop(), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			env := decode(t, rec)
			assert.Equal(t, StatusError, env.Status)
			assert.Equal(t, tt.status, env.StatusCode)
			assert.Equal(t, tt.message, env.Message)
		})
	}
}

func TestErrorFields(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	Error(rec, req, logger.NewNop(), apperr.ValidationFields("invalid input", map[string]string{"email": "must be a valid email"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, map[string]string{"email": "must be a valid email"}, env.Errors)
}

func TestPaged(t *testing.T) {
	log := logger.NewNop()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/marketplace/products?page=2&q=x", nil)
	Paged(rec, req, log, "ok", []int{1}, 20, models.Page{Number: 2, Size: 8})

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	require.NotNil(t, env.PageInfo)
	assert.Equal(t, int64(20), env.PageInfo.Count)
	require.NotNil(t, env.PageInfo.Next)
	assert.Equal(t, "/api/v1/marketplace/products?page=3&q=x", *env.PageInfo.Next)
	require.NotNil(t, env.PageInfo.Previous)
	assert.Equal(t, "/api/v1/marketplace/products?page=1&q=x", *env.PageInfo.Previous)

	rec = httptest.NewRecorder()
	Paged(rec, req, log, "ok", []int{}, 0, models.Page{Number: 1, Size: 8})
	env = decode(t, rec)
	assert.Nil(t, env.PageInfo.Next)
	assert.Nil(t, env.PageInfo.Previous)

	rec = httptest.NewRecorder()
	Paged(rec, req, log, "ok", []int{}, 8, models.Page{Number: 2, Size: 8})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
