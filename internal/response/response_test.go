package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recyclehub/internal/contextutils"
	"recyclehub/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestBuilder() *Builder {
	b := NewBuilder(DefaultConfig(), zap.NewNop())
	b.now = func() time.Time { return time.Unix(1700000000, 0) }
	return b
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteSuccess_Envelope(t *testing.T) {
	b := newTestBuilder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/balance", nil)
	req = req.WithContext(contextutils.WithRequestID(req.Context(), "req-1"))
	rec := httptest.NewRecorder()

	b.WriteSuccess(rec, req, map[string]int{"current_points": 15})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "req-1", body["request_id"])
	assert.Equal(t, float64(1700000000), body["timestamp"])
	assert.Equal(t, "v1", body["version"])
	assert.Equal(t, float64(15), body["data"].(map[string]interface{})["current_points"])
	assert.NotContains(t, body, "error")
}

func TestWriteError_StatusPerType(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{services.NewValidationError("bad", nil), http.StatusBadRequest},
		{services.NewUnauthorizedError("who"), http.StatusUnauthorized},
		{services.NewForbiddenError("admins only"), http.StatusForbidden},
		{services.NewNotFoundError("gone"), http.StatusNotFound},
		{services.NewInvalidStateError("submission already approved"), http.StatusConflict},
		{services.NewConflictError("busy", services.CodeTransactionConflict), http.StatusConflict},
		{services.NewBusinessError("out of stock", services.CodeOutOfStock), http.StatusUnprocessableEntity},
		{services.NewServiceUnavailableError("down"), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	b := newTestBuilder()
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		b.WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
		assert.Equal(t, false, decode(t, rec)["success"])
	}
}

func TestWriteError_MasksInternalErrors(t *testing.T) {
	b := newTestBuilder()
	rec := httptest.NewRecorder()
	internal := services.NewInternalError("failed to list rewards")
	internal.Cause = errors.New("pq: relation does not exist")

	b.WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), internal)

	detail := decode(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, services.ErrorTypeInternal, detail["type"])
	assert.Equal(t, "An internal error occurred", detail["message"])
}

func TestWriteResult(t *testing.T) {
	b := newTestBuilder()

	rec := httptest.NewRecorder()
	b.WriteResult(rec, httptest.NewRequest(http.MethodPost, "/", nil), &services.OperationResult{
		Success: false,
		Message: "insufficient points: need 20, have 15",
		Code:    services.CodeInsufficientPoints,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	detail := body["error"].(map[string]interface{})
	assert.Equal(t, services.ErrorTypeBusiness, detail["type"])
	assert.Equal(t, services.CodeInsufficientPoints, detail["code"])
	assert.Equal(t, "insufficient points: need 20, have 15", body["data"].(map[string]interface{})["message"])

	rec = httptest.NewRecorder()
	b.WriteResult(rec, httptest.NewRequest(http.MethodPost, "/", nil), &services.OperationResult{
		Success: false, Message: "bonus already claimed", Code: services.ErrorTypeInvalidState,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	b.WriteResult(rec, httptest.NewRequest(http.MethodPost, "/", nil), &services.OperationResult{
		Success: true, Message: "+5 bonus points!",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])
}
