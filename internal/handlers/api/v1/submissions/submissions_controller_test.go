package submissions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"recyclehub/internal/contextutils"
	"recyclehub/internal/models"
	"recyclehub/internal/response"
	"recyclehub/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSubmissionService struct {
	services.SubmissionService
	created *services.CreateSubmissionRequest
	userID  string
	limit   int
}

func (m *mockSubmissionService) CreateSubmission(ctx context.Context, req *services.CreateSubmissionRequest) (string, error) {
	if req.Points <= 0 {
		return "", services.NewValidationError("invalid submission", nil)
	}
	m.created = req
	return "sub-1", nil
}

func (m *mockSubmissionService) ListUserHistory(ctx context.Context, userID string, limit int) ([]*models.HistoryEntry, error) {
	m.userID, m.limit = userID, limit
	return []*models.HistoryEntry{{ID: "h1", UserID: userID, Action: models.ActionRecycle, Points: 5}}, nil
}

type mockLedger struct {
	services.PointLedger
	userID string
}

func (m *mockLedger) GetBalance(ctx context.Context, userID string) (*services.Balance, error) {
	m.userID = userID
	return &services.Balance{UserID: userID, CurrentPoints: 42, TotalRecycled: 3}, nil
}

func newController(subs *mockSubmissionService, ledger *mockLedger) *SubmissionController {
	return NewSubmissionController(subs, ledger, zap.NewNop(),
		response.NewBuilder(response.DefaultConfig(), zap.NewNop()))
}

func userRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(contextutils.WithIdentity(req.Context(), "alice", "user"))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateSubmission(t *testing.T) {
	subs := &mockSubmissionService{}
	c := newController(subs, &mockLedger{})
	rec := httptest.NewRecorder()

	c.CreateSubmission(rec, userRequest(http.MethodPost, "/",
		`{"points":5,"image_url":"https://cdn.example.com/a.jpg","title":"Bottles"}`))

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, subs.created)
	assert.Equal(t, "alice", subs.created.UserID, "the owner comes from the token")
	assert.Equal(t, int64(5), subs.created.Points)

	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "sub-1", data["id"])
	assert.Equal(t, "PENDING", data["status"])
}

func TestCreateSubmission_BadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"malformed json", `{"points":`},
		{"unknown field", `{"points":5,"image_url":"https://x.io/a.jpg","user_id":"mallory"}`},
		{"zero points", `{"points":0,"image_url":"https://x.io/a.jpg"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := &mockSubmissionService{}
			c := newController(subs, &mockLedger{})
			rec := httptest.NewRecorder()

			c.CreateSubmission(rec, userRequest(http.MethodPost, "/", tt.body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, subs.created)
			assert.Equal(t, false, decode(t, rec)["success"])
		})
	}
}

func TestGetHistory_Limit(t *testing.T) {
	tests := []struct {
		target string
		want   int
	}{
		{"/", defaultHistoryLimit},
		{"/?limit=10", 10},
		{"/?limit=9999", maxHistoryLimit},
		{"/?limit=abc", defaultHistoryLimit},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			subs := &mockSubmissionService{}
			c := newController(subs, &mockLedger{})
			rec := httptest.NewRecorder()

			c.GetHistory(rec, userRequest(http.MethodGet, tt.target, ""))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "alice", subs.userID)
			assert.Equal(t, tt.want, subs.limit)
		})
	}
}

func TestGetBalance(t *testing.T) {
	ledger := &mockLedger{}
	c := newController(&mockSubmissionService{}, ledger)
	rec := httptest.NewRecorder()

	c.GetBalance(rec, userRequest(http.MethodGet, "/", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", ledger.userID)
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(42), data["current_points"])
	assert.Equal(t, float64(3), data["total_recycled"])
}
