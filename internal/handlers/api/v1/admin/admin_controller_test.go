package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"recyclehub/internal/contextutils"
	"recyclehub/internal/models"
	"recyclehub/internal/repositories"
	"recyclehub/internal/response"
	"recyclehub/internal/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockSubmissionService records the list request it was given
type mockSubmissionService struct {
	lastList *services.ListSubmissionsRequest
}

func (m *mockSubmissionService) CreateSubmission(ctx context.Context, req *services.CreateSubmissionRequest) (string, error) {
	return "", nil
}

func (m *mockSubmissionService) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	return nil, nil
}

func (m *mockSubmissionService) ListUserHistory(ctx context.Context, userID string, limit int) ([]*models.HistoryEntry, error) {
	return nil, nil
}

func (m *mockSubmissionService) ListSubmissions(ctx context.Context, req *services.ListSubmissionsRequest) ([]*models.Submission, error) {
	m.lastList = req
	return []*models.Submission{{ID: "s1", UserID: "alice", Points: 5, Status: models.StatusPtr(models.StatusPending)}}, nil
}

type mockApprovalService struct {
	reviewer string
	reason   string
	err      error
}

func (m *mockApprovalService) Approve(ctx context.Context, reviewerID, submissionID string) (*models.Submission, error) {
	m.reviewer = reviewerID
	if m.err != nil {
		return nil, m.err
	}
	return &models.Submission{ID: submissionID, Status: models.StatusPtr(models.StatusApproved)}, nil
}

func (m *mockApprovalService) Reject(ctx context.Context, reviewerID, submissionID, reason string) (*models.Submission, error) {
	m.reviewer = reviewerID
	m.reason = reason
	if m.err != nil {
		return nil, m.err
	}
	return &models.Submission{ID: submissionID, Status: models.StatusPtr(models.StatusRejected)}, nil
}

type mockLedger struct {
	lastCredit *services.CreditRequest
}

func (m *mockLedger) GetBalance(ctx context.Context, userID string) (*services.Balance, error) {
	return &services.Balance{UserID: userID}, nil
}

func (m *mockLedger) Credit(ctx context.Context, req *services.CreditRequest) (*models.HistoryEntry, error) {
	m.lastCredit = req
	return &models.HistoryEntry{ID: "h1", UserID: req.UserID, Action: req.Reason, Points: req.Amount}, nil
}

func (m *mockLedger) EnsureAccount(ctx context.Context, tx repositories.Querier, userID string) (*models.User, error) {
	return nil, nil
}

func (m *mockLedger) LockAccount(ctx context.Context, tx repositories.Querier, userID string) (*models.User, error) {
	return nil, nil
}

func (m *mockLedger) Apply(ctx context.Context, tx repositories.Querier, mv services.Movement) error {
	return nil
}

// mockCatalog only implements what the admin routes under test reach
type mockCatalog struct {
	services.CatalogService
	restockDelta int64
	activeID     string
	active       bool
}

func (m *mockCatalog) ListRewards(ctx context.Context, activeOnly bool) ([]*models.Reward, error) {
	return []*models.Reward{{ID: "r1", IsActive: activeOnly}}, nil
}

func (m *mockCatalog) Restock(ctx context.Context, id string, delta int64) (*models.Reward, error) {
	m.restockDelta = delta
	if id != "r1" {
		return nil, services.NewNotFoundError("reward not found")
	}
	return &models.Reward{ID: id, Stock: 10 + delta}, nil
}

func (m *mockCatalog) SetChallengeActive(ctx context.Context, id string, active bool) error {
	m.activeID, m.active = id, active
	return nil
}

func (m *mockCatalog) CreateChallenge(ctx context.Context, in *services.ChallengeInput) (*models.Challenge, error) {
	return &models.Challenge{ID: "c1", Title: in.Title, TargetCount: 3, BonusPoints: in.BonusPoints, CreatedAt: time.Unix(0, 0)}, nil
}

type fixture struct {
	controller  *AdminController
	submissions *mockSubmissionService
	approvals   *mockApprovalService
	ledger      *mockLedger
	catalog     *mockCatalog
}

func newFixture() *fixture {
	f := &fixture{
		submissions: &mockSubmissionService{},
		approvals:   &mockApprovalService{},
		ledger:      &mockLedger{},
		catalog:     &mockCatalog{},
	}
	f.controller = NewAdminController(f.submissions, f.approvals, f.ledger, f.catalog,
		zap.NewNop(), response.NewBuilder(response.DefaultConfig(), zap.NewNop()))
	return f
}

func adminRequest(method, target, body string, vars map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(contextutils.WithIdentity(req.Context(), "root", "admin"))
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestListSubmissions_ParsesFilters(t *testing.T) {
	f := newFixture()
	rec := httptest.NewRecorder()

	f.controller.ListSubmissions(rec, adminRequest(http.MethodGet, "/api/v1/admin/submissions?status=pending&user_id=alice&limit=1000", "", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.submissions.lastList)
	require.NotNil(t, f.submissions.lastList.Status)
	assert.Equal(t, models.StatusPending, *f.submissions.lastList.Status)
	assert.Equal(t, "alice", f.submissions.lastList.UserID)
	assert.Equal(t, maxSubmissionLimit, f.submissions.lastList.Limit)
}

func TestApprove_UsesCallerAsReviewer(t *testing.T) {
	f := newFixture()
	rec := httptest.NewRecorder()

	f.controller.Approve(rec, adminRequest(http.MethodPost, "/api/v1/admin/submissions/s1/approve", "", map[string]string{"id": "s1"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "root", f.approvals.reviewer)
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "APPROVED", data["status"])
}

func TestApprove_AlreadyTerminal(t *testing.T) {
	f := newFixture()
	f.approvals.err = services.NewInvalidStateError("submission already approved")
	rec := httptest.NewRecorder()

	f.controller.Approve(rec, adminRequest(http.MethodPost, "/", "", map[string]string{"id": "s1"}))

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "submission already approved", body["error"].(map[string]interface{})["message"])
}

func TestReject_ReasonIsOptional(t *testing.T) {
	f := newFixture()

	rec := httptest.NewRecorder()
	f.controller.Reject(rec, adminRequest(http.MethodPost, "/", "", map[string]string{"id": "s1"}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.approvals.reason)

	rec = httptest.NewRecorder()
	f.controller.Reject(rec, adminRequest(http.MethodPost, "/", `{"reason":"blurry photo"}`, map[string]string{"id": "s1"}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "blurry photo", f.approvals.reason)
}

func TestCredit(t *testing.T) {
	f := newFixture()
	rec := httptest.NewRecorder()

	f.controller.Credit(rec, adminRequest(http.MethodPost, "/", `{"amount":25,"title":"Cleanup day"}`, map[string]string{"id": "bob"}))

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, f.ledger.lastCredit)
	assert.Equal(t, "bob", f.ledger.lastCredit.UserID)
	assert.Equal(t, models.ActionAdmin, f.ledger.lastCredit.Reason)
	assert.True(t, f.ledger.lastCredit.AutoApproved)
	assert.Equal(t, int64(25), f.ledger.lastCredit.Amount)
}

func TestCredit_RejectsUnknownFields(t *testing.T) {
	f := newFixture()
	rec := httptest.NewRecorder()

	f.controller.Credit(rec, adminRequest(http.MethodPost, "/", `{"amount":25,"user_id":"mallory"}`, map[string]string{"id": "bob"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, f.ledger.lastCredit)
}

func TestListRewards_IncludesInactive(t *testing.T) {
	f := newFixture()
	rec := httptest.NewRecorder()

	f.controller.ListRewards(rec, adminRequest(http.MethodGet, "/", "", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody(t, rec)["data"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, false, list[0].(map[string]interface{})["is_active"])
}

func TestRestock(t *testing.T) {
	f := newFixture()

	rec := httptest.NewRecorder()
	f.controller.Restock(rec, adminRequest(http.MethodPost, "/", `{"delta":5}`, map[string]string{"id": "r1"}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), f.catalog.restockDelta)

	rec = httptest.NewRecorder()
	f.controller.Restock(rec, adminRequest(http.MethodPost, "/", `{"delta":5}`, map[string]string{"id": "missing"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	f.controller.Restock(rec, adminRequest(http.MethodPost, "/", `not json`, map[string]string{"id": "r1"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetChallengeActive(t *testing.T) {
	f := newFixture()
	f.catalog.active = true
	rec := httptest.NewRecorder()

	f.controller.SetChallengeActive(rec, adminRequest(http.MethodPost, "/", `{"is_active":false}`, map[string]string{"id": "c1"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c1", f.catalog.activeID)
	assert.False(t, f.catalog.active)
}

func TestCreateChallenge(t *testing.T) {
	f := newFixture()
	rec := httptest.NewRecorder()

	f.controller.CreateChallenge(rec, adminRequest(http.MethodPost, "/", `{"title":"Recycle 3 items","target_count":"3","bonus_points":15}`, nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "c1", data["id"])
}
