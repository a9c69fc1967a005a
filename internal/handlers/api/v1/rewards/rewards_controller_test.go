package rewards

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
	"recyclehub/internal/response"
	"recyclehub/internal/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRedemptionService struct {
	userID string
	req    *services.RedeemRequest
	result *services.OperationResult
	limit  int
}

func (m *mockRedemptionService) Redeem(ctx context.Context, userID string, req *services.RedeemRequest) (*services.OperationResult, error) {
	m.userID, m.req = userID, req
	return m.result, nil
}

func (m *mockRedemptionService) ListRedemptions(ctx context.Context, userID string, limit int) ([]*models.Redemption, error) {
	m.userID, m.limit = userID, limit
	return []*models.Redemption{}, nil
}

func (m *mockRedemptionService) UseVoucher(ctx context.Context, userID, redemptionID string) (*models.Redemption, error) {
	if redemptionID != "v1" {
		return nil, services.NewNotFoundError("voucher not found")
	}
	now := time.Now()
	return &models.Redemption{ID: redemptionID, UserID: userID, Status: models.RedemptionUsed, UsedAt: &now}, nil
}

func (m *mockRedemptionService) ExpireVouchers(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type mockCatalog struct {
	services.CatalogService
	activeOnly bool
}

func (m *mockCatalog) ListRewards(ctx context.Context, activeOnly bool) ([]*models.Reward, error) {
	m.activeOnly = activeOnly
	return []*models.Reward{{ID: "bottle", Name: "Bottle", Points: 20, Stock: 3, IsActive: true}}, nil
}

func newController(redemptions *mockRedemptionService, catalog *mockCatalog) *RewardController {
	return NewRewardController(catalog, redemptions, zap.NewNop(),
		response.NewBuilder(response.DefaultConfig(), zap.NewNop()))
}

func userRequest(method, body string, vars map[string]string) *http.Request {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req = req.WithContext(contextutils.WithIdentity(req.Context(), "alice", "user"))
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

func TestListRewards_ActiveOnly(t *testing.T) {
	catalog := &mockCatalog{}
	c := newController(&mockRedemptionService{}, catalog)
	rec := httptest.NewRecorder()

	c.ListRewards(rec, userRequest(http.MethodGet, "", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, catalog.activeOnly)
}

func TestRedeem(t *testing.T) {
	tests := []struct {
		name   string
		result *services.OperationResult
		status int
	}{
		{"success", &services.OperationResult{Success: true, Message: "Reward redeemed!"}, http.StatusOK},
		{"insufficient points", &services.OperationResult{Message: "insufficient points: need 20, have 15", Code: services.CodeInsufficientPoints}, http.StatusUnprocessableEntity},
		{"out of stock", &services.OperationResult{Message: "out of stock", Code: services.CodeOutOfStock}, http.StatusUnprocessableEntity},
		{"reward gone", &services.OperationResult{Message: "reward no longer exists", Code: services.ErrorTypeNotFound}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			redemptions := &mockRedemptionService{result: tt.result}
			c := newController(redemptions, &mockCatalog{})
			rec := httptest.NewRecorder()

			c.Redeem(rec, userRequest(http.MethodPost, `{"points":20}`, map[string]string{"id": "bottle"}))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "alice", redemptions.userID)
			require.NotNil(t, redemptions.req)
			assert.Equal(t, "bottle", redemptions.req.RewardID)
			assert.Equal(t, int64(20), redemptions.req.Points)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.result.Success, body["success"])
			data := body["data"].(map[string]interface{})
			assert.Equal(t, tt.result.Message, data["message"])
		})
	}
}

func TestRedeem_EmptyBody(t *testing.T) {
	redemptions := &mockRedemptionService{result: &services.OperationResult{Success: true}}
	c := newController(redemptions, &mockCatalog{})
	rec := httptest.NewRecorder()

	c.Redeem(rec, userRequest(http.MethodPost, "", map[string]string{"id": "bottle"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, redemptions.req.Points)
}

func TestListRedemptions_ClampsLimit(t *testing.T) {
	redemptions := &mockRedemptionService{}
	c := newController(redemptions, &mockCatalog{})
	rec := httptest.NewRecorder()

	req := userRequest(http.MethodGet, "", nil)
	req.URL.RawQuery = "limit=9999"
	c.ListRedemptions(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, maxRedemptionLimit, redemptions.limit)
}

func TestUseVoucher(t *testing.T) {
	c := newController(&mockRedemptionService{}, &mockCatalog{})

	rec := httptest.NewRecorder()
	c.UseVoucher(rec, userRequest(http.MethodPost, "", map[string]string{"id": "v1"}))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	c.UseVoucher(rec, userRequest(http.MethodPost, "", map[string]string{"id": "other"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
