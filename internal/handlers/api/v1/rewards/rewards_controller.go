// ===============================
// FILE: internal/handlers/api/v1/rewards/rewards_controller.go
// ===============================

package rewards

import (
	"net/http"

	"recyclehub/internal/contextutils"
	"recyclehub/internal/response"
	"recyclehub/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	defaultRedemptionLimit = 50
	maxRedemptionLimit     = 200
)

// RewardController serves the reward catalog, redemptions and vouchers
type RewardController struct {
	catalog         services.CatalogService
	redemptions     services.RedemptionService
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewRewardController creates the controller
func NewRewardController(
	catalog services.CatalogService,
	redemptions services.RedemptionService,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *RewardController {
	return &RewardController{
		catalog:         catalog,
		redemptions:     redemptions,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// ListRewards handles GET /api/v1/rewards
func (c *RewardController) ListRewards(w http.ResponseWriter, r *http.Request) {
	rewards, err := c.catalog.ListRewards(r.Context(), true)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, rewards)
}

// Redeem handles POST /api/v1/rewards/{id}/redeem
func (c *RewardController) Redeem(w http.ResponseWriter, r *http.Request) {
	var req services.RedeemRequest
	if err := response.DecodeJSON(r, &req, true); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	req.RewardID = mux.Vars(r)["id"]

	result, err := c.redemptions.Redeem(r.Context(), contextutils.GetUserID(r.Context()), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteResult(w, r, result)
}

// ListRedemptions handles GET /api/v1/me/redemptions
func (c *RewardController) ListRedemptions(w http.ResponseWriter, r *http.Request) {
	limit := response.QueryLimit(r, defaultRedemptionLimit, maxRedemptionLimit)

	list, err := c.redemptions.ListRedemptions(r.Context(), contextutils.GetUserID(r.Context()), limit)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, list)
}

// UseVoucher handles POST /api/v1/me/redemptions/{id}/use
func (c *RewardController) UseVoucher(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	redemption, err := c.redemptions.UseVoucher(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, redemption)
}
