// ===============================
// FILE: internal/handlers/api/v1/admin/admin_controller.go
// ===============================

package admin

import (
	"net/http"
	"strings"

	"recyclehub/internal/contextutils"
	"recyclehub/internal/models"
	"recyclehub/internal/response"
	"recyclehub/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	defaultSubmissionLimit = 100
	maxSubmissionLimit     = 500
)

// AdminController serves review, credits and catalog management. Routes are
// mounted behind the admin role check.
type AdminController struct {
	submissions     services.SubmissionService
	approvals       services.ApprovalService
	ledger          services.PointLedger
	catalog         services.CatalogService
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewAdminController creates the controller
func NewAdminController(
	submissions services.SubmissionService,
	approvals services.ApprovalService,
	ledger services.PointLedger,
	catalog services.CatalogService,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *AdminController {
	return &AdminController{
		submissions:     submissions,
		approvals:       approvals,
		ledger:          ledger,
		catalog:         catalog,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// RejectRequest carries the optional rejection reason
type RejectRequest struct {
	Reason string `json:"reason"`
}

// ActiveRequest toggles a catalog item
type ActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// RestockRequest adds (or with a negative delta removes) stock
type RestockRequest struct {
	Delta int64 `json:"delta"`
}

// ===============================
// REVIEW
// ===============================

// ListSubmissions handles GET /api/v1/admin/submissions?status=&user_id=&limit=
func (c *AdminController) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &services.ListSubmissionsRequest{
		UserID: query.Get("user_id"),
		Limit:  response.QueryLimit(r, defaultSubmissionLimit, maxSubmissionLimit),
	}
	if status := query.Get("status"); status != "" {
		req.Status = models.StatusPtr(models.SubmissionStatus(strings.ToUpper(status)))
	}

	list, err := c.submissions.ListSubmissions(r.Context(), req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, list)
}

// Approve handles POST /api/v1/admin/submissions/{id}/approve
func (c *AdminController) Approve(w http.ResponseWriter, r *http.Request) {
	reviewer := contextutils.GetUserID(r.Context())
	submission, err := c.approvals.Approve(r.Context(), reviewer, mux.Vars(r)["id"])
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, submission)
}

// Reject handles POST /api/v1/admin/submissions/{id}/reject
func (c *AdminController) Reject(w http.ResponseWriter, r *http.Request) {
	var req RejectRequest
	if err := response.DecodeJSON(r, &req, true); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	reviewer := contextutils.GetUserID(r.Context())
	submission, err := c.approvals.Reject(r.Context(), reviewer, mux.Vars(r)["id"], req.Reason)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, submission)
}

// Credit handles POST /api/v1/admin/users/{id}/credit
func (c *AdminController) Credit(w http.ResponseWriter, r *http.Request) {
	req := services.CreditRequest{Reason: models.ActionAdmin, AutoApproved: true}
	if err := response.DecodeJSON(r, &req, false); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	req.UserID = mux.Vars(r)["id"]

	entry, err := c.ledger.Credit(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.logger.Info("Manual credit issued",
		zap.String("admin_id", contextutils.GetUserID(r.Context())),
		zap.String("user_id", req.UserID),
		zap.Int64("amount", req.Amount),
	)
	c.responseBuilder.WriteCreated(w, r, entry)
}

// ===============================
// CHALLENGE CATALOG
// ===============================

// ListChallenges handles GET /api/v1/admin/challenges
func (c *AdminController) ListChallenges(w http.ResponseWriter, r *http.Request) {
	list, err := c.catalog.ListChallenges(r.Context(), false)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, list)
}

// CreateChallenge handles POST /api/v1/admin/challenges
func (c *AdminController) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	var in services.ChallengeInput
	if err := response.DecodeJSON(r, &in, false); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	challenge, err := c.catalog.CreateChallenge(r.Context(), &in)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteCreated(w, r, challenge)
}

// UpdateChallenge handles PUT /api/v1/admin/challenges/{id}
func (c *AdminController) UpdateChallenge(w http.ResponseWriter, r *http.Request) {
	var in services.ChallengeInput
	if err := response.DecodeJSON(r, &in, false); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	challenge, err := c.catalog.UpdateChallenge(r.Context(), mux.Vars(r)["id"], &in)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, challenge)
}

// SetChallengeActive handles POST /api/v1/admin/challenges/{id}/active
func (c *AdminController) SetChallengeActive(w http.ResponseWriter, r *http.Request) {
	var req ActiveRequest
	if err := response.DecodeJSON(r, &req, false); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	id := mux.Vars(r)["id"]
	if err := c.catalog.SetChallengeActive(r.Context(), id, req.IsActive); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, map[string]interface{}{"id": id, "is_active": req.IsActive})
}

// ===============================
// REWARD CATALOG
// ===============================

// ListRewards handles GET /api/v1/admin/rewards
func (c *AdminController) ListRewards(w http.ResponseWriter, r *http.Request) {
	list, err := c.catalog.ListRewards(r.Context(), false)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, list)
}

// CreateReward handles POST /api/v1/admin/rewards
func (c *AdminController) CreateReward(w http.ResponseWriter, r *http.Request) {
	var in services.RewardInput
	if err := response.DecodeJSON(r, &in, false); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	reward, err := c.catalog.CreateReward(r.Context(), &in)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteCreated(w, r, reward)
}

// UpdateReward handles PUT /api/v1/admin/rewards/{id}
func (c *AdminController) UpdateReward(w http.ResponseWriter, r *http.Request) {
	var in services.RewardInput
	if err := response.DecodeJSON(r, &in, false); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	reward, err := c.catalog.UpdateReward(r.Context(), mux.Vars(r)["id"], &in)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, reward)
}

// SetRewardActive handles POST /api/v1/admin/rewards/{id}/active
func (c *AdminController) SetRewardActive(w http.ResponseWriter, r *http.Request) {
	var req ActiveRequest
	if err := response.DecodeJSON(r, &req, false); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	id := mux.Vars(r)["id"]
	if err := c.catalog.SetRewardActive(r.Context(), id, req.IsActive); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, map[string]interface{}{"id": id, "is_active": req.IsActive})
}

// Restock handles POST /api/v1/admin/rewards/{id}/restock
func (c *AdminController) Restock(w http.ResponseWriter, r *http.Request) {
	var req RestockRequest
	if err := response.DecodeJSON(r, &req, false); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	reward, err := c.catalog.Restock(r.Context(), mux.Vars(r)["id"], req.Delta)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, reward)
}
