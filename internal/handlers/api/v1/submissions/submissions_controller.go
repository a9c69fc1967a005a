// ===============================
// FILE: internal/handlers/api/v1/submissions/submissions_controller.go
// ===============================

package submissions

import (
	"net/http"

	"recyclehub/internal/contextutils"
	"recyclehub/internal/response"
	"recyclehub/internal/services"

	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// SubmissionController serves a user's submissions, history and balance
type SubmissionController struct {
	submissions     services.SubmissionService
	ledger          services.PointLedger
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewSubmissionController creates the controller
func NewSubmissionController(
	submissions services.SubmissionService,
	ledger services.PointLedger,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *SubmissionController {
	return &SubmissionController{
		submissions:     submissions,
		ledger:          ledger,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// CreateSubmission handles POST /api/v1/submissions
func (c *SubmissionController) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	var req services.CreateSubmissionRequest
	if err := response.DecodeJSON(r, &req, false); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	req.UserID = contextutils.GetUserID(r.Context())

	id, err := c.submissions.CreateSubmission(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteCreated(w, r, map[string]string{
		"id":     id,
		"status": "PENDING",
	})
}

// GetHistory handles GET /api/v1/me/history
func (c *SubmissionController) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := response.QueryLimit(r, defaultHistoryLimit, maxHistoryLimit)

	history, err := c.submissions.ListUserHistory(r.Context(), contextutils.GetUserID(r.Context()), limit)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, history)
}

// GetBalance handles GET /api/v1/me/balance
func (c *SubmissionController) GetBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := c.ledger.GetBalance(r.Context(), contextutils.GetUserID(r.Context()))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, balance)
}
