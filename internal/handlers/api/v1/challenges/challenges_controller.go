// ===============================
// FILE: internal/handlers/api/v1/challenges/challenges_controller.go
// ===============================

package challenges

import (
	"net/http"

	"recyclehub/internal/contextutils"
	"recyclehub/internal/response"
	"recyclehub/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ChallengeController serves daily challenge progress and bonus claims
type ChallengeController struct {
	challenges      services.ChallengeService
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewChallengeController creates the controller
func NewChallengeController(
	challenges services.ChallengeService,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *ChallengeController {
	return &ChallengeController{
		challenges:      challenges,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// GetToday handles GET /api/v1/challenges/today
func (c *ChallengeController) GetToday(w http.ResponseWriter, r *http.Request) {
	progress, err := c.challenges.GetTodayProgress(r.Context(), contextutils.GetUserID(r.Context()))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, progress)
}

// ClaimBonus handles POST /api/v1/challenges/{id}/claim. The body is
// ignored; the amount always comes from the catalog.
func (c *ChallengeController) ClaimBonus(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	challengeID := mux.Vars(r)["id"]

	result, err := c.challenges.ClaimBonus(r.Context(), userID, challengeID, 0)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteResult(w, r, result)
}
