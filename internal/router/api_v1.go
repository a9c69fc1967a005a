package router

import (
	"net/http"

	"recyclehub/internal/handlers/api/v1/admin"
	"recyclehub/internal/handlers/api/v1/challenges"
	"recyclehub/internal/handlers/api/v1/rewards"
	"recyclehub/internal/handlers/api/v1/submissions"
	"recyclehub/internal/handlers/api/v1/uploads"

	"github.com/gorilla/mux"
)

// AddAPIv1Routes mounts the ledger API. Every route needs a bearer token;
// /admin additionally needs the admin role.
func AddAPIv1Routes(api *mux.Router, deps *Dependencies) {
	sc := deps.Services
	logger := deps.Logger
	builder := deps.ResponseBuilder

	submissionController := submissions.NewSubmissionController(sc.Submissions, sc.Ledger, logger.Named("submissions_api"), builder)
	challengeController := challenges.NewChallengeController(sc.Challenges, logger.Named("challenges_api"), builder)
	rewardController := rewards.NewRewardController(sc.Catalog, sc.Redemptions, logger.Named("rewards_api"), builder)
	uploadController := uploads.NewUploadController(deps.Storage, deps.MaxUploadSize, logger.Named("uploads_api"), builder)
	adminController := admin.NewAdminController(sc.Submissions, sc.Approvals, sc.Ledger, sc.Catalog, logger.Named("admin_api"), builder)

	api.Use(deps.Auth.RequireAuth)

	// ===============================
	// USER ENDPOINTS
	// ===============================

	api.HandleFunc("/submissions", submissionController.CreateSubmission).Methods(http.MethodPost)
	api.HandleFunc("/me/history", submissionController.GetHistory).Methods(http.MethodGet)
	api.HandleFunc("/me/balance", submissionController.GetBalance).Methods(http.MethodGet)

	api.HandleFunc("/challenges/today", challengeController.GetToday).Methods(http.MethodGet)
	api.HandleFunc("/challenges/{id}/claim", challengeController.ClaimBonus).Methods(http.MethodPost)

	api.HandleFunc("/rewards", rewardController.ListRewards).Methods(http.MethodGet)
	api.HandleFunc("/rewards/{id}/redeem", rewardController.Redeem).Methods(http.MethodPost)
	api.HandleFunc("/me/redemptions", rewardController.ListRedemptions).Methods(http.MethodGet)
	api.HandleFunc("/me/redemptions/{id}/use", rewardController.UseVoucher).Methods(http.MethodPost)

	api.HandleFunc("/uploads", uploadController.UploadImage).Methods(http.MethodPost)

	// ===============================
	// ADMIN ENDPOINTS
	// ===============================

	adm := api.PathPrefix("/admin").Subrouter()
	adm.Use(deps.Auth.RequireAdmin)

	adm.HandleFunc("/submissions", adminController.ListSubmissions).Methods(http.MethodGet)
	adm.HandleFunc("/submissions/{id}/approve", adminController.Approve).Methods(http.MethodPost)
	adm.HandleFunc("/submissions/{id}/reject", adminController.Reject).Methods(http.MethodPost)
	adm.HandleFunc("/users/{id}/credit", adminController.Credit).Methods(http.MethodPost)

	adm.HandleFunc("/challenges", adminController.ListChallenges).Methods(http.MethodGet)
	adm.HandleFunc("/challenges", adminController.CreateChallenge).Methods(http.MethodPost)
	adm.HandleFunc("/challenges/{id}", adminController.UpdateChallenge).Methods(http.MethodPut)
	adm.HandleFunc("/challenges/{id}/active", adminController.SetChallengeActive).Methods(http.MethodPost)

	adm.HandleFunc("/rewards", adminController.ListRewards).Methods(http.MethodGet)
	adm.HandleFunc("/rewards", adminController.CreateReward).Methods(http.MethodPost)
	adm.HandleFunc("/rewards/{id}", adminController.UpdateReward).Methods(http.MethodPut)
	adm.HandleFunc("/rewards/{id}/active", adminController.SetRewardActive).Methods(http.MethodPost)
	adm.HandleFunc("/rewards/{id}/restock", adminController.Restock).Methods(http.MethodPost)
}
