package docs

// HealthCheck godoc
// @Summary Health check endpoint
// @Description Reports the ledger store, catalog cache and event bus. 503 only when the store is down.
// @Tags System
// @Produce json
// @Success 200 {object} APIResponse
// @Failure 503 {object} APIResponse
// @Router /health [get]
func _() {}

// ===============================
// SUBMISSIONS
// ===============================

// CreateSubmission godoc
// @Summary Submit a recycling claim
// @Description Records a PENDING entry. No points move until an admin approves it.
// @Tags Submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateSubmissionRequest true "Claim"
// @Success 201 {object} APIResponse
// @Failure 400 {object} APIResponse "Validation error"
// @Failure 401 {object} APIResponse
// @Router /submissions [post]
func _() {}

// GetHistory godoc
// @Summary List the caller's ledger history
// @Tags Submissions
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max entries (default 50, max 200)"
// @Success 200 {object} APIResponse{data=[]HistoryEntry}
// @Router /me/history [get]
func _() {}

// GetBalance godoc
// @Summary Get the caller's balance
// @Description An account that has never been credited reads as zero.
// @Tags Submissions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse{data=Balance}
// @Router /me/balance [get]
func _() {}

// ===============================
// CHALLENGES
// ===============================

// GetTodayProgress godoc
// @Summary Get today's challenge progress
// @Tags Challenges
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse{data=TodayProgress}
// @Router /challenges/today [get]
func _() {}

// ClaimBonus godoc
// @Summary Claim a completed challenge's bonus
// @Description Pays the catalog bonus at most once per challenge per day. No request body is read.
// @Tags Challenges
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Challenge ID"
// @Success 200 {object} APIResponse{data=OperationResult}
// @Failure 404 {object} APIResponse{data=OperationResult} "No progress today or unknown challenge"
// @Failure 409 {object} APIResponse{data=OperationResult} "Not completed or already claimed"
// @Router /challenges/{id}/claim [post]
func _() {}

// ===============================
// REWARDS
// ===============================

// ListRewards godoc
// @Summary List active rewards
// @Tags Rewards
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse{data=[]Reward}
// @Router /rewards [get]
func _() {}

// Redeem godoc
// @Summary Redeem a reward for a voucher
// @Description Deducts the live catalog price and one unit of stock atomically.
// @Tags Rewards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reward ID"
// @Success 200 {object} APIResponse{data=OperationResult}
// @Failure 404 {object} APIResponse{data=OperationResult} "Reward or account missing"
// @Failure 422 {object} APIResponse{data=OperationResult} "Insufficient points or out of stock"
// @Router /rewards/{id}/redeem [post]
func _() {}

// ListRedemptions godoc
// @Summary List the caller's vouchers
// @Tags Rewards
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max entries (default 50, max 200)"
// @Success 200 {object} APIResponse{data=[]Redemption}
// @Router /me/redemptions [get]
func _() {}

// UseVoucher godoc
// @Summary Mark a voucher used
// @Tags Rewards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Redemption ID"
// @Success 200 {object} APIResponse{data=Redemption}
// @Failure 409 {object} APIResponse "Already used or expired"
// @Router /me/redemptions/{id}/use [post]
func _() {}

// UploadImage godoc
// @Summary Upload a proof image
// @Tags Submissions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "JPEG, PNG, WebP or HEIC"
// @Success 201 {object} APIResponse{data=UploadResult}
// @Failure 400 {object} APIResponse
// @Failure 503 {object} APIResponse "Uploads disabled or backend down"
// @Router /uploads [post]
func _() {}

// ===============================
// ADMIN
// ===============================

// ListSubmissions godoc
// @Summary List submissions for review
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "PENDING, APPROVED or REJECTED"
// @Param user_id query string false "Only this user's submissions"
// @Param limit query int false "Max entries (default 100, max 500)"
// @Success 200 {object} APIResponse{data=[]HistoryEntry}
// @Failure 403 {object} APIResponse
// @Router /admin/submissions [get]
func _() {}

// ApproveSubmission godoc
// @Summary Approve a pending submission
// @Description Credits the claimed points and advances the day's challenges.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Success 200 {object} APIResponse{data=HistoryEntry}
// @Failure 409 {object} APIResponse "Already reviewed"
// @Router /admin/submissions/{id}/approve [post]
func _() {}

// RejectSubmission godoc
// @Summary Reject a pending submission
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Success 200 {object} APIResponse{data=HistoryEntry}
// @Failure 409 {object} APIResponse "Already reviewed"
// @Router /admin/submissions/{id}/reject [post]
func _() {}

// CreditUser godoc
// @Summary Credit points to a user
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body CreditRequest true "Credit"
// @Success 201 {object} APIResponse{data=HistoryEntry}
// @Router /admin/users/{id}/credit [post]
func _() {}

// RestockReward godoc
// @Summary Change a reward's stock
// @Description A negative delta may not take stock below zero.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reward ID"
// @Success 200 {object} APIResponse{data=Reward}
// @Failure 422 {object} APIResponse
// @Router /admin/rewards/{id}/restock [post]
func _() {}
