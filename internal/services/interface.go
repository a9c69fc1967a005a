// file: internal/services/interface.go
package services

import (
	"context"
	"time"

	"recyclehub/internal/models"
	"recyclehub/internal/repositories"
)

// ===============================
// LEDGER SERVICE INTERFACES
// ===============================

// PointLedger is the only path by which balances change. The in-transaction
// methods take the caller's transaction and never open their own.
type PointLedger interface {
	// GetBalance reads zero balances for an account that does not exist yet
	GetBalance(ctx context.Context, userID string) (*Balance, error)
	Credit(ctx context.Context, req *CreditRequest) (*models.HistoryEntry, error)

	// EnsureAccount creates a zero-balance account if needed and locks it
	EnsureAccount(ctx context.Context, tx repositories.Querier, userID string) (*models.User, error)
	// LockAccount locks an existing account; nil when it does not exist
	LockAccount(ctx context.Context, tx repositories.Querier, userID string) (*models.User, error)
	// Apply changes the counters and writes the movement's history entry
	Apply(ctx context.Context, tx repositories.Querier, m Movement) error
}

// SubmissionService accepts recycling claims and serves the history views
type SubmissionService interface {
	CreateSubmission(ctx context.Context, req *CreateSubmissionRequest) (string, error)
	GetSubmission(ctx context.Context, id string) (*models.Submission, error)
	ListUserHistory(ctx context.Context, userID string, limit int) ([]*models.HistoryEntry, error)
	ListSubmissions(ctx context.Context, req *ListSubmissionsRequest) ([]*models.Submission, error)
}

// ApprovalService moves pending entries to a terminal status
type ApprovalService interface {
	Approve(ctx context.Context, reviewerID, submissionID string) (*models.Submission, error)
	Reject(ctx context.Context, reviewerID, submissionID, reason string) (*models.Submission, error)
}

// ChallengeService tracks daily challenge progress and pays bonuses
type ChallengeService interface {
	GetTodayProgress(ctx context.Context, userID string) (*TodayProgress, error)
	CalculateStreak(ctx context.Context, userID string) (int, error)
	// RecordRecycle advances the day's RECYCLE_COUNT challenges by one
	RecordRecycle(ctx context.Context, userID string, day time.Time) error
	ClaimBonus(ctx context.Context, userID, challengeID string, bonusPoints int64) (*OperationResult, error)
}

// RedemptionService exchanges points for rewards and manages vouchers
type RedemptionService interface {
	Redeem(ctx context.Context, userID string, req *RedeemRequest) (*OperationResult, error)
	ListRedemptions(ctx context.Context, userID string, limit int) ([]*models.Redemption, error)
	UseVoucher(ctx context.Context, userID, redemptionID string) (*models.Redemption, error)
	ExpireVouchers(ctx context.Context, now time.Time) (int64, error)
}

// CatalogService is the admin surface over challenges and rewards
type CatalogService interface {
	ListChallenges(ctx context.Context, activeOnly bool) ([]*models.Challenge, error)
	CreateChallenge(ctx context.Context, in *ChallengeInput) (*models.Challenge, error)
	UpdateChallenge(ctx context.Context, id string, in *ChallengeInput) (*models.Challenge, error)
	SetChallengeActive(ctx context.Context, id string, active bool) error
	UpsertChallenge(ctx context.Context, in *ChallengeInput) (*models.Challenge, error)

	ListRewards(ctx context.Context, activeOnly bool) ([]*models.Reward, error)
	CreateReward(ctx context.Context, in *RewardInput) (*models.Reward, error)
	UpdateReward(ctx context.Context, id string, in *RewardInput) (*models.Reward, error)
	SetRewardActive(ctx context.Context, id string, active bool) error
	Restock(ctx context.Context, id string, delta int64) (*models.Reward, error)
	UpsertReward(ctx context.Context, in *RewardInput) (*models.Reward, error)
}
