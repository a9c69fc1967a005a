// file: internal/repositories/interfaces.go
package repositories

import (
	"context"
	"time"

	"recyclehub/internal/models"
)

// ===============================
// LEDGER REPOSITORY INTERFACES
// ===============================

// Getters return (nil, nil) when the row does not exist. Methods reporting a
// bool return false when no row matched their guard.

// UserRepository holds the point balance and recycle counter of each account
type UserRepository interface {
	GetByID(ctx context.Context, q Querier, id string) (*models.User, error)
	GetForUpdate(ctx context.Context, q Querier, id string) (*models.User, error)
	// EnsureExists inserts a zero-balance account unless one exists
	EnsureExists(ctx context.Context, q Querier, id string, at time.Time) error
	// ApplyDelta adds to both counters unless the result would go negative
	ApplyDelta(ctx context.Context, q Querier, id string, pointsDelta, recycledDelta int64, at time.Time) (bool, error)
}

// SubmissionFilter narrows the admin submission listing
type SubmissionFilter struct {
	Status *models.SubmissionStatus
	UserID string
	Limit  int
}

// HistoryRepository stores submissions and every other point movement
type HistoryRepository interface {
	Create(ctx context.Context, q Querier, entry *models.HistoryEntry) error
	GetByID(ctx context.Context, q Querier, id string) (*models.HistoryEntry, error)
	GetForUpdate(ctx context.Context, q Querier, id string) (*models.HistoryEntry, error)
	// Transition moves a reviewable entry from one status to another
	Transition(ctx context.Context, q Querier, id string, from, to models.SubmissionStatus, reviewer string, note *string, at time.Time) (bool, error)
	ListByUser(ctx context.Context, q Querier, userID string, limit int) ([]*models.HistoryEntry, error)
	// ListSubmissions orders pending first, then newest first
	ListSubmissions(ctx context.Context, q Querier, filter SubmissionFilter) ([]*models.HistoryEntry, error)
}

// ChallengeRepository is the challenge catalog
type ChallengeRepository interface {
	Create(ctx context.Context, q Querier, c *models.Challenge) error
	Upsert(ctx context.Context, q Querier, c *models.Challenge) error
	Update(ctx context.Context, q Querier, c *models.Challenge) (bool, error)
	SetActive(ctx context.Context, q Querier, id string, active bool, at time.Time) (bool, error)
	GetByID(ctx context.Context, q Querier, id string) (*models.Challenge, error)
	ListActive(ctx context.Context, q Querier) ([]*models.Challenge, error)
	ListAll(ctx context.Context, q Querier) ([]*models.Challenge, error)
}

// ProgressRepository keeps per-user, per-day challenge progress
type ProgressRepository interface {
	// GetDay loads the day with all its challenge entries
	GetDay(ctx context.Context, q Querier, userID, date string) (*models.DailyProgress, error)
	// LockDay is GetDay holding the day row lock until the transaction ends
	LockDay(ctx context.Context, q Querier, userID, date string) (*models.DailyProgress, error)
	// CreateDay inserts the day and its entries; false when it already existed
	CreateDay(ctx context.Context, q Querier, day *models.DailyProgress) (bool, error)
	SaveEntry(ctx context.Context, q Querier, userID, date, challengeID string, p *models.ChallengeProgress, at time.Time) error
	SaveStreak(ctx context.Context, q Querier, userID, date string, streak int, credited bool, at time.Time) error
}

// RewardRepository is the reward catalog and its stock
type RewardRepository interface {
	Create(ctx context.Context, q Querier, r *models.Reward) error
	Upsert(ctx context.Context, q Querier, r *models.Reward) error
	Update(ctx context.Context, q Querier, r *models.Reward) (bool, error)
	SetActive(ctx context.Context, q Querier, id string, active bool, at time.Time) (bool, error)
	// AdjustStock adds delta unless stock would go negative
	AdjustStock(ctx context.Context, q Querier, id string, delta int64, at time.Time) (bool, error)
	GetByID(ctx context.Context, q Querier, id string) (*models.Reward, error)
	GetForUpdate(ctx context.Context, q Querier, id string) (*models.Reward, error)
	ListActive(ctx context.Context, q Querier) ([]*models.Reward, error)
	ListAll(ctx context.Context, q Querier) ([]*models.Reward, error)
}

// RedemptionRepository stores vouchers
type RedemptionRepository interface {
	Create(ctx context.Context, q Querier, r *models.Redemption) error
	CodeExists(ctx context.Context, q Querier, code string) (bool, error)
	GetByID(ctx context.Context, q Querier, id string) (*models.Redemption, error)
	GetForUpdate(ctx context.Context, q Querier, id string) (*models.Redemption, error)
	ListByUser(ctx context.Context, q Querier, userID string, limit int) ([]*models.Redemption, error)
	CountByReward(ctx context.Context, q Querier, rewardID string) (int64, error)
	// SetStatus moves a voucher from one status to another
	SetStatus(ctx context.Context, q Querier, id string, from, to models.RedemptionStatus, at time.Time) (bool, error)
	// ExpireBefore marks every unused voucher expiring before now as expired
	ExpireBefore(ctx context.Context, q Querier, now time.Time) (int64, error)
}
