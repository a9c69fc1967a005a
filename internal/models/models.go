// file: internal/models/models.go
package models

import (
	"time"
)

// ===============================
// ENUMS
// ===============================

// HistoryAction labels a ledger movement
type HistoryAction string

const (
	ActionRecycle HistoryAction = "RECYCLE"
	ActionRedeem  HistoryAction = "REDEEM"
	ActionBonus   HistoryAction = "BONUS"
	ActionAdmin   HistoryAction = "ADMIN"
)

// SubmissionStatus is the review state of a recycle submission
type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "PENDING"
	StatusApproved SubmissionStatus = "APPROVED"
	StatusRejected SubmissionStatus = "REJECTED"
)

// IsTerminal reports whether no further transition is allowed
func (s SubmissionStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ChallengeType decides which events advance a challenge
type ChallengeType string

const (
	ChallengeRecycleCount    ChallengeType = "RECYCLE_COUNT"
	ChallengeRecycleCategory ChallengeType = "RECYCLE_CATEGORY"
	ChallengeStreak          ChallengeType = "STREAK"
)

// RedemptionStatus is the lifecycle of a voucher
type RedemptionStatus string

const (
	RedemptionUnused  RedemptionStatus = "UNUSED"
	RedemptionUsed    RedemptionStatus = "USED"
	RedemptionExpired RedemptionStatus = "EXPIRED"
)

// DefaultRank is the label given to new accounts
const DefaultRank = "Rookie"

// ===============================
// CORE ENTITIES
// ===============================

// User is the ledger side of an account. Profile fields live with the
// identity provider.
type User struct {
	ID            string    `json:"id" db:"id"`
	CurrentPoints int64     `json:"current_points" db:"current_points"`
	TotalRecycled int64     `json:"total_recycled" db:"total_recycled"`
	Rank          string    `json:"rank" db:"rank"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// HistoryEntry is one row of the point history. A RECYCLE entry is a
// submission and carries a review status; other actions are movements
// that already happened.
type HistoryEntry struct {
	ID         string            `json:"id" db:"id"`
	UserID     string            `json:"user_id" db:"user_id"`
	Action     HistoryAction     `json:"action" db:"action"`
	Title      string            `json:"title" db:"title"`
	Points     int64             `json:"points" db:"points"`
	RewardID   *string           `json:"reward_id,omitempty" db:"reward_id"`
	ImageURL   *string           `json:"image_url,omitempty" db:"image_url"`
	Status     *SubmissionStatus `json:"status,omitempty" db:"status"`
	ReviewedBy *string           `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewNote *string           `json:"review_note,omitempty" db:"review_note"`
	ReviewedAt *time.Time        `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
}

// Submission is a RECYCLE history entry
type Submission = HistoryEntry

// CurrentStatus returns the review status, PENDING when unset
func (h *HistoryEntry) CurrentStatus() SubmissionStatus {
	if h.Status == nil {
		return StatusPending
	}
	return *h.Status
}

// Challenge is a daily challenge definition
type Challenge struct {
	ID          string        `json:"id" db:"id"`
	Title       string        `json:"title" db:"title" validate:"required,max=200"`
	Description string        `json:"description" db:"description" validate:"max=1000"`
	Icon        string        `json:"icon" db:"icon"`
	TargetCount int           `json:"target_count" db:"target_count" validate:"min=1"`
	BonusPoints int64         `json:"bonus_points" db:"bonus_points" validate:"min=0"`
	Type        ChallengeType `json:"type" db:"type" validate:"required,oneof=RECYCLE_COUNT RECYCLE_CATEGORY STREAK"`
	IsActive    bool          `json:"is_active" db:"is_active"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// ChallengeProgress is one user's state against one challenge on one day
type ChallengeProgress struct {
	Current   int  `json:"current" db:"current_count"`
	Completed bool `json:"completed" db:"completed"`
	Claimed   bool `json:"claimed" db:"claimed"`
}

// DailyProgress is keyed by (user, date). Challenges maps challenge id to
// that day's progress.
type DailyProgress struct {
	UserID         string                        `json:"user_id" db:"user_id"`
	Date           string                        `json:"date" db:"progress_date"`
	Streak         int                           `json:"streak" db:"streak"`
	StreakCredited bool                          `json:"-" db:"streak_credited"`
	Challenges     map[string]*ChallengeProgress `json:"challenges" db:"-"`
	CreatedAt      time.Time                     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time                     `json:"updated_at" db:"updated_at"`
}

// AllCompleted reports whether every challenge of the day is completed.
// A day with no challenges counts as completed.
func (d *DailyProgress) AllCompleted() bool {
	for _, p := range d.Challenges {
		if !p.Completed {
			return false
		}
	}
	return true
}

// Reward is a catalog item that can be bought with points
type Reward struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name" validate:"required,max=200"`
	Description string    `json:"description" db:"description" validate:"max=1000"`
	Image       string    `json:"image" db:"image" validate:"omitempty,url"`
	Points      int64     `json:"points" db:"points" validate:"min=0"`
	Stock       int64     `json:"stock" db:"stock" validate:"min=0"`
	Category    string    `json:"category" db:"category" validate:"max=100"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Redemption is a voucher produced by spending points on a reward.
// Name and image are copied from the reward at redemption time.
type Redemption struct {
	ID          string           `json:"id" db:"id"`
	UserID      string           `json:"user_id" db:"user_id"`
	RewardID    string           `json:"reward_id" db:"reward_id"`
	RewardName  string           `json:"reward_name" db:"reward_name"`
	RewardImage string           `json:"reward_image" db:"reward_image"`
	PointsUsed  int64            `json:"points_used" db:"points_used"`
	Code        string           `json:"code" db:"code"`
	Status      RedemptionStatus `json:"status" db:"status"`
	ExpiresAt   time.Time        `json:"expires_at" db:"expires_at"`
	UsedAt      *time.Time       `json:"used_at,omitempty" db:"used_at"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
}

// IsExpired reports whether the voucher's window has passed at now
func (r *Redemption) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// ===============================
// HELPERS
// ===============================

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// StatusPtr returns a pointer to s
func StatusPtr(s SubmissionStatus) *SubmissionStatus {
	return &s
}
