// file: internal/services/types.go
package services

import (
	"encoding/json"
	"fmt"
	"time"

	"recyclehub/internal/models"
)

// Clock returns the current time. Services take it as a dependency so the
// calendar day can be pinned in tests.
type Clock func() time.Time

// SystemClock is the wall clock in UTC
func SystemClock() time.Time {
	return time.Now().UTC()
}

// ===============================
// RESULTS
// ===============================

// OperationResult is the structured outcome of an operation whose business
// rule failures are reported to the user rather than returned as errors.
type OperationResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func succeeded(message string, data interface{}) *OperationResult {
	return &OperationResult{Success: true, Message: message, Data: data}
}

func failed(err *ServiceError) *OperationResult {
	code := err.Code
	if code == "" {
		code = err.Type
	}
	return &OperationResult{Success: false, Message: err.Message, Code: code}
}

// Balance is the point position of one user
type Balance struct {
	UserID        string `json:"user_id"`
	CurrentPoints int64  `json:"current_points"`
	TotalRecycled int64  `json:"total_recycled"`
	Rank          string `json:"rank"`
}

// Movement is one guarded change to a user's counters together with the
// history entry that records it.
type Movement struct {
	UserID        string
	PointsDelta   int64
	RecycledDelta int64
	Entry         *models.HistoryEntry
}

// ChallengeStatus is a challenge definition merged with the caller's progress
// for the day
type ChallengeStatus struct {
	*models.Challenge
	Current   int  `json:"current"`
	Completed bool `json:"completed"`
	Claimed   bool `json:"claimed"`
}

// TodayProgress is the result of a progress read for the current day
type TodayProgress struct {
	Date       string             `json:"date"`
	Streak     int                `json:"streak"`
	Challenges []*ChallengeStatus `json:"challenges"`
}

// ===============================
// REQUEST TYPES
// ===============================

// CreateSubmissionRequest is a recycling claim with its uploaded proof
type CreateSubmissionRequest struct {
	UserID   string `json:"-" validate:"required"`
	Points   int64  `json:"points" validate:"gt=0,lte=10000"`
	ImageURL string `json:"image_url" validate:"required,url"`
	Title    string `json:"title,omitempty" validate:"max=200"`
}

// ListSubmissionsRequest filters the review queue
type ListSubmissionsRequest struct {
	Status *models.SubmissionStatus `json:"status,omitempty" validate:"omitempty,oneof=PENDING APPROVED REJECTED"`
	UserID string                   `json:"user_id,omitempty"`
	Limit  int                      `json:"limit,omitempty" validate:"gte=0,lte=500"`
}

// CreditRequest is a direct point credit
type CreditRequest struct {
	UserID       string               `json:"-" validate:"required"`
	Amount       int64                `json:"amount" validate:"gt=0"`
	Reason       models.HistoryAction `json:"reason" validate:"required,oneof=BONUS ADMIN"`
	Title        string               `json:"title" validate:"max=200"`
	AutoApproved bool                 `json:"auto_approved"`
}

// RedeemRequest names the reward. Points is the price the caller was shown;
// only the live catalog price is ever charged.
type RedeemRequest struct {
	RewardID string `json:"reward_id" validate:"required"`
	Points   int64  `json:"points" validate:"gte=0"`
}

// ChallengeInput creates or edits a challenge definition. The target may be a
// number or text containing one.
type ChallengeInput struct {
	ID          string               `json:"id,omitempty" yaml:"id" validate:"omitempty,max=64"`
	Title       string               `json:"title" yaml:"title" validate:"required,max=200"`
	Description string               `json:"description" yaml:"description" validate:"max=1000"`
	Icon        string               `json:"icon" yaml:"icon" validate:"max=50"`
	Target      TargetText           `json:"target_count" yaml:"target_count"`
	BonusPoints int64                `json:"bonus_points" yaml:"bonus_points" validate:"gte=0"`
	Type        models.ChallengeType `json:"type" yaml:"type" validate:"omitempty,oneof=RECYCLE_COUNT RECYCLE_CATEGORY STREAK"`
	IsActive    *bool                `json:"is_active,omitempty" yaml:"is_active"`
}

// RewardInput creates or edits a reward. Stock is only honoured on create
// and import; use Restock afterwards.
type RewardInput struct {
	ID          string `json:"id,omitempty" yaml:"id" validate:"omitempty,max=64"`
	Name        string `json:"name" yaml:"name" validate:"required,max=200"`
	Description string `json:"description" yaml:"description" validate:"max=1000"`
	Image       string `json:"image" yaml:"image" validate:"omitempty,url"`
	Points      int64  `json:"points" yaml:"points" validate:"gte=0"`
	Stock       int64  `json:"stock" yaml:"stock" validate:"gte=0"`
	Category    string `json:"category" yaml:"category" validate:"max=100"`
	IsActive    *bool  `json:"is_active,omitempty" yaml:"is_active"`
}

// TargetText holds a target count given either as a JSON number or as text
type TargetText string

// UnmarshalJSON implements json.Unmarshaler
func (t *TargetText) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = TargetText(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("target_count must be a number or text: %w", err)
	}
	*t = TargetText(n.String())
	return nil
}
