package events

import "time"

// Event types published by the ledger services
const (
	TypeSubmissionCreated  = "submission.created"
	TypeSubmissionApproved = "submission.approved"
	TypeSubmissionRejected = "submission.rejected"
	TypePointsCredited     = "points.credited"
	TypeBonusClaimed       = "bonus.claimed"
	TypeRewardRedeemed     = "reward.redeemed"
	TypeVoucherUsed        = "voucher.used"
	TypeVouchersExpired    = "vouchers.expired"
)

// SubmissionCreatedEvent is published after a pending submission is stored
type SubmissionCreatedEvent struct {
	BaseEvent
	SubmissionID string `json:"submission_id"`
	Points       int64  `json:"points"`
	ImageURL     string `json:"image_url"`
}

// SubmissionReviewedEvent is published after approval or rejection commits
type SubmissionReviewedEvent struct {
	BaseEvent
	SubmissionID string `json:"submission_id"`
	ReviewerID   string `json:"reviewer_id"`
	Points       int64  `json:"points"`
	NewBalance   int64  `json:"new_balance,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// PointsCreditedEvent is published after a direct credit (admin or bonus)
type PointsCreditedEvent struct {
	BaseEvent
	EntryID  string `json:"entry_id"`
	Amount   int64  `json:"amount"`
	Reason   string `json:"reason"`
	Approved bool   `json:"approved"`
}

// BonusClaimedEvent is published after a challenge bonus is credited
type BonusClaimedEvent struct {
	BaseEvent
	ChallengeID string `json:"challenge_id"`
	Date        string `json:"date"`
	Bonus       int64  `json:"bonus"`
	Streak      int    `json:"streak"`
}

// RewardRedeemedEvent is published after a redemption commits
type RewardRedeemedEvent struct {
	BaseEvent
	RedemptionID string    `json:"redemption_id"`
	RewardID     string    `json:"reward_id"`
	Code         string    `json:"code"`
	PointsUsed   int64     `json:"points_used"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// VoucherUsedEvent is published when a voucher is marked used
type VoucherUsedEvent struct {
	BaseEvent
	RedemptionID string `json:"redemption_id"`
	Code         string `json:"code"`
}

// VouchersExpiredEvent is published after an expiry sweep changed rows
type VouchersExpiredEvent struct {
	BaseEvent
	Count int64 `json:"count"`
}
