package docs

import "time"

// APIResponse is the envelope every endpoint answers with
type APIResponse struct {
	Success   bool         `json:"success" example:"true"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	RequestID string       `json:"request_id,omitempty" example:"3f2c9a1e-6a55-4f0e-9d1a-0c2b7d7f1e42"`
	Timestamp int64        `json:"timestamp,omitempty" example:"1746351000"`
	Version   string       `json:"version,omitempty" example:"v1"`
}

// ErrorDetail describes a failed request
type ErrorDetail struct {
	Type    string `json:"type" example:"BUSINESS_ERROR"`
	Message string `json:"message" example:"insufficient points: need 20, have 15"`
	Code    string `json:"code,omitempty" example:"INSUFFICIENT_POINTS"`
}

// OperationResult is returned by redeem and claim, successful or refused
type OperationResult struct {
	Success bool        `json:"success" example:"false"`
	Message string      `json:"message" example:"out of stock"`
	Code    string      `json:"code,omitempty" example:"OUT_OF_STOCK"`
	Data    interface{} `json:"data,omitempty"`
}

// CreateSubmissionRequest is the body of POST /submissions
type CreateSubmissionRequest struct {
	Points   int64  `json:"points" example:"5"`
	ImageURL string `json:"image_url" example:"https://res.cloudinary.com/demo/image/upload/bottle.jpg"`
	Title    string `json:"title,omitempty" example:"Plastic bottles"`
}

// HistoryEntry is one ledger movement
type HistoryEntry struct {
	ID        string    `json:"id" example:"b7d1c0de-2f7a-4c55-8f0e-1a2b3c4d5e6f"`
	UserID    string    `json:"user_id" example:"user-42"`
	Action    string    `json:"action" example:"RECYCLE" enums:"RECYCLE,REDEEM,BONUS,ADMIN"`
	Title     string    `json:"title" example:"Plastic bottles"`
	Points    int64     `json:"points" example:"5"`
	Status    string    `json:"status,omitempty" example:"PENDING" enums:"PENDING,APPROVED,REJECTED"`
	CreatedAt time.Time `json:"created_at"`
}

// Balance is a user's point balance
type Balance struct {
	UserID        string `json:"user_id" example:"user-42"`
	CurrentPoints int64  `json:"current_points" example:"120"`
	TotalRecycled int64  `json:"total_recycled" example:"18"`
	Rank          string `json:"rank" example:"Eco Warrior"`
}

// ChallengeStatus is one challenge of today's progress
type ChallengeStatus struct {
	ID          string `json:"id" example:"recycle-3"`
	Title       string `json:"title" example:"Recycle 3 items"`
	TargetCount int    `json:"target_count" example:"3"`
	BonusPoints int64  `json:"bonus_points" example:"15"`
	Current     int    `json:"current" example:"2"`
	Completed   bool   `json:"completed" example:"false"`
	Claimed     bool   `json:"claimed" example:"false"`
}

// TodayProgress is the caller's challenge state for the current day
type TodayProgress struct {
	Date       string            `json:"date" example:"2026-05-04"`
	Streak     int               `json:"streak" example:"3"`
	Challenges []ChallengeStatus `json:"challenges"`
}

// Reward is a catalog item
type Reward struct {
	ID       string `json:"id" example:"reusable-bottle"`
	Name     string `json:"name" example:"Reusable bottle"`
	Points   int64  `json:"points" example:"20"`
	Stock    int64  `json:"stock" example:"12"`
	Category string `json:"category" example:"merch"`
	IsActive bool   `json:"is_active" example:"true"`
}

// Redemption is a voucher issued for a reward
type Redemption struct {
	ID         string     `json:"id"`
	RewardID   string     `json:"reward_id" example:"reusable-bottle"`
	RewardName string     `json:"reward_name" example:"Reusable bottle"`
	PointsUsed int64      `json:"points_used" example:"20"`
	Code       string     `json:"code" example:"VOUCHER-7K3Q9ZP2"`
	Status     string     `json:"status" example:"UNUSED" enums:"UNUSED,USED,EXPIRED"`
	ExpiresAt  time.Time  `json:"expires_at"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
}

// CreditRequest is the body of an admin credit
type CreditRequest struct {
	Amount int64  `json:"amount" example:"25"`
	Reason string `json:"reason,omitempty" example:"ADMIN" enums:"BONUS,ADMIN"`
	Title  string `json:"title,omitempty" example:"Beach cleanup"`
}

// UploadResult is a stored proof image
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Format   string `json:"format" example:"jpg"`
	Size     int64  `json:"size" example:"348120"`
}
