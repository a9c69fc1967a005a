package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// AuditHandlerID identifies the ledger audit subscriber
const AuditHandlerID = "ledger-audit"

// AuditStats is a snapshot of the committed movements seen since start
type AuditStats struct {
	Events       map[string]int64 `json:"events"`
	PointsIssued int64            `json:"points_issued"`
	PointsSpent  int64            `json:"points_spent"`
	Expired      int64            `json:"vouchers_expired"`
}

// AuditLog writes every ledger event to its own logger and keeps running
// totals of points issued and spent.
type AuditLog struct {
	logger *zap.Logger

	mu    sync.Mutex
	stats AuditStats
}

// NewAuditLog creates the audit subscriber
func NewAuditLog(logger *zap.Logger) *AuditLog {
	return &AuditLog{
		logger: logger,
		stats:  AuditStats{Events: make(map[string]int64)},
	}
}

// Subscribe attaches the audit log to every event on bus
func (a *AuditLog) Subscribe(bus EventBus) error {
	return bus.SubscribePattern("*", a)
}

// GetHandlerID implements EventHandler
func (a *AuditLog) GetHandlerID() string {
	return AuditHandlerID
}

// Handle implements EventHandler
func (a *AuditLog) Handle(ctx context.Context, event Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.GetEventID()),
		zap.String("event_type", event.GetEventType()),
		zap.String("user_id", event.GetUserID()),
		zap.Time("at", event.GetTimestamp()),
	}

	var issued, spent, expired int64
	switch e := event.(type) {
	case *SubmissionCreatedEvent:
		fields = append(fields, zap.String("submission_id", e.SubmissionID), zap.Int64("points", e.Points))
	case *SubmissionReviewedEvent:
		fields = append(fields,
			zap.String("submission_id", e.SubmissionID),
			zap.String("reviewer_id", e.ReviewerID),
			zap.Int64("points", e.Points),
		)
		if e.GetEventType() == TypeSubmissionApproved {
			issued = e.Points
			fields = append(fields, zap.Int64("balance", e.NewBalance))
		} else if e.Reason != "" {
			fields = append(fields, zap.String("reason", e.Reason))
		}
	case *PointsCreditedEvent:
		fields = append(fields,
			zap.String("entry_id", e.EntryID),
			zap.Int64("amount", e.Amount),
			zap.String("reason", e.Reason),
			zap.Bool("approved", e.Approved),
		)
		if e.Approved {
			issued = e.Amount
		}
	case *BonusClaimedEvent:
		issued = e.Bonus
		fields = append(fields,
			zap.String("challenge_id", e.ChallengeID),
			zap.String("date", e.Date),
			zap.Int64("bonus", e.Bonus),
			zap.Int("streak", e.Streak),
		)
	case *RewardRedeemedEvent:
		spent = e.PointsUsed
		fields = append(fields,
			zap.String("redemption_id", e.RedemptionID),
			zap.String("reward_id", e.RewardID),
			zap.Int64("points_used", e.PointsUsed),
		)
	case *VoucherUsedEvent:
		fields = append(fields, zap.String("redemption_id", e.RedemptionID))
	case *VouchersExpiredEvent:
		expired = e.Count
		fields = append(fields, zap.Int64("count", e.Count))
	}

	a.mu.Lock()
	a.stats.Events[event.GetEventType()]++
	a.stats.PointsIssued += issued
	a.stats.PointsSpent += spent
	a.stats.Expired += expired
	a.mu.Unlock()

	a.logger.Info("Ledger event", fields...)
	return nil
}

// Stats returns a copy of the running totals
func (a *AuditLog) Stats() *AuditStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := a.stats
	out.Events = make(map[string]int64, len(a.stats.Events))
	for k, v := range a.stats.Events {
		out.Events[k] = v
	}
	return &out
}
