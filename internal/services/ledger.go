// file: internal/services/ledger.go
package services

import (
	"context"
	"database/sql"
	"fmt"

	"recyclehub/internal/database"
	"recyclehub/internal/events"
	"recyclehub/internal/models"
	"recyclehub/internal/repositories"
	"recyclehub/internal/validation"

	"go.uber.org/zap"
)

// pointLedger pairs every balance change with its history entry
type pointLedger struct {
	db      *database.Manager
	users   repositories.UserRepository
	history repositories.HistoryRepository
	events  events.EventBus
	now     Clock
	logger  *zap.Logger
}

// NewPointLedger creates the point ledger accessor
func NewPointLedger(
	db *database.Manager,
	users repositories.UserRepository,
	history repositories.HistoryRepository,
	bus events.EventBus,
	now Clock,
	logger *zap.Logger,
) PointLedger {
	if now == nil {
		now = SystemClock
	}
	return &pointLedger{
		db:      db,
		users:   users,
		history: history,
		events:  bus,
		now:     now,
		logger:  logger,
	}
}

func (l *pointLedger) GetBalance(ctx context.Context, userID string) (*Balance, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	user, err := l.users.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, storeError(l.logger, "load balance", err)
	}
	if user == nil {
		return &Balance{UserID: userID, Rank: models.DefaultRank}, nil
	}

	return &Balance{
		UserID:        user.ID,
		CurrentPoints: user.CurrentPoints,
		TotalRecycled: user.TotalRecycled,
		Rank:          user.Rank,
	}, nil
}

// Credit adds points in its own transaction. A credit that is not auto
// approved is stored PENDING and only moves the balance once approved.
func (l *pointLedger) Credit(ctx context.Context, req *CreditRequest) (*models.HistoryEntry, error) {
	if req == nil {
		return nil, NewValidationError("credit request is required", nil)
	}
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid credit request", err)
	}

	title := req.Title
	if title == "" {
		title = defaultCreditTitle(req.Reason)
	}
	status := models.StatusPending
	if req.AutoApproved {
		status = models.StatusApproved
	}

	var entry *models.HistoryEntry
	err := l.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		entry = &models.HistoryEntry{
			UserID:    req.UserID,
			Action:    req.Reason,
			Title:     title,
			Points:    req.Amount,
			Status:    models.StatusPtr(status),
			CreatedAt: l.now(),
		}

		if _, err := l.EnsureAccount(ctx, tx, req.UserID); err != nil {
			return err
		}
		if !req.AutoApproved {
			return l.history.Create(ctx, tx, entry)
		}
		return l.Apply(ctx, tx, Movement{UserID: req.UserID, PointsDelta: req.Amount, Entry: entry})
	})
	if err != nil {
		return nil, storeError(l.logger, "credit points", err)
	}

	l.logger.Info("💰 Points credited",
		zap.String("user_id", req.UserID),
		zap.Int64("amount", req.Amount),
		zap.String("reason", string(req.Reason)),
		zap.Bool("auto_approved", req.AutoApproved),
	)

	publish(ctx, l.events, l.logger, &events.PointsCreditedEvent{
		BaseEvent: events.NewBaseEvent(events.TypePointsCredited, req.UserID),
		EntryID:   entry.ID,
		Amount:    req.Amount,
		Reason:    string(req.Reason),
		Approved:  req.AutoApproved,
	})
	return entry, nil
}

func (l *pointLedger) EnsureAccount(ctx context.Context, tx repositories.Querier, userID string) (*models.User, error) {
	if err := l.users.EnsureExists(ctx, tx, userID, l.now()); err != nil {
		return nil, err
	}
	user, err := l.users.GetForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("account %s vanished after insert", userID)
	}
	return user, nil
}

func (l *pointLedger) LockAccount(ctx context.Context, tx repositories.Querier, userID string) (*models.User, error) {
	return l.users.GetForUpdate(ctx, tx, userID)
}

func (l *pointLedger) Apply(ctx context.Context, tx repositories.Querier, m Movement) error {
	if m.PointsDelta != 0 || m.RecycledDelta != 0 {
		ok, err := l.users.ApplyDelta(ctx, tx, m.UserID, m.PointsDelta, m.RecycledDelta, l.now())
		if err != nil {
			return err
		}
		if !ok {
			// callers validate first, so this only fires on a missing account
			// or a balance that moved underneath them
			return NewBusinessError(
				fmt.Sprintf("balance of %s cannot change by %d", m.UserID, m.PointsDelta),
				CodeInsufficientPoints,
			)
		}
	}

	if m.Entry == nil {
		return nil
	}
	if m.Entry.UserID == "" {
		m.Entry.UserID = m.UserID
	}
	if m.Entry.CreatedAt.IsZero() {
		m.Entry.CreatedAt = l.now()
	}
	return l.history.Create(ctx, tx, m.Entry)
}

func defaultCreditTitle(reason models.HistoryAction) string {
	if reason == models.ActionBonus {
		return "Challenge bonus"
	}
	return "Points adjustment"
}

// publish hands a committed event to the bus. Delivery problems never fail
// the operation that produced the event.
func publish(ctx context.Context, bus events.EventBus, logger *zap.Logger, evt events.Event) {
	if bus == nil {
		return
	}
	if err := bus.PublishAsync(ctx, evt); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("event_type", evt.GetEventType()),
			zap.Error(err),
		)
	}
}
