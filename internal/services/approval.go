// file: internal/services/approval.go
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"recyclehub/internal/database"
	"recyclehub/internal/events"
	"recyclehub/internal/models"
	"recyclehub/internal/repositories"

	"go.uber.org/zap"
)

type approvalService struct {
	db         *database.Manager
	history    repositories.HistoryRepository
	ledger     PointLedger
	challenges ChallengeService
	events     events.EventBus
	now        Clock
	logger     *zap.Logger
}

// NewApprovalService creates the approval engine
func NewApprovalService(
	db *database.Manager,
	history repositories.HistoryRepository,
	ledger PointLedger,
	challenges ChallengeService,
	bus events.EventBus,
	now Clock,
	logger *zap.Logger,
) ApprovalService {
	if now == nil {
		now = SystemClock
	}
	return &approvalService{
		db:         db,
		history:    history,
		ledger:     ledger,
		challenges: challenges,
		events:     bus,
		now:        now,
		logger:     logger,
	}
}

// Approve credits the submission's points and marks it APPROVED in one
// transaction, then advances challenge progress on a best-effort basis.
func (s *approvalService) Approve(ctx context.Context, reviewerID, submissionID string) (*models.Submission, error) {
	if err := requireUser(reviewerID); err != nil {
		return nil, err
	}
	if submissionID == "" {
		return nil, NewValidationError("submission id is required", nil)
	}

	var (
		submission *models.Submission
		balance    int64
	)
	reviewedAt := s.now()

	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		if submission, err = s.lockPending(ctx, tx, submissionID); err != nil {
			return err
		}

		user, err := s.ledger.EnsureAccount(ctx, tx, submission.UserID)
		if err != nil {
			return err
		}

		var recycled int64
		if submission.Action == models.ActionRecycle {
			recycled = 1
		}
		err = s.ledger.Apply(ctx, tx, Movement{
			UserID:        submission.UserID,
			PointsDelta:   submission.Points,
			RecycledDelta: recycled,
		})
		if err != nil {
			return err
		}
		balance = user.CurrentPoints + submission.Points

		moved, err := s.history.Transition(ctx, tx, submissionID, models.StatusPending, models.StatusApproved, reviewerID, nil, reviewedAt)
		if err != nil {
			return err
		}
		if !moved {
			return NewInvalidStateError("submission is no longer pending")
		}
		return nil
	})
	if err != nil {
		return nil, storeError(s.logger, "approve submission", err)
	}

	reviewed(submission, models.StatusApproved, reviewerID, nil, reviewedAt)

	s.logger.Info("✅ Submission approved",
		zap.String("submission_id", submissionID),
		zap.String("user_id", submission.UserID),
		zap.String("reviewer_id", reviewerID),
		zap.Int64("points", submission.Points),
		zap.Int64("new_balance", balance),
	)

	if submission.Action == models.ActionRecycle {
		if err := s.challenges.RecordRecycle(ctx, submission.UserID, submission.CreatedAt); err != nil {
			s.logger.Warn("Challenge progress not updated after approval",
				zap.String("submission_id", submissionID),
				zap.String("user_id", submission.UserID),
				zap.Error(err),
			)
		}
	}

	publish(ctx, s.events, s.logger, &events.SubmissionReviewedEvent{
		BaseEvent:    events.NewBaseEvent(events.TypeSubmissionApproved, submission.UserID),
		SubmissionID: submissionID,
		ReviewerID:   reviewerID,
		Points:       submission.Points,
		NewBalance:   balance,
	})
	return submission, nil
}

// Reject closes a pending submission without touching any balance
func (s *approvalService) Reject(ctx context.Context, reviewerID, submissionID, reason string) (*models.Submission, error) {
	if err := requireUser(reviewerID); err != nil {
		return nil, err
	}
	if submissionID == "" {
		return nil, NewValidationError("submission id is required", nil)
	}

	var note *string
	if reason = strings.TrimSpace(reason); reason != "" {
		note = models.StringPtr(reason)
	}

	var submission *models.Submission
	reviewedAt := s.now()

	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		if submission, err = s.lockPending(ctx, tx, submissionID); err != nil {
			return err
		}

		moved, err := s.history.Transition(ctx, tx, submissionID, models.StatusPending, models.StatusRejected, reviewerID, note, reviewedAt)
		if err != nil {
			return err
		}
		if !moved {
			return NewInvalidStateError("submission is no longer pending")
		}
		return nil
	})
	if err != nil {
		return nil, storeError(s.logger, "reject submission", err)
	}

	reviewed(submission, models.StatusRejected, reviewerID, note, reviewedAt)

	s.logger.Info("Submission rejected",
		zap.String("submission_id", submissionID),
		zap.String("user_id", submission.UserID),
		zap.String("reviewer_id", reviewerID),
		zap.String("reason", reason),
	)

	publish(ctx, s.events, s.logger, &events.SubmissionReviewedEvent{
		BaseEvent:    events.NewBaseEvent(events.TypeSubmissionRejected, submission.UserID),
		SubmissionID: submissionID,
		ReviewerID:   reviewerID,
		Points:       submission.Points,
		Reason:       reason,
	})
	return submission, nil
}

// lockPending locks the submission row and checks it can still be reviewed
func (s *approvalService) lockPending(ctx context.Context, tx repositories.Querier, id string) (*models.Submission, error) {
	submission, err := s.history.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if submission == nil || submission.Status == nil {
		return nil, NewNotFoundError("submission not found")
	}
	if status := submission.CurrentStatus(); status != models.StatusPending {
		return nil, NewInvalidStateError(fmt.Sprintf("submission already %s", strings.ToLower(string(status))))
	}
	return submission, nil
}

// reviewed mirrors a committed transition onto the loaded record
func reviewed(submission *models.Submission, status models.SubmissionStatus, reviewerID string, note *string, at time.Time) {
	submission.Status = models.StatusPtr(status)
	submission.ReviewedBy = models.StringPtr(reviewerID)
	submission.ReviewNote = note
	reviewedAt := at.UTC().Truncate(time.Microsecond)
	submission.ReviewedAt = &reviewedAt
}
