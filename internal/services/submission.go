// file: internal/services/submission.go
package services

import (
	"context"

	"recyclehub/internal/events"
	"recyclehub/internal/models"
	"recyclehub/internal/repositories"
	"recyclehub/internal/validation"

	"go.uber.org/zap"
)

const defaultSubmissionTitle = "Recycled waste"

type submissionService struct {
	history repositories.HistoryRepository
	events  events.EventBus
	now     Clock
	logger  *zap.Logger
}

// NewSubmissionService creates the submission manager
func NewSubmissionService(
	history repositories.HistoryRepository,
	bus events.EventBus,
	now Clock,
	logger *zap.Logger,
) SubmissionService {
	if now == nil {
		now = SystemClock
	}
	return &submissionService{
		history: history,
		events:  bus,
		now:     now,
		logger:  logger,
	}
}

// CreateSubmission stores a PENDING recycle entry. No points move until the
// entry is approved.
func (s *submissionService) CreateSubmission(ctx context.Context, req *CreateSubmissionRequest) (string, error) {
	if req == nil {
		return "", NewValidationError("submission request is required", nil)
	}
	if err := requireUser(req.UserID); err != nil {
		return "", NewValidationError("a signed-in user is required to submit", err)
	}
	if req.ImageURL == "" {
		return "", NewValidationError("proof image is required", nil)
	}
	if err := validation.ValidateStruct(req); err != nil {
		return "", NewValidationError("invalid submission", err)
	}

	title := req.Title
	if title == "" {
		title = defaultSubmissionTitle
	}

	submission := &models.Submission{
		UserID:    req.UserID,
		Action:    models.ActionRecycle,
		Title:     title,
		Points:    req.Points,
		ImageURL:  models.StringPtr(req.ImageURL),
		Status:    models.StatusPtr(models.StatusPending),
		CreatedAt: s.now(),
	}
	if err := s.history.Create(ctx, nil, submission); err != nil {
		return "", storeError(s.logger, "create submission", err)
	}

	s.logger.Info("📸 Submission created",
		zap.String("submission_id", submission.ID),
		zap.String("user_id", req.UserID),
		zap.Int64("points", req.Points),
	)

	publish(ctx, s.events, s.logger, &events.SubmissionCreatedEvent{
		BaseEvent:    events.NewBaseEvent(events.TypeSubmissionCreated, req.UserID),
		SubmissionID: submission.ID,
		Points:       req.Points,
		ImageURL:     req.ImageURL,
	})
	return submission.ID, nil
}

func (s *submissionService) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	if id == "" {
		return nil, NewValidationError("submission id is required", nil)
	}

	submission, err := s.history.GetByID(ctx, nil, id)
	if err != nil {
		return nil, storeError(s.logger, "load submission", err)
	}
	if submission == nil || submission.Status == nil {
		return nil, NewNotFoundError("submission not found")
	}
	return submission, nil
}

// ListUserHistory returns every ledger movement of the user, newest first
func (s *submissionService) ListUserHistory(ctx context.Context, userID string, limit int) ([]*models.HistoryEntry, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	entries, err := s.history.ListByUser(ctx, nil, userID, limit)
	if err != nil {
		return nil, storeError(s.logger, "list history", err)
	}
	return entries, nil
}

// ListSubmissions is the review queue: pending first, then newest first
func (s *submissionService) ListSubmissions(ctx context.Context, req *ListSubmissionsRequest) ([]*models.Submission, error) {
	if req == nil {
		req = &ListSubmissionsRequest{}
	}
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid submission filter", err)
	}

	submissions, err := s.history.ListSubmissions(ctx, nil, repositories.SubmissionFilter{
		Status: req.Status,
		UserID: req.UserID,
		Limit:  req.Limit,
	})
	if err != nil {
		return nil, storeError(s.logger, "list submissions", err)
	}
	return submissions, nil
}
