// file: internal/services/challenge.go
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"recyclehub/internal/database"
	"recyclehub/internal/events"
	"recyclehub/internal/models"
	"recyclehub/internal/repositories"

	"go.uber.org/zap"
)

type challengeService struct {
	db         *database.Manager
	challenges repositories.ChallengeRepository
	progress   repositories.ProgressRepository
	catalog    CatalogService
	ledger     PointLedger
	events     events.EventBus
	now        Clock
	logger     *zap.Logger
}

// NewChallengeService creates the challenge progress tracker
func NewChallengeService(
	db *database.Manager,
	challenges repositories.ChallengeRepository,
	progress repositories.ProgressRepository,
	catalog CatalogService,
	ledger PointLedger,
	bus events.EventBus,
	now Clock,
	logger *zap.Logger,
) ChallengeService {
	if now == nil {
		now = SystemClock
	}
	return &challengeService{
		db:         db,
		challenges: challenges,
		progress:   progress,
		catalog:    catalog,
		ledger:     ledger,
		events:     bus,
		now:        now,
		logger:     logger,
	}
}

// ===============================
// PROGRESS READS
// ===============================

// GetTodayProgress merges the active catalog with the user's progress for
// today, creating today's record first when there is none.
func (s *challengeService) GetTodayProgress(ctx context.Context, userID string) (*TodayProgress, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	today := models.DateKey(s.now())
	active, err := s.catalog.ListChallenges(ctx, true)
	if err != nil {
		return nil, err
	}

	day, err := s.progress.GetDay(ctx, nil, userID, today)
	if err != nil {
		return nil, storeError(s.logger, "load daily progress", err)
	}
	if day == nil {
		if day, err = s.createDay(ctx, userID, today, active); err != nil {
			return nil, err
		}
	}

	result := &TodayProgress{
		Date:       today,
		Streak:     day.Streak,
		Challenges: make([]*ChallengeStatus, 0, len(active)),
	}
	for _, c := range active {
		status := &ChallengeStatus{Challenge: c}
		// challenges added after the record was created read as untouched
		if entry, ok := day.Challenges[c.ID]; ok {
			status.Current = entry.Current
			status.Completed = entry.Completed
			status.Claimed = entry.Claimed
		}
		result.Challenges = append(result.Challenges, status)
	}
	return result, nil
}

// CalculateStreak carries yesterday's streak forward only when every
// challenge of yesterday was completed.
func (s *challengeService) CalculateStreak(ctx context.Context, userID string) (int, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	return s.streakBefore(ctx, userID, models.DateKey(s.now()))
}

func (s *challengeService) streakBefore(ctx context.Context, userID, date string) (int, error) {
	previous, err := models.PreviousDateKey(date)
	if err != nil {
		return 0, NewValidationError("invalid progress date", err)
	}

	day, err := s.progress.GetDay(ctx, nil, userID, previous)
	if err != nil {
		return 0, storeError(s.logger, "load previous progress", err)
	}
	if day == nil || !day.AllCompleted() {
		return 0, nil
	}
	return day.Streak, nil
}

// createDay seeds a day record from the active catalog and returns the
// stored record, which may be one a concurrent caller created first.
func (s *challengeService) createDay(ctx context.Context, userID, date string, active []*models.Challenge) (*models.DailyProgress, error) {
	streak, err := s.streakBefore(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	err = s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := s.progress.CreateDay(ctx, tx, seedDay(userID, date, streak, active, s.now()))
		return err
	})
	if err != nil {
		return nil, storeError(s.logger, "create daily progress", err)
	}

	day, err := s.progress.GetDay(ctx, nil, userID, date)
	if err != nil {
		return nil, storeError(s.logger, "load daily progress", err)
	}
	if day == nil {
		return nil, NewInternalError("daily progress missing after create")
	}

	s.logger.Debug("Daily progress created",
		zap.String("user_id", userID),
		zap.String("date", date),
		zap.Int("streak", day.Streak),
	)
	return day, nil
}

func seedDay(userID, date string, streak int, active []*models.Challenge, at time.Time) *models.DailyProgress {
	day := &models.DailyProgress{
		UserID:     userID,
		Date:       date,
		Streak:     streak,
		Challenges: make(map[string]*models.ChallengeProgress, len(active)),
		CreatedAt:  at,
	}
	for _, c := range active {
		day.Challenges[c.ID] = &models.ChallengeProgress{}
	}
	return day
}

// ===============================
// PROGRESS WRITES
// ===============================

// RecordRecycle counts one approved recycle against the RECYCLE_COUNT
// challenges of the given day. The day row stays locked for the whole
// read-modify-write, so concurrent approvals for the same user and day
// serialize instead of losing increments.
func (s *challengeService) RecordRecycle(ctx context.Context, userID string, at time.Time) error {
	date := models.DateKey(at)

	active, err := s.catalog.ListChallenges(ctx, true)
	if err != nil {
		return err
	}
	streak, err := s.streakBefore(ctx, userID, date)
	if err != nil {
		return err
	}

	advanced := 0
	err = s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		advanced = 0

		day, err := s.progress.LockDay(ctx, tx, userID, date)
		if err != nil {
			return err
		}
		if day == nil {
			if _, err := s.progress.CreateDay(ctx, tx, seedDay(userID, date, streak, active, s.now())); err != nil {
				return err
			}
			if day, err = s.progress.LockDay(ctx, tx, userID, date); err != nil {
				return err
			}
			if day == nil {
				return fmt.Errorf("progress of %s on %s missing after create", userID, date)
			}
		}

		for _, c := range active {
			if c.Type != models.ChallengeRecycleCount {
				continue
			}
			entry, ok := day.Challenges[c.ID]
			if !ok {
				entry = &models.ChallengeProgress{}
			}
			if entry.Completed {
				continue
			}

			entry.Current++
			if entry.Current >= c.TargetCount {
				entry.Completed = true
			}
			if err := s.progress.SaveEntry(ctx, tx, userID, date, c.ID, entry, s.now()); err != nil {
				return err
			}
			advanced++
		}
		return nil
	})
	if err != nil {
		return storeError(s.logger, "record recycle progress", err)
	}

	s.logger.Debug("Recycle progress recorded",
		zap.String("user_id", userID),
		zap.String("date", date),
		zap.Int("challenges_advanced", advanced),
	)
	return nil
}

// ClaimBonus pays the catalog bonus of a completed challenge once. The
// caller's bonusPoints is only what the client displayed and never moves
// points. Rule failures come back as an unsuccessful result; only system
// failures are returned as errors.
func (s *challengeService) ClaimBonus(ctx context.Context, userID, challengeID string, bonusPoints int64) (*OperationResult, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if challengeID == "" {
		return nil, NewValidationError("challenge id is required", nil)
	}

	today := models.DateKey(s.now())

	definition, err := s.challenges.GetByID(ctx, nil, challengeID)
	if err != nil {
		return nil, storeError(s.logger, "load challenge", err)
	}
	if definition == nil {
		return failed(NewNotFoundError("challenge not found")), nil
	}
	// the catalog is the only source of the amount, zero included
	bonus, title := definition.BonusPoints, "Challenge bonus: "+definition.Title
	if bonusPoints != bonus {
		s.logger.Debug("Ignoring client bonus figure",
			zap.String("challenge_id", challengeID),
			zap.Int64("requested", bonusPoints),
			zap.Int64("catalog", bonus),
		)
	}

	var streak int
	err = s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		day, err := s.progress.LockDay(ctx, tx, userID, today)
		if err != nil {
			return err
		}
		if day == nil {
			return NewNotFoundError("no challenge progress recorded for today")
		}
		streak = day.Streak

		entry, ok := day.Challenges[challengeID]
		if !ok {
			return NewNotFoundError("challenge is not part of today's progress")
		}
		if !entry.Completed {
			return NewInvalidStateError("challenge not yet completed")
		}
		if entry.Claimed {
			return NewInvalidStateError("bonus already claimed")
		}

		if _, err := s.ledger.EnsureAccount(ctx, tx, userID); err != nil {
			return err
		}
		err = s.ledger.Apply(ctx, tx, Movement{
			UserID:      userID,
			PointsDelta: bonus,
			Entry: &models.HistoryEntry{
				Action: models.ActionBonus,
				Title:  title,
				Points: bonus,
				Status: models.StatusPtr(models.StatusApproved),
			},
		})
		if err != nil {
			return err
		}

		entry.Claimed = true
		if err := s.progress.SaveEntry(ctx, tx, userID, today, challengeID, entry, s.now()); err != nil {
			return err
		}

		// completion alone decides the streak; claims do not count
		if day.AllCompleted() && !day.StreakCredited {
			streak = day.Streak + 1
			return s.progress.SaveStreak(ctx, tx, userID, today, streak, true, s.now())
		}
		return nil
	})
	if err != nil {
		if rule, ok := isRuleFailure(err); ok {
			s.logger.Info("Bonus claim refused",
				zap.String("user_id", userID),
				zap.String("challenge_id", challengeID),
				zap.String("reason", rule.Message),
			)
			return failed(rule), nil
		}
		return nil, storeError(s.logger, "claim bonus", err)
	}

	s.logger.Info("🏆 Bonus claimed",
		zap.String("user_id", userID),
		zap.String("challenge_id", challengeID),
		zap.Int64("bonus", bonus),
		zap.Int("streak", streak),
	)

	publish(ctx, s.events, s.logger, &events.BonusClaimedEvent{
		BaseEvent:   events.NewBaseEvent(events.TypeBonusClaimed, userID),
		ChallengeID: challengeID,
		Date:        today,
		Bonus:       bonus,
		Streak:      streak,
	})

	return succeeded(fmt.Sprintf("+%d bonus points!", bonus), map[string]interface{}{
		"challenge_id": challengeID,
		"bonus":        bonus,
		"streak":       streak,
	}), nil
}
