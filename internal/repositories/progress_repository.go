// file: internal/repositories/progress_repository.go
package repositories

import (
	"context"
	"fmt"
	"time"

	"recyclehub/internal/database"
	"recyclehub/internal/models"

	"go.uber.org/zap"
)

type progressRepository struct {
	*BaseRepository
}

// NewProgressRepository creates a new daily progress repository
func NewProgressRepository(db *database.Manager, logger *zap.Logger) ProgressRepository {
	return &progressRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const dayColumns = `user_id, progress_date, streak, streak_credited, created_at, updated_at`

func (r *progressRepository) GetDay(ctx context.Context, q Querier, userID, date string) (*models.DailyProgress, error) {
	return r.loadDay(ctx, q, `SELECT `+dayColumns+` FROM daily_progress WHERE user_id = ? AND progress_date = ?`, userID, date)
}

func (r *progressRepository) LockDay(ctx context.Context, q Querier, userID, date string) (*models.DailyProgress, error) {
	return r.loadDay(ctx, q, `SELECT `+dayColumns+` FROM daily_progress WHERE user_id = ? AND progress_date = ?`+r.ForUpdate(), userID, date)
}

func (r *progressRepository) loadDay(ctx context.Context, q Querier, query, userID, date string) (*models.DailyProgress, error) {
	var day models.DailyProgress
	err := r.QueryRowContext(ctx, q, query, userID, date).Scan(
		&day.UserID, &day.Date, &day.Streak, &day.StreakCredited, &day.CreatedAt, &day.UpdatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get progress of %s on %s: %w", userID, date, err)
	}

	rows, err := r.QueryContext(ctx, q, `
		SELECT challenge_id, current_count, completed, claimed
		FROM challenge_progress
		WHERE user_id = ? AND progress_date = ?`, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge entries of %s on %s: %w", userID, date, err)
	}
	defer rows.Close()

	day.Challenges = make(map[string]*models.ChallengeProgress)
	for rows.Next() {
		var (
			challengeID string
			entry       models.ChallengeProgress
		)
		if err := rows.Scan(&challengeID, &entry.Current, &entry.Completed, &entry.Claimed); err != nil {
			return nil, fmt.Errorf("failed to scan challenge entry: %w", err)
		}
		day.Challenges[challengeID] = &entry
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &day, nil
}

func (r *progressRepository) CreateDay(ctx context.Context, q Querier, day *models.DailyProgress) (bool, error) {
	day.CreatedAt = stamp(day.CreatedAt)
	day.UpdatedAt = day.CreatedAt

	result, err := r.ExecContext(ctx, q, `
		INSERT INTO daily_progress (`+dayColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, progress_date) DO NOTHING`,
		day.UserID, day.Date, day.Streak, day.StreakCredited, day.CreatedAt, day.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to create progress of %s on %s: %w", day.UserID, day.Date, err)
	}
	created, err := affected(result)
	if err != nil || !created {
		return false, err
	}

	for challengeID, entry := range day.Challenges {
		if err := r.SaveEntry(ctx, q, day.UserID, day.Date, challengeID, entry, day.CreatedAt); err != nil {
			return false, err
		}
	}
	return true, nil
}

// SaveEntry writes one challenge entry. Completed and claimed are OR-ed with
// the stored flags so neither can revert to false.
func (r *progressRepository) SaveEntry(ctx context.Context, q Querier, userID, date, challengeID string, p *models.ChallengeProgress, at time.Time) error {
	_, err := r.ExecContext(ctx, q, `
		INSERT INTO challenge_progress (user_id, progress_date, challenge_id, current_count, completed, claimed, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, progress_date, challenge_id) DO UPDATE SET
			current_count = excluded.current_count,
			completed = (challenge_progress.completed OR excluded.completed),
			claimed = (challenge_progress.claimed OR excluded.claimed),
			updated_at = excluded.updated_at`,
		userID, date, challengeID, p.Current, p.Completed, p.Claimed, stamp(at))
	if err != nil {
		return fmt.Errorf("failed to save challenge %s progress of %s on %s: %w", challengeID, userID, date, err)
	}
	return nil
}

func (r *progressRepository) SaveStreak(ctx context.Context, q Querier, userID, date string, streak int, credited bool, at time.Time) error {
	_, err := r.ExecContext(ctx, q, `
		UPDATE daily_progress
		SET streak = ?, streak_credited = ?, updated_at = ?
		WHERE user_id = ? AND progress_date = ?`,
		streak, credited, stamp(at), userID, date)
	if err != nil {
		return fmt.Errorf("failed to save streak of %s on %s: %w", userID, date, err)
	}
	return nil
}
