// file: internal/repositories/history_repository.go
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"recyclehub/internal/database"
	"recyclehub/internal/models"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

type historyRepository struct {
	*BaseRepository
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *database.Manager, logger *zap.Logger) HistoryRepository {
	return &historyRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const historyColumns = `id, user_id, action, title, points, reward_id, image_url, status,
	reviewed_by, review_note, reviewed_at, created_at`

// Create inserts the entry, assigning an id and creation time when unset
func (r *historyRepository) Create(ctx context.Context, q Querier, entry *models.HistoryEntry) error {
	if entry.ID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("failed to generate history id: %w", err)
		}
		entry.ID = id.String()
	}
	entry.CreatedAt = stamp(entry.CreatedAt)

	query := `
		INSERT INTO history (` + historyColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.ExecContext(ctx, q, query,
		entry.ID, entry.UserID, string(entry.Action), entry.Title, entry.Points,
		entry.RewardID, entry.ImageURL, statusValue(entry.Status),
		entry.ReviewedBy, entry.ReviewNote, entry.ReviewedAt, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create %s history entry: %w", entry.Action, err)
	}
	return nil
}

func (r *historyRepository) GetByID(ctx context.Context, q Querier, id string) (*models.HistoryEntry, error) {
	return r.get(ctx, q, `SELECT `+historyColumns+` FROM history WHERE id = ?`, id)
}

func (r *historyRepository) GetForUpdate(ctx context.Context, q Querier, id string) (*models.HistoryEntry, error) {
	return r.get(ctx, q, `SELECT `+historyColumns+` FROM history WHERE id = ?`+r.ForUpdate(), id)
}

func (r *historyRepository) get(ctx context.Context, q Querier, query, id string) (*models.HistoryEntry, error) {
	entry, err := scanHistory(r.QueryRowContext(ctx, q, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get history entry %s: %w", id, err)
	}
	return entry, nil
}

func (r *historyRepository) Transition(ctx context.Context, q Querier, id string, from, to models.SubmissionStatus, reviewer string, note *string, at time.Time) (bool, error) {
	query := `
		UPDATE history
		SET status = ?, reviewed_by = ?, review_note = ?, reviewed_at = ?
		WHERE id = ? AND status = ?`

	result, err := r.ExecContext(ctx, q, query,
		string(to), reviewer, note, stamp(at), id, string(from))
	if err != nil {
		return false, fmt.Errorf("failed to move submission %s to %s: %w", id, to, err)
	}
	return affected(result)
}

func (r *historyRepository) ListByUser(ctx context.Context, q Querier, userID string, limit int) ([]*models.HistoryEntry, error) {
	query := `
		SELECT ` + historyColumns + `
		FROM history
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`

	return r.list(ctx, q, query, userID, clampLimit(limit, 50, 200))
}

func (r *historyRepository) ListSubmissions(ctx context.Context, q Querier, filter SubmissionFilter) ([]*models.HistoryEntry, error) {
	conditions := []string{"action = ?"}
	args := []interface{}{string(models.ActionRecycle)}

	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	args = append(args, clampLimit(filter.Limit, 50, 500))

	query := `
		SELECT ` + historyColumns + `
		FROM history
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY CASE WHEN status = 'PENDING' THEN 0 ELSE 1 END, created_at DESC, id DESC
		LIMIT ?`

	return r.list(ctx, q, query, args...)
}

func (r *historyRepository) list(ctx context.Context, q Querier, query string, args ...interface{}) ([]*models.HistoryEntry, error) {
	rows, err := r.QueryContext(ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.HistoryEntry, 0)
	for rows.Next() {
		entry, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanHistory(row rowScanner) (*models.HistoryEntry, error) {
	var (
		entry  models.HistoryEntry
		action string
		status sql.NullString
	)
	err := row.Scan(
		&entry.ID, &entry.UserID, &action, &entry.Title, &entry.Points,
		&entry.RewardID, &entry.ImageURL, &status,
		&entry.ReviewedBy, &entry.ReviewNote, &entry.ReviewedAt, &entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Action = models.HistoryAction(action)
	if status.Valid {
		entry.Status = models.StatusPtr(models.SubmissionStatus(status.String))
	}
	return &entry, nil
}

func statusValue(s *models.SubmissionStatus) interface{} {
	if s == nil {
		return nil
	}
	return string(*s)
}
