// file: internal/repositories/redemption_repository.go
package repositories

import (
	"context"
	"fmt"
	"time"

	"recyclehub/internal/database"
	"recyclehub/internal/models"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

type redemptionRepository struct {
	*BaseRepository
}

// NewRedemptionRepository creates a new voucher repository
func NewRedemptionRepository(db *database.Manager, logger *zap.Logger) RedemptionRepository {
	return &redemptionRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const redemptionColumns = `id, user_id, reward_id, reward_name, reward_image, points_used, code, status, expires_at, used_at, created_at`

func (r *redemptionRepository) Create(ctx context.Context, q Querier, red *models.Redemption) error {
	if red.ID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("failed to generate redemption id: %w", err)
		}
		red.ID = id.String()
	}
	if red.Status == "" {
		red.Status = models.RedemptionUnused
	}
	red.CreatedAt = stamp(red.CreatedAt)
	red.ExpiresAt = stamp(red.ExpiresAt)

	_, err := r.ExecContext(ctx, q, `
		INSERT INTO redemptions (`+redemptionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		red.ID, red.UserID, red.RewardID, red.RewardName, red.RewardImage, red.PointsUsed,
		red.Code, string(red.Status), red.ExpiresAt, red.UsedAt, red.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create redemption: %w", err)
	}
	return nil
}

func (r *redemptionRepository) CodeExists(ctx context.Context, q Querier, code string) (bool, error) {
	var n int
	if err := r.QueryRowContext(ctx, q, `SELECT COUNT(*) FROM redemptions WHERE code = ?`, code).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check voucher code: %w", err)
	}
	return n > 0, nil
}

func (r *redemptionRepository) GetByID(ctx context.Context, q Querier, id string) (*models.Redemption, error) {
	return r.get(ctx, q, `SELECT `+redemptionColumns+` FROM redemptions WHERE id = ?`, id)
}

func (r *redemptionRepository) GetForUpdate(ctx context.Context, q Querier, id string) (*models.Redemption, error) {
	return r.get(ctx, q, `SELECT `+redemptionColumns+` FROM redemptions WHERE id = ?`+r.ForUpdate(), id)
}

func (r *redemptionRepository) get(ctx context.Context, q Querier, query, id string) (*models.Redemption, error) {
	red, err := scanRedemption(r.QueryRowContext(ctx, q, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get redemption %s: %w", id, err)
	}
	return red, nil
}

func (r *redemptionRepository) ListByUser(ctx context.Context, q Querier, userID string, limit int) ([]*models.Redemption, error) {
	rows, err := r.QueryContext(ctx, q, `
		SELECT `+redemptionColumns+`
		FROM redemptions
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, userID, clampLimit(limit, 50, 200))
	if err != nil {
		return nil, fmt.Errorf("failed to list redemptions of %s: %w", userID, err)
	}
	defer rows.Close()

	redemptions := make([]*models.Redemption, 0)
	for rows.Next() {
		red, err := scanRedemption(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan redemption: %w", err)
		}
		redemptions = append(redemptions, red)
	}
	return redemptions, rows.Err()
}

func (r *redemptionRepository) CountByReward(ctx context.Context, q Querier, rewardID string) (int64, error) {
	var n int64
	if err := r.QueryRowContext(ctx, q, `SELECT COUNT(*) FROM redemptions WHERE reward_id = ?`, rewardID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count redemptions of reward %s: %w", rewardID, err)
	}
	return n, nil
}

// SetStatus records used_at when moving to USED
func (r *redemptionRepository) SetStatus(ctx context.Context, q Querier, id string, from, to models.RedemptionStatus, at time.Time) (bool, error) {
	var usedAt interface{}
	if to == models.RedemptionUsed {
		usedAt = stamp(at)
	}

	result, err := r.ExecContext(ctx, q, `
		UPDATE redemptions
		SET status = ?, used_at = COALESCE(?, used_at)
		WHERE id = ? AND status = ?`,
		string(to), usedAt, id, string(from))
	if err != nil {
		return false, fmt.Errorf("failed to move redemption %s to %s: %w", id, to, err)
	}
	return affected(result)
}

func (r *redemptionRepository) ExpireBefore(ctx context.Context, q Querier, now time.Time) (int64, error) {
	result, err := r.ExecContext(ctx, q, `
		UPDATE redemptions
		SET status = ?
		WHERE status = ? AND expires_at < ?`,
		string(models.RedemptionExpired), string(models.RedemptionUnused), stamp(now))
	if err != nil {
		return 0, fmt.Errorf("failed to expire vouchers: %w", err)
	}
	return result.RowsAffected()
}

func scanRedemption(row rowScanner) (*models.Redemption, error) {
	var (
		red    models.Redemption
		status string
	)
	err := row.Scan(&red.ID, &red.UserID, &red.RewardID, &red.RewardName, &red.RewardImage,
		&red.PointsUsed, &red.Code, &status, &red.ExpiresAt, &red.UsedAt, &red.CreatedAt)
	if err != nil {
		return nil, err
	}
	red.Status = models.RedemptionStatus(status)
	return &red, nil
}
