// file: internal/repositories/reward_repository.go
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

type rewardRepository struct {
	*BaseRepository
}

// NewRewardRepository creates a new reward repository
func NewRewardRepository(db *database.Manager, logger *zap.Logger) RewardRepository {
	return &rewardRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const rewardColumns = `id, name, description, image, points, stock, category, is_active, created_at, updated_at`

func (r *rewardRepository) Create(ctx context.Context, q Querier, reward *models.Reward) error {
	if reward.ID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("failed to generate reward id: %w", err)
		}
		reward.ID = id.String()
	}
	normaliseReward(reward)

	query := `INSERT INTO rewards (` + rewardColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.ExecContext(ctx, q, query, rewardValues(reward)...); err != nil {
		return fmt.Errorf("failed to create reward: %w", err)
	}
	return nil
}

// Upsert creates the reward or overwrites the existing one with the same id.
// Stock is replaced as well.
func (r *rewardRepository) Upsert(ctx context.Context, q Querier, reward *models.Reward) error {
	if reward.ID == "" {
		return r.Create(ctx, q, reward)
	}
	normaliseReward(reward)

	query := `
		INSERT INTO rewards (` + rewardColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			image = excluded.image,
			points = excluded.points,
			stock = excluded.stock,
			category = excluded.category,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at`

	if _, err := r.ExecContext(ctx, q, query, rewardValues(reward)...); err != nil {
		return fmt.Errorf("failed to upsert reward %s: %w", reward.ID, err)
	}
	return nil
}

// Update edits the catalog fields of a reward. Stock is left alone; use
// AdjustStock so concurrent redemptions are not overwritten.
func (r *rewardRepository) Update(ctx context.Context, q Querier, reward *models.Reward) (bool, error) {
	reward.UpdatedAt = stamp(reward.UpdatedAt)

	result, err := r.ExecContext(ctx, q, `
		UPDATE rewards
		SET name = ?, description = ?, image = ?, points = ?, category = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		reward.Name, reward.Description, reward.Image, reward.Points, reward.Category,
		reward.IsActive, reward.UpdatedAt, reward.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update reward %s: %w", reward.ID, err)
	}
	return affected(result)
}

func (r *rewardRepository) SetActive(ctx context.Context, q Querier, id string, active bool, at time.Time) (bool, error) {
	result, err := r.ExecContext(ctx, q,
		`UPDATE rewards SET is_active = ?, updated_at = ? WHERE id = ?`, active, stamp(at), id)
	if err != nil {
		return false, fmt.Errorf("failed to toggle reward %s: %w", id, err)
	}
	return affected(result)
}

func (r *rewardRepository) AdjustStock(ctx context.Context, q Querier, id string, delta int64, at time.Time) (bool, error) {
	result, err := r.ExecContext(ctx, q, `
		UPDATE rewards
		SET stock = stock + ?, updated_at = ?
		WHERE id = ? AND stock + ? >= 0`,
		delta, stamp(at), id, delta)
	if err != nil {
		return false, fmt.Errorf("failed to adjust stock of reward %s: %w", id, err)
	}
	return affected(result)
}

func (r *rewardRepository) GetByID(ctx context.Context, q Querier, id string) (*models.Reward, error) {
	return r.get(ctx, q, `SELECT `+rewardColumns+` FROM rewards WHERE id = ?`, id)
}

func (r *rewardRepository) GetForUpdate(ctx context.Context, q Querier, id string) (*models.Reward, error) {
	return r.get(ctx, q, `SELECT `+rewardColumns+` FROM rewards WHERE id = ?`+r.ForUpdate(), id)
}

func (r *rewardRepository) get(ctx context.Context, q Querier, query, id string) (*models.Reward, error) {
	reward, err := scanReward(r.QueryRowContext(ctx, q, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reward %s: %w", id, err)
	}
	return reward, nil
}

func (r *rewardRepository) ListActive(ctx context.Context, q Querier) ([]*models.Reward, error) {
	return r.list(ctx, q, `SELECT `+rewardColumns+` FROM rewards WHERE is_active = ? ORDER BY points, name`, true)
}

func (r *rewardRepository) ListAll(ctx context.Context, q Querier) ([]*models.Reward, error) {
	return r.list(ctx, q, `SELECT `+rewardColumns+` FROM rewards ORDER BY created_at, id`)
}

func (r *rewardRepository) list(ctx context.Context, q Querier, query string, args ...interface{}) ([]*models.Reward, error) {
	rows, err := r.QueryContext(ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}
	defer rows.Close()

	rewards := make([]*models.Reward, 0)
	for rows.Next() {
		reward, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reward: %w", err)
		}
		rewards = append(rewards, reward)
	}
	return rewards, rows.Err()
}

func normaliseReward(reward *models.Reward) {
	reward.CreatedAt = stamp(reward.CreatedAt)
	if reward.UpdatedAt.IsZero() {
		reward.UpdatedAt = reward.CreatedAt
	}
	reward.UpdatedAt = stamp(reward.UpdatedAt)
	if reward.Category == "" {
		reward.Category = "Item"
	}
}

func rewardValues(reward *models.Reward) []interface{} {
	return []interface{}{
		reward.ID, reward.Name, reward.Description, reward.Image, reward.Points, reward.Stock,
		reward.Category, reward.IsActive, reward.CreatedAt, reward.UpdatedAt,
	}
}

func scanReward(row rowScanner) (*models.Reward, error) {
	var reward models.Reward
	err := row.Scan(&reward.ID, &reward.Name, &reward.Description, &reward.Image, &reward.Points,
		&reward.Stock, &reward.Category, &reward.IsActive, &reward.CreatedAt, &reward.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &reward, nil
}
