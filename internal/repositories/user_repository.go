// file: internal/repositories/user_repository.go
package repositories

import (
	"context"
	"fmt"
	"time"

	"recyclehub/internal/database"
	"recyclehub/internal/models"

	"go.uber.org/zap"
)

type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Manager, logger *zap.Logger) UserRepository {
	return &userRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const userColumns = `id, current_points, total_recycled, rank, created_at, updated_at`

func (r *userRepository) GetByID(ctx context.Context, q Querier, id string) (*models.User, error) {
	return r.get(ctx, q, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *userRepository) GetForUpdate(ctx context.Context, q Querier, id string) (*models.User, error) {
	return r.get(ctx, q, `SELECT `+userColumns+` FROM users WHERE id = ?`+r.ForUpdate(), id)
}

func (r *userRepository) get(ctx context.Context, q Querier, query, id string) (*models.User, error) {
	var user models.User
	err := r.QueryRowContext(ctx, q, query, id).Scan(
		&user.ID, &user.CurrentPoints, &user.TotalRecycled,
		&user.Rank, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return &user, nil
}

func (r *userRepository) EnsureExists(ctx context.Context, q Querier, id string, at time.Time) error {
	at = stamp(at)
	query := `
		INSERT INTO users (id, current_points, total_recycled, rank, created_at, updated_at)
		VALUES (?, 0, 0, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`

	if _, err := r.ExecContext(ctx, q, query, id, models.DefaultRank, at, at); err != nil {
		return fmt.Errorf("failed to ensure user %s: %w", id, err)
	}
	return nil
}

func (r *userRepository) ApplyDelta(ctx context.Context, q Querier, id string, pointsDelta, recycledDelta int64, at time.Time) (bool, error) {
	query := `
		UPDATE users
		SET current_points = current_points + ?,
		    total_recycled = total_recycled + ?,
		    updated_at = ?
		WHERE id = ?
		  AND current_points + ? >= 0
		  AND total_recycled + ? >= 0`

	result, err := r.ExecContext(ctx, q, query,
		pointsDelta, recycledDelta, stamp(at), id, pointsDelta, recycledDelta)
	if err != nil {
		return false, fmt.Errorf("failed to update balance of %s: %w", id, err)
	}
	return affected(result)
}
