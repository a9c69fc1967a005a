// file: internal/repositories/challenge_repository.go
package repositories

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"recyclehub/internal/database"
	"recyclehub/internal/models"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

type challengeRepository struct {
	*BaseRepository
}

// NewChallengeRepository creates a new challenge repository
func NewChallengeRepository(db *database.Manager, logger *zap.Logger) ChallengeRepository {
	return &challengeRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const challengeColumns = `id, title, description, icon, target_count, bonus_points, type, is_active, created_at, updated_at`

func (r *challengeRepository) Create(ctx context.Context, q Querier, c *models.Challenge) error {
	if c.ID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("failed to generate challenge id: %w", err)
		}
		c.ID = id.String()
	}
	r.normalise(c)

	query := `INSERT INTO challenges (` + challengeColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.ExecContext(ctx, q, query, r.values(c)...); err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}
	return nil
}

// Upsert creates the challenge or overwrites the existing one with the same id
func (r *challengeRepository) Upsert(ctx context.Context, q Querier, c *models.Challenge) error {
	if c.ID == "" {
		return r.Create(ctx, q, c)
	}
	r.normalise(c)

	query := `
		INSERT INTO challenges (` + challengeColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			icon = excluded.icon,
			target_count = excluded.target_count,
			bonus_points = excluded.bonus_points,
			type = excluded.type,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at`

	if _, err := r.ExecContext(ctx, q, query, r.values(c)...); err != nil {
		return fmt.Errorf("failed to upsert challenge %s: %w", c.ID, err)
	}
	return nil
}

func (r *challengeRepository) Update(ctx context.Context, q Querier, c *models.Challenge) (bool, error) {
	c.UpdatedAt = stamp(c.UpdatedAt)
	if c.Icon == "" {
		c.Icon = "trophy"
	}

	query := `
		UPDATE challenges
		SET title = ?, description = ?, icon = ?, target_count = ?, bonus_points = ?, type = ?, is_active = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.ExecContext(ctx, q, query,
		c.Title, c.Description, c.Icon, strconv.Itoa(c.TargetCount), c.BonusPoints,
		string(c.Type), c.IsActive, c.UpdatedAt, c.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update challenge %s: %w", c.ID, err)
	}
	return affected(result)
}

func (r *challengeRepository) SetActive(ctx context.Context, q Querier, id string, active bool, at time.Time) (bool, error) {
	result, err := r.ExecContext(ctx, q,
		`UPDATE challenges SET is_active = ?, updated_at = ? WHERE id = ?`, active, stamp(at), id)
	if err != nil {
		return false, fmt.Errorf("failed to toggle challenge %s: %w", id, err)
	}
	return affected(result)
}

func (r *challengeRepository) GetByID(ctx context.Context, q Querier, id string) (*models.Challenge, error) {
	c, err := scanChallenge(r.QueryRowContext(ctx, q, `SELECT `+challengeColumns+` FROM challenges WHERE id = ?`, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get challenge %s: %w", id, err)
	}
	return c, nil
}

func (r *challengeRepository) ListActive(ctx context.Context, q Querier) ([]*models.Challenge, error) {
	return r.list(ctx, q, `SELECT `+challengeColumns+` FROM challenges WHERE is_active = ? ORDER BY created_at, id`, true)
}

func (r *challengeRepository) ListAll(ctx context.Context, q Querier) ([]*models.Challenge, error) {
	return r.list(ctx, q, `SELECT `+challengeColumns+` FROM challenges ORDER BY created_at, id`)
}

func (r *challengeRepository) list(ctx context.Context, q Querier, query string, args ...interface{}) ([]*models.Challenge, error) {
	rows, err := r.QueryContext(ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	challenges := make([]*models.Challenge, 0)
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, c)
	}
	return challenges, rows.Err()
}

func (r *challengeRepository) normalise(c *models.Challenge) {
	c.CreatedAt = stamp(c.CreatedAt)
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	c.UpdatedAt = stamp(c.UpdatedAt)
	if c.Icon == "" {
		c.Icon = "trophy"
	}
	if c.Type == "" {
		c.Type = models.ChallengeRecycleCount
	}
	if c.TargetCount < 1 {
		c.TargetCount = 1
	}
}

func (r *challengeRepository) values(c *models.Challenge) []interface{} {
	return []interface{}{
		c.ID, c.Title, c.Description, c.Icon, strconv.Itoa(c.TargetCount), c.BonusPoints,
		string(c.Type), c.IsActive, c.CreatedAt, c.UpdatedAt,
	}
}

// scanChallenge parses the loosely typed target column once, here
func scanChallenge(row rowScanner) (*models.Challenge, error) {
	var (
		c      models.Challenge
		target string
		kind   string
	)
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Icon, &target, &c.BonusPoints,
		&kind, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.TargetCount = models.ParseTarget(target)
	c.Type = models.ChallengeType(kind)
	return &c, nil
}
