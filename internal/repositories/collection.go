// file: internal/repositories/collection.go
package repositories

import (
	"fmt"

	"recyclehub/internal/database"

	"go.uber.org/zap"
)

// Collection holds all repository instances for dependency injection
type Collection struct {
	User       UserRepository
	History    HistoryRepository
	Challenge  ChallengeRepository
	Progress   ProgressRepository
	Reward     RewardRepository
	Redemption RedemptionRepository

	db     *database.Manager
	logger *zap.Logger
}

// NewCollection creates a new repository collection with all dependencies
func NewCollection(db *database.Manager, logger *zap.Logger) (*Collection, error) {
	if db == nil {
		return nil, fmt.Errorf("database manager is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	collection := &Collection{
		User:       NewUserRepository(db, logger),
		History:    NewHistoryRepository(db, logger),
		Challenge:  NewChallengeRepository(db, logger),
		Progress:   NewProgressRepository(db, logger),
		Reward:     NewRewardRepository(db, logger),
		Redemption: NewRedemptionRepository(db, logger),
		db:         db,
		logger:     logger,
	}

	logger.Info("Repository collection initialized successfully",
		zap.String("driver", string(db.Dialect())),
		zap.Duration("slow_query_threshold", db.SlowQueryThreshold()),
	)
	return collection, nil
}

// DB returns the database manager backing the collection
func (c *Collection) DB() *database.Manager {
	return c.db
}
