// file: internal/services/catalog.go
package services

import (
	"context"
	"time"

	"recyclehub/internal/cache"
	"recyclehub/internal/models"
	"recyclehub/internal/repositories"
	"recyclehub/internal/validation"

	"go.uber.org/zap"
)

// Cache keys of the active catalogs
const (
	CacheKeyActiveChallenges = "catalog:challenges:active"
	CacheKeyActiveRewards    = "catalog:rewards:active"
)

type catalogService struct {
	challenges repositories.ChallengeRepository
	rewards    repositories.RewardRepository
	cache      cache.Cache
	ttl        time.Duration
	now        Clock
	logger     *zap.Logger
}

// NewCatalogService creates the challenge and reward catalog service. Active
// listings are served from c for ttl; every write drops them.
func NewCatalogService(
	challenges repositories.ChallengeRepository,
	rewards repositories.RewardRepository,
	c cache.Cache,
	ttl time.Duration,
	now Clock,
	logger *zap.Logger,
) CatalogService {
	if now == nil {
		now = SystemClock
	}
	return &catalogService{
		challenges: challenges,
		rewards:    rewards,
		cache:      c,
		ttl:        ttl,
		now:        now,
		logger:     logger,
	}
}

// ===============================
// CHALLENGES
// ===============================

func (s *catalogService) ListChallenges(ctx context.Context, activeOnly bool) ([]*models.Challenge, error) {
	load := func(ctx context.Context) ([]*models.Challenge, error) {
		if activeOnly {
			return s.challenges.ListActive(ctx, nil)
		}
		return s.challenges.ListAll(ctx, nil)
	}

	var (
		list []*models.Challenge
		err  error
	)
	if activeOnly && s.cache != nil {
		list, err = cache.GetOrLoad(ctx, s.cache, s.logger, CacheKeyActiveChallenges, s.ttl, load)
	} else {
		list, err = load(ctx)
	}
	if err != nil {
		return nil, storeError(s.logger, "list challenges", err)
	}
	return list, nil
}

func (s *catalogService) CreateChallenge(ctx context.Context, in *ChallengeInput) (*models.Challenge, error) {
	challenge, err := s.challengeFrom("", in)
	if err != nil {
		return nil, err
	}
	challenge.ID = in.ID // empty draws a new id

	if err := s.challenges.Create(ctx, nil, challenge); err != nil {
		return nil, storeError(s.logger, "create challenge", err)
	}
	s.invalidate(ctx, CacheKeyActiveChallenges)

	s.logger.Info("Challenge created",
		zap.String("challenge_id", challenge.ID),
		zap.Int("target", challenge.TargetCount),
		zap.Int64("bonus", challenge.BonusPoints),
	)
	return challenge, nil
}

func (s *catalogService) UpdateChallenge(ctx context.Context, id string, in *ChallengeInput) (*models.Challenge, error) {
	existing, err := s.challenges.GetByID(ctx, nil, id)
	if err != nil {
		return nil, storeError(s.logger, "load challenge", err)
	}
	if existing == nil {
		return nil, NewNotFoundError("challenge not found")
	}

	challenge, err := s.challengeFrom(id, in)
	if err != nil {
		return nil, err
	}
	if in.IsActive == nil {
		challenge.IsActive = existing.IsActive
	}
	challenge.CreatedAt = existing.CreatedAt

	found, err := s.challenges.Update(ctx, nil, challenge)
	if err != nil {
		return nil, storeError(s.logger, "update challenge", err)
	}
	if !found {
		return nil, NewNotFoundError("challenge not found")
	}
	s.invalidate(ctx, CacheKeyActiveChallenges)
	return challenge, nil
}

func (s *catalogService) SetChallengeActive(ctx context.Context, id string, active bool) error {
	found, err := s.challenges.SetActive(ctx, nil, id, active, s.now())
	if err != nil {
		return storeError(s.logger, "toggle challenge", err)
	}
	if !found {
		return NewNotFoundError("challenge not found")
	}
	s.invalidate(ctx, CacheKeyActiveChallenges)
	return nil
}

// UpsertChallenge writes the challenge under its given id, for imports
func (s *catalogService) UpsertChallenge(ctx context.Context, in *ChallengeInput) (*models.Challenge, error) {
	challenge, err := s.challengeFrom("", in)
	if err != nil {
		return nil, err
	}
	challenge.ID = in.ID

	if err := s.challenges.Upsert(ctx, nil, challenge); err != nil {
		return nil, storeError(s.logger, "import challenge", err)
	}
	s.invalidate(ctx, CacheKeyActiveChallenges)
	return challenge, nil
}

func (s *catalogService) challengeFrom(id string, in *ChallengeInput) (*models.Challenge, error) {
	if in == nil {
		return nil, NewValidationError("challenge is required", nil)
	}
	if err := validation.ValidateStruct(in); err != nil {
		return nil, NewValidationError("invalid challenge", err)
	}

	now := s.now()
	challenge := &models.Challenge{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Icon:        in.Icon,
		TargetCount: models.ParseTarget(string(in.Target)),
		BonusPoints: in.BonusPoints,
		Type:        in.Type,
		IsActive:    in.IsActive == nil || *in.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if challenge.Type == "" {
		challenge.Type = models.ChallengeRecycleCount
	}
	return challenge, nil
}

// ===============================
// REWARDS
// ===============================

func (s *catalogService) ListRewards(ctx context.Context, activeOnly bool) ([]*models.Reward, error) {
	load := func(ctx context.Context) ([]*models.Reward, error) {
		if activeOnly {
			return s.rewards.ListActive(ctx, nil)
		}
		return s.rewards.ListAll(ctx, nil)
	}

	var (
		list []*models.Reward
		err  error
	)
	if activeOnly && s.cache != nil {
		list, err = cache.GetOrLoad(ctx, s.cache, s.logger, CacheKeyActiveRewards, s.ttl, load)
	} else {
		list, err = load(ctx)
	}
	if err != nil {
		return nil, storeError(s.logger, "list rewards", err)
	}
	return list, nil
}

func (s *catalogService) CreateReward(ctx context.Context, in *RewardInput) (*models.Reward, error) {
	reward, err := s.rewardFrom("", in)
	if err != nil {
		return nil, err
	}
	reward.ID = in.ID

	if err := s.rewards.Create(ctx, nil, reward); err != nil {
		return nil, storeError(s.logger, "create reward", err)
	}
	s.invalidate(ctx, CacheKeyActiveRewards)

	s.logger.Info("Reward created",
		zap.String("reward_id", reward.ID),
		zap.Int64("points", reward.Points),
		zap.Int64("stock", reward.Stock),
	)
	return reward, nil
}

// UpdateReward edits the catalog fields. Stock is never overwritten here.
func (s *catalogService) UpdateReward(ctx context.Context, id string, in *RewardInput) (*models.Reward, error) {
	existing, err := s.rewards.GetByID(ctx, nil, id)
	if err != nil {
		return nil, storeError(s.logger, "load reward", err)
	}
	if existing == nil {
		return nil, NewNotFoundError("reward not found")
	}

	reward, err := s.rewardFrom(id, in)
	if err != nil {
		return nil, err
	}
	if in.IsActive == nil {
		reward.IsActive = existing.IsActive
	}
	if reward.Category == "" {
		reward.Category = existing.Category
	}
	reward.CreatedAt = existing.CreatedAt

	found, err := s.rewards.Update(ctx, nil, reward)
	if err != nil {
		return nil, storeError(s.logger, "update reward", err)
	}
	if !found {
		return nil, NewNotFoundError("reward not found")
	}
	s.invalidate(ctx, CacheKeyActiveRewards)

	reward.Stock = existing.Stock
	return reward, nil
}

func (s *catalogService) SetRewardActive(ctx context.Context, id string, active bool) error {
	found, err := s.rewards.SetActive(ctx, nil, id, active, s.now())
	if err != nil {
		return storeError(s.logger, "toggle reward", err)
	}
	if !found {
		return NewNotFoundError("reward not found")
	}
	s.invalidate(ctx, CacheKeyActiveRewards)
	return nil
}

// Restock adds delta units. A negative delta may not take stock below zero.
func (s *catalogService) Restock(ctx context.Context, id string, delta int64) (*models.Reward, error) {
	if delta == 0 {
		return nil, NewValidationError("stock change must not be zero", nil)
	}

	changed, err := s.rewards.AdjustStock(ctx, nil, id, delta, s.now())
	if err != nil {
		return nil, storeError(s.logger, "restock reward", err)
	}

	reward, err := s.rewards.GetByID(ctx, nil, id)
	if err != nil {
		return nil, storeError(s.logger, "load reward", err)
	}
	if reward == nil {
		return nil, NewNotFoundError("reward not found")
	}
	if !changed {
		return nil, NewBusinessError("stock cannot go below zero", CodeOutOfStock)
	}
	s.invalidate(ctx, CacheKeyActiveRewards)

	s.logger.Info("Reward restocked",
		zap.String("reward_id", id),
		zap.Int64("delta", delta),
		zap.Int64("stock", reward.Stock),
	)
	return reward, nil
}

// UpsertReward writes the reward under its given id, stock included, for
// imports
func (s *catalogService) UpsertReward(ctx context.Context, in *RewardInput) (*models.Reward, error) {
	reward, err := s.rewardFrom("", in)
	if err != nil {
		return nil, err
	}
	reward.ID = in.ID

	if err := s.rewards.Upsert(ctx, nil, reward); err != nil {
		return nil, storeError(s.logger, "import reward", err)
	}
	s.invalidate(ctx, CacheKeyActiveRewards)
	return reward, nil
}

func (s *catalogService) rewardFrom(id string, in *RewardInput) (*models.Reward, error) {
	if in == nil {
		return nil, NewValidationError("reward is required", nil)
	}
	if err := validation.ValidateStruct(in); err != nil {
		return nil, NewValidationError("invalid reward", err)
	}

	now := s.now()
	return &models.Reward{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Image:       in.Image,
		Points:      in.Points,
		Stock:       in.Stock,
		Category:    in.Category,
		IsActive:    in.IsActive == nil || *in.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *catalogService) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("Failed to invalidate catalog cache", zap.Strings("keys", keys), zap.Error(err))
	}
}
