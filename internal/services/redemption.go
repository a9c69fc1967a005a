// file: internal/services/redemption.go
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"recyclehub/internal/database"
	"recyclehub/internal/events"
	"recyclehub/internal/models"
	"recyclehub/internal/repositories"
	"recyclehub/internal/validation"

	"go.uber.org/zap"
)

const (
	defaultVoucherValidityDays = 30
	voucherCodeAttempts        = 5
)

type redemptionService struct {
	db           *database.Manager
	rewards      repositories.RewardRepository
	redemptions  repositories.RedemptionRepository
	ledger       PointLedger
	events       events.EventBus
	validityDays int
	now          Clock
	logger       *zap.Logger
}

// NewRedemptionService creates the redemption engine. Vouchers stay valid
// for validityDays after issue.
func NewRedemptionService(
	db *database.Manager,
	rewards repositories.RewardRepository,
	redemptions repositories.RedemptionRepository,
	ledger PointLedger,
	bus events.EventBus,
	validityDays int,
	now Clock,
	logger *zap.Logger,
) RedemptionService {
	if validityDays <= 0 {
		validityDays = defaultVoucherValidityDays
	}
	if now == nil {
		now = SystemClock
	}
	return &redemptionService{
		db:           db,
		rewards:      rewards,
		redemptions:  redemptions,
		ledger:       ledger,
		events:       bus,
		validityDays: validityDays,
		now:          now,
		logger:       logger,
	}
}

// Redeem exchanges points for one unit of a reward. Balance and stock are
// read under lock in the same transaction that changes them.
func (s *redemptionService) Redeem(ctx context.Context, userID string, req *RedeemRequest) (*OperationResult, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, NewValidationError("redeem request is required", nil)
	}
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid redeem request", err)
	}

	var redemption *models.Redemption
	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		now := s.now()

		user, err := s.ledger.LockAccount(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return NewNotFoundError("account not found")
		}

		reward, err := s.rewards.GetForUpdate(ctx, tx, req.RewardID)
		if err != nil {
			return err
		}
		if reward == nil || !reward.IsActive {
			return NewNotFoundError("reward no longer exists")
		}
		if reward.Stock <= 0 {
			return NewBusinessError("out of stock", CodeOutOfStock)
		}

		// the catalog price is authoritative, zero included
		price := reward.Points
		if user.CurrentPoints < price {
			return NewBusinessError(
				fmt.Sprintf("insufficient points: need %d, have %d", price, user.CurrentPoints),
				CodeInsufficientPoints,
			)
		}

		err = s.ledger.Apply(ctx, tx, Movement{
			UserID:      userID,
			PointsDelta: -price,
			Entry: &models.HistoryEntry{
				Action:    models.ActionRedeem,
				Title:     "Redeemed: " + reward.Name,
				Points:    -price,
				RewardID:  models.StringPtr(reward.ID),
				CreatedAt: now,
			},
		})
		if err != nil {
			return err
		}

		taken, err := s.rewards.AdjustStock(ctx, tx, reward.ID, -1, now)
		if err != nil {
			return err
		}
		if !taken {
			return NewBusinessError("out of stock", CodeOutOfStock)
		}

		code, err := s.voucherCode(ctx, tx)
		if err != nil {
			return err
		}

		redemption = &models.Redemption{
			UserID:      userID,
			RewardID:    reward.ID,
			RewardName:  reward.Name,
			RewardImage: reward.Image,
			PointsUsed:  price,
			Code:        code,
			Status:      models.RedemptionUnused,
			ExpiresAt:   now.AddDate(0, 0, s.validityDays),
			CreatedAt:   now,
		}
		return s.redemptions.Create(ctx, tx, redemption)
	})
	if err != nil {
		if rule, ok := isRuleFailure(err); ok {
			s.logger.Info("Redemption refused",
				zap.String("user_id", userID),
				zap.String("reward_id", req.RewardID),
				zap.String("reason", rule.Message),
			)
			return failed(rule), nil
		}
		return nil, storeError(s.logger, "redeem reward", err)
	}

	s.logger.Info("🎁 Reward redeemed",
		zap.String("user_id", userID),
		zap.String("reward_id", redemption.RewardID),
		zap.String("redemption_id", redemption.ID),
		zap.Int64("points_used", redemption.PointsUsed),
	)

	publish(ctx, s.events, s.logger, &events.RewardRedeemedEvent{
		BaseEvent:    events.NewBaseEvent(events.TypeRewardRedeemed, userID),
		RedemptionID: redemption.ID,
		RewardID:     redemption.RewardID,
		Code:         redemption.Code,
		PointsUsed:   redemption.PointsUsed,
		ExpiresAt:    redemption.ExpiresAt,
	})
	return succeeded("Reward redeemed!", redemption), nil
}

// voucherCode draws codes until one is unused
func (s *redemptionService) voucherCode(ctx context.Context, tx repositories.Querier) (string, error) {
	for i := 0; i < voucherCodeAttempts; i++ {
		code, err := models.GenerateVoucherCode()
		if err != nil {
			return "", err
		}
		taken, err := s.redemptions.CodeExists(ctx, tx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("no free voucher code after %d attempts", voucherCodeAttempts)
}

func (s *redemptionService) ListRedemptions(ctx context.Context, userID string, limit int) ([]*models.Redemption, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	redemptions, err := s.redemptions.ListByUser(ctx, nil, userID, limit)
	if err != nil {
		return nil, storeError(s.logger, "list redemptions", err)
	}
	return redemptions, nil
}

// UseVoucher marks an unused voucher of the caller as used. A voucher found
// past its expiry is moved to EXPIRED and refused.
func (s *redemptionService) UseVoucher(ctx context.Context, userID, redemptionID string) (*models.Redemption, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if redemptionID == "" {
		return nil, NewValidationError("voucher id is required", nil)
	}

	var (
		redemption *models.Redemption
		expired    bool
	)
	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		now := s.now()
		expired = false

		var err error
		if redemption, err = s.redemptions.GetForUpdate(ctx, tx, redemptionID); err != nil {
			return err
		}
		if redemption == nil || redemption.UserID != userID {
			return NewNotFoundError("voucher not found")
		}
		if redemption.Status != models.RedemptionUnused {
			return NewInvalidStateError(fmt.Sprintf("voucher already %s", strings.ToLower(string(redemption.Status))))
		}

		to := models.RedemptionUsed
		if redemption.IsExpired(now) {
			to, expired = models.RedemptionExpired, true
		}
		moved, err := s.redemptions.SetStatus(ctx, tx, redemptionID, models.RedemptionUnused, to, now)
		if err != nil {
			return err
		}
		if !moved {
			return NewInvalidStateError("voucher is no longer unused")
		}

		redemption.Status = to
		if to == models.RedemptionUsed {
			usedAt := now.UTC().Truncate(time.Microsecond)
			redemption.UsedAt = &usedAt
		}
		return nil
	})
	if err != nil {
		return nil, storeError(s.logger, "use voucher", err)
	}
	if expired {
		return nil, NewInvalidStateError("voucher has expired")
	}

	s.logger.Info("Voucher used",
		zap.String("user_id", userID),
		zap.String("redemption_id", redemptionID),
	)

	publish(ctx, s.events, s.logger, &events.VoucherUsedEvent{
		BaseEvent:    events.NewBaseEvent(events.TypeVoucherUsed, userID),
		RedemptionID: redemptionID,
		Code:         redemption.Code,
	})
	return redemption, nil
}

// ExpireVouchers moves every unused voucher past its expiry to EXPIRED
func (s *redemptionService) ExpireVouchers(ctx context.Context, now time.Time) (int64, error) {
	if now.IsZero() {
		now = s.now()
	}

	count, err := s.redemptions.ExpireBefore(ctx, nil, now)
	if err != nil {
		return 0, storeError(s.logger, "expire vouchers", err)
	}
	if count == 0 {
		return 0, nil
	}

	s.logger.Info("⏰ Vouchers expired", zap.Int64("count", count))
	publish(ctx, s.events, s.logger, &events.VouchersExpiredEvent{
		BaseEvent: events.NewBaseEvent(events.TypeVouchersExpired, ""),
		Count:     count,
	})
	return count, nil
}
