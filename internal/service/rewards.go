package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meowrun/platform/internal/domain"
	"github.com/meowrun/platform/internal/ledger"
	"github.com/meowrun/platform/internal/repository"
)

// RewardsService handles the recurring reward claims: the periodic daily
// treat and the capped, spaced rewarded ad.
type RewardsService struct {
	pool      *pgxpool.Pool
	cooldowns repository.CooldownRepository
	engine    *ledger.Engine
	eco       domain.EconomyConfig
	logger    *slog.Logger
}

// NewRewardsService creates a RewardsService.
func NewRewardsService(
	pool *pgxpool.Pool,
	cooldowns repository.CooldownRepository,
	engine *ledger.Engine,
	eco domain.EconomyConfig,
	logger *slog.Logger,
) *RewardsService {
	return &RewardsService{
		pool:      pool,
		cooldowns: cooldowns,
		engine:    engine,
		eco:       eco,
		logger:    logger,
	}
}

// CooldownStatus is the read-only view of both recurring-reward gates.
type CooldownStatus struct {
	Daily domain.DailyGate `json:"daily"`
	Ad    domain.AdGate    `json:"ad"`
}

// Status reports both gates without mutating anything. It shares the gate
// arithmetic with the claim paths, so the two can never disagree.
func (s *RewardsService) Status(ctx context.Context, accountID uuid.UUID) (*CooldownStatus, error) {
	cd, err := s.cooldowns.Find(ctx, s.pool, accountID)
	if err != nil {
		return nil, domain.ErrInternal("find cooldown", err)
	}
	if cd == nil {
		cd = &domain.Cooldown{AccountID: accountID}
	}
	now := time.Now()
	return &CooldownStatus{
		Daily: cd.DailyStatus(now, s.eco.DailyTreatPeriod),
		Ad:    cd.AdStatus(now, s.eco.DailyAdLimit, s.eco.AdCooldown),
	}, nil
}

// ClaimDaily grants the daily treat if the period has elapsed since the last
// grant. The cooldown row is locked for the whole read-check-write, so two
// concurrent claims serialize and the loser sees the fresh stamp.
func (s *RewardsService) ClaimDaily(ctx context.Context, accountID uuid.UUID) (*domain.ApplyResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.cooldowns.Ensure(ctx, tx, accountID); err != nil {
		return nil, domain.ErrInternal("ensure cooldown row", err)
	}
	cd, err := s.cooldowns.LockForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, domain.ErrInternal("lock cooldown row", err)
	}

	now := time.Now()
	gate := cd.DailyStatus(now, s.eco.DailyTreatPeriod)
	if !gate.Ready {
		return nil, domain.ErrNotReady(fmt.Sprintf("daily treat available in %s", gate.ReadyIn.Round(time.Second)))
	}

	if err := s.cooldowns.StampDaily(ctx, tx, accountID, now); err != nil {
		return nil, domain.ErrInternal("stamp daily claim", err)
	}

	result, err := s.engine.Apply(ctx, tx, domain.ApplyParams{
		AccountID: accountID,
		Type:      domain.EntryDailyTreat,
		Delta: domain.BalanceUpdate{
			Gems:     s.eco.DailyTreatGems,
			Activity: s.eco.DailyTreatActivity,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("daily treat claimed", "account_id", accountID)
	return result, nil
}

// AdClaimResult is the outcome of a rewarded ad claim.
type AdClaimResult struct {
	Result    *domain.ApplyResult `json:"result"`
	Remaining int64               `json:"remaining"`
}

// ClaimAd grants the rewarded ad payout, enforcing the daily cap and the
// minimum spacing between claims. The counter resets when the UTC day index
// advances, not on a timer.
func (s *RewardsService) ClaimAd(ctx context.Context, accountID uuid.UUID) (*AdClaimResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.cooldowns.Ensure(ctx, tx, accountID); err != nil {
		return nil, domain.ErrInternal("ensure cooldown row", err)
	}
	cd, err := s.cooldowns.LockForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, domain.ErrInternal("lock cooldown row", err)
	}

	now := time.Now()
	gate := cd.AdStatus(now, s.eco.DailyAdLimit, s.eco.AdCooldown)
	if gate.Remaining == 0 {
		return nil, domain.ErrLimitReached(fmt.Sprintf("daily ad limit of %d reached", s.eco.DailyAdLimit))
	}
	if gate.ReadyIn > 0 {
		return nil, domain.ErrCoolingDown(fmt.Sprintf("next ad available in %s", gate.ReadyIn.Round(time.Second)))
	}

	count := cd.AdCountFor(now) + 1
	if err := s.cooldowns.StampAd(ctx, tx, accountID, count, domain.DayStamp(now), now); err != nil {
		return nil, domain.ErrInternal("stamp ad claim", err)
	}

	result, err := s.engine.Apply(ctx, tx, domain.ApplyParams{
		AccountID: accountID,
		Type:      domain.EntryRewardedAd,
		Delta:     domain.BalanceUpdate{Coins: s.eco.CoinPerAd},
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	return &AdClaimResult{
		Result:    result,
		Remaining: s.eco.DailyAdLimit - count,
	}, nil
}
