package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meowrun/platform/internal/domain"
	"github.com/meowrun/platform/internal/ledger"
	"github.com/meowrun/platform/internal/repository"
)

// GameService handles the gameplay-driven earn operations: run completion,
// level upgrades, and the kitty bank gem-to-coin conversion.
type GameService struct {
	pool      *pgxpool.Pool
	accounts  repository.AccountRepository
	engine    *ledger.Engine
	referrals *ReferralService
	eco       domain.EconomyConfig
	logger    *slog.Logger
}

// NewGameService creates a GameService.
func NewGameService(
	pool *pgxpool.Pool,
	accounts repository.AccountRepository,
	engine *ledger.Engine,
	referrals *ReferralService,
	eco domain.EconomyConfig,
	logger *slog.Logger,
) *GameService {
	return &GameService{
		pool:      pool,
		accounts:  accounts,
		engine:    engine,
		referrals: referrals,
		eco:       eco,
		logger:    logger,
	}
}

// CompleteRun credits the run rewards. The client-reported tap count is
// clamped server-side; the clamped value is what the metadata records.
func (s *GameService) CompleteRun(ctx context.Context, accountID uuid.UUID, taps int) (*domain.ApplyResult, error) {
	safeTaps := domain.ClampTaps(taps)
	gems, activity := s.eco.RunRewards(safeTaps)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	result, err := s.engine.Apply(ctx, tx, domain.ApplyParams{
		AccountID: accountID,
		Type:      domain.EntryRunComplete,
		Delta:     domain.BalanceUpdate{Gems: gems, Activity: activity},
		Metadata:  domain.RunMetadata{Taps: safeTaps},
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}
	return result, nil
}

// UpgradeResult is the outcome of a level upgrade.
type UpgradeResult struct {
	NewLevel int64               `json:"new_level"`
	GemCost  int64               `json:"gem_cost"`
	Result   *domain.ApplyResult `json:"result"`
}

// Upgrade advances the account one level, debiting the gem cost. Referral
// level milestones fire in the same transaction: the inviter payout and the
// level-up commit or roll back together.
func (s *GameService) Upgrade(ctx context.Context, accountID uuid.UUID) (*UpgradeResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	account, err := s.engine.LockAccountForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	cost := domain.UpgradeCost(account.Level)
	if account.Gems < cost {
		return nil, domain.ErrInsufficientFunds()
	}
	newLevel := account.Level + 1

	result, err := s.engine.Apply(ctx, tx, domain.ApplyParams{
		AccountID: accountID,
		Type:      domain.EntryLevelUp,
		Delta:     domain.BalanceUpdate{Gems: -cost},
		Metadata:  domain.LevelUpMetadata{NewLevel: newLevel, GemCost: cost},
	})
	if err != nil {
		return nil, err
	}

	if err := s.accounts.SetLevel(ctx, tx, accountID, newLevel); err != nil {
		return nil, domain.ErrInternal("set level", err)
	}

	if err := s.referrals.PayLevelMilestones(ctx, tx, account, newLevel); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("level upgraded", "account_id", accountID, "new_level", newLevel, "gem_cost", cost)
	return &UpgradeResult{NewLevel: newLevel, GemCost: cost, Result: result}, nil
}

// ConvertResult is the outcome of a kitty bank conversion.
type ConvertResult struct {
	CoinsAdded int64               `json:"coins_added"`
	GemsSpent  int64               `json:"gems_spent"`
	Result     *domain.ApplyResult `json:"result"`
}

// ConvertGems exchanges gems for coins at par, in blocks of the conversion
// rate. A request above the gem balance converts what is there; a request
// that floors to zero is rejected.
func (s *GameService) ConvertGems(ctx context.Context, accountID uuid.UUID, wantGems int64) (*ConvertResult, error) {
	if err := domain.ValidatePositiveAmount(wantGems); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	account, err := s.engine.LockAccountForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Level < s.eco.MinLevelToConvert {
		return nil, domain.ErrValidation(fmt.Sprintf("level %d required to convert", s.eco.MinLevelToConvert))
	}

	take := wantGems
	if take > account.Gems {
		take = account.Gems
	}
	gemsUsed := take / s.eco.GemToCoinRate * s.eco.GemToCoinRate
	if gemsUsed <= 0 {
		return nil, domain.ErrValidation(fmt.Sprintf("minimum conversion is %d gems", s.eco.GemToCoinRate))
	}

	result, err := s.engine.Apply(ctx, tx, domain.ApplyParams{
		AccountID: accountID,
		Type:      domain.EntryBankConvert,
		Delta:     domain.BalanceUpdate{Coins: gemsUsed, Gems: -gemsUsed},
		Metadata:  domain.BankConvertMetadata{GemsSpent: gemsUsed},
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	return &ConvertResult{CoinsAdded: gemsUsed, GemsSpent: gemsUsed, Result: result}, nil
}
