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

// ClaimsService handles one-shot activity milestone claims. The claims table
// unique constraint is the duplicate guard: the claim row insert happens
// before the payout in the same transaction, so a duplicate aborts everything.
type ClaimsService struct {
	pool     *pgxpool.Pool
	claims   repository.ClaimRepository
	accounts repository.AccountRepository
	engine   *ledger.Engine
	eco      domain.EconomyConfig
	logger   *slog.Logger
}

// NewClaimsService creates a ClaimsService.
func NewClaimsService(
	pool *pgxpool.Pool,
	claims repository.ClaimRepository,
	accounts repository.AccountRepository,
	engine *ledger.Engine,
	eco domain.EconomyConfig,
	logger *slog.Logger,
) *ClaimsService {
	return &ClaimsService{
		pool:     pool,
		claims:   claims,
		accounts: accounts,
		engine:   engine,
		eco:      eco,
		logger:   logger,
	}
}

// ClaimMilestone pays out the activity milestone at the given threshold.
func (s *ClaimsService) ClaimMilestone(ctx context.Context, accountID uuid.UUID, threshold int64) (*domain.ApplyResult, error) {
	milestone, ok := s.eco.MilestoneFor(threshold)
	if !ok {
		return nil, domain.ErrNotFound("milestone", fmt.Sprintf("%d", threshold))
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
	if account.Activity < milestone.Threshold {
		return nil, domain.ErrNotReady(fmt.Sprintf(
			"activity %d below milestone %d", account.Activity, milestone.Threshold))
	}

	key := domain.ActivityClaimKey(milestone.Threshold)
	err = s.claims.Insert(ctx, tx, &domain.Claim{
		AccountID: accountID,
		Key:       key,
		DayScope:  domain.LifetimeScope,
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyClaimed(key)
		}
		return nil, domain.ErrInternal("insert claim", err)
	}

	result, err := s.engine.Apply(ctx, tx, domain.ApplyParams{
		AccountID: accountID,
		Type:      domain.EntryActivityMilestone,
		Delta:     domain.BalanceUpdate{Gems: milestone.RewardGems},
		Metadata:  domain.ActivityMilestoneMetadata{Threshold: milestone.Threshold},
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("milestone claimed", "account_id", accountID, "threshold", threshold)
	return result, nil
}

// MilestoneOverview lists every configured milestone with the account's
// progress and claim state. Pure read.
func (s *ClaimsService) MilestoneOverview(ctx context.Context, accountID uuid.UUID) ([]domain.MilestoneStatus, error) {
	account, err := s.accounts.FindByID(ctx, s.pool, accountID)
	if err != nil {
		return nil, domain.ErrInternal("find account", err)
	}
	if account == nil {
		return nil, domain.ErrNotFound("account", accountID.String())
	}

	out := make([]domain.MilestoneStatus, 0, len(s.eco.ActivityMilestones))
	for _, m := range s.eco.ActivityMilestones {
		claimed, err := s.claims.Exists(ctx, s.pool, accountID, domain.ActivityClaimKey(m.Threshold), domain.LifetimeScope)
		if err != nil {
			return nil, domain.ErrInternal("check claim", err)
		}
		out = append(out, domain.MilestoneStatus{
			Threshold:  m.Threshold,
			RewardGems: m.RewardGems,
			Progress:   account.Activity,
			Claimable:  !claimed && account.Activity >= m.Threshold,
			Claimed:    claimed,
		})
	}
	return out, nil
}
