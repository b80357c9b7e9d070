package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meowrun/platform/internal/domain"
	"github.com/meowrun/platform/internal/ledger"
	"github.com/meowrun/platform/internal/repository"
)

// ReferralService handles the one-time inviter binding and the once-per-
// milestone inviter payouts.
type ReferralService struct {
	pool      *pgxpool.Pool
	accounts  repository.AccountRepository
	referrals repository.ReferralRepository
	engine    *ledger.Engine
	eco       domain.EconomyConfig
	logger    *slog.Logger
}

// NewReferralService creates a ReferralService.
func NewReferralService(
	pool *pgxpool.Pool,
	accounts repository.AccountRepository,
	referrals repository.ReferralRepository,
	engine *ledger.Engine,
	eco domain.EconomyConfig,
	logger *slog.Logger,
) *ReferralService {
	return &ReferralService{
		pool:      pool,
		accounts:  accounts,
		referrals: referrals,
		engine:    engine,
		eco:       eco,
		logger:    logger,
	}
}

// Bind attaches the invitee to the inviter owning the given code and pays the
// inviter the one-time bind bonus. An account binds at most once, ever.
func (s *ReferralService) Bind(ctx context.Context, inviteeID uuid.UUID, code string) (*domain.Account, error) {
	if err := domain.ValidateInviteCode(code); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	inviter, err := s.accounts.FindByReferralCode(ctx, s.pool, code)
	if err != nil {
		return nil, domain.ErrInternal("find inviter", err)
	}
	if inviter == nil {
		return nil, domain.ErrNotFound("invite code", code)
	}
	if inviter.ID == inviteeID {
		return nil, domain.ErrAlreadySelf()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	// Conditional update: fails when an inviter is already set.
	if err := s.accounts.SetInviter(ctx, tx, inviteeID, inviter.ID); err != nil {
		return nil, err
	}

	err = s.referrals.InsertBinding(ctx, tx, &domain.ReferralBinding{
		InviterID: inviter.ID,
		InviteeID: inviteeID,
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyBound()
		}
		return nil, domain.ErrInternal("insert referral binding", err)
	}

	if s.eco.InviteBindBonusCoins > 0 {
		_, err = s.engine.Apply(ctx, tx, domain.ApplyParams{
			AccountID: inviter.ID,
			Type:      domain.EntryInviteBindBonus,
			Delta:     domain.BalanceUpdate{Coins: s.eco.InviteBindBonusCoins},
			Metadata:  domain.InviteBindBonusMetadata{InviteeID: inviteeID},
		})
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("referral bound", "inviter_id", inviter.ID, "invitee_id", inviteeID)
	return inviter, nil
}

// PayLevelMilestones pays the inviter for every milestone the invitee's new
// level hits, within the caller's transaction (the level-up itself). A
// duplicate milestone event is swallowed: the payout simply does not repeat.
func (s *ReferralService) PayLevelMilestones(ctx context.Context, tx pgx.Tx, invitee *domain.Account, newLevel int64) error {
	if invitee.InviterID == nil {
		return nil
	}

	for _, reward := range s.eco.InviteRewardsAt(newLevel) {
		err := s.referrals.InsertEvent(ctx, tx, &domain.ReferralEvent{
			InviterID: *invitee.InviterID,
			InviteeID: invitee.ID,
			EventKey:  domain.ReferralEventKey(reward.Level),
		})
		if err != nil {
			if repository.IsUniqueViolation(err) {
				continue
			}
			return domain.ErrInternal("insert referral event", err)
		}

		_, err = s.engine.Apply(ctx, tx, domain.ApplyParams{
			AccountID: *invitee.InviterID,
			Type:      domain.EntryInviteLevelReward,
			Delta:     domain.BalanceUpdate{Coins: reward.RewardCoins},
			Metadata: domain.InviteLevelRewardMetadata{
				InviteeID: invitee.ID,
				Level:     reward.Level,
			},
		})
		if err != nil {
			return err
		}
		s.logger.Info("invite milestone paid",
			"inviter_id", *invitee.InviterID, "invitee_id", invitee.ID, "level", reward.Level)
	}
	return nil
}

// ReferralOverview is the inviter's view of their referral standing.
type ReferralOverview struct {
	Code    string                  `json:"code"`
	Bound   bool                    `json:"bound"`
	Invited []domain.InvitedAccount `json:"invited"`
}

// Overview returns the account's invite code, binding state, and invitees.
func (s *ReferralService) Overview(ctx context.Context, accountID uuid.UUID) (*ReferralOverview, error) {
	account, err := s.accounts.FindByID(ctx, s.pool, accountID)
	if err != nil {
		return nil, domain.ErrInternal("find account", err)
	}
	if account == nil {
		return nil, domain.ErrNotFound("account", accountID.String())
	}

	invited, err := s.referrals.ListInvited(ctx, s.pool, accountID, 100)
	if err != nil {
		return nil, domain.ErrInternal("list invited", err)
	}

	return &ReferralOverview{
		Code:    account.ReferralCode,
		Bound:   account.InviterID != nil,
		Invited: invited,
	}, nil
}
