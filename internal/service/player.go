package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meowrun/platform/internal/domain"
	"github.com/meowrun/platform/internal/ledger"
	"github.com/meowrun/platform/internal/repository"
)

// PlayerService handles the player's own profile and ledger views.
type PlayerService struct {
	pool     *pgxpool.Pool
	accounts repository.AccountRepository
	engine   *ledger.Engine
	eco      domain.EconomyConfig
	logger   *slog.Logger
}

// NewPlayerService creates a PlayerService.
func NewPlayerService(
	pool *pgxpool.Pool,
	accounts repository.AccountRepository,
	engine *ledger.Engine,
	eco domain.EconomyConfig,
	logger *slog.Logger,
) *PlayerService {
	return &PlayerService{
		pool:     pool,
		accounts: accounts,
		engine:   engine,
		eco:      eco,
		logger:   logger,
	}
}

// Profile is the player's own view of their account, with the RM projection
// of the coin balance.
type Profile struct {
	Account      *domain.Account `json:"account"`
	CoinsRMCents int64           `json:"coins_rm_cents"`
}

// Me returns the account with its RM projection.
func (s *PlayerService) Me(ctx context.Context, accountID uuid.UUID) (*Profile, error) {
	account, err := s.accounts.FindByID(ctx, s.pool, accountID)
	if err != nil {
		return nil, domain.ErrInternal("find account", err)
	}
	if account == nil {
		return nil, domain.ErrNotFound("account", accountID.String())
	}
	return &Profile{
		Account:      account,
		CoinsRMCents: s.eco.CoinsToRMCents(account.Coins),
	}, nil
}

// UpdateDisplayName changes the display name.
func (s *PlayerService) UpdateDisplayName(ctx context.Context, accountID uuid.UUID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ErrValidation("display name is required")
	}
	if len(name) > 24 {
		return domain.ErrValidation("display name too long (max 24 characters)")
	}
	if err := s.accounts.SetDisplayName(ctx, s.pool, accountID, name); err != nil {
		return domain.ErrInternal("set display name", err)
	}
	return nil
}

// Ledger returns the account's recent ledger entries, most recent first.
func (s *PlayerService) Ledger(ctx context.Context, accountID uuid.UUID) ([]domain.LedgerEntry, error) {
	entries, err := s.engine.History(ctx, s.pool, accountID, 50)
	if err != nil {
		return nil, domain.ErrInternal("list ledger entries", err)
	}
	return entries, nil
}
