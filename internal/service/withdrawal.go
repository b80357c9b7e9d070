package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meowrun/platform/internal/domain"
	"github.com/meowrun/platform/internal/ledger"
	"github.com/meowrun/platform/internal/repository"
)

// WithdrawalService handles the payout lifecycle: a pending request takes a
// coin hold atomically, and an admin settles it to paid or rejects it with a
// refund recomputed from the stored RM amount.
type WithdrawalService struct {
	pool        *pgxpool.Pool
	withdrawals repository.WithdrawalRepository
	outbox      repository.OutboxRepository
	audit       repository.AuditRepository
	engine      *ledger.Engine
	eco         domain.EconomyConfig
	logger      *slog.Logger
}

// NewWithdrawalService creates a WithdrawalService.
func NewWithdrawalService(
	pool *pgxpool.Pool,
	withdrawals repository.WithdrawalRepository,
	outbox repository.OutboxRepository,
	audit repository.AuditRepository,
	engine *ledger.Engine,
	eco domain.EconomyConfig,
	logger *slog.Logger,
) *WithdrawalService {
	return &WithdrawalService{
		pool:        pool,
		withdrawals: withdrawals,
		outbox:      outbox,
		audit:       audit,
		engine:      engine,
		eco:         eco,
		logger:      logger,
	}
}

// SubmitInput holds a withdrawal request.
type SubmitInput struct {
	AccountID   uuid.UUID
	AmountCents int64
	Method      domain.WithdrawalMethod
	Destination string
	IP          string
	UserAgent   string
}

// Submit creates a pending withdrawal and takes the coin hold in one
// transaction. The hold converts the RM amount to coins rounding up, so the
// platform never holds less than the requested payout is worth.
func (s *WithdrawalService) Submit(ctx context.Context, input SubmitInput) (*domain.Withdrawal, error) {
	if input.AmountCents < s.eco.MinWithdrawCents {
		return nil, domain.ErrValidation(fmt.Sprintf(
			"minimum withdrawal is RM%d.%02d", s.eco.MinWithdrawCents/100, s.eco.MinWithdrawCents%100))
	}
	if !domain.ValidMethod(input.Method) {
		return nil, domain.ErrValidation("method must be paypal or tng")
	}
	dest := strings.TrimSpace(input.Destination)
	if dest == "" {
		return nil, domain.ErrValidation("destination is required")
	}
	if len(dest) > 64 {
		dest = dest[:64]
	}

	hold := s.eco.RMCentsToCoins(input.AmountCents)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	account, err := s.engine.LockAccountForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}
	if account.Coins < hold {
		return nil, domain.ErrInsufficientFunds()
	}

	withdrawal := &domain.Withdrawal{
		ID:          uuid.New(),
		AccountID:   input.AccountID,
		AmountCents: input.AmountCents,
		Method:      input.Method,
		Destination: dest,
		Status:      domain.WithdrawalPending,
	}
	if err := s.withdrawals.Insert(ctx, tx, withdrawal); err != nil {
		return nil, domain.ErrInternal("insert withdrawal", err)
	}

	_, err = s.engine.Apply(ctx, tx, domain.ApplyParams{
		AccountID: input.AccountID,
		Type:      domain.EntryWithdrawHold,
		Delta:     domain.BalanceUpdate{Coins: -hold},
		Metadata: domain.WithdrawHoldMetadata{
			WithdrawalID: withdrawal.ID,
			AmountCents:  input.AmountCents,
			Method:       string(input.Method),
		},
	})
	if err != nil {
		return nil, err
	}

	if err := s.outbox.Insert(ctx, tx, domain.NewWithdrawalEvent(withdrawal, domain.EventWithdrawalRequested)); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	_ = s.audit.Record(ctx, s.pool, domain.AuditRecord{
		AccountID: &input.AccountID,
		IP:        input.IP,
		UserAgent: input.UserAgent,
		Action:    "withdraw_submit",
		Meta:      fmt.Sprintf(`{"withdrawal_id":"%s","amount_cents":%d}`, withdrawal.ID, input.AmountCents),
	})
	s.logger.Info("withdrawal submitted",
		"withdrawal_id", withdrawal.ID, "account_id", input.AccountID,
		"amount_cents", input.AmountCents, "hold_coins", hold)

	return withdrawal, nil
}

// MarkPaid settles a pending withdrawal as paid. The hold already left the
// balance at submit time, so no ledger write happens here.
func (s *WithdrawalService) MarkPaid(ctx context.Context, id uuid.UUID, note string) error {
	return s.settle(ctx, id, note, domain.WithdrawalPaid)
}

// Reject settles a pending withdrawal as rejected and refunds the hold. The
// refund is recomputed from the stored RM amount with the same round-up
// conversion, so it always equals the hold.
func (s *WithdrawalService) Reject(ctx context.Context, id uuid.UUID, note string) error {
	return s.settle(ctx, id, note, domain.WithdrawalRejected)
}

func (s *WithdrawalService) settle(ctx context.Context, id uuid.UUID, note string, status domain.WithdrawalStatus) error {
	if len(note) > 120 {
		note = note[:120]
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	withdrawal, err := s.withdrawals.LockForUpdate(ctx, tx, id)
	if err != nil {
		return domain.ErrInternal("lock withdrawal", err)
	}
	if withdrawal == nil {
		return domain.ErrNotFound("withdrawal", id.String())
	}
	if withdrawal.Status != domain.WithdrawalPending {
		return domain.ErrNotPending(id.String())
	}

	if status == domain.WithdrawalRejected {
		refund := s.eco.RMCentsToCoins(withdrawal.AmountCents)
		_, err = s.engine.Apply(ctx, tx, domain.ApplyParams{
			AccountID: withdrawal.AccountID,
			Type:      domain.EntryWithdrawRefund,
			Delta:     domain.BalanceUpdate{Coins: refund},
			Metadata: domain.WithdrawRefundMetadata{
				WithdrawalID: withdrawal.ID,
				AmountCents:  withdrawal.AmountCents,
			},
		})
		if err != nil {
			return err
		}
	}

	if err := s.withdrawals.SetStatus(ctx, tx, id, status, note); err != nil {
		return domain.ErrInternal("set withdrawal status", err)
	}

	withdrawal.Status = status
	withdrawal.AdminNote = note
	if err := s.outbox.Insert(ctx, tx, domain.NewWithdrawalEvent(withdrawal, domain.EventWithdrawalSettled)); err != nil {
		return domain.ErrInternal("insert outbox event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("withdrawal settled", "withdrawal_id", id, "status", status)
	return nil
}

// ListMine returns the account's withdrawal history.
func (s *WithdrawalService) ListMine(ctx context.Context, accountID uuid.UUID) ([]domain.Withdrawal, error) {
	items, err := s.withdrawals.ListByAccount(ctx, s.pool, accountID, 30)
	if err != nil {
		return nil, domain.ErrInternal("list withdrawals", err)
	}
	return items, nil
}

// ListQueue returns the admin settlement queue.
func (s *WithdrawalService) ListQueue(ctx context.Context) ([]domain.Withdrawal, error) {
	items, err := s.withdrawals.ListAll(ctx, s.pool, 200)
	if err != nil {
		return nil, domain.ErrInternal("list withdrawal queue", err)
	}
	return items, nil
}
