package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meowrun/platform/internal/domain"
	"github.com/meowrun/platform/internal/ledger"
	"github.com/meowrun/platform/internal/repository"
)

// AdminService handles the admin-only operations outside the withdrawal
// queue: device resets, ledger reconciliation, and the analytics dashboard.
type AdminService struct {
	pool     *pgxpool.Pool
	accounts repository.AccountRepository
	outbox   repository.OutboxRepository
	audit    repository.AuditRepository
	engine   *ledger.Engine
	logger   *slog.Logger
}

// NewAdminService creates an AdminService.
func NewAdminService(
	pool *pgxpool.Pool,
	accounts repository.AccountRepository,
	outbox repository.OutboxRepository,
	audit repository.AuditRepository,
	engine *ledger.Engine,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		pool:     pool,
		accounts: accounts,
		outbox:   outbox,
		audit:    audit,
		engine:   engine,
		logger:   logger,
	}
}

// ReconcileAccount recomputes the account's balances from the ledger journal
// and compares them to the stored projection. A mismatch means an entry and
// its balance update got split across transactions somewhere.
func (s *AdminService) ReconcileAccount(ctx context.Context, accountID uuid.UUID) (bool, error) {
	consistent, err := s.engine.Reconcile(ctx, s.pool, accountID)
	if err != nil {
		return false, err
	}
	if !consistent {
		s.logger.Warn("ledger reconciliation mismatch", "account_id", accountID)
	}
	return consistent, nil
}

// ResetDevice clears the account's bound device so the next successful login
// binds a new one.
func (s *AdminService) ResetDevice(ctx context.Context, accountID uuid.UUID, adminIP, adminUA string) error {
	account, err := s.accounts.FindByID(ctx, s.pool, accountID)
	if err != nil {
		return domain.ErrInternal("find account", err)
	}
	if account == nil {
		return domain.ErrNotFound("account", accountID.String())
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.accounts.ClearDevice(ctx, tx, accountID); err != nil {
		return domain.ErrInternal("clear device", err)
	}
	if err := s.outbox.Insert(ctx, tx, domain.OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: domain.AggregateAccount,
		AggregateID:   accountID.String(),
		EventType:     domain.EventDeviceReset,
		PartitionKey:  accountID.String(),
		Payload:       []byte(`{}`),
		OccurredAt:    time.Now(),
	}); err != nil {
		return domain.ErrInternal("insert outbox event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}

	_ = s.audit.Record(ctx, s.pool, domain.AuditRecord{
		AccountID: &accountID,
		IP:        adminIP,
		UserAgent: adminUA,
		Action:    "device_reset",
	})
	s.logger.Info("device reset", "account_id", accountID)
	return nil
}

// Analytics is the read-only operations dashboard payload.
type Analytics struct {
	Users struct {
		Total  int64 `json:"total"`
		New24h int64 `json:"new_24h"`
		DAU24h int64 `json:"dau_24h"`
	} `json:"users"`
	Gameplay struct {
		TotalRuns int64 `json:"total_runs"`
		Runs24h   int64 `json:"runs_24h"`
	} `json:"gameplay"`
	Ads struct {
		Ads24h int64 `json:"ads_24h"`
		Ads7d  int64 `json:"ads_7d"`
	} `json:"ads"`
	Economy struct {
		CoinsMinted    int64 `json:"coins_minted"`
		PaidRMCents    int64 `json:"paid_rm_cents"`
		PendingRMCents int64 `json:"pending_rm_cents"`
	} `json:"economy"`
}

// Dashboard aggregates account, ledger, and withdrawal counters. Read-only
// and untransacted: the numbers are a snapshot, not a statement.
func (s *AdminService) Dashboard(ctx context.Context) (*Analytics, error) {
	since24h := time.Now().Add(-24 * time.Hour)
	since7d := time.Now().Add(-7 * 24 * time.Hour)

	var a Analytics
	queries := []struct {
		dst  *int64
		sql  string
		args []interface{}
	}{
		{&a.Users.Total, `SELECT COUNT(*) FROM accounts`, nil},
		{&a.Users.New24h, `SELECT COUNT(*) FROM accounts WHERE created_at >= $1`, []interface{}{since24h}},
		{&a.Users.DAU24h, `SELECT COUNT(DISTINCT account_id) FROM ledger_entries WHERE created_at >= $1`, []interface{}{since24h}},
		{&a.Gameplay.TotalRuns, `SELECT COUNT(*) FROM ledger_entries WHERE type = 'run_complete'`, nil},
		{&a.Gameplay.Runs24h, `SELECT COUNT(*) FROM ledger_entries WHERE type = 'run_complete' AND created_at >= $1`, []interface{}{since24h}},
		{&a.Ads.Ads24h, `SELECT COUNT(*) FROM ledger_entries WHERE type = 'rewarded_ad' AND created_at >= $1`, []interface{}{since24h}},
		{&a.Ads.Ads7d, `SELECT COUNT(*) FROM ledger_entries WHERE type = 'rewarded_ad' AND created_at >= $1`, []interface{}{since7d}},
		{&a.Economy.CoinsMinted, `SELECT COALESCE(SUM(delta_coins), 0) FROM ledger_entries WHERE delta_coins > 0`, nil},
		{&a.Economy.PaidRMCents, `SELECT COALESCE(SUM(amount_cents), 0)::bigint FROM withdrawals WHERE status = 'paid'`, nil},
		{&a.Economy.PendingRMCents, `SELECT COALESCE(SUM(amount_cents), 0)::bigint FROM withdrawals WHERE status = 'pending'`, nil},
	}
	for _, q := range queries {
		if err := s.pool.QueryRow(ctx, q.sql, q.args...).Scan(q.dst); err != nil {
			return nil, domain.ErrInternal("analytics query", err)
		}
	}
	return &a, nil
}
