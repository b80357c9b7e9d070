package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/meowrun/platform/internal/auth"
	"github.com/meowrun/platform/internal/guard"
	"github.com/meowrun/platform/internal/handler"
	adminhandler "github.com/meowrun/platform/internal/handler/admin"
	"github.com/meowrun/platform/internal/infra"
	"github.com/meowrun/platform/internal/ledger"
	"github.com/meowrun/platform/internal/repository"
	"github.com/meowrun/platform/internal/service"
)

// staleAttemptAge is how long an idle login_attempts row survives before the
// startup sweep removes it.
const staleAttemptAge = 30 * 24 * time.Hour

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	eco := cfg.Economy()

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTPlayerExpiry, cfg.JWTAdminExpiry)

	// Repositories
	accountRepo := repository.NewAccountRepository()
	ledgerRepo := repository.NewLedgerRepository()
	cooldownRepo := repository.NewCooldownRepository()
	claimRepo := repository.NewClaimRepository()
	withdrawalRepo := repository.NewWithdrawalRepository()
	referralRepo := repository.NewReferralRepository()
	attemptRepo := repository.NewLoginAttemptRepository()
	auditRepo := repository.NewAuditRepository()
	outboxRepo := repository.NewOutboxRepository()

	engine := ledger.NewEngine(accountRepo, ledgerRepo, outboxRepo)
	lockout := guard.NewLockout(attemptRepo)
	deviceGate := auth.NewDeviceGate(accountRepo, pool)

	if n, err := lockout.SweepStale(ctx, pool, staleAttemptAge, time.Now().UTC()); err != nil {
		logger.Warn("stale attempt sweep failed", "error", err)
	} else if n > 0 {
		logger.Info("swept stale login attempts", "count", n)
	}

	// Services
	authSvc := service.NewAuthService(pool, accountRepo, cooldownRepo, outboxRepo, auditRepo, lockout, jwtMgr, logger)
	playerSvc := service.NewPlayerService(pool, accountRepo, engine, eco, logger)
	referralSvc := service.NewReferralService(pool, accountRepo, referralRepo, engine, eco, logger)
	gameSvc := service.NewGameService(pool, accountRepo, engine, referralSvc, eco, logger)
	rewardsSvc := service.NewRewardsService(pool, cooldownRepo, engine, eco, logger)
	claimsSvc := service.NewClaimsService(pool, claimRepo, accountRepo, engine, eco, logger)
	withdrawalSvc := service.NewWithdrawalService(pool, withdrawalRepo, outboxRepo, auditRepo, engine, eco, logger)
	adminSvc := service.NewAdminService(pool, accountRepo, outboxRepo, auditRepo, engine, logger)

	if err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	playerHandler := handler.NewPlayerHandler(playerSvc)
	walletHandler := handler.NewWalletHandler(playerSvc)
	gameHandler := handler.NewGameHandler(gameSvc)
	rewardsHandler := handler.NewRewardsHandler(rewardsSvc, claimsSvc)
	inviteHandler := handler.NewInviteHandler(referralSvc)
	withdrawalHandler := handler.NewWithdrawalHandler(withdrawalSvc)

	withdrawalAdmin := adminhandler.NewWithdrawalAdminHandler(withdrawalSvc)
	accountAdmin := adminhandler.NewAccountAdminHandler(adminSvc)
	reportsAdmin := adminhandler.NewReportsHandler(adminSvc)

	// Rate limiters. Per-route instances; denied requests do not extend
	// the window.
	globalRL := guard.NewRateLimiter(300, time.Minute)
	authRL := guard.NewRateLimiter(20, 10*time.Minute)
	adRL := guard.NewRateLimiter(80, time.Minute)
	withdrawRL := guard.NewRateLimiter(6, time.Hour)

	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS(cfg.CORSAllowedOrigins))
	r.Use(handler.JSONContentType)
	r.Use(handler.RateLimit(globalRL, handler.KeyByIP))

	// Public routes
	r.Get("/health", handler.HealthHandler(pool))
	r.Get("/config", handler.ConfigHandler(eco))

	r.Group(func(r chi.Router) {
		r.Use(handler.RateLimit(authRL, handler.KeyByIP))
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/admin/login", authHandler.AdminLogin)
	})

	// Player-authenticated routes; the device gate runs after the JWT so
	// every route below sees a verified subject on a matching device.
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticatePlayer(jwtMgr))
		r.Use(deviceGate.Middleware)

		r.Get("/players/me", playerHandler.Me)
		r.Post("/players/me/profile", playerHandler.UpdateProfile)

		r.Get("/wallet/ledger", walletHandler.GetLedger)

		r.Post("/game/run", gameHandler.CompleteRun)
		r.Post("/game/upgrade", gameHandler.Upgrade)
		r.Post("/bank/convert", gameHandler.Convert)

		r.Route("/rewards", func(r chi.Router) {
			r.Get("/cooldowns", rewardsHandler.Cooldowns)
			r.Post("/daily", rewardsHandler.ClaimDaily)
			r.With(handler.RateLimit(adRL, handler.KeyByAccount)).Post("/ad", rewardsHandler.ClaimAd)
			r.Get("/activity", rewardsHandler.ActivityOverview)
			r.Post("/activity/claim", rewardsHandler.ClaimMilestone)
		})

		r.Route("/withdrawals", func(r chi.Router) {
			r.Get("/", withdrawalHandler.List)
			r.With(handler.RateLimit(withdrawRL, handler.KeyByAccount)).Post("/", withdrawalHandler.Submit)
		})

		r.Route("/invite", func(r chi.Router) {
			r.Get("/me", inviteHandler.MyCode)
			r.Post("/bind", inviteHandler.Bind)
			r.Get("/status", inviteHandler.Status)
		})
	})

	// Admin-authenticated routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.AuthenticateAdmin(jwtMgr))

		r.Get("/withdrawals", withdrawalAdmin.Queue)
		r.Post("/withdrawals/{id}/paid", withdrawalAdmin.MarkPaid)
		r.Post("/withdrawals/{id}/reject", withdrawalAdmin.Reject)

		r.Post("/accounts/{id}/reset-device", accountAdmin.ResetDevice)
		r.Get("/accounts/{id}/reconcile", accountAdmin.Reconcile)

		r.Get("/analytics", reportsAdmin.Analytics)
	})

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
