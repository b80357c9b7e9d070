package app

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meowrun/platform/internal/auth"
	"github.com/meowrun/platform/internal/domain"
	"github.com/meowrun/platform/internal/guard"
	"github.com/meowrun/platform/internal/handler"
	adminhandler "github.com/meowrun/platform/internal/handler/admin"
	"github.com/meowrun/platform/internal/ledger"
	"github.com/meowrun/platform/internal/repository"
	"github.com/meowrun/platform/internal/service"
)

// RateLimits holds the per-surface limiters. All four must be set; use
// DefaultRateLimits for production tiers.
type RateLimits struct {
	Global   *guard.RateLimiter
	Auth     *guard.RateLimiter
	Ad       *guard.RateLimiter
	Withdraw *guard.RateLimiter
}

// DefaultRateLimits returns the production limiter tiers.
func DefaultRateLimits() *RateLimits {
	return &RateLimits{
		Global:   guard.NewRateLimiter(300, time.Minute),
		Auth:     guard.NewRateLimiter(20, 10*time.Minute),
		Ad:       guard.NewRateLimiter(80, time.Minute),
		Withdraw: guard.NewRateLimiter(6, time.Hour),
	}
}

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool               *pgxpool.Pool
	JWTMgr             *auth.JWTManager
	Logger             *slog.Logger
	Economy            domain.EconomyConfig
	CORSAllowedOrigins string
	RateLimits         *RateLimits
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	pool := deps.Pool
	jwtMgr := deps.JWTMgr
	logger := deps.Logger
	eco := deps.Economy
	limits := deps.RateLimits
	if limits == nil {
		limits = DefaultRateLimits()
	}

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

	// Services
	authSvc := service.NewAuthService(pool, accountRepo, cooldownRepo, outboxRepo, auditRepo, lockout, jwtMgr, logger)
	playerSvc := service.NewPlayerService(pool, accountRepo, engine, eco, logger)
	referralSvc := service.NewReferralService(pool, accountRepo, referralRepo, engine, eco, logger)
	gameSvc := service.NewGameService(pool, accountRepo, engine, referralSvc, eco, logger)
	rewardsSvc := service.NewRewardsService(pool, cooldownRepo, engine, eco, logger)
	claimsSvc := service.NewClaimsService(pool, claimRepo, accountRepo, engine, eco, logger)
	withdrawalSvc := service.NewWithdrawalService(pool, withdrawalRepo, outboxRepo, auditRepo, engine, eco, logger)
	adminSvc := service.NewAdminService(pool, accountRepo, outboxRepo, auditRepo, engine, logger)

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

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS(deps.CORSAllowedOrigins))
	r.Use(handler.JSONContentType)
	r.Use(handler.RateLimit(limits.Global, handler.KeyByIP))

	// Public routes
	r.Get("/health", handler.HealthHandler(pool))
	r.Get("/config", handler.ConfigHandler(eco))

	r.Group(func(r chi.Router) {
		r.Use(handler.RateLimit(limits.Auth, handler.KeyByIP))
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/admin/login", authHandler.AdminLogin)
	})

	// Player-authenticated routes
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
			r.With(handler.RateLimit(limits.Ad, handler.KeyByAccount)).Post("/ad", rewardsHandler.ClaimAd)
			r.Get("/activity", rewardsHandler.ActivityOverview)
			r.Post("/activity/claim", rewardsHandler.ClaimMilestone)
		})

		r.Route("/withdrawals", func(r chi.Router) {
			r.Get("/", withdrawalHandler.List)
			r.With(handler.RateLimit(limits.Withdraw, handler.KeyByAccount)).Post("/", withdrawalHandler.Submit)
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

	return r
}
