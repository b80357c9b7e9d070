package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/meowrun/platform/internal/auth"
	"github.com/meowrun/platform/internal/domain"
	"github.com/meowrun/platform/internal/guard"
	"github.com/meowrun/platform/internal/repository"
)

// AuthService handles registration, login, and the brute-force lockout around
// them.
type AuthService struct {
	pool      *pgxpool.Pool
	accounts  repository.AccountRepository
	cooldowns repository.CooldownRepository
	outbox    repository.OutboxRepository
	audit     repository.AuditRepository
	lockout   *guard.Lockout
	jwtMgr    *auth.JWTManager
	logger    *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(
	pool *pgxpool.Pool,
	accounts repository.AccountRepository,
	cooldowns repository.CooldownRepository,
	outbox repository.OutboxRepository,
	audit repository.AuditRepository,
	lockout *guard.Lockout,
	jwtMgr *auth.JWTManager,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		pool:      pool,
		accounts:  accounts,
		cooldowns: cooldowns,
		outbox:    outbox,
		audit:     audit,
		lockout:   lockout,
		jwtMgr:    jwtMgr,
		logger:    logger,
	}
}

// RegisterInput holds the registration request fields. RawDevice is the
// client fingerprint header value; the handler passes it through unhashed.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	RawDevice   string
	IP          string
	UserAgent   string
}

// AuthResult is returned on successful registration or login.
type AuthResult struct {
	Token   string          `json:"token"`
	Account *domain.Account `json:"account"`
}

// Register creates a new account with the device bound immediately.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if len(input.Password) < 8 {
		return nil, domain.ErrValidation("password must be at least 8 characters")
	}
	if input.RawDevice == "" {
		return nil, domain.ErrValidation("missing device header")
	}
	if len(input.DisplayName) > 24 {
		return nil, domain.ErrValidation("display name too long (max 24 characters)")
	}

	existing, err := s.accounts.FindByEmail(ctx, s.pool, input.Email)
	if err != nil {
		return nil, domain.ErrInternal("find account", err)
	}
	if existing != nil {
		return nil, domain.ErrValidation("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	accountID := uuid.New()
	deviceHash := auth.HashDevice(input.RawDevice)
	displayName := input.DisplayName
	if displayName == "" {
		displayName = "Runner"
	}

	account := &domain.Account{
		ID:           accountID,
		Email:        input.Email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Role:         domain.RoleUser,
		Level:        1,
		ReferralCode: domain.ReferralCodeFor(accountID),
		DeviceHash:   &deviceHash,
		LastIP:       input.IP,
		LastUA:       input.UserAgent,
	}
	if err := s.accounts.Create(ctx, tx, account); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, domain.ErrValidation("email already registered")
		}
		return nil, domain.ErrInternal("create account", err)
	}

	if err := s.cooldowns.Ensure(ctx, tx, accountID); err != nil {
		return nil, domain.ErrInternal("create cooldown row", err)
	}

	if err := s.outbox.Insert(ctx, tx, domain.NewAccountCreatedEvent(accountID, input.Email)); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	token, err := s.jwtMgr.GenerateToken(auth.RealmPlayer, accountID, input.Email)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	_ = s.audit.Record(ctx, s.pool, domain.AuditRecord{
		AccountID: &accountID,
		IP:        input.IP,
		UserAgent: input.UserAgent,
		Action:    "register",
	})
	s.logger.Info("account registered", "account_id", accountID, "email", input.Email)

	return &AuthResult{Token: token, Account: account}, nil
}

// LoginInput holds the login request fields.
type LoginInput struct {
	Email     string
	Password  string
	RawDevice string
	IP        string
	UserAgent string
}

// Login authenticates a player. The lockout check runs before any credential
// work so a locked origin learns nothing; a device mismatch is rejected even
// with the correct password.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	return s.login(ctx, input, auth.RealmPlayer, false)
}

// AdminLogin authenticates an admin account into the admin realm.
func (s *AuthService) AdminLogin(ctx context.Context, input LoginInput) (*AuthResult, error) {
	return s.login(ctx, input, auth.RealmAdmin, true)
}

func (s *AuthService) login(ctx context.Context, input LoginInput, realm auth.Realm, wantAdmin bool) (*AuthResult, error) {
	if err := s.lockout.Check(ctx, s.pool, input.IP, input.Email, time.Now()); err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByEmail(ctx, s.pool, input.Email)
	if err != nil {
		return nil, domain.ErrInternal("find account", err)
	}
	if account == nil {
		return nil, s.failLogin(ctx, input, "unknown email")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
		return nil, s.failLogin(ctx, input, "bad password")
	}

	if wantAdmin && account.Role != domain.RoleAdmin {
		return nil, s.failLogin(ctx, input, "not an admin")
	}

	if !wantAdmin {
		if err := s.enforceDevice(ctx, account, input.RawDevice); err != nil {
			_ = s.audit.Record(ctx, s.pool, domain.AuditRecord{
				AccountID: &account.ID,
				IP:        input.IP,
				UserAgent: input.UserAgent,
				Action:    "login_device_mismatch",
			})
			return nil, err
		}
	}

	if err := s.lockout.Reset(ctx, s.pool, input.IP, input.Email); err != nil {
		s.logger.Error("reset login attempts", "error", err, "email", input.Email)
	}

	if err := s.accounts.TouchClient(ctx, s.pool, account.ID, input.IP, input.UserAgent); err != nil {
		s.logger.Error("touch client fields", "error", err, "account_id", account.ID)
	}

	token, err := s.jwtMgr.GenerateToken(realm, account.ID, account.Email)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	_ = s.audit.Record(ctx, s.pool, domain.AuditRecord{
		AccountID: &account.ID,
		IP:        input.IP,
		UserAgent: input.UserAgent,
		Action:    "login",
	})

	return &AuthResult{Token: token, Account: account}, nil
}

// failLogin records a failed attempt and returns the uniform credentials
// error. The reason only reaches the audit trail, never the client.
func (s *AuthService) failLogin(ctx context.Context, input LoginInput, reason string) error {
	if _, err := s.lockout.RecordFailure(ctx, s.pool, input.IP, input.Email, time.Now()); err != nil {
		s.logger.Error("record login failure", "error", err, "email", input.Email)
	}
	_ = s.audit.Record(ctx, s.pool, domain.AuditRecord{
		IP:        input.IP,
		UserAgent: input.UserAgent,
		Action:    "login_failed",
		Meta:      reason,
	})
	return domain.ErrUnauthorized("invalid credentials")
}

func (s *AuthService) enforceDevice(ctx context.Context, account *domain.Account, rawDevice string) error {
	if rawDevice == "" {
		return domain.ErrValidation("missing device header")
	}
	hash := auth.HashDevice(rawDevice)

	if account.DeviceHash == nil {
		bound, err := s.accounts.BindDevice(ctx, s.pool, account.ID, hash)
		if err != nil {
			return domain.ErrInternal("bind device", err)
		}
		if bound {
			account.DeviceHash = &hash
			return nil
		}
		fresh, err := s.accounts.FindByID(ctx, s.pool, account.ID)
		if err != nil || fresh == nil || fresh.DeviceHash == nil {
			return domain.ErrInternal("reload account after device bind race", err)
		}
		account.DeviceHash = fresh.DeviceHash
	}

	if *account.DeviceHash != hash {
		return domain.ErrDeviceMismatch()
	}
	return nil
}

// EnsureAdmin creates the bootstrap admin account if it does not exist.
// Called once at startup.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	existing, err := s.accounts.FindByEmail(ctx, s.pool, email)
	if err != nil {
		return domain.ErrInternal("find admin account", err)
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.ErrInternal("hash admin password", err)
	}

	adminID := uuid.New()
	account := &domain.Account{
		ID:           adminID,
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  "Admin",
		Role:         domain.RoleAdmin,
		Level:        1,
		ReferralCode: domain.ReferralCodeFor(adminID),
	}
	if err := s.accounts.Create(ctx, s.pool, account); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil
		}
		return domain.ErrInternal("create admin account", err)
	}

	s.logger.Info("bootstrap admin created", "email", email)
	return nil
}
