package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/meowrun/platform/internal/domain"
	"github.com/meowrun/platform/internal/repository"
)

// DeviceHeader carries the raw client device fingerprint.
const DeviceHeader = "X-Device"

// HashDevice returns the stored form of a raw device fingerprint. Only the
// hash ever touches the database.
func HashDevice(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// DeviceGate binds an account to the first device fingerprint it is seen with
// and rejects requests carrying a different one. A stolen token without the
// bound device is useless.
type DeviceGate struct {
	accounts repository.AccountRepository
	db       repository.DBTX
}

// NewDeviceGate creates a device gate over the given account store.
func NewDeviceGate(accounts repository.AccountRepository, db repository.DBTX) *DeviceGate {
	return &DeviceGate{accounts: accounts, db: db}
}

// Enforce checks the account's bound fingerprint against the presented one,
// binding on first contact. Returns DEVICE_MISMATCH on a different device.
func (g *DeviceGate) Enforce(r *http.Request, account *domain.Account) error {
	raw := r.Header.Get(DeviceHeader)
	if raw == "" {
		return domain.ErrValidation("missing device header")
	}
	hash := HashDevice(raw)

	if account.DeviceHash == nil {
		bound, err := g.accounts.BindDevice(r.Context(), g.db, account.ID, hash)
		if err != nil {
			return domain.ErrInternal("bind device", err)
		}
		if bound {
			return nil
		}
		// Lost a race with another bind; re-read and fall through to compare.
		fresh, err := g.accounts.FindByID(r.Context(), g.db, account.ID)
		if err != nil || fresh == nil || fresh.DeviceHash == nil {
			return domain.ErrInternal("reload account after device bind race", err)
		}
		account = fresh
	}

	if *account.DeviceHash != hash {
		return domain.ErrDeviceMismatch()
	}
	return nil
}

// Middleware applies Enforce to every request on the wrapped routes. Runs
// after JWT authentication so the subject is known.
func (g *DeviceGate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID := SubjectFromContext(r.Context())

		account, err := g.accounts.FindByID(r.Context(), g.db, accountID)
		if err != nil {
			writeDeviceError(w, domain.ErrInternal("load account", err))
			return
		}
		if account == nil {
			writeUnauthorized(w, "account no longer exists")
			return
		}

		if err := g.Enforce(r, account); err != nil {
			writeDeviceError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeDeviceError(w http.ResponseWriter, err error) {
	appErr, ok := err.(*domain.AppError)
	if !ok {
		appErr = domain.ErrInternal("device check", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	_, _ = w.Write([]byte(`{"code":"` + appErr.Code + `","message":"` + appErr.Message + `"}`))
}
