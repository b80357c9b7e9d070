package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const (
	claimsKey  contextKey = "auth_claims"
	subjectKey contextKey = "auth_subject"
)

// ClaimsFromContext extracts JWT claims from request context.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

// SubjectFromContext extracts the authenticated account ID from request
// context. Returns uuid.Nil outside an authenticated route.
func SubjectFromContext(ctx context.Context) uuid.UUID {
	sub, _ := ctx.Value(subjectKey).(uuid.UUID)
	return sub
}

// AuthenticatePlayer returns middleware that validates player JWT tokens.
func AuthenticatePlayer(jwtMgr *JWTManager) func(http.Handler) http.Handler {
	return authenticateRealm(jwtMgr, RealmPlayer)
}

// AuthenticateAdmin returns middleware that validates admin JWT tokens.
func AuthenticateAdmin(jwtMgr *JWTManager) func(http.Handler) http.Handler {
	return authenticateRealm(jwtMgr, RealmAdmin)
}

func authenticateRealm(jwtMgr *JWTManager, realm Realm) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := extractAndValidate(r, jwtMgr, realm)
			if err != nil {
				writeUnauthorized(w, "invalid or missing token")
				return
			}

			subjectID, err := uuid.Parse(claims.Subject)
			if err != nil {
				writeUnauthorized(w, "invalid token subject")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			ctx = context.WithValue(ctx, subjectKey, subjectID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractAndValidate(r *http.Request, jwtMgr *JWTManager, realm Realm) (*Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, fmt.Errorf("invalid Authorization format")
	}

	return jwtMgr.ValidateTokenForRealm(parts[1], realm)
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"code":"UNAUTHORIZED","message":"` + msg + `"}`))
}
