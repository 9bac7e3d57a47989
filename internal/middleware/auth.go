package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/brosora6/sora-sub000/internal/auth"
	"github.com/brosora6/sora-sub000/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const authContextKey contextKey = "authContext"

// Guard-scoped session cookie names. Each back-office surface carries its
// own cookie so an admin login never satisfies the superadmin guard.
const (
	CustomerCookie   = "customer_session"
	AdminCookie      = "admin_session"
	SuperAdminCookie = "superadmin_session"
	CSRFCookie       = "csrf_token"
	CSRFHeader       = "X-Csrf-Token"
)

type AuthContext struct {
	ActorID      int64
	SessionID    int64
	Role         auth.Role
	Email        string
	Capabilities []auth.Capability
	FromCookie   bool
}

func WithAuthContext(ctx context.Context, authCtx *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

func GetAuthContext(ctx context.Context) (*AuthContext, bool) {
	value := ctx.Value(authContextKey)
	if value == nil {
		return nil, false
	}
	ac, ok := value.(*AuthContext)
	return ac, ok
}

func writeAuthError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   code,
		"message": message,
	})
}

func readGuardToken(r *http.Request, cookieName string) (token string, fromCookie bool) {
	if c, err := r.Cookie(cookieName); err == nil && strings.TrimSpace(c.Value) != "" {
		return strings.TrimSpace(c.Value), true
	}
	return auth.ParseBearerToken(r.Header.Get("Authorization")), false
}

func isStateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// checkCSRF enforces the double-submit token for cookie-authenticated
// state-changing requests. Bearer clients are exempt.
func checkCSRF(r *http.Request) bool {
	if !isStateChanging(r.Method) {
		return true
	}
	cookie, err := r.Cookie(CSRFCookie)
	if err != nil || cookie.Value == "" {
		return false
	}
	header := strings.TrimSpace(r.Header.Get(CSRFHeader))
	if header == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) == 1
}

func validateSession(r *http.Request, db *pgxpool.Pool, sessionID, actorID int64, actorType string) bool {
	var ok bool
	err := db.QueryRow(r.Context(), `
		select exists(
			select 1 from sessions
			where id = $1 and actor_id = $2 and actor_type = $3
			  and status = 'ACTIVE' and expires_at > now()
		)
	`, sessionID, actorID, actorType).Scan(&ok)
	return err == nil && ok
}

// CustomerAuth authenticates the customer guard: session cookie (or bearer
// token), a live session row, and an active customer record.
func CustomerAuth(db *pgxpool.Pool, cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, fromCookie := readGuardToken(r, CustomerCookie)
			claims, err := auth.VerifyAccessToken(token, cfg.JWTSecret)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}
			if claims.Role != auth.RoleCustomer {
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "Customer access required")
				return
			}
			if !validateSession(r, db, claims.SessionID, claims.ActorID, string(auth.RoleCustomer)) {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Session expired")
				return
			}

			var active bool
			if err := db.QueryRow(r.Context(), `select is_active from customers where id = $1`, claims.ActorID).Scan(&active); err != nil || !active {
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "Account is disabled")
				return
			}

			if fromCookie && !checkCSRF(r) {
				writeAuthError(w, http.StatusForbidden, "CSRF_MISMATCH", "CSRF token missing or invalid")
				return
			}

			authCtx := &AuthContext{
				ActorID:    claims.ActorID,
				SessionID:  claims.SessionID,
				Role:       claims.Role,
				Email:      claims.Email,
				FromCookie: fromCookie,
			}
			next.ServeHTTP(w, r.WithContext(WithAuthContext(r.Context(), authCtx)))
		})
	}
}

// BackofficeAuth authenticates the admin or superadmin guard. The cookie
// name and the super requirement are fixed at router mount time; handlers
// never inspect the URL to decide which guard applies.
func BackofficeAuth(db *pgxpool.Pool, cfg config.Config, cookieName string, requireSuper bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, fromCookie := readGuardToken(r, cookieName)
			claims, err := auth.VerifyAccessToken(token, cfg.JWTSecret)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}
			if claims.Role != auth.RoleAdmin && claims.Role != auth.RoleSuperAdmin {
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "Admin access required")
				return
			}
			if requireSuper && claims.Role != auth.RoleSuperAdmin {
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "Superadmin access required")
				return
			}
			if !validateSession(r, db, claims.SessionID, claims.ActorID, string(claims.Role)) {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Session expired")
				return
			}

			var isSuper bool
			if err := db.QueryRow(r.Context(), `select is_super from admins where id = $1`, claims.ActorID).Scan(&isSuper); err != nil {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Admin not found")
				return
			}
			if requireSuper && !isSuper {
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "Superadmin access required")
				return
			}

			if fromCookie && !checkCSRF(r) {
				writeAuthError(w, http.StatusForbidden, "CSRF_MISMATCH", "CSRF token missing or invalid")
				return
			}

			role := auth.RoleAdmin
			if isSuper {
				role = auth.RoleSuperAdmin
			}
			authCtx := &AuthContext{
				ActorID:      claims.ActorID,
				SessionID:    claims.SessionID,
				Role:         role,
				Email:        claims.Email,
				Capabilities: auth.CapabilitiesFor(role),
				FromCookie:   fromCookie,
			}
			next.ServeHTTP(w, r.WithContext(WithAuthContext(r.Context(), authCtx)))
		})
	}
}
