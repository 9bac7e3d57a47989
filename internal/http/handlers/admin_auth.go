package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/brosora6/sora-sub000/internal/auth"
	"github.com/brosora6/sora-sub000/internal/middleware"
	"github.com/brosora6/sora-sub000/pkg/response"
)

type adminView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsSuper   bool      `json:"isSuper"`
	CreatedAt time.Time `json:"createdAt"`
}

// backofficeLogin is shared by both admin surfaces. The role in the token
// always reflects admins.is_super; the superadmin surface additionally
// refuses regular admins.
func (h *Handler) backofficeLogin(w http.ResponseWriter, r *http.Request, cookieName string, requireSuper bool) {
	ctx := r.Context()

	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" || payload.Password == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email and password are required")
		return
	}

	var admin adminView
	var passwordHash string
	if err := h.DB.QueryRow(ctx, `
		select id, name, email, password_hash, is_super, created_at
		from admins
		where email = $1
	`, email).Scan(&admin.ID, &admin.Name, &admin.Email, &passwordHash, &admin.IsSuper, &admin.CreatedAt); err != nil || !auth.CheckPassword(passwordHash, payload.Password) {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password")
		return
	}
	if requireSuper && !admin.IsSuper {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "Superadmin access required")
		return
	}

	role := auth.RoleAdmin
	if admin.IsSuper {
		role = auth.RoleSuperAdmin
	}

	sessionID, err := h.createSession(r, string(role), admin.ID)
	if err != nil {
		h.Logger.Error("admin login session insert failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to login")
		return
	}
	token, err := auth.SignAccessToken(admin.ID, sessionID, role, admin.Email, h.Config.JWTSecret, h.jwtExpiry())
	if err != nil {
		h.Logger.Error("admin login token sign failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to login")
		return
	}
	csrfToken := randomToken32()
	h.setAuthCookies(w, cookieName, token, csrfToken)

	response.Success(w, map[string]any{
		"admin":        admin,
		"token":        token,
		"csrfToken":    csrfToken,
		"capabilities": auth.CapabilitiesFor(role),
	})
}

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.backofficeLogin(w, r, middleware.AdminCookie, false)
}

func (h *Handler) SuperAdminLogin(w http.ResponseWriter, r *http.Request) {
	h.backofficeLogin(w, r, middleware.SuperAdminCookie, true)
}

func (h *Handler) backofficeLogout(w http.ResponseWriter, r *http.Request, cookieName string) {
	authCtx, ok := requireAuth(w, r)
	if !ok {
		return
	}
	if _, err := h.DB.Exec(r.Context(), `update sessions set status = 'REVOKED' where id = $1`, authCtx.SessionID); err != nil {
		h.Logger.Error("admin logout session revoke failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to logout")
		return
	}
	h.clearAuthCookies(w, cookieName)
	response.Success(w, map[string]any{"loggedOut": true})
}

func (h *Handler) AdminLogout(w http.ResponseWriter, r *http.Request) {
	h.backofficeLogout(w, r, middleware.AdminCookie)
}

func (h *Handler) SuperAdminLogout(w http.ResponseWriter, r *http.Request) {
	h.backofficeLogout(w, r, middleware.SuperAdminCookie)
}
