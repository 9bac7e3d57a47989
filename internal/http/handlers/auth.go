package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/brosora6/sora-sub000/internal/auth"
	"github.com/brosora6/sora-sub000/internal/backoffice"
	"github.com/brosora6/sora-sub000/internal/middleware"
	"github.com/brosora6/sora-sub000/internal/utils"
	"github.com/brosora6/sora-sub000/pkg/response"

	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

type registerPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type customerView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	PhotoURL  *string   `json:"photoUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

func randomToken32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func (h *Handler) jwtExpiry() time.Duration {
	return time.Duration(h.Config.JWTExpirySeconds) * time.Second
}

func (h *Handler) createSession(r *http.Request, actorType string, actorID int64) (int64, error) {
	var sessionID int64
	err := h.DB.QueryRow(r.Context(), `
		insert into sessions (actor_type, actor_id, status, expires_at)
		values ($1, $2, 'ACTIVE', $3)
		returning id
	`, actorType, actorID, time.Now().Add(h.jwtExpiry())).Scan(&sessionID)
	return sessionID, err
}

func (h *Handler) setAuthCookies(w http.ResponseWriter, cookieName, token, csrfToken string) {
	maxAge := int(h.jwtExpiry().Seconds())
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.Config.SessionCookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.Config.SessionCookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	// The CSRF cookie is readable by the page so it can echo the value in
	// the X-Csrf-Token header.
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CSRFCookie,
		Value:    csrfToken,
		Path:     "/",
		Domain:   h.Config.SessionCookieDomain,
		MaxAge:   maxAge,
		HttpOnly: false,
		Secure:   h.Config.SessionCookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearAuthCookies(w http.ResponseWriter, cookieName string) {
	for _, name := range []string{cookieName, middleware.CSRFCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   h.Config.SessionCookieDomain,
			MaxAge:   -1,
			Secure:   h.Config.SessionCookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload registerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	fields := backoffice.Fields{}
	name := strings.TrimSpace(payload.Name)
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	phone := strings.TrimSpace(payload.Phone)
	if name == "" {
		fields.Add("name", "Name is required")
	}
	if !utils.IsGmailAddress(email) {
		fields.Add("email", "Email must be a valid gmail.com address")
	}
	if !utils.IsIndonesianMobile(phone) {
		fields.Add("phone", "Phone must start with 08 followed by 8 to 11 digits")
	}
	if len(payload.Password) < 8 {
		fields.Add("password", "Password must be at least 8 characters")
	}
	if !fields.Empty() {
		response.FieldErrors(w, fields)
		return
	}

	var emailTaken bool
	if err := h.DB.QueryRow(ctx, `select exists(select 1 from customers where email = $1)`, email).Scan(&emailTaken); err != nil {
		h.Logger.Error("register email lookup failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register")
		return
	}
	if emailTaken {
		response.FieldErrors(w, backoffice.Fields{"email": "Email is already registered"})
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		h.Logger.Error("register password hash failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register")
		return
	}

	var customer customerView
	if err := h.DB.QueryRow(ctx, `
		insert into customers (name, email, phone, password_hash)
		values ($1, $2, $3, $4)
		returning id, name, email, phone, created_at
	`, name, email, phone, hash).Scan(&customer.ID, &customer.Name, &customer.Email, &customer.Phone, &customer.CreatedAt); err != nil {
		h.Logger.Error("register insert failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register")
		return
	}

	sessionID, err := h.createSession(r, string(auth.RoleCustomer), customer.ID)
	if err != nil {
		h.Logger.Error("register session insert failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register")
		return
	}
	token, err := auth.SignAccessToken(customer.ID, sessionID, auth.RoleCustomer, customer.Email, h.Config.JWTSecret, h.jwtExpiry())
	if err != nil {
		h.Logger.Error("register token sign failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register")
		return
	}
	csrfToken := randomToken32()
	h.setAuthCookies(w, middleware.CustomerCookie, token, csrfToken)

	response.Created(w, map[string]any{
		"customer":  customer,
		"token":     token,
		"csrfToken": csrfToken,
	}, "Registered successfully")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
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

	var customer customerView
	var photoURL pgtype.Text
	var passwordHash string
	var isActive bool
	err := h.DB.QueryRow(ctx, `
		select id, name, email, phone, photo_url, password_hash, is_active, created_at
		from customers
		where email = $1
	`, email).Scan(&customer.ID, &customer.Name, &customer.Email, &customer.Phone, &photoURL, &passwordHash, &isActive, &customer.CreatedAt)
	if err != nil || !auth.CheckPassword(passwordHash, payload.Password) {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password")
		return
	}
	if !isActive {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "Account is disabled")
		return
	}
	if photoURL.Valid {
		customer.PhotoURL = &photoURL.String
	}

	sessionID, err := h.createSession(r, string(auth.RoleCustomer), customer.ID)
	if err != nil {
		h.Logger.Error("login session insert failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to login")
		return
	}
	token, err := auth.SignAccessToken(customer.ID, sessionID, auth.RoleCustomer, customer.Email, h.Config.JWTSecret, h.jwtExpiry())
	if err != nil {
		h.Logger.Error("login token sign failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to login")
		return
	}
	csrfToken := randomToken32()
	h.setAuthCookies(w, middleware.CustomerCookie, token, csrfToken)

	response.Success(w, map[string]any{
		"customer":  customer,
		"token":     token,
		"csrfToken": csrfToken,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := requireAuth(w, r)
	if !ok {
		return
	}
	if _, err := h.DB.Exec(r.Context(), `update sessions set status = 'REVOKED' where id = $1`, authCtx.SessionID); err != nil {
		h.Logger.Error("logout session revoke failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to logout")
		return
	}
	h.clearAuthCookies(w, middleware.CustomerCookie)
	response.Success(w, map[string]any{"loggedOut": true})
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email is required")
		return
	}

	// The response never reveals whether the address exists.
	resetToken := randomToken32()
	cmd, err := h.DB.Exec(ctx, `
		update customers
		set reset_token = $2, reset_expires_at = now() + interval '1 hour', updated_at = now()
		where email = $1 and is_active = true
	`, email, resetToken)
	if err != nil {
		h.Logger.Error("forgot-password update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process request")
		return
	}
	if cmd.RowsAffected() == 1 {
		h.Logger.Info("password reset mail queued",
			zap.String("sender", h.Config.MailSender),
			zap.String("recipient", email),
		)
	}

	response.Success(w, map[string]any{
		"message": "If the email is registered, reset instructions have been sent",
	})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if strings.TrimSpace(payload.Token) == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Reset token is required")
		return
	}
	if len(payload.Password) < 8 {
		response.FieldErrors(w, backoffice.Fields{"password": "Password must be at least 8 characters"})
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		h.Logger.Error("reset-password hash failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to reset password")
		return
	}

	var customerID int64
	err = h.DB.QueryRow(ctx, `
		update customers
		set password_hash = $2, reset_token = null, reset_expires_at = null, updated_at = now()
		where reset_token = $1 and reset_expires_at > now()
		returning id
	`, strings.TrimSpace(payload.Token), hash).Scan(&customerID)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Reset token is invalid or expired")
		return
	}

	// A password change invalidates every open session for the account.
	if _, err := h.DB.Exec(ctx, `
		update sessions set status = 'REVOKED'
		where actor_type = $1 and actor_id = $2 and status = 'ACTIVE'
	`, string(auth.RoleCustomer), customerID); err != nil {
		h.Logger.Warn("reset-password session revoke failed", zapError(err))
	}

	response.Success(w, map[string]any{"reset": true})
}
