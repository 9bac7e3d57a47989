package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/brosora6/sora-sub000/internal/auth"
	"github.com/brosora6/sora-sub000/internal/backoffice"
	"github.com/brosora6/sora-sub000/pkg/response"
)

func (h *Handler) AdminAccountsList(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Admins{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionList) }); !ok {
		return
	}

	page, err := resource.List(r.Context(), backoffice.ParseListParams(r.URL.Query()))
	if err != nil {
		h.Logger.Error("admin accounts list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve admins")
		return
	}
	response.Success(w, page)
}

func (h *Handler) AdminAccountsCreate(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Admins{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionCreate) }); !ok {
		return
	}
	ctx := r.Context()

	var input backoffice.AdminInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := resource.Validate(input, true); !fields.Empty() {
		response.FieldErrors(w, map[string]string(fields))
		return
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var taken bool
	if err := h.DB.QueryRow(ctx, `select exists(select 1 from admins where email = $1)`, email).Scan(&taken); err != nil {
		h.Logger.Error("admin email check failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create admin")
		return
	}
	if taken {
		response.Error(w, http.StatusUnprocessableEntity, "CONFLICT", "Email is already registered")
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		h.Logger.Error("admin password hash failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create admin")
		return
	}

	var adminID int64
	if err := h.DB.QueryRow(ctx, `
		insert into admins (name, email, password_hash, is_super)
		values ($1, $2, $3, $4)
		returning id
	`, strings.TrimSpace(input.Name), email, hash, input.IsSuper).Scan(&adminID); err != nil {
		h.Logger.Error("admin insert failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create admin")
		return
	}

	response.Created(w, map[string]any{"id": adminID}, "Admin created successfully")
}

func (h *Handler) AdminAccountsUpdate(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Admins{DB: h.DB}
	actor, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionUpdate) })
	if !ok {
		return
	}
	ctx := r.Context()

	adminID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid admin id")
		return
	}

	var input backoffice.AdminInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := resource.Validate(input, false); !fields.Empty() {
		response.FieldErrors(w, map[string]string(fields))
		return
	}
	if adminID == actor.ID && !input.IsSuper {
		response.Error(w, http.StatusUnprocessableEntity, "CONFLICT", "You cannot remove your own superadmin role")
		return
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	cmd, err := h.DB.Exec(ctx, `
		update admins set name = $2, email = $3, is_super = $4 where id = $1
	`, adminID, strings.TrimSpace(input.Name), email, input.IsSuper)
	if err != nil {
		response.Error(w, http.StatusUnprocessableEntity, "CONFLICT", "Email is already registered")
		return
	}
	if cmd.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Admin not found")
		return
	}

	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password)
		if err != nil {
			h.Logger.Error("admin password hash failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update admin")
			return
		}
		if _, err := h.DB.Exec(ctx, `update admins set password_hash = $2 where id = $1`, adminID, hash); err != nil {
			h.Logger.Error("admin password update failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update admin")
			return
		}
	}

	response.Success(w, map[string]any{"id": adminID})
}

func (h *Handler) AdminAccountsDelete(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Admins{DB: h.DB}
	actor, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionDelete) })
	if !ok {
		return
	}
	ctx := r.Context()

	adminID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid admin id")
		return
	}
	if adminID == actor.ID {
		response.Error(w, http.StatusUnprocessableEntity, "CONFLICT", "You cannot delete your own account")
		return
	}

	if _, err := h.DB.Exec(ctx, `
		delete from sessions where actor_type in ('ADMIN', 'SUPER_ADMIN') and actor_id = $1
	`, adminID); err != nil {
		h.Logger.Error("admin session cleanup failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete admin")
		return
	}

	cmd, err := h.DB.Exec(ctx, `delete from admins where id = $1`, adminID)
	if err != nil {
		h.Logger.Error("admin delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete admin")
		return
	}
	if cmd.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Admin not found")
		return
	}

	response.Success(w, map[string]any{"deleted": true})
}
