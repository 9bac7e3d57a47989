package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/brosora6/sora-sub000/internal/backoffice"
	"github.com/brosora6/sora-sub000/internal/utils"
	"github.com/brosora6/sora-sub000/pkg/response"

	"github.com/jackc/pgx/v5/pgtype"
)

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var customer customerView
	var photoURL pgtype.Text
	err := h.DB.QueryRow(r.Context(), `
		select id, name, email, phone, photo_url, created_at
		from customers
		where id = $1
	`, authCtx.ActorID).Scan(&customer.ID, &customer.Name, &customer.Email, &customer.Phone, &photoURL, &customer.CreatedAt)
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Customer not found")
		return
	}
	if photoURL.Valid {
		customer.PhotoURL = &photoURL.String
	}

	response.Success(w, customer)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var payload struct {
		Name  *string `json:"name"`
		Phone *string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	fields := backoffice.Fields{}
	setClauses := []string{"updated_at = now()"}
	args := []any{}

	if payload.Name != nil {
		name := strings.TrimSpace(*payload.Name)
		if name == "" {
			fields.Add("name", "Name is required")
		} else {
			args = append(args, name)
			setClauses = append(setClauses, "name = $"+intToString(len(args)))
		}
	}
	if payload.Phone != nil {
		phone := strings.TrimSpace(*payload.Phone)
		if !utils.IsIndonesianMobile(phone) {
			fields.Add("phone", "Phone must start with 08 followed by 8 to 11 digits")
		} else {
			args = append(args, phone)
			setClauses = append(setClauses, "phone = $"+intToString(len(args)))
		}
	}
	if !fields.Empty() {
		response.FieldErrors(w, fields)
		return
	}

	args = append(args, authCtx.ActorID)
	query := `
		update customers
		set ` + strings.Join(setClauses, ", ") + `
		where id = $` + intToString(len(args)) + `
		returning id, name, email, phone, photo_url, created_at
	`

	var customer customerView
	var photoURL pgtype.Text
	if err := h.DB.QueryRow(r.Context(), query, args...).Scan(
		&customer.ID, &customer.Name, &customer.Email, &customer.Phone, &photoURL, &customer.CreatedAt,
	); err != nil {
		h.Logger.Error("profile update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update profile")
		return
	}
	if photoURL.Valid {
		customer.PhotoURL = &photoURL.String
	}

	response.Success(w, customer)
}

func (h *Handler) UploadProfilePhoto(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	data, _, ferr := readFileBytes(r, "file", true, h.Config.MaxFileSizeBytes)
	if ferr != nil {
		switch ferr.Kind {
		case fileReadErrMissing:
			response.Error(w, http.StatusBadRequest, "FILE_REQUIRED", "File is required")
		case fileReadErrTooLarge, fileReadErrInvalidType:
			response.Error(w, http.StatusBadRequest, "INVALID_FILE", ferr.Message)
		default:
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to upload photo")
		}
		return
	}

	key := objectKey("profiles", authCtx.ActorID)
	url, err := h.storeJpegCoverSquare(ctx, key, data, profileSize)
	if err != nil {
		h.Logger.Error("profile photo store failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to upload photo")
		return
	}

	if _, err := h.DB.Exec(ctx, `
		update customers set photo_url = $2, updated_at = now() where id = $1
	`, authCtx.ActorID, url); err != nil {
		h.Logger.Error("profile photo update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to upload photo")
		return
	}

	response.Success(w, map[string]any{"photoUrl": url})
}
