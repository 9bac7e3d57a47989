package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/brosora6/sora-sub000/internal/backoffice"
	"github.com/brosora6/sora-sub000/pkg/response"
)

func (h *Handler) AdminWhatsAppNumbersList(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.WhatsAppNumbers{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionList) }); !ok {
		return
	}

	page, err := resource.List(r.Context(), backoffice.ParseListParams(r.URL.Query()))
	if err != nil {
		h.Logger.Error("admin whatsapp numbers list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve WhatsApp numbers")
		return
	}
	response.Success(w, page)
}

func (h *Handler) AdminWhatsAppNumbersCreate(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.WhatsAppNumbers{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionCreate) }); !ok {
		return
	}

	var input backoffice.WhatsAppNumberInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := resource.Validate(input); !fields.Empty() {
		response.FieldErrors(w, map[string]string(fields))
		return
	}

	var numberID int64
	if err := h.DB.QueryRow(r.Context(), `
		insert into whatsapp_numbers (label, phone, is_active)
		values ($1, $2, $3)
		returning id
	`, strings.TrimSpace(input.Label), strings.TrimSpace(input.Phone), input.IsActive).Scan(&numberID); err != nil {
		h.Logger.Error("admin whatsapp number insert failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create WhatsApp number")
		return
	}

	response.Created(w, map[string]any{"id": numberID}, "WhatsApp number created successfully")
}

func (h *Handler) AdminWhatsAppNumbersUpdate(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.WhatsAppNumbers{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionUpdate) }); !ok {
		return
	}

	numberID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid WhatsApp number id")
		return
	}

	var input backoffice.WhatsAppNumberInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := resource.Validate(input); !fields.Empty() {
		response.FieldErrors(w, map[string]string(fields))
		return
	}

	cmd, err := h.DB.Exec(r.Context(), `
		update whatsapp_numbers set label = $2, phone = $3, is_active = $4 where id = $1
	`, numberID, strings.TrimSpace(input.Label), strings.TrimSpace(input.Phone), input.IsActive)
	if err != nil {
		h.Logger.Error("admin whatsapp number update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update WhatsApp number")
		return
	}
	if cmd.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "WhatsApp number not found")
		return
	}

	response.Success(w, map[string]any{"id": numberID})
}

func (h *Handler) AdminWhatsAppNumbersDelete(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.WhatsAppNumbers{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionDelete) }); !ok {
		return
	}
	ctx := r.Context()

	numberID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid WhatsApp number id")
		return
	}

	// Reservations keep their history; the link is cleared, not cascaded.
	if _, err := h.DB.Exec(ctx, `
		update reservations set whatsapp_number_id = null where whatsapp_number_id = $1
	`, numberID); err != nil {
		h.Logger.Error("admin whatsapp number unlink failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete WhatsApp number")
		return
	}

	cmd, err := h.DB.Exec(ctx, `delete from whatsapp_numbers where id = $1`, numberID)
	if err != nil {
		h.Logger.Error("admin whatsapp number delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete WhatsApp number")
		return
	}
	if cmd.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "WhatsApp number not found")
		return
	}

	response.Success(w, map[string]any{"deleted": true})
}
