package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/brosora6/sora-sub000/internal/backoffice"
	"github.com/brosora6/sora-sub000/pkg/response"
)

func (h *Handler) AdminReservationsList(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Reservations{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionList) }); !ok {
		return
	}

	params := backoffice.ParseListParams(r.URL.Query())
	switch params.Status {
	case "", backoffice.ReservationPending, backoffice.ReservationConfirmed, backoffice.ReservationRejected:
	default:
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown reservation status")
		return
	}

	page, err := resource.List(r.Context(), params)
	if err != nil {
		h.Logger.Error("admin reservations list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve reservations")
		return
	}
	response.Success(w, page)
}

// AdminReservationsDecide accepts or rejects a pending reservation. The
// decision is final; a reservation never moves out of confirmed or rejected.
func (h *Handler) AdminReservationsDecide(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Reservations{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionUpdate) }); !ok {
		return
	}
	ctx := r.Context()

	reservationID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid reservation id")
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if payload.Status != backoffice.ReservationConfirmed && payload.Status != backoffice.ReservationRejected {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Status must be confirmed or rejected")
		return
	}

	var current string
	if err := h.DB.QueryRow(ctx, `select status from reservations where id = $1`, reservationID).Scan(&current); err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Reservation not found")
		return
	}
	if !backoffice.CanDecide(current) {
		response.Error(w, http.StatusUnprocessableEntity, "CONFLICT", "Reservation has already been decided")
		return
	}

	if _, err := h.DB.Exec(ctx, `
		update reservations set status = $2, updated_at = now() where id = $1
	`, reservationID, payload.Status); err != nil {
		h.Logger.Error("admin reservation decide failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update reservation")
		return
	}

	response.Success(w, map[string]any{
		"id":     reservationID,
		"status": payload.Status,
	})
}

// AdminReservationsAssignContact links a reservation to one of the
// restaurant's WhatsApp contact numbers.
func (h *Handler) AdminReservationsAssignContact(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Reservations{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionUpdate) }); !ok {
		return
	}
	ctx := r.Context()

	reservationID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid reservation id")
		return
	}

	var payload struct {
		WhatsAppNumberID int64 `json:"whatsappNumberId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.WhatsAppNumberID <= 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "A WhatsApp number id is required")
		return
	}

	var exists bool
	if err := h.DB.QueryRow(ctx, `
		select exists(select 1 from whatsapp_numbers where id = $1)
	`, payload.WhatsAppNumberID).Scan(&exists); err != nil || !exists {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "WhatsApp number does not exist")
		return
	}

	cmd, err := h.DB.Exec(ctx, `
		update reservations set whatsapp_number_id = $2, updated_at = now() where id = $1
	`, reservationID, payload.WhatsAppNumberID)
	if err != nil {
		h.Logger.Error("admin reservation contact assign failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update reservation")
		return
	}
	if cmd.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Reservation not found")
		return
	}

	response.Success(w, map[string]any{
		"id":               reservationID,
		"whatsappNumberId": payload.WhatsAppNumberID,
	})
}
