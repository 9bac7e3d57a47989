package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/brosora6/sora-sub000/internal/backoffice"
	"github.com/brosora6/sora-sub000/internal/utils"
	"github.com/brosora6/sora-sub000/pkg/response"

	"github.com/jackc/pgx/v5/pgtype"
)

type reservationPayload struct {
	ReservationDate string  `json:"reservationDate"`
	ReservationTime string  `json:"reservationTime"`
	PartySize       int32   `json:"partySize"`
	Notes           *string `json:"notes"`
}

type reservationView struct {
	ID              int64     `json:"id"`
	ReservationDate string    `json:"reservationDate"`
	ReservationTime string    `json:"reservationTime"`
	PartySize       int32     `json:"partySize"`
	Notes           *string   `json:"notes"`
	Status          string    `json:"status"`
	WhatsAppLink    *string   `json:"whatsappLink"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// reservationStart resolves the reservation's wall-clock start in the
// restaurant's timezone.
func reservationStart(date, clock string, loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation("2006-01-02 15:04", strings.TrimSpace(date)+" "+strings.TrimSpace(clock), loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// canCancelReservation enforces the cancellation window: customers may only
// cancel more than 24 hours before the reservation starts.
func canCancelReservation(start, now time.Time) bool {
	return start.Sub(now) > 24*time.Hour
}

func (h *Handler) validateReservation(payload reservationPayload) backoffice.Fields {
	fields := backoffice.Fields{}
	loc := utils.LoadLocation(h.Config.Timezone)

	if !utils.IsCalendarDate(payload.ReservationDate) {
		fields.Add("reservationDate", "Date must be in YYYY-MM-DD format")
	} else {
		today, _ := time.ParseInLocation("2006-01-02", time.Now().In(loc).Format("2006-01-02"), loc)
		date, _ := time.ParseInLocation("2006-01-02", strings.TrimSpace(payload.ReservationDate), loc)
		if date.Before(today) {
			fields.Add("reservationDate", "Date must not be in the past")
		}
	}
	if _, ok := utils.ParseClockMinutes(payload.ReservationTime); !ok {
		fields.Add("reservationTime", "Time must be in HH:MM format")
	} else if !utils.WithinOpeningHours(payload.ReservationTime, h.Config.OpeningTime, h.Config.ClosingTime) {
		fields.Add("reservationTime", "Time must be within opening hours "+h.Config.OpeningTime+" to "+h.Config.ClosingTime)
	}
	if payload.PartySize < 1 || payload.PartySize > 20 {
		fields.Add("partySize", "Party size must be between 1 and 20")
	}
	if payload.Notes != nil && len(*payload.Notes) > 500 {
		fields.Add("notes", "Notes must be at most 500 characters")
	}
	return fields
}

func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var payload reservationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := h.validateReservation(payload); !fields.Empty() {
		response.FieldErrors(w, fields)
		return
	}

	var res reservationView
	var notes pgtype.Text
	if err := h.DB.QueryRow(r.Context(), `
		insert into reservations (customer_id, reservation_date, reservation_time, party_size, notes)
		values ($1, $2, $3, $4, $5)
		returning id, reservation_date, reservation_time, party_size, notes, status, created_at, updated_at
	`, authCtx.ActorID, strings.TrimSpace(payload.ReservationDate), strings.TrimSpace(payload.ReservationTime),
		payload.PartySize, payload.Notes,
	).Scan(&res.ID, &res.ReservationDate, &res.ReservationTime, &res.PartySize, &notes, &res.Status, &res.CreatedAt, &res.UpdatedAt); err != nil {
		h.Logger.Error("reservation insert failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create reservation")
		return
	}
	if notes.Valid {
		res.Notes = &notes.String
	}

	response.Created(w, res, "Reservation created successfully")
}

func (h *Handler) ListReservations(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := requireAuth(w, r)
	if !ok {
		return
	}

	rows, err := h.DB.Query(r.Context(), `
		select res.id, res.reservation_date, res.reservation_time, res.party_size, res.notes,
		       res.status, wa.phone, res.created_at, res.updated_at
		from reservations res
		left join whatsapp_numbers wa on wa.id = res.whatsapp_number_id
		where res.customer_id = $1
		order by res.reservation_date desc, res.reservation_time desc
	`, authCtx.ActorID)
	if err != nil {
		h.Logger.Error("reservations list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve reservations")
		return
	}
	defer rows.Close()

	items := make([]reservationView, 0)
	for rows.Next() {
		var res reservationView
		var notes pgtype.Text
		var waPhone pgtype.Text
		if err := rows.Scan(
			&res.ID, &res.ReservationDate, &res.ReservationTime, &res.PartySize, &notes,
			&res.Status, &waPhone, &res.CreatedAt, &res.UpdatedAt,
		); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve reservations")
			return
		}
		if notes.Valid {
			res.Notes = &notes.String
		}
		if waPhone.Valid {
			link := utils.WhatsAppLink(waPhone.String, "Halo, saya ingin bertanya tentang reservasi saya")
			if link != "" {
				res.WhatsAppLink = &link
			}
		}
		items = append(items, res)
	}

	response.Success(w, items)
}

func (h *Handler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	reservationID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid reservation id")
		return
	}

	var payload reservationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := h.validateReservation(payload); !fields.Empty() {
		response.FieldErrors(w, fields)
		return
	}

	var ownerID int64
	var status string
	if err := h.DB.QueryRow(ctx, `select customer_id, status from reservations where id = $1`, reservationID).Scan(&ownerID, &status); err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Reservation not found")
		return
	}
	if ownerID != authCtx.ActorID {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "Reservation does not belong to you")
		return
	}
	if status != backoffice.ReservationPending {
		response.Error(w, http.StatusUnprocessableEntity, "CONFLICT", "Only pending reservations can be changed")
		return
	}

	var res reservationView
	var notes pgtype.Text
	if err := h.DB.QueryRow(ctx, `
		update reservations
		set reservation_date = $2, reservation_time = $3, party_size = $4, notes = $5, updated_at = now()
		where id = $1
		returning id, reservation_date, reservation_time, party_size, notes, status, created_at, updated_at
	`, reservationID, strings.TrimSpace(payload.ReservationDate), strings.TrimSpace(payload.ReservationTime),
		payload.PartySize, payload.Notes,
	).Scan(&res.ID, &res.ReservationDate, &res.ReservationTime, &res.PartySize, &notes, &res.Status, &res.CreatedAt, &res.UpdatedAt); err != nil {
		h.Logger.Error("reservation update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update reservation")
		return
	}
	if notes.Valid {
		res.Notes = &notes.String
	}

	response.Success(w, res)
}

func (h *Handler) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	reservationID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid reservation id")
		return
	}

	var ownerID int64
	var date, clock string
	if err := h.DB.QueryRow(ctx, `
		select customer_id, reservation_date, reservation_time from reservations where id = $1
	`, reservationID).Scan(&ownerID, &date, &clock); err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Reservation not found")
		return
	}
	if ownerID != authCtx.ActorID {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "Reservation does not belong to you")
		return
	}

	loc := utils.LoadLocation(h.Config.Timezone)
	start, ok2 := reservationStart(date, clock, loc)
	if !ok2 || !canCancelReservation(start, time.Now().In(loc)) {
		response.Error(w, http.StatusUnprocessableEntity, "CONFLICT", "Reservations can only be cancelled more than 24 hours before they start")
		return
	}

	if _, err := h.DB.Exec(ctx, `delete from reservations where id = $1`, reservationID); err != nil {
		h.Logger.Error("reservation delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to cancel reservation")
		return
	}

	response.Success(w, map[string]any{"cancelled": true})
}
