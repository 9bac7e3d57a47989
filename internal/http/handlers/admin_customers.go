package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/brosora6/sora-sub000/internal/backoffice"
	"github.com/brosora6/sora-sub000/pkg/response"

	"github.com/jackc/pgx/v5/pgtype"
)

func (h *Handler) AdminCustomersList(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Customers{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionList) }); !ok {
		return
	}

	page, err := resource.List(r.Context(), backoffice.ParseListParams(r.URL.Query()))
	if err != nil {
		h.Logger.Error("admin customers list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve customers")
		return
	}
	response.Success(w, page)
}

func (h *Handler) AdminCustomersDetail(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Customers{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionList) }); !ok {
		return
	}
	ctx := r.Context()

	customerID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid customer id")
		return
	}

	var row backoffice.CustomerRow
	var photoURL pgtype.Text
	if err := h.DB.QueryRow(ctx, `
		select id, name, email, phone, photo_url, is_active, created_at
		from customers
		where id = $1
	`, customerID).Scan(&row.ID, &row.Name, &row.Email, &row.Phone, &photoURL, &row.IsActive, &row.CreatedAt); err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Customer not found")
		return
	}
	if photoURL.Valid {
		row.PhotoURL = &photoURL.String
	}

	var orderCount, reservationCount int64
	if err := h.DB.QueryRow(ctx, `
		select
			(select count(*) from payments where customer_id = $1),
			(select count(*) from reservations where customer_id = $1)
	`, customerID).Scan(&orderCount, &reservationCount); err != nil {
		h.Logger.Error("admin customer counters failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve customer")
		return
	}

	response.Success(w, map[string]any{
		"customer":         row,
		"orderCount":       orderCount,
		"reservationCount": reservationCount,
	})
}

// AdminCustomersSetActive enables or disables a customer account. Disabling
// also revokes the customer's active sessions so they lose access at once.
func (h *Handler) AdminCustomersSetActive(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Customers{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionUpdate) }); !ok {
		return
	}
	ctx := r.Context()

	customerID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid customer id")
		return
	}

	var payload struct {
		IsActive bool `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	cmd, err := h.DB.Exec(ctx, `
		update customers set is_active = $2, updated_at = now() where id = $1
	`, customerID, payload.IsActive)
	if err != nil {
		h.Logger.Error("admin customer activation update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update customer")
		return
	}
	if cmd.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Customer not found")
		return
	}

	if !payload.IsActive {
		if _, err := h.DB.Exec(ctx, `
			update sessions set status = 'REVOKED'
			where actor_type = 'CUSTOMER' and actor_id = $1 and status = 'ACTIVE'
		`, customerID); err != nil {
			h.Logger.Warn("customer session revoke failed", zapError(err))
		}
	}

	response.Success(w, map[string]any{"id": customerID, "isActive": payload.IsActive})
}

// AdminCustomersDelete removes a customer account entirely. The operation is
// reserved for superadmins and refused while orders or reservations exist.
func (h *Handler) AdminCustomersDelete(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Customers{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionDelete) }); !ok {
		return
	}
	ctx := r.Context()

	customerID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid customer id")
		return
	}

	var referenced bool
	if err := h.DB.QueryRow(ctx, `
		select exists(select 1 from payments where customer_id = $1)
		    or exists(select 1 from reservations where customer_id = $1)
	`, customerID).Scan(&referenced); err != nil {
		h.Logger.Error("admin customer reference check failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete customer")
		return
	}
	if referenced {
		response.Error(w, http.StatusUnprocessableEntity, "CONFLICT", "Customer has orders or reservations on record")
		return
	}

	tx, err := h.DB.Begin(ctx)
	if err != nil {
		h.Logger.Error("admin customer delete begin failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete customer")
		return
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `delete from carts where customer_id = $1`, customerID); err != nil {
		h.Logger.Error("admin customer cart cleanup failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete customer")
		return
	}
	if _, err := tx.Exec(ctx, `delete from sessions where actor_type = 'CUSTOMER' and actor_id = $1`, customerID); err != nil {
		h.Logger.Error("admin customer session cleanup failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete customer")
		return
	}

	cmd, err := tx.Exec(ctx, `delete from customers where id = $1`, customerID)
	if err != nil {
		h.Logger.Error("admin customer delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete customer")
		return
	}
	if cmd.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Customer not found")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		h.Logger.Error("admin customer delete commit failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete customer")
		return
	}

	response.Success(w, map[string]any{"deleted": true})
}
