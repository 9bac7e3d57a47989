package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/brosora6/sora-sub000/internal/backoffice"
	"github.com/brosora6/sora-sub000/pkg/response"

	"github.com/jackc/pgx/v5/pgtype"
)

func (h *Handler) notifyPaymentUpdate(r *http.Request, orderNumber string) {
	if _, err := h.DB.Exec(r.Context(), `select pg_notify('payment_updates', $1)`, orderNumber); err != nil {
		h.Logger.Warn("payment notify failed", zapError(err))
	}
}

func (h *Handler) AdminPaymentsList(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Payments{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionList) }); !ok {
		return
	}

	params := backoffice.ParseListParams(r.URL.Query())
	if params.Status != "" && !backoffice.ValidStatus(params.Status) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown payment status")
		return
	}

	page, err := resource.List(r.Context(), params)
	if err != nil {
		h.Logger.Error("admin payments list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve payments")
		return
	}
	response.Success(w, page)
}

func (h *Handler) AdminPaymentsDetail(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Payments{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionList) }); !ok {
		return
	}
	ctx := r.Context()

	paymentID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payment id")
		return
	}

	var row backoffice.PaymentRow
	var note pgtype.Text
	if err := h.DB.QueryRow(ctx, `
		select pay.id, pay.customer_id, cu.name, pay.bank_account_id, ba.bank_name,
		       pay.order_number, pay.total_amount, pay.proof_url, pay.status, pay.note,
		       pay.created_at, pay.updated_at
		from payments pay
		join customers cu on cu.id = pay.customer_id
		join bank_accounts ba on ba.id = pay.bank_account_id
		where pay.id = $1
	`, paymentID).Scan(
		&row.ID, &row.CustomerID, &row.CustomerName, &row.BankAccountID, &row.BankName,
		&row.OrderNumber, &row.TotalAmount, &row.ProofURL, &row.Status, &note,
		&row.CreatedAt, &row.UpdatedAt,
	); err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Payment not found")
		return
	}
	if note.Valid {
		row.Note = &note.String
	}

	items, err := h.fetchPaymentItems(ctx, row.ID)
	if err != nil {
		h.Logger.Error("admin payment items fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve payment")
		return
	}

	response.Success(w, map[string]any{
		"payment": row,
		"items":   items,
	})
}

// AdminPaymentsUpdateStatus drives the payment workflow. A completed status
// without a proof on file is not allowed to stand; the row reverts to
// pending and the response carries a warning instead of failing.
func (h *Handler) AdminPaymentsUpdateStatus(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Payments{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionUpdate) }); !ok {
		return
	}
	ctx := r.Context()

	paymentID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payment id")
		return
	}

	var payload struct {
		Status   string  `json:"status"`
		Note     *string `json:"note"`
		ProofURL *string `json:"proofUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	requested := strings.TrimSpace(payload.Status)
	if !backoffice.ValidStatus(requested) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown payment status")
		return
	}

	var currentStatus, currentProof, orderNumber string
	if err := h.DB.QueryRow(ctx, `
		select status, proof_url, order_number from payments where id = $1
	`, paymentID).Scan(&currentStatus, &currentProof, &orderNumber); err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Payment not found")
		return
	}

	if !backoffice.CanTransition(currentStatus, requested) {
		response.Error(w, http.StatusUnprocessableEntity, "CONFLICT", "Payment status is final and cannot change")
		return
	}

	proof := currentProof
	if payload.ProofURL != nil {
		proof = strings.TrimSpace(*payload.ProofURL)
	}

	warning := ""
	if requested == backoffice.PaymentCompleted && proof == "" {
		requested = backoffice.PaymentPending
		warning = "A payment cannot be completed without a proof; status reverted to pending"
	}

	if _, err := h.DB.Exec(ctx, `
		update payments
		set status = $2, proof_url = $3, note = coalesce($4, note), updated_at = now()
		where id = $1
	`, paymentID, requested, proof, payload.Note); err != nil {
		h.Logger.Error("admin payment status update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update payment")
		return
	}

	h.notifyPaymentUpdate(r, orderNumber)

	data := map[string]any{
		"id":          paymentID,
		"orderNumber": orderNumber,
		"status":      requested,
	}
	if warning != "" {
		data["warning"] = warning
	}
	response.Success(w, data)
}

// AdminPaymentsRebuildItems replaces the line items of a payment. Every new
// line re-validates its menu and takes the menu's current price; the total
// is re-derived from the rebuilt lines.
func (h *Handler) AdminPaymentsRebuildItems(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Payments{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionUpdate) }); !ok {
		return
	}
	ctx := r.Context()

	paymentID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payment id")
		return
	}

	var payload struct {
		Items []struct {
			MenuID   int64 `json:"menuId"`
			Quantity int32 `json:"quantity"`
		} `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.Items) == 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Items are required")
		return
	}
	for _, item := range payload.Items {
		if item.Quantity < 1 || item.Quantity > 99 {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Quantity must be between 1 and 99")
			return
		}
	}

	var customerID int64
	var status, orderNumber string
	if err := h.DB.QueryRow(ctx, `
		select customer_id, status, order_number from payments where id = $1
	`, paymentID).Scan(&customerID, &status, &orderNumber); err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Payment not found")
		return
	}
	if status == backoffice.PaymentCompleted {
		response.Error(w, http.StatusUnprocessableEntity, "CONFLICT", "Completed payments cannot be edited")
		return
	}

	tx, err := h.DB.Begin(ctx)
	if err != nil {
		h.Logger.Error("payment rebuild begin failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update payment items")
		return
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `delete from carts where payment_id = $1`, paymentID); err != nil {
		h.Logger.Error("payment rebuild delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update payment items")
		return
	}

	var total int64
	for _, item := range payload.Items {
		var menuPrice int64
		if err := tx.QueryRow(ctx, `select price from menus where id = $1`, item.MenuID).Scan(&menuPrice); err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Menu does not exist")
			return
		}
		linePrice := menuPrice * int64(item.Quantity)
		total += linePrice
		if _, err := tx.Exec(ctx, `
			insert into carts (customer_id, menu_id, quantity, price, payment_id)
			values ($1, $2, $3, $4, $5)
		`, customerID, item.MenuID, item.Quantity, linePrice, paymentID); err != nil {
			h.Logger.Error("payment rebuild insert failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update payment items")
			return
		}
	}

	if _, err := tx.Exec(ctx, `
		update payments set total_amount = $2, updated_at = now() where id = $1
	`, paymentID, total); err != nil {
		h.Logger.Error("payment rebuild total update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update payment items")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		h.Logger.Error("payment rebuild commit failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update payment items")
		return
	}

	h.notifyPaymentUpdate(r, orderNumber)

	response.Success(w, map[string]any{
		"id":          paymentID,
		"totalAmount": total,
	})
}
