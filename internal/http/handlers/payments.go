package handlers

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/brosora6/sora-sub000/internal/utils"
	"github.com/brosora6/sora-sub000/pkg/response"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderNumberCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type paymentItemView struct {
	CartID   int64  `json:"cartId"`
	MenuID   int64  `json:"menuId"`
	MenuName string `json:"menuName"`
	Quantity int32  `json:"quantity"`
	Price    int64  `json:"price"`
}

type paymentView struct {
	ID          int64             `json:"id"`
	OrderNumber string            `json:"orderNumber"`
	TotalAmount int64             `json:"totalAmount"`
	Status      string            `json:"status"`
	ProofURL    string            `json:"proofUrl"`
	Note        *string           `json:"note"`
	BankName    string            `json:"bankName"`
	Items       []paymentItemView `json:"items"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// generateOrderNumber builds ORD-YYYYMMDD-XXXXXX order numbers, retrying on
// the rare suffix collision. The date part uses the restaurant's timezone.
func (h *Handler) generateOrderNumber(ctx context.Context, tx pgx.Tx) (string, error) {
	datePart := time.Now().In(utils.LoadLocation(h.Config.Timezone)).Format("20060102")
	for attempt := 0; attempt < 5; attempt++ {
		suffix := make([]byte, 6)
		randBytes := make([]byte, 6)
		if _, err := rand.Read(randBytes); err != nil {
			return "", err
		}
		for i, b := range randBytes {
			suffix[i] = orderNumberCharset[int(b)%len(orderNumberCharset)]
		}
		candidate := fmt.Sprintf("ORD-%s-%s", datePart, string(suffix))

		var taken bool
		if err := tx.QueryRow(ctx, `select exists(select 1 from payments where order_number = $1)`, candidate).Scan(&taken); err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("order number generation exhausted retries")
}

// Checkout turns a set of active cart lines into a pending payment. The
// total is recomputed from current menu prices inside the transaction; the
// client-side total is never trusted.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	bankAccountID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("bankAccountId")), 10, 64)
	if err != nil || bankAccountID <= 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Bank account is required")
		return
	}

	var cartIDs []int64
	if err := json.Unmarshal([]byte(r.FormValue("cartIds")), &cartIDs); err != nil || len(cartIDs) == 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Cart items are required")
		return
	}

	proofData, _, ferr := readFileBytes(r, "proof", true, h.Config.MaxFileSizeBytes)
	if ferr != nil {
		switch ferr.Kind {
		case fileReadErrMissing:
			response.Error(w, http.StatusBadRequest, "FILE_REQUIRED", "Payment proof is required")
		case fileReadErrTooLarge, fileReadErrInvalidType:
			response.Error(w, http.StatusBadRequest, "INVALID_FILE", ferr.Message)
		default:
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process payment proof")
		}
		return
	}

	var bankActive bool
	if err := h.DB.QueryRow(ctx, `select is_active from bank_accounts where id = $1`, bankAccountID).Scan(&bankActive); err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Bank account not found")
		return
	}
	if !bankActive {
		response.Error(w, http.StatusUnprocessableEntity, "CONFLICT", "Bank account is not active")
		return
	}

	// The proof goes to the store before the transaction; a rollback leaves
	// an unreferenced file, never a payment without a proof.
	proofKey := objectKey("proofs", authCtx.ActorID)
	proofURL, err := h.storeJpegFitInside(ctx, proofKey, proofData, maxSideProof)
	if err != nil {
		h.Logger.Error("proof store failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store payment proof")
		return
	}

	tx, err := h.DB.Begin(ctx)
	if err != nil {
		h.Logger.Error("checkout begin failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create payment")
		return
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		select ca.id, ca.menu_id, m.name, ca.quantity, m.price
		from carts ca
		join menus m on m.id = ca.menu_id
		where ca.id = any($1) and ca.customer_id = $2 and ca.payment_id is null
		for update of ca
	`, cartIDs, authCtx.ActorID)
	if err != nil {
		h.Logger.Error("checkout cart lock failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create payment")
		return
	}

	items := make([]paymentItemView, 0, len(cartIDs))
	var total int64
	for rows.Next() {
		var item paymentItemView
		var unitPrice int64
		if err := rows.Scan(&item.CartID, &item.MenuID, &item.MenuName, &item.Quantity, &unitPrice); err != nil {
			rows.Close()
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create payment")
			return
		}
		item.Price = unitPrice * int64(item.Quantity)
		total += item.Price
		items = append(items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		h.Logger.Error("checkout cart scan failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create payment")
		return
	}

	if len(items) != len(cartIDs) {
		response.Error(w, http.StatusUnprocessableEntity, "CONFLICT", "Some cart items are missing, already ordered, or not yours")
		return
	}
	if total < h.Config.MinOrderAmount {
		response.Error(w, http.StatusUnprocessableEntity, "CONFLICT",
			fmt.Sprintf("Order total must be at least %d", h.Config.MinOrderAmount))
		return
	}

	orderNumber, err := h.generateOrderNumber(ctx, tx)
	if err != nil {
		h.Logger.Error("order number generation failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create payment")
		return
	}

	var payment paymentView
	if err := tx.QueryRow(ctx, `
		insert into payments (customer_id, bank_account_id, order_number, total_amount, proof_url, status)
		values ($1, $2, $3, $4, $5, 'pending')
		returning id, order_number, total_amount, status, proof_url, created_at, updated_at
	`, authCtx.ActorID, bankAccountID, orderNumber, total, proofURL).Scan(
		&payment.ID, &payment.OrderNumber, &payment.TotalAmount, &payment.Status,
		&payment.ProofURL, &payment.CreatedAt, &payment.UpdatedAt,
	); err != nil {
		h.Logger.Error("payment insert failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create payment")
		return
	}

	for _, item := range items {
		if _, err := tx.Exec(ctx, `
			update carts set payment_id = $2, price = $3, updated_at = now() where id = $1
		`, item.CartID, payment.ID, item.Price); err != nil {
			h.Logger.Error("cart attach failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create payment")
			return
		}

		// Conditional decrement: the guard makes oversell impossible even
		// under concurrent checkouts.
		cmd, err := tx.Exec(ctx, `
			update menus
			set stock = stock - $2, total_purchased = total_purchased + $2, updated_at = now()
			where id = $1 and stock >= $2
		`, item.MenuID, item.Quantity)
		if err != nil {
			h.Logger.Error("stock decrement failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create payment")
			return
		}
		if cmd.RowsAffected() == 0 {
			response.Error(w, http.StatusUnprocessableEntity, "CONFLICT", "Not enough stock for "+item.MenuName)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		h.Logger.Error("checkout commit failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create payment")
		return
	}

	payment.Items = items
	response.Created(w, payment, "Payment created successfully")
}

func (h *Handler) fetchPaymentItems(ctx context.Context, paymentID int64) ([]paymentItemView, error) {
	rows, err := h.DB.Query(ctx, `
		select ca.id, ca.menu_id, m.name, ca.quantity, ca.price
		from carts ca
		join menus m on m.id = ca.menu_id
		where ca.payment_id = $1
		order by ca.id asc
	`, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]paymentItemView, 0)
	for rows.Next() {
		var item paymentItemView
		if err := rows.Scan(&item.CartID, &item.MenuID, &item.MenuName, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	rows, err := h.DB.Query(ctx, `
		select p.id, p.order_number, p.total_amount, p.status, p.proof_url, p.note,
		       ba.bank_name, p.created_at, p.updated_at
		from payments p
		join bank_accounts ba on ba.id = p.bank_account_id
		where p.customer_id = $1
		order by p.id desc
	`, authCtx.ActorID)
	if err != nil {
		h.Logger.Error("payments list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve payments")
		return
	}
	defer rows.Close()

	payments := make([]paymentView, 0)
	for rows.Next() {
		var p paymentView
		var note pgtype.Text
		if err := rows.Scan(
			&p.ID, &p.OrderNumber, &p.TotalAmount, &p.Status, &p.ProofURL, &note,
			&p.BankName, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve payments")
			return
		}
		if note.Valid {
			p.Note = &note.String
		}
		payments = append(payments, p)
	}

	for i := range payments {
		items, err := h.fetchPaymentItems(ctx, payments[i].ID)
		if err != nil {
			h.Logger.Error("payment items fetch failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve payments")
			return
		}
		payments[i].Items = items
	}

	response.Success(w, payments)
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	paymentID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payment id")
		return
	}

	var p paymentView
	var ownerID int64
	var note pgtype.Text
	if err := h.DB.QueryRow(ctx, `
		select p.id, p.customer_id, p.order_number, p.total_amount, p.status, p.proof_url, p.note,
		       ba.bank_name, p.created_at, p.updated_at
		from payments p
		join bank_accounts ba on ba.id = p.bank_account_id
		where p.id = $1
	`, paymentID).Scan(
		&p.ID, &ownerID, &p.OrderNumber, &p.TotalAmount, &p.Status, &p.ProofURL, &note,
		&p.BankName, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Payment not found")
		return
	}
	if ownerID != authCtx.ActorID {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "Payment does not belong to you")
		return
	}
	if note.Valid {
		p.Note = &note.String
	}

	items, err := h.fetchPaymentItems(ctx, p.ID)
	if err != nil {
		h.Logger.Error("payment items fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve payment")
		return
	}
	p.Items = items

	response.Success(w, p)
}
