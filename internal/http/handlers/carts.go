package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/brosora6/sora-sub000/pkg/response"

	"github.com/jackc/pgx/v5/pgtype"
)

type cartItemView struct {
	ID        int64     `json:"id"`
	MenuID    int64     `json:"menuId"`
	MenuName  string    `json:"menuName"`
	MenuImage *string   `json:"menuImage"`
	UnitPrice int64     `json:"unitPrice"`
	Quantity  int32     `json:"quantity"`
	Price     int64     `json:"price"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type addCartPayload struct {
	MenuID   int64 `json:"menuId"`
	Quantity int32 `json:"quantity"`
}

// AddCartItem puts a menu into the caller's active cart. Adding a menu that
// is already in the cart merges quantities into the existing line.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	var payload addCartPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.MenuID <= 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Menu ID is required")
		return
	}
	if payload.Quantity < 1 || payload.Quantity > 99 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Quantity must be between 1 and 99")
		return
	}

	var menuPrice int64
	var stock int32
	if err := h.DB.QueryRow(ctx, `select price, stock from menus where id = $1`, payload.MenuID).Scan(&menuPrice, &stock); err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Menu not found")
		return
	}

	// Existing active line for the same menu, if any.
	var existingID int64
	var existingQty int32
	err := h.DB.QueryRow(ctx, `
		select id, quantity from carts
		where customer_id = $1 and menu_id = $2 and payment_id is null
	`, authCtx.ActorID, payload.MenuID).Scan(&existingID, &existingQty)

	quantity := payload.Quantity
	if err == nil {
		quantity += existingQty
	}
	if quantity > 99 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Quantity must be between 1 and 99")
		return
	}
	if quantity > stock {
		response.Error(w, http.StatusUnprocessableEntity, "CONFLICT", "Not enough stock for this menu")
		return
	}

	var cartID int64
	if err == nil {
		err = h.DB.QueryRow(ctx, `
			update carts
			set quantity = $2, price = $3, updated_at = now()
			where id = $1
			returning id
		`, existingID, quantity, menuPrice*int64(quantity)).Scan(&cartID)
	} else {
		err = h.DB.QueryRow(ctx, `
			insert into carts (customer_id, menu_id, quantity, price)
			values ($1, $2, $3, $4)
			returning id
		`, authCtx.ActorID, payload.MenuID, quantity, menuPrice*int64(quantity)).Scan(&cartID)
	}
	if err != nil {
		h.Logger.Error("cart upsert failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to add to cart")
		return
	}

	response.Created(w, map[string]any{"id": cartID, "quantity": quantity}, "Added to cart")
}

func (h *Handler) ListCartItems(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := requireAuth(w, r)
	if !ok {
		return
	}

	rows, err := h.DB.Query(r.Context(), `
		select ca.id, ca.menu_id, m.name, m.image_url, m.price, ca.quantity, ca.price,
		       ca.created_at, ca.updated_at
		from carts ca
		join menus m on m.id = ca.menu_id
		where ca.customer_id = $1 and ca.payment_id is null
		order by ca.id asc
	`, authCtx.ActorID)
	if err != nil {
		h.Logger.Error("cart list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve cart")
		return
	}
	defer rows.Close()

	items := make([]cartItemView, 0)
	var total int64
	for rows.Next() {
		var item cartItemView
		var menuImage pgtype.Text
		if err := rows.Scan(
			&item.ID, &item.MenuID, &item.MenuName, &menuImage, &item.UnitPrice,
			&item.Quantity, &item.Price, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve cart")
			return
		}
		if menuImage.Valid {
			item.MenuImage = &menuImage.String
		}
		total += item.Price
		items = append(items, item)
	}

	response.Success(w, map[string]any{
		"items": items,
		"total": total,
	})
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	cartID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid cart id")
		return
	}

	var payload struct {
		Quantity int32 `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if payload.Quantity < 1 || payload.Quantity > 99 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Quantity must be between 1 and 99")
		return
	}

	var ownerID, menuID int64
	var paymentID pgtype.Int8
	if err := h.DB.QueryRow(ctx, `
		select customer_id, menu_id, payment_id from carts where id = $1
	`, cartID).Scan(&ownerID, &menuID, &paymentID); err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Cart item not found")
		return
	}
	if ownerID != authCtx.ActorID {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "Cart item does not belong to you")
		return
	}
	if paymentID.Valid {
		response.Error(w, http.StatusUnprocessableEntity, "CONFLICT", "Cart item is already part of an order")
		return
	}

	var menuPrice int64
	var stock int32
	if err := h.DB.QueryRow(ctx, `select price, stock from menus where id = $1`, menuID).Scan(&menuPrice, &stock); err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Menu not found")
		return
	}
	if payload.Quantity > stock {
		response.Error(w, http.StatusUnprocessableEntity, "CONFLICT", "Not enough stock for this menu")
		return
	}

	if _, err := h.DB.Exec(ctx, `
		update carts set quantity = $2, price = $3, updated_at = now() where id = $1
	`, cartID, payload.Quantity, menuPrice*int64(payload.Quantity)); err != nil {
		h.Logger.Error("cart update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update cart")
		return
	}

	response.Success(w, map[string]any{
		"id":       cartID,
		"quantity": payload.Quantity,
		"price":    menuPrice * int64(payload.Quantity),
	})
}

func (h *Handler) DeleteCartItem(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	cartID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid cart id")
		return
	}

	var ownerID int64
	var paymentStatus pgtype.Text
	if err := h.DB.QueryRow(ctx, `
		select ca.customer_id, p.status
		from carts ca
		left join payments p on p.id = ca.payment_id
		where ca.id = $1
	`, cartID).Scan(&ownerID, &paymentStatus); err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Cart item not found")
		return
	}
	if ownerID != authCtx.ActorID {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "Cart item does not belong to you")
		return
	}
	if paymentStatus.Valid && paymentStatus.String == "completed" {
		response.Error(w, http.StatusUnprocessableEntity, "CONFLICT", "Cart item belongs to a completed order")
		return
	}

	if _, err := h.DB.Exec(ctx, `delete from carts where id = $1`, cartID); err != nil {
		h.Logger.Error("cart delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete cart item")
		return
	}

	response.Success(w, map[string]any{"deleted": true})
}
