package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/brosora6/sora-sub000/internal/backoffice"
	"github.com/brosora6/sora-sub000/pkg/response"
)

func (h *Handler) AdminCartsList(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Carts{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionList) }); !ok {
		return
	}

	page, err := resource.List(r.Context(), backoffice.ParseListParams(r.URL.Query()))
	if err != nil {
		h.Logger.Error("admin carts list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve carts")
		return
	}
	response.Success(w, page)
}

func (h *Handler) AdminCartsDelete(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Carts{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionDelete) }); !ok {
		return
	}
	ctx := r.Context()

	cartID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid cart id")
		return
	}

	completed, err := resource.AnyCompleted(ctx, []int64{cartID})
	if err != nil {
		h.Logger.Error("admin cart completion check failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete cart item")
		return
	}
	if completed {
		response.Error(w, http.StatusUnprocessableEntity, "CONFLICT", "Cart item belongs to a completed order")
		return
	}

	cmd, err := h.DB.Exec(ctx, `delete from carts where id = $1`, cartID)
	if err != nil {
		h.Logger.Error("admin cart delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete cart item")
		return
	}
	if cmd.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Cart item not found")
		return
	}

	response.Success(w, map[string]any{"deleted": true})
}

// AdminCartsBulkDelete removes many lines at once. The whole batch is
// refused when any selected line belongs to a completed payment.
func (h *Handler) AdminCartsBulkDelete(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Carts{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionDelete) }); !ok {
		return
	}
	ctx := r.Context()

	var payload struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.IDs) == 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Cart IDs are required")
		return
	}

	completed, err := resource.AnyCompleted(ctx, payload.IDs)
	if err != nil {
		h.Logger.Error("admin carts completion check failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete cart items")
		return
	}
	if completed {
		response.Error(w, http.StatusUnprocessableEntity, "CONFLICT", "Selection includes items from completed orders")
		return
	}

	cmd, err := h.DB.Exec(ctx, `delete from carts where id = any($1)`, payload.IDs)
	if err != nil {
		h.Logger.Error("admin carts bulk delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete cart items")
		return
	}

	response.Success(w, map[string]any{"deletedCount": cmd.RowsAffected()})
}
