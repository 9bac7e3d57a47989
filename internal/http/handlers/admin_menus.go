package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/brosora6/sora-sub000/internal/backoffice"
	"github.com/brosora6/sora-sub000/pkg/response"
)

func (h *Handler) AdminMenusList(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Menus{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionList) }); !ok {
		return
	}

	page, err := resource.List(r.Context(), backoffice.ParseListParams(r.URL.Query()))
	if err != nil {
		h.Logger.Error("admin menus list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve menus")
		return
	}
	response.Success(w, page)
}

func (h *Handler) AdminMenusCreate(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Menus{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionCreate) }); !ok {
		return
	}
	ctx := r.Context()

	var input backoffice.MenuInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := resource.Validate(ctx, input); !fields.Empty() {
		response.FieldErrors(w, map[string]string(fields))
		return
	}

	var menuID int64
	if err := h.DB.QueryRow(ctx, `
		insert into menus (category_id, name, price, stock, description, is_recommended)
		values ($1, $2, $3, $4, $5, $6)
		returning id
	`, input.CategoryID, strings.TrimSpace(input.Name), input.Price, input.Stock,
		input.Description, input.IsRecommended,
	).Scan(&menuID); err != nil {
		h.Logger.Error("admin menu insert failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create menu")
		return
	}

	response.Created(w, map[string]any{"id": menuID}, "Menu created successfully")
}

func (h *Handler) AdminMenusUpdate(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Menus{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionUpdate) }); !ok {
		return
	}
	ctx := r.Context()

	menuID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid menu id")
		return
	}

	var input backoffice.MenuInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := resource.Validate(ctx, input); !fields.Empty() {
		response.FieldErrors(w, map[string]string(fields))
		return
	}

	cmd, err := h.DB.Exec(ctx, `
		update menus
		set category_id = $2, name = $3, price = $4, stock = $5, description = $6,
		    is_recommended = $7, updated_at = now()
		where id = $1
	`, menuID, input.CategoryID, strings.TrimSpace(input.Name), input.Price, input.Stock,
		input.Description, input.IsRecommended)
	if err != nil {
		h.Logger.Error("admin menu update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update menu")
		return
	}
	if cmd.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Menu not found")
		return
	}

	response.Success(w, map[string]any{"id": menuID})
}

func (h *Handler) AdminMenusUploadImage(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Menus{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionUpdate) }); !ok {
		return
	}
	ctx := r.Context()

	menuID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid menu id")
		return
	}

	var exists bool
	if err := h.DB.QueryRow(ctx, `select exists(select 1 from menus where id = $1)`, menuID).Scan(&exists); err != nil || !exists {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Menu not found")
		return
	}

	data, _, ferr := readFileBytes(r, "file", true, h.Config.MaxFileSizeBytes)
	if ferr != nil {
		switch ferr.Kind {
		case fileReadErrMissing:
			response.Error(w, http.StatusBadRequest, "FILE_REQUIRED", "File is required")
		case fileReadErrTooLarge, fileReadErrInvalidType:
			response.Error(w, http.StatusBadRequest, "INVALID_FILE", ferr.Message)
		default:
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to upload image")
		}
		return
	}

	key := objectKey("menus", menuID)
	url, err := h.storeJpegFitInside(ctx, key, data, maxSideMenu)
	if err != nil {
		h.Logger.Error("menu image store failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to upload image")
		return
	}

	if _, err := h.DB.Exec(ctx, `update menus set image_url = $2, updated_at = now() where id = $1`, menuID, url); err != nil {
		h.Logger.Error("menu image update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to upload image")
		return
	}

	response.Success(w, map[string]any{"imageUrl": url})
}

func (h *Handler) AdminMenusDelete(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Menus{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionDelete) }); !ok {
		return
	}
	ctx := r.Context()

	menuID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid menu id")
		return
	}

	var referenced bool
	if err := h.DB.QueryRow(ctx, `select exists(select 1 from carts where menu_id = $1)`, menuID).Scan(&referenced); err != nil {
		h.Logger.Error("admin menu reference check failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete menu")
		return
	}
	if referenced {
		response.Error(w, http.StatusUnprocessableEntity, "CONFLICT", "Menu is referenced by cart or order lines")
		return
	}

	cmd, err := h.DB.Exec(ctx, `delete from menus where id = $1`, menuID)
	if err != nil {
		h.Logger.Error("admin menu delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete menu")
		return
	}
	if cmd.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Menu not found")
		return
	}

	response.Success(w, map[string]any{"deleted": true})
}
