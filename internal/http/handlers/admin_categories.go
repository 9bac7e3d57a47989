package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/brosora6/sora-sub000/internal/backoffice"
	"github.com/brosora6/sora-sub000/pkg/response"
)

func (h *Handler) AdminCategoriesList(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Categories{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionList) }); !ok {
		return
	}

	page, err := resource.List(r.Context(), backoffice.ParseListParams(r.URL.Query()))
	if err != nil {
		h.Logger.Error("admin categories list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve categories")
		return
	}
	response.Success(w, page)
}

func (h *Handler) AdminCategoriesCreate(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Categories{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionCreate) }); !ok {
		return
	}

	var input backoffice.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := resource.Validate(input); !fields.Empty() {
		response.FieldErrors(w, map[string]string(fields))
		return
	}

	var categoryID int64
	if err := h.DB.QueryRow(r.Context(), `
		insert into categories (name) values ($1) returning id
	`, strings.TrimSpace(input.Name)).Scan(&categoryID); err != nil {
		response.Error(w, http.StatusUnprocessableEntity, "CONFLICT", "Category name already exists")
		return
	}

	response.Created(w, map[string]any{"id": categoryID}, "Category created successfully")
}

func (h *Handler) AdminCategoriesUpdate(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Categories{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionUpdate) }); !ok {
		return
	}

	categoryID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid category id")
		return
	}

	var input backoffice.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := resource.Validate(input); !fields.Empty() {
		response.FieldErrors(w, map[string]string(fields))
		return
	}

	cmd, err := h.DB.Exec(r.Context(), `update categories set name = $2 where id = $1`, categoryID, strings.TrimSpace(input.Name))
	if err != nil {
		response.Error(w, http.StatusUnprocessableEntity, "CONFLICT", "Category name already exists")
		return
	}
	if cmd.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Category not found")
		return
	}

	response.Success(w, map[string]any{"id": categoryID})
}

// AdminCategoriesDelete refuses to delete a category while menus still
// reference it; the delete is a no-op in that case.
func (h *Handler) AdminCategoriesDelete(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Categories{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionDelete) }); !ok {
		return
	}
	ctx := r.Context()

	categoryID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid category id")
		return
	}

	used, err := resource.InUse(ctx, categoryID)
	if err != nil {
		h.Logger.Error("admin category usage check failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete category")
		return
	}
	if used {
		response.Error(w, http.StatusUnprocessableEntity, "CONFLICT", "Category still has menus assigned to it")
		return
	}

	cmd, err := h.DB.Exec(ctx, `delete from categories where id = $1`, categoryID)
	if err != nil {
		h.Logger.Error("admin category delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete category")
		return
	}
	if cmd.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Category not found")
		return
	}

	response.Success(w, map[string]any{"deleted": true})
}
