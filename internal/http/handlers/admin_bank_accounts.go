package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/brosora6/sora-sub000/internal/backoffice"
	"github.com/brosora6/sora-sub000/pkg/response"
)

func (h *Handler) AdminBankAccountsList(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.BankAccounts{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionList) }); !ok {
		return
	}

	page, err := resource.List(r.Context(), backoffice.ParseListParams(r.URL.Query()))
	if err != nil {
		h.Logger.Error("admin bank accounts list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve bank accounts")
		return
	}
	response.Success(w, page)
}

func (h *Handler) AdminBankAccountsCreate(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.BankAccounts{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionCreate) }); !ok {
		return
	}
	ctx := r.Context()

	var input backoffice.BankAccountInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := resource.Validate(input); !fields.Empty() {
		response.FieldErrors(w, map[string]string(fields))
		return
	}

	var accountID int64
	if err := h.DB.QueryRow(ctx, `
		insert into bank_accounts (bank_name, account_number, account_holder, is_active)
		values ($1, $2, $3, false)
		returning id
	`, strings.TrimSpace(input.BankName), strings.TrimSpace(input.AccountNumber),
		strings.TrimSpace(input.AccountHolder),
	).Scan(&accountID); err != nil {
		h.Logger.Error("admin bank account insert failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create bank account")
		return
	}

	if input.IsActive {
		if err := resource.Activate(ctx, accountID); err != nil {
			h.Logger.Error("admin bank account activate failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create bank account")
			return
		}
	}

	response.Created(w, map[string]any{"id": accountID}, "Bank account created successfully")
}

func (h *Handler) AdminBankAccountsUpdate(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.BankAccounts{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionUpdate) }); !ok {
		return
	}
	ctx := r.Context()

	accountID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid bank account id")
		return
	}

	var input backoffice.BankAccountInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := resource.Validate(input); !fields.Empty() {
		response.FieldErrors(w, map[string]string(fields))
		return
	}

	cmd, err := h.DB.Exec(ctx, `
		update bank_accounts
		set bank_name = $2, account_number = $3, account_holder = $4
		where id = $1
	`, accountID, strings.TrimSpace(input.BankName), strings.TrimSpace(input.AccountNumber),
		strings.TrimSpace(input.AccountHolder))
	if err != nil {
		h.Logger.Error("admin bank account update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update bank account")
		return
	}
	if cmd.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Bank account not found")
		return
	}

	if input.IsActive {
		if err := resource.Activate(ctx, accountID); err != nil {
			h.Logger.Error("admin bank account activate failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update bank account")
			return
		}
	}

	response.Success(w, map[string]any{"id": accountID})
}

// AdminBankAccountsActivate switches the single active transfer destination
// over to the given account.
func (h *Handler) AdminBankAccountsActivate(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.BankAccounts{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionUpdate) }); !ok {
		return
	}
	ctx := r.Context()

	accountID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid bank account id")
		return
	}

	var exists bool
	if err := h.DB.QueryRow(ctx, `select exists(select 1 from bank_accounts where id = $1)`, accountID).Scan(&exists); err != nil || !exists {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Bank account not found")
		return
	}

	if err := resource.Activate(ctx, accountID); err != nil {
		h.Logger.Error("admin bank account activate failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to activate bank account")
		return
	}

	response.Success(w, map[string]any{"id": accountID, "isActive": true})
}

func (h *Handler) AdminBankAccountsDelete(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.BankAccounts{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionDelete) }); !ok {
		return
	}
	ctx := r.Context()

	accountID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid bank account id")
		return
	}

	var referenced bool
	if err := h.DB.QueryRow(ctx, `select exists(select 1 from payments where bank_account_id = $1)`, accountID).Scan(&referenced); err != nil {
		h.Logger.Error("admin bank account reference check failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete bank account")
		return
	}
	if referenced {
		response.Error(w, http.StatusUnprocessableEntity, "CONFLICT", "Bank account is referenced by payments")
		return
	}

	cmd, err := h.DB.Exec(ctx, `delete from bank_accounts where id = $1`, accountID)
	if err != nil {
		h.Logger.Error("admin bank account delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete bank account")
		return
	}
	if cmd.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Bank account not found")
		return
	}

	response.Success(w, map[string]any{"deleted": true})
}
