package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/brosora6/sora-sub000/pkg/response"

	"github.com/jackc/pgx/v5/pgtype"
)

type menuView struct {
	ID             int64     `json:"id"`
	CategoryID     int64     `json:"categoryId"`
	CategoryName   string    `json:"categoryName"`
	Name           string    `json:"name"`
	Price          int64     `json:"price"`
	ImageURL       *string   `json:"imageUrl"`
	Stock          int32     `json:"stock"`
	Description    string    `json:"description"`
	IsRecommended  bool      `json:"isRecommended"`
	TotalPurchased int64     `json:"totalPurchased"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type menuCategoryGroup struct {
	CategoryID   int64      `json:"categoryId"`
	CategoryName string     `json:"categoryName"`
	Menus        []menuView `json:"menus"`
}

// ListMenus is the public catalog. Results come back grouped by category;
// category/search/recommended filters narrow the set.
func (h *Handler) ListMenus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	where := []string{"1=1"}
	args := []any{}

	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			args = append(args, id)
			where = append(where, "m.category_id = $"+intToString(len(args)))
		} else {
			args = append(args, raw)
			where = append(where, "lower(c.name) = lower($"+intToString(len(args))+")")
		}
	}
	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		args = append(args, "%"+search+"%")
		where = append(where, "m.name ilike $"+intToString(len(args)))
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("recommended")); raw != "" {
		if recommended, err := strconv.ParseBool(raw); err == nil && recommended {
			where = append(where, "m.is_recommended = true")
		}
	}

	query := `
		select m.id, m.category_id, c.name, m.name, m.price, m.image_url, m.stock,
		       m.description, m.is_recommended, m.total_purchased, m.created_at, m.updated_at
		from menus m
		join categories c on c.id = m.category_id
		where ` + strings.Join(where, " and ") + `
		order by c.name asc, m.name asc
	`

	rows, err := h.DB.Query(ctx, query, args...)
	if err != nil {
		h.Logger.Error("menus list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve menus")
		return
	}
	defer rows.Close()

	menus := make([]menuView, 0)
	for rows.Next() {
		var m menuView
		var imageURL pgtype.Text
		if err := rows.Scan(
			&m.ID, &m.CategoryID, &m.CategoryName, &m.Name, &m.Price, &imageURL,
			&m.Stock, &m.Description, &m.IsRecommended, &m.TotalPurchased,
			&m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			h.Logger.Error("menus scan failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve menus")
			return
		}
		if imageURL.Valid {
			m.ImageURL = &imageURL.String
		}
		menus = append(menus, m)
	}

	groups := make([]menuCategoryGroup, 0)
	for _, m := range menus {
		if len(groups) == 0 || groups[len(groups)-1].CategoryID != m.CategoryID {
			groups = append(groups, menuCategoryGroup{
				CategoryID:   m.CategoryID,
				CategoryName: m.CategoryName,
				Menus:        make([]menuView, 0, 4),
			})
		}
		groups[len(groups)-1].Menus = append(groups[len(groups)-1].Menus, m)
	}

	response.Success(w, map[string]any{
		"menus":   menus,
		"grouped": groups,
	})
}

func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	menuID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid menu id")
		return
	}

	var m menuView
	var imageURL pgtype.Text
	if err := h.DB.QueryRow(r.Context(), `
		select m.id, m.category_id, c.name, m.name, m.price, m.image_url, m.stock,
		       m.description, m.is_recommended, m.total_purchased, m.created_at, m.updated_at
		from menus m
		join categories c on c.id = m.category_id
		where m.id = $1
	`, menuID).Scan(
		&m.ID, &m.CategoryID, &m.CategoryName, &m.Name, &m.Price, &imageURL,
		&m.Stock, &m.Description, &m.IsRecommended, &m.TotalPurchased,
		&m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Menu not found")
		return
	}
	if imageURL.Valid {
		m.ImageURL = &imageURL.String
	}

	response.Success(w, m)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	rows, err := h.DB.Query(r.Context(), `
		select c.id, c.name, count(m.id)
		from categories c
		left join menus m on m.category_id = c.id
		group by c.id
		order by c.name asc
	`)
	if err != nil {
		h.Logger.Error("categories list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve categories")
		return
	}
	defer rows.Close()

	type categoryView struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		MenuCount int64  `json:"menuCount"`
	}
	items := make([]categoryView, 0)
	for rows.Next() {
		var c categoryView
		if err := rows.Scan(&c.ID, &c.Name, &c.MenuCount); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve categories")
			return
		}
		items = append(items, c)
	}

	response.Success(w, items)
}

// ListActiveBankAccounts feeds the checkout form with the transfer
// destination. Customer guard only.
func (h *Handler) ListActiveBankAccounts(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAuth(w, r); !ok {
		return
	}

	rows, err := h.DB.Query(r.Context(), `
		select id, bank_name, account_number, account_holder
		from bank_accounts
		where is_active = true
		order by id asc
	`)
	if err != nil {
		h.Logger.Error("bank accounts list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve bank accounts")
		return
	}
	defer rows.Close()

	type bankAccountView struct {
		ID            int64  `json:"id"`
		BankName      string `json:"bankName"`
		AccountNumber string `json:"accountNumber"`
		AccountHolder string `json:"accountHolder"`
	}
	items := make([]bankAccountView, 0)
	for rows.Next() {
		var b bankAccountView
		if err := rows.Scan(&b.ID, &b.BankName, &b.AccountNumber, &b.AccountHolder); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve bank accounts")
			return
		}
		items = append(items, b)
	}

	response.Success(w, items)
}
