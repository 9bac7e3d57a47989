package backoffice

import (
	"context"
	"strings"
	"time"

	"github.com/brosora6/sora-sub000/internal/auth"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MenuInput struct {
	CategoryID    int64  `json:"categoryId"`
	Name          string `json:"name"`
	Price         int64  `json:"price"`
	Stock         int32  `json:"stock"`
	Description   string `json:"description"`
	IsRecommended bool   `json:"isRecommended"`
}

type MenuRow struct {
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

type Menus struct {
	DB *pgxpool.Pool
}

func (m Menus) Authorize(actor Actor, _ Action) bool {
	return authorize(actor, auth.CapMenus)
}

func (m Menus) Validate(ctx context.Context, input MenuInput) Fields {
	fields := Fields{}
	if strings.TrimSpace(input.Name) == "" {
		fields.Add("name", "Name is required")
	} else if len(input.Name) > 150 {
		fields.Add("name", "Name must be at most 150 characters")
	}
	if input.Price < 0 {
		fields.Add("price", "Price must not be negative")
	}
	if input.Stock < 0 || input.Stock > 99 {
		fields.Add("stock", "Stock must be between 0 and 99")
	}
	if len(input.Description) > 1000 {
		fields.Add("description", "Description must be at most 1000 characters")
	}
	if input.CategoryID <= 0 {
		fields.Add("categoryId", "Category is required")
	} else if m.DB != nil {
		var exists bool
		if err := m.DB.QueryRow(ctx, `select exists(select 1 from categories where id = $1)`, input.CategoryID).Scan(&exists); err != nil || !exists {
			fields.Add("categoryId", "Category does not exist")
		}
	}
	return fields
}

func (m Menus) List(ctx context.Context, params ListParams) (Page, error) {
	where := `where 1=1`
	args := []any{}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where += ` and m.name ilike $1`
	}

	var total int64
	if err := m.DB.QueryRow(ctx, `select count(*) from menus m `+where, args...).Scan(&total); err != nil {
		return Page{}, err
	}

	query := `
		select m.id, m.category_id, c.name, m.name, m.price, m.image_url, m.stock,
		       m.description, m.is_recommended, m.total_purchased, m.created_at, m.updated_at
		from menus m
		join categories c on c.id = m.category_id
		` + where + `
		order by m.id desc
		limit ` + itoa(params.PerPage) + ` offset ` + itoa(params.Offset())

	rows, err := m.DB.Query(ctx, query, args...)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	items := make([]MenuRow, 0)
	for rows.Next() {
		var row MenuRow
		var imageURL pgtype.Text
		if err := rows.Scan(
			&row.ID, &row.CategoryID, &row.CategoryName, &row.Name, &row.Price, &imageURL,
			&row.Stock, &row.Description, &row.IsRecommended, &row.TotalPurchased,
			&row.CreatedAt, &row.UpdatedAt,
		); err != nil {
			return Page{}, err
		}
		if imageURL.Valid {
			row.ImageURL = &imageURL.String
		}
		items = append(items, row)
	}

	return Page{Items: items, Total: total, Page: params.Page, PerPage: params.PerPage}, rows.Err()
}
