package backoffice

import (
	"context"
	"strings"
	"time"

	"github.com/brosora6/sora-sub000/internal/auth"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CategoryInput struct {
	Name string `json:"name"`
}

type CategoryRow struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	MenuCount int64     `json:"menuCount"`
	CreatedAt time.Time `json:"createdAt"`
}

type Categories struct {
	DB *pgxpool.Pool
}

func (c Categories) Authorize(actor Actor, _ Action) bool {
	return authorize(actor, auth.CapCategories)
}

func (c Categories) Validate(input CategoryInput) Fields {
	fields := Fields{}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		fields.Add("name", "Name is required")
	} else if len(name) > 100 {
		fields.Add("name", "Name must be at most 100 characters")
	}
	return fields
}

func (c Categories) List(ctx context.Context, params ListParams) (Page, error) {
	where := ``
	args := []any{}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = `where c.name ilike $1`
	}

	var total int64
	if err := c.DB.QueryRow(ctx, `select count(*) from categories c `+where, args...).Scan(&total); err != nil {
		return Page{}, err
	}

	query := `
		select c.id, c.name, count(m.id), c.created_at
		from categories c
		left join menus m on m.category_id = c.id
		` + where + `
		group by c.id
		order by c.name asc
		limit ` + itoa(params.PerPage) + ` offset ` + itoa(params.Offset())

	rows, err := c.DB.Query(ctx, query, args...)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	items := make([]CategoryRow, 0)
	for rows.Next() {
		var row CategoryRow
		if err := rows.Scan(&row.ID, &row.Name, &row.MenuCount, &row.CreatedAt); err != nil {
			return Page{}, err
		}
		items = append(items, row)
	}

	return Page{Items: items, Total: total, Page: params.Page, PerPage: params.PerPage}, rows.Err()
}

// InUse reports whether any menu still references the category. Deleting a
// referenced category is refused.
func (c Categories) InUse(ctx context.Context, categoryID int64) (bool, error) {
	var used bool
	err := c.DB.QueryRow(ctx, `select exists(select 1 from menus where category_id = $1)`, categoryID).Scan(&used)
	return used, err
}
