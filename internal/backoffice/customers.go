package backoffice

import (
	"context"
	"time"

	"github.com/brosora6/sora-sub000/internal/auth"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRow struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	PhotoURL  *string   `json:"photoUrl"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

type Customers struct {
	DB *pgxpool.Pool
}

// Authorize gates deletion behind its own capability; only superadmins
// hold it. Everything else rides the shared customers capability.
func (c Customers) Authorize(actor Actor, action Action) bool {
	if action == ActionDelete {
		return authorize(actor, auth.CapCustomerDelete)
	}
	return authorize(actor, auth.CapCustomers)
}

func (c Customers) List(ctx context.Context, params ListParams) (Page, error) {
	where := `where 1=1`
	args := []any{}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where += ` and (name ilike $1 or email ilike $1 or phone ilike $1)`
	}

	var total int64
	if err := c.DB.QueryRow(ctx, `select count(*) from customers `+where, args...).Scan(&total); err != nil {
		return Page{}, err
	}

	query := `
		select id, name, email, phone, photo_url, is_active, created_at
		from customers
		` + where + `
		order by id desc
		limit ` + itoa(params.PerPage) + ` offset ` + itoa(params.Offset())

	rows, err := c.DB.Query(ctx, query, args...)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	items := make([]CustomerRow, 0)
	for rows.Next() {
		var row CustomerRow
		var photoURL pgtype.Text
		if err := rows.Scan(&row.ID, &row.Name, &row.Email, &row.Phone, &photoURL, &row.IsActive, &row.CreatedAt); err != nil {
			return Page{}, err
		}
		if photoURL.Valid {
			row.PhotoURL = &photoURL.String
		}
		items = append(items, row)
	}

	return Page{Items: items, Total: total, Page: params.Page, PerPage: params.PerPage}, rows.Err()
}
