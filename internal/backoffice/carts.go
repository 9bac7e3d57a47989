package backoffice

import (
	"context"
	"time"

	"github.com/brosora6/sora-sub000/internal/auth"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CartRow struct {
	ID            int64     `json:"id"`
	CustomerID    int64     `json:"customerId"`
	CustomerName  string    `json:"customerName"`
	MenuID        int64     `json:"menuId"`
	MenuName      string    `json:"menuName"`
	Quantity      int32     `json:"quantity"`
	Price         int64     `json:"price"`
	PaymentID     *int64    `json:"paymentId"`
	PaymentStatus *string   `json:"paymentStatus"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Carts struct {
	DB *pgxpool.Pool
}

func (c Carts) Authorize(actor Actor, _ Action) bool {
	return authorize(actor, auth.CapCarts)
}

func (c Carts) List(ctx context.Context, params ListParams) (Page, error) {
	where := `where 1=1`
	args := []any{}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where += ` and (cu.name ilike $1 or m.name ilike $1)`
	}

	var total int64
	countQuery := `
		select count(*)
		from carts ca
		join customers cu on cu.id = ca.customer_id
		join menus m on m.id = ca.menu_id
		` + where
	if err := c.DB.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return Page{}, err
	}

	query := `
		select ca.id, ca.customer_id, cu.name, ca.menu_id, m.name,
		       ca.quantity, ca.price, ca.payment_id, p.status, ca.created_at, ca.updated_at
		from carts ca
		join customers cu on cu.id = ca.customer_id
		join menus m on m.id = ca.menu_id
		left join payments p on p.id = ca.payment_id
		` + where + `
		order by ca.id desc
		limit ` + itoa(params.PerPage) + ` offset ` + itoa(params.Offset())

	rows, err := c.DB.Query(ctx, query, args...)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	items := make([]CartRow, 0)
	for rows.Next() {
		var row CartRow
		var paymentID pgtype.Int8
		var paymentStatus pgtype.Text
		if err := rows.Scan(
			&row.ID, &row.CustomerID, &row.CustomerName, &row.MenuID, &row.MenuName,
			&row.Quantity, &row.Price, &paymentID, &paymentStatus, &row.CreatedAt, &row.UpdatedAt,
		); err != nil {
			return Page{}, err
		}
		if paymentID.Valid {
			row.PaymentID = &paymentID.Int64
		}
		if paymentStatus.Valid {
			row.PaymentStatus = &paymentStatus.String
		}
		items = append(items, row)
	}

	return Page{Items: items, Total: total, Page: params.Page, PerPage: params.PerPage}, rows.Err()
}

// AnyCompleted reports whether any of the cart lines is attached to a
// completed payment. Such lines are part of a settled order and must not
// be deleted.
func (c Carts) AnyCompleted(ctx context.Context, cartIDs []int64) (bool, error) {
	if len(cartIDs) == 0 {
		return false, nil
	}
	var found bool
	query := `
		select exists(
			select 1 from carts ca
			join payments p on p.id = ca.payment_id
			where ca.id = any($1) and p.status = 'completed'
		)
	`
	err := c.DB.QueryRow(ctx, query, cartIDs).Scan(&found)
	return found, err
}
