package backoffice

import (
	"context"
	"strings"
	"time"

	"github.com/brosora6/sora-sub000/internal/auth"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AdminInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsSuper  bool   `json:"isSuper"`
}

type AdminRow struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsSuper   bool      `json:"isSuper"`
	CreatedAt time.Time `json:"createdAt"`
}

type Admins struct {
	DB *pgxpool.Pool
}

func (a Admins) Authorize(actor Actor, _ Action) bool {
	return authorize(actor, auth.CapAdmins)
}

// Validate checks admin account input. Pass requirePassword=false on
// updates where the password is left unchanged.
func (a Admins) Validate(input AdminInput, requirePassword bool) Fields {
	fields := Fields{}
	if strings.TrimSpace(input.Name) == "" {
		fields.Add("name", "Name is required")
	}
	email := strings.TrimSpace(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		fields.Add("email", "A valid email is required")
	}
	if requirePassword && len(input.Password) < 8 {
		fields.Add("password", "Password must be at least 8 characters")
	}
	if !requirePassword && input.Password != "" && len(input.Password) < 8 {
		fields.Add("password", "Password must be at least 8 characters")
	}
	return fields
}

func (a Admins) List(ctx context.Context, params ListParams) (Page, error) {
	where := ``
	args := []any{}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = `where name ilike $1 or email ilike $1`
	}

	var total int64
	if err := a.DB.QueryRow(ctx, `select count(*) from admins `+where, args...).Scan(&total); err != nil {
		return Page{}, err
	}

	query := `
		select id, name, email, is_super, created_at
		from admins
		` + where + `
		order by id asc
		limit ` + itoa(params.PerPage) + ` offset ` + itoa(params.Offset())

	rows, err := a.DB.Query(ctx, query, args...)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	items := make([]AdminRow, 0)
	for rows.Next() {
		var row AdminRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Email, &row.IsSuper, &row.CreatedAt); err != nil {
			return Page{}, err
		}
		items = append(items, row)
	}

	return Page{Items: items, Total: total, Page: params.Page, PerPage: params.PerPage}, rows.Err()
}
