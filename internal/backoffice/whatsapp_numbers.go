package backoffice

import (
	"context"
	"strings"
	"time"

	"github.com/brosora6/sora-sub000/internal/auth"
	"github.com/brosora6/sora-sub000/internal/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

type WhatsAppNumberInput struct {
	Label    string `json:"label"`
	Phone    string `json:"phone"`
	IsActive bool   `json:"isActive"`
}

type WhatsAppNumberRow struct {
	ID        int64     `json:"id"`
	Label     string    `json:"label"`
	Phone     string    `json:"phone"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

type WhatsAppNumbers struct {
	DB *pgxpool.Pool
}

func (w WhatsAppNumbers) Authorize(actor Actor, _ Action) bool {
	return authorize(actor, auth.CapWhatsAppNumbers)
}

func (w WhatsAppNumbers) Validate(input WhatsAppNumberInput) Fields {
	fields := Fields{}
	if strings.TrimSpace(input.Label) == "" {
		fields.Add("label", "Label is required")
	}
	if !utils.IsIndonesianMobile(strings.TrimSpace(input.Phone)) {
		fields.Add("phone", "Phone must start with 08 followed by 8 to 11 digits")
	}
	return fields
}

func (w WhatsAppNumbers) List(ctx context.Context, params ListParams) (Page, error) {
	where := ``
	args := []any{}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = `where label ilike $1 or phone ilike $1`
	}

	var total int64
	if err := w.DB.QueryRow(ctx, `select count(*) from whatsapp_numbers `+where, args...).Scan(&total); err != nil {
		return Page{}, err
	}

	query := `
		select id, label, phone, is_active, created_at
		from whatsapp_numbers
		` + where + `
		order by id desc
		limit ` + itoa(params.PerPage) + ` offset ` + itoa(params.Offset())

	rows, err := w.DB.Query(ctx, query, args...)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	items := make([]WhatsAppNumberRow, 0)
	for rows.Next() {
		var row WhatsAppNumberRow
		if err := rows.Scan(&row.ID, &row.Label, &row.Phone, &row.IsActive, &row.CreatedAt); err != nil {
			return Page{}, err
		}
		items = append(items, row)
	}

	return Page{Items: items, Total: total, Page: params.Page, PerPage: params.PerPage}, rows.Err()
}
