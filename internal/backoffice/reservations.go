package backoffice

import (
	"context"
	"time"

	"github.com/brosora6/sora-sub000/internal/auth"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationRejected  = "rejected"
)

type ReservationRow struct {
	ID               int64     `json:"id"`
	CustomerID       int64     `json:"customerId"`
	CustomerName     string    `json:"customerName"`
	CustomerPhone    string    `json:"customerPhone"`
	ReservationDate  string    `json:"reservationDate"`
	ReservationTime  string    `json:"reservationTime"`
	PartySize        int32     `json:"partySize"`
	Notes            *string   `json:"notes"`
	Status           string    `json:"status"`
	WhatsAppNumberID *int64    `json:"whatsappNumberId"`
	WhatsAppPhone    *string   `json:"whatsappPhone"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type Reservations struct {
	DB *pgxpool.Pool
}

func (r Reservations) Authorize(actor Actor, _ Action) bool {
	return authorize(actor, auth.CapReservations)
}

// CanDecide reports whether a reservation in the given state may still be
// accepted or rejected. Only pending reservations are decidable.
func CanDecide(status string) bool {
	return status == ReservationPending
}

func (r Reservations) List(ctx context.Context, params ListParams) (Page, error) {
	where := `where 1=1`
	args := []any{}
	if params.Status != "" {
		args = append(args, params.Status)
		where += ` and res.status = $` + itoa(len(args))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where += ` and cu.name ilike $` + itoa(len(args))
	}

	var total int64
	countQuery := `
		select count(*)
		from reservations res
		join customers cu on cu.id = res.customer_id
		` + where
	if err := r.DB.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return Page{}, err
	}

	query := `
		select res.id, res.customer_id, cu.name, cu.phone,
		       res.reservation_date, res.reservation_time, res.party_size, res.notes,
		       res.status, res.whatsapp_number_id, wa.phone, res.created_at, res.updated_at
		from reservations res
		join customers cu on cu.id = res.customer_id
		left join whatsapp_numbers wa on wa.id = res.whatsapp_number_id
		` + where + `
		order by res.reservation_date desc, res.reservation_time desc
		limit ` + itoa(params.PerPage) + ` offset ` + itoa(params.Offset())

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	items := make([]ReservationRow, 0)
	for rows.Next() {
		var row ReservationRow
		var notes pgtype.Text
		var waID pgtype.Int8
		var waPhone pgtype.Text
		if err := rows.Scan(
			&row.ID, &row.CustomerID, &row.CustomerName, &row.CustomerPhone,
			&row.ReservationDate, &row.ReservationTime, &row.PartySize, &notes,
			&row.Status, &waID, &waPhone, &row.CreatedAt, &row.UpdatedAt,
		); err != nil {
			return Page{}, err
		}
		if notes.Valid {
			row.Notes = &notes.String
		}
		if waID.Valid {
			row.WhatsAppNumberID = &waID.Int64
		}
		if waPhone.Valid {
			row.WhatsAppPhone = &waPhone.String
		}
		items = append(items, row)
	}

	return Page{Items: items, Total: total, Page: params.Page, PerPage: params.PerPage}, rows.Err()
}
