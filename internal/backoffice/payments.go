package backoffice

import (
	"context"
	"time"

	"github.com/brosora6/sora-sub000/internal/auth"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

type PaymentRow struct {
	ID            int64     `json:"id"`
	CustomerID    int64     `json:"customerId"`
	CustomerName  string    `json:"customerName"`
	BankAccountID int64     `json:"bankAccountId"`
	BankName      string    `json:"bankName"`
	OrderNumber   string    `json:"orderNumber"`
	TotalAmount   int64     `json:"totalAmount"`
	ProofURL      string    `json:"proofUrl"`
	Status        string    `json:"status"`
	Note          *string   `json:"note"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Payments struct {
	DB *pgxpool.Pool
}

func (p Payments) Authorize(actor Actor, _ Action) bool {
	return authorize(actor, auth.CapPayments)
}

// ValidStatus reports whether the value is one of the three payment states.
func ValidStatus(status string) bool {
	switch status {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return true
	}
	return false
}

// CanTransition encodes the payment workflow: pending may move to completed
// or failed; completed and failed are terminal. Writing the current status
// back is always a no-op allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	return from == PaymentPending && (to == PaymentCompleted || to == PaymentFailed)
}

func (p Payments) List(ctx context.Context, params ListParams) (Page, error) {
	where := `where 1=1`
	args := []any{}
	if params.Status != "" {
		args = append(args, params.Status)
		where += ` and pay.status = $` + itoa(len(args))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where += ` and (pay.order_number ilike $` + itoa(len(args)) + ` or cu.name ilike $` + itoa(len(args)) + `)`
	}

	var total int64
	countQuery := `
		select count(*)
		from payments pay
		join customers cu on cu.id = pay.customer_id
		` + where
	if err := p.DB.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return Page{}, err
	}

	query := `
		select pay.id, pay.customer_id, cu.name, pay.bank_account_id, ba.bank_name,
		       pay.order_number, pay.total_amount, pay.proof_url, pay.status, pay.note,
		       pay.created_at, pay.updated_at
		from payments pay
		join customers cu on cu.id = pay.customer_id
		join bank_accounts ba on ba.id = pay.bank_account_id
		` + where + `
		order by pay.id desc
		limit ` + itoa(params.PerPage) + ` offset ` + itoa(params.Offset())

	rows, err := p.DB.Query(ctx, query, args...)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	items := make([]PaymentRow, 0)
	for rows.Next() {
		var row PaymentRow
		var note pgtype.Text
		if err := rows.Scan(
			&row.ID, &row.CustomerID, &row.CustomerName, &row.BankAccountID, &row.BankName,
			&row.OrderNumber, &row.TotalAmount, &row.ProofURL, &row.Status, &note,
			&row.CreatedAt, &row.UpdatedAt,
		); err != nil {
			return Page{}, err
		}
		if note.Valid {
			row.Note = &note.String
		}
		items = append(items, row)
	}

	return Page{Items: items, Total: total, Page: params.Page, PerPage: params.PerPage}, rows.Err()
}
