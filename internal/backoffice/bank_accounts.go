package backoffice

import (
	"context"
	"strings"
	"time"

	"github.com/brosora6/sora-sub000/internal/auth"
	"github.com/brosora6/sora-sub000/internal/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

type BankAccountInput struct {
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	AccountHolder string `json:"accountHolder"`
	IsActive      bool   `json:"isActive"`
}

type BankAccountRow struct {
	ID            int64     `json:"id"`
	BankName      string    `json:"bankName"`
	AccountNumber string    `json:"accountNumber"`
	AccountHolder string    `json:"accountHolder"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
}

type BankAccounts struct {
	DB *pgxpool.Pool
}

func (b BankAccounts) Authorize(actor Actor, _ Action) bool {
	return authorize(actor, auth.CapBankAccounts)
}

func (b BankAccounts) Validate(input BankAccountInput) Fields {
	fields := Fields{}
	if strings.TrimSpace(input.BankName) == "" {
		fields.Add("bankName", "Bank name is required")
	}
	if !utils.IsDigits(strings.TrimSpace(input.AccountNumber)) {
		fields.Add("accountNumber", "Account number must contain only digits")
	}
	if strings.TrimSpace(input.AccountHolder) == "" {
		fields.Add("accountHolder", "Account holder is required")
	}
	return fields
}

func (b BankAccounts) List(ctx context.Context, params ListParams) (Page, error) {
	where := ``
	args := []any{}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = `where bank_name ilike $1 or account_holder ilike $1`
	}

	var total int64
	if err := b.DB.QueryRow(ctx, `select count(*) from bank_accounts `+where, args...).Scan(&total); err != nil {
		return Page{}, err
	}

	query := `
		select id, bank_name, account_number, account_holder, is_active, created_at
		from bank_accounts
		` + where + `
		order by is_active desc, id desc
		limit ` + itoa(params.PerPage) + ` offset ` + itoa(params.Offset())

	rows, err := b.DB.Query(ctx, query, args...)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	items := make([]BankAccountRow, 0)
	for rows.Next() {
		var row BankAccountRow
		if err := rows.Scan(&row.ID, &row.BankName, &row.AccountNumber, &row.AccountHolder, &row.IsActive, &row.CreatedAt); err != nil {
			return Page{}, err
		}
		items = append(items, row)
	}

	return Page{Items: items, Total: total, Page: params.Page, PerPage: params.PerPage}, rows.Err()
}

// Activate makes the given account the single active transfer destination.
// Runs in one transaction so there is never a moment with two active rows.
func (b BankAccounts) Activate(ctx context.Context, accountID int64) error {
	tx, err := b.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `update bank_accounts set is_active = false where id <> $1`, accountID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `update bank_accounts set is_active = true where id = $1`, accountID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
