package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/brosora6/sora-sub000/internal/backoffice"
	"github.com/brosora6/sora-sub000/internal/utils"
	"github.com/brosora6/sora-sub000/pkg/response"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/phpdave11/gofpdf"
)

const restaurantName = "Rumah Makan Salwa"

type receiptLine struct {
	Name     string
	Quantity int32
	Unit     string
	Subtotal string
}

type receiptData struct {
	OrderNumber   string
	CustomerName  string
	CustomerPhone string
	BankName      string
	AccountNumber string
	AccountHolder string
	Status        string
	Note          string
	PlacedAt      string
	Lines         []receiptLine
	TotalAmount   string
}

// AdminPaymentReceiptPDF renders an order receipt for printing or sending
// to the customer.
func (h *Handler) AdminPaymentReceiptPDF(w http.ResponseWriter, r *http.Request) {
	resource := backoffice.Payments{DB: h.DB}
	if _, ok := requireActor(w, r, func(a backoffice.Actor) bool { return resource.Authorize(a, backoffice.ActionList) }); !ok {
		return
	}
	ctx := r.Context()

	paymentID, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payment id")
		return
	}

	var data receiptData
	var note pgtype.Text
	var total int64
	var createdAt time.Time
	if err := h.DB.QueryRow(ctx, `
		select pay.order_number, cu.name, cu.phone,
		       ba.bank_name, ba.account_number, ba.account_holder,
		       pay.status, pay.note, pay.total_amount, pay.created_at
		from payments pay
		join customers cu on cu.id = pay.customer_id
		join bank_accounts ba on ba.id = pay.bank_account_id
		where pay.id = $1
	`, paymentID).Scan(
		&data.OrderNumber, &data.CustomerName, &data.CustomerPhone,
		&data.BankName, &data.AccountNumber, &data.AccountHolder,
		&data.Status, &note, &total, &createdAt,
	); err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Payment not found")
		return
	}
	if note.Valid {
		data.Note = note.String
	}
	data.TotalAmount = formatRupiah(total)
	data.PlacedAt = createdAt.In(utils.LoadLocation(h.Config.Timezone)).Format("2006-01-02 15:04")

	rows, err := h.DB.Query(ctx, `
		select m.name, ca.quantity, m.price, ca.price
		from carts ca
		join menus m on m.id = ca.menu_id
		where ca.payment_id = $1
		order by ca.id
	`, paymentID)
	if err != nil {
		h.Logger.Error("receipt lines query failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate receipt")
		return
	}
	defer rows.Close()
	for rows.Next() {
		var line receiptLine
		var unit, subtotal int64
		if err := rows.Scan(&line.Name, &line.Quantity, &unit, &subtotal); err != nil {
			h.Logger.Error("receipt line scan failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate receipt")
			return
		}
		line.Unit = formatRupiah(unit)
		line.Subtotal = formatRupiah(subtotal)
		data.Lines = append(data.Lines, line)
	}
	if err := rows.Err(); err != nil {
		h.Logger.Error("receipt lines read failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate receipt")
		return
	}

	buf, err := renderReceiptPDF(data)
	if err != nil {
		h.Logger.Error("receipt render failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate receipt")
		return
	}

	filename := fmt.Sprintf("receipt_%s.pdf", sanitizeFilename(data.OrderNumber))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"%s\"", filename))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func formatRupiah(amount int64) string {
	return fmt.Sprintf("Rp%d", amount)
}

func sanitizeFilename(value string) string {
	re := regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
	return strings.Trim(re.ReplaceAllString(value, "_"), "_")
}

func renderReceiptPDF(data receiptData) (*bytes.Buffer, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, restaurantName, "", 1, "C", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Order %s", data.OrderNumber), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Customer: %s (%s)", data.CustomerName, data.CustomerPhone), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Placed: %s", data.PlacedAt), "", 1, "C", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Items", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, line := range data.Lines {
		pdf.CellFormat(0, 5, fmt.Sprintf("%dx %s @ %s", line.Quantity, line.Name, line.Unit), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("Subtotal: %s", line.Subtotal), "", 1, "L", false, 0, "")
		pdf.Ln(1)
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total: %s", data.TotalAmount), "", 1, "L", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Transfer to: %s %s (%s)", data.BankName, data.AccountNumber, data.AccountHolder), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Status: %s", data.Status), "", 1, "L", false, 0, "")
	if data.Note != "" {
		pdf.MultiCell(0, 4, fmt.Sprintf("Note: %s", data.Note), "", "L", false)
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
