package handlers

import "testing"

func TestFormatRupiah(t *testing.T) {
	if got := formatRupiah(0); got != "Rp0" {
		t.Fatalf("expected Rp0, got %s", got)
	}
	if got := formatRupiah(125000); got != "Rp125000" {
		t.Fatalf("expected Rp125000, got %s", got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		name     string
		value    string
		expected string
	}{
		{name: "order number untouched", value: "ORD-20250601-A1B2C3", expected: "ORD-20250601-A1B2C3"},
		{name: "spaces and slashes replaced", value: "a b/c", expected: "a_b_c"},
		{name: "leading garbage trimmed", value: "../../etc", expected: "etc"},
		{name: "empty", value: "", expected: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sanitizeFilename(tc.value); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestRenderReceiptPDF(t *testing.T) {
	data := receiptData{
		OrderNumber:   "ORD-20250601-A1B2C3",
		CustomerName:  "Budi",
		CustomerPhone: "081234567890",
		BankName:      "BCA",
		AccountNumber: "1234567890",
		AccountHolder: "Salwa",
		Status:        "pending",
		PlacedAt:      "2025-06-01 12:00",
		TotalAmount:   "Rp125000",
		Lines: []receiptLine{
			{Name: "Nasi Goreng", Quantity: 2, Unit: "Rp35000", Subtotal: "Rp70000"},
			{Name: "Es Teh", Quantity: 5, Unit: "Rp11000", Subtotal: "Rp55000"},
		},
	}

	buf, err := renderReceiptPDF(data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.Bytes()
	if len(out) == 0 {
		t.Fatalf("expected non-empty output")
	}
	if string(out[:5]) != "%PDF-" {
		t.Fatalf("expected a PDF header, got %q", string(out[:5]))
	}
}
