package backoffice

import (
	"net/url"
	"testing"

	"github.com/brosora6/sora-sub000/internal/auth"
)

func TestParseListParams(t *testing.T) {
	cases := []struct {
		name    string
		query   string
		page    int
		perPage int
	}{
		{name: "defaults", query: "", page: 1, perPage: 20},
		{name: "explicit paging", query: "page=3&perPage=50", page: 3, perPage: 50},
		{name: "per page clamped", query: "perPage=500", page: 1, perPage: 100},
		{name: "zero page ignored", query: "page=0", page: 1, perPage: 20},
		{name: "negative ignored", query: "page=-2&perPage=-5", page: 1, perPage: 20},
		{name: "garbage ignored", query: "page=abc&perPage=xyz", page: 1, perPage: 20},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values, err := url.ParseQuery(tc.query)
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}
			params := ParseListParams(values)
			if params.Page != tc.page {
				t.Fatalf("expected page %d, got %d", tc.page, params.Page)
			}
			if params.PerPage != tc.perPage {
				t.Fatalf("expected perPage %d, got %d", tc.perPage, params.PerPage)
			}
		})
	}
}

func TestListParamsOffset(t *testing.T) {
	params := ListParams{Page: 3, PerPage: 25}
	if got := params.Offset(); got != 50 {
		t.Fatalf("expected offset 50, got %d", got)
	}
	first := ListParams{Page: 1, PerPage: 20}
	if got := first.Offset(); got != 0 {
		t.Fatalf("expected offset 0, got %d", got)
	}
}

func TestFieldsFirstWriteWins(t *testing.T) {
	fields := Fields{}
	if !fields.Empty() {
		t.Fatalf("expected new fields to be empty")
	}

	fields.Add("email", "Email is required")
	fields.Add("email", "Email must be a gmail address")
	if fields["email"] != "Email is required" {
		t.Fatalf("expected first message to win, got %q", fields["email"])
	}
	if fields.Empty() {
		t.Fatalf("expected fields to be non-empty after add")
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name     string
		from     string
		to       string
		expected bool
	}{
		{name: "pending to completed", from: PaymentPending, to: PaymentCompleted, expected: true},
		{name: "pending to failed", from: PaymentPending, to: PaymentFailed, expected: true},
		{name: "completed is final", from: PaymentCompleted, to: PaymentPending, expected: false},
		{name: "completed to failed", from: PaymentCompleted, to: PaymentFailed, expected: false},
		{name: "failed is final", from: PaymentFailed, to: PaymentCompleted, expected: false},
		{name: "same status no-op pending", from: PaymentPending, to: PaymentPending, expected: true},
		{name: "same status no-op completed", from: PaymentCompleted, to: PaymentCompleted, expected: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanTransition(tc.from, tc.to); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestValidStatus(t *testing.T) {
	for _, status := range []string{PaymentPending, PaymentCompleted, PaymentFailed} {
		if !ValidStatus(status) {
			t.Fatalf("expected %q to be valid", status)
		}
	}
	for _, status := range []string{"", "paid", "PENDING", "cancelled"} {
		if ValidStatus(status) {
			t.Fatalf("expected %q to be invalid", status)
		}
	}
}

func TestCanDecide(t *testing.T) {
	if !CanDecide(ReservationPending) {
		t.Fatalf("expected pending reservation to be decidable")
	}
	if CanDecide(ReservationConfirmed) {
		t.Fatalf("expected confirmed reservation to be final")
	}
	if CanDecide(ReservationRejected) {
		t.Fatalf("expected rejected reservation to be final")
	}
}

func TestBankAccountValidate(t *testing.T) {
	resource := BankAccounts{}

	valid := BankAccountInput{BankName: "BCA", AccountNumber: "1234567890", AccountHolder: "Salwa"}
	if fields := resource.Validate(valid); !fields.Empty() {
		t.Fatalf("expected valid input, got %v", fields)
	}

	invalid := BankAccountInput{BankName: " ", AccountNumber: "12-34", AccountHolder: ""}
	fields := resource.Validate(invalid)
	for _, name := range []string{"bankName", "accountNumber", "accountHolder"} {
		if _, ok := fields[name]; !ok {
			t.Fatalf("expected error for %s", name)
		}
	}
}

func TestWhatsAppNumberValidate(t *testing.T) {
	resource := WhatsAppNumbers{}

	valid := WhatsAppNumberInput{Label: "Front desk", Phone: "081234567890"}
	if fields := resource.Validate(valid); !fields.Empty() {
		t.Fatalf("expected valid input, got %v", fields)
	}

	fields := resource.Validate(WhatsAppNumberInput{Label: "", Phone: "62812345678"})
	if _, ok := fields["label"]; !ok {
		t.Fatalf("expected label error")
	}
	if _, ok := fields["phone"]; !ok {
		t.Fatalf("expected phone error")
	}
}

func TestAdminValidate(t *testing.T) {
	resource := Admins{}

	create := AdminInput{Name: "Siti", Email: "siti@salwa.id", Password: "longenough"}
	if fields := resource.Validate(create, true); !fields.Empty() {
		t.Fatalf("expected valid create input, got %v", fields)
	}

	fields := resource.Validate(AdminInput{Name: "Siti", Email: "siti@salwa.id", Password: "short"}, true)
	if _, ok := fields["password"]; !ok {
		t.Fatalf("expected password error on create")
	}

	// On update an empty password means keep the current one.
	update := AdminInput{Name: "Siti", Email: "siti@salwa.id"}
	if fields := resource.Validate(update, false); !fields.Empty() {
		t.Fatalf("expected empty password to pass on update, got %v", fields)
	}

	fields = resource.Validate(AdminInput{Name: "Siti", Email: "siti@salwa.id", Password: "short"}, false)
	if _, ok := fields["password"]; !ok {
		t.Fatalf("expected short password to fail on update")
	}
}

func TestAuthorizeChecksCapability(t *testing.T) {
	admin := Actor{ID: 1, Role: auth.RoleAdmin, Capabilities: auth.CapabilitiesFor(auth.RoleAdmin)}
	super := Actor{ID: 2, Role: auth.RoleSuperAdmin, Capabilities: auth.CapabilitiesFor(auth.RoleSuperAdmin)}

	customers := Customers{}
	if !customers.Authorize(admin, ActionUpdate) {
		t.Fatalf("expected admin to manage customers")
	}
	if customers.Authorize(admin, ActionDelete) {
		t.Fatalf("expected customer delete to be superadmin-only")
	}
	if !customers.Authorize(super, ActionDelete) {
		t.Fatalf("expected superadmin to delete customers")
	}

	admins := Admins{}
	if admins.Authorize(admin, ActionList) {
		t.Fatalf("expected admin management to be superadmin-only")
	}
	if !admins.Authorize(super, ActionList) {
		t.Fatalf("expected superadmin to manage admins")
	}
}
