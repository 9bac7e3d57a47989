package auth

// Capability is a back-office permission. The set an actor holds is resolved
// once when the guard authenticates the request, never re-derived inside
// resource handlers.
type Capability string

const (
	CapMenus           Capability = "menus"
	CapCategories      Capability = "categories"
	CapCarts           Capability = "carts"
	CapPayments        Capability = "payments"
	CapReservations    Capability = "reservations"
	CapBankAccounts    Capability = "bank_accounts"
	CapCustomers       Capability = "customers"
	CapCustomerDelete  Capability = "customers_delete"
	CapWhatsAppNumbers Capability = "whatsapp_numbers"
	CapAdmins          Capability = "admins"
)

var adminCapabilities = []Capability{
	CapMenus,
	CapCategories,
	CapCarts,
	CapPayments,
	CapReservations,
	CapBankAccounts,
	CapCustomers,
}

var superAdminCapabilities = append(adminCapabilities[:len(adminCapabilities):len(adminCapabilities)],
	CapCustomerDelete,
	CapWhatsAppNumbers,
	CapAdmins,
)

// CapabilitiesFor returns the full capability set for a back-office role.
// Customers hold no back-office capabilities.
func CapabilitiesFor(role Role) []Capability {
	switch role {
	case RoleSuperAdmin:
		return superAdminCapabilities
	case RoleAdmin:
		return adminCapabilities
	default:
		return nil
	}
}

func HasCapability(caps []Capability, want Capability) bool {
	for _, c := range caps {
		if c == want {
			return true
		}
	}
	return false
}
