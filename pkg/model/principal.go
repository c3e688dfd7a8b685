package model

// Roles recognized by the authorization policy.
const (
	RoleSuperadmin = "superadmin"
	RoleManager    = "manager"
	RoleCustomer   = "customer"
)

// Principal is the already-authenticated caller, supplied per request
// by the external auth layer. The core never consults ambient session
// state; every operation takes the principal explicitly.
type Principal struct {
	ID          string `json:"id"`
	Role        string `json:"role"`
	CountryCode string `json:"country_code,omitempty"`
}

func IsRole(role string) bool {
	switch role {
	case RoleSuperadmin, RoleManager, RoleCustomer:
		return true
	}
	return false
}
