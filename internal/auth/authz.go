package auth

// Actions on the management surface.
const (
	ActionManageRooms   = "rooms:manage"
	ActionManageRates   = "rates:manage"
	ActionManageCoupons = "coupons:manage"
)

var hostActions = map[string]bool{
	ActionManageRooms: true,
	ActionManageRates: true,
}

// Can reports whether a role is allowed to perform an action. Admins can do
// everything; hosts manage inventory but never coupons.
func Can(role Role, action string) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleHost:
		return hostActions[action]
	default:
		return false
	}
}
