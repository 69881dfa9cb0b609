package auth

import (
	"github.com/tiaadeals/server/internal/models"
)

// Action names one thing a caller may be permitted to do. The role-to-action
// mapping below is the single authorization table; roles are a closed set
// and the check is a pure lookup at the API boundary.
type Action string

const (
	ActionUseCart       Action = "cart:use"
	ActionUseWishlist   Action = "wishlist:use"
	ActionManageProfile Action = "profile:manage"
	ActionManageCatalog Action = "catalog:manage"
	ActionManageUsers   Action = "users:manage"
)

var rolePermissions = map[string]map[Action]struct{}{
	models.RoleUser: {
		ActionUseCart:       {},
		ActionUseWishlist:   {},
		ActionManageProfile: {},
	},
	models.RoleAdmin: {
		ActionUseCart:       {},
		ActionUseWishlist:   {},
		ActionManageProfile: {},
		ActionManageCatalog: {},
		ActionManageUsers:   {},
	},
}

// Allowed reports whether the role may perform the action. Unknown roles
// have no permissions.
func Allowed(role string, action Action) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, ok = perms[action]
	return ok
}
