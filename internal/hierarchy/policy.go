package hierarchy

import (
	"strings"

	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/enums"
)

// allowedSuppliers is the distribution hierarchy: a buyer of a given role may
// only order from suppliers in the mapped set. Roles absent from the map have
// no valid supplier.
var allowedSuppliers = map[enums.UserRole][]enums.UserRole{
	enums.UserRoleRetailer:    {enums.UserRoleDistributor},
	enums.UserRoleDistributor: {enums.UserRoleStockist},
	enums.UserRoleStockist:    {enums.UserRoleAdmin, enums.UserRoleSuperAdmin},
}

// buyerRoles lists every role that can appear as a cart buyer.
var buyerRoles = []enums.UserRole{
	enums.UserRoleRetailer,
	enums.UserRoleDistributor,
	enums.UserRoleStockist,
}

// AllowedSupplierRoles returns the supplier roles a buyer of the given role
// may order from. The returned slice is a copy; empty means no valid supplier.
func AllowedSupplierRoles(buyer enums.UserRole) []enums.UserRole {
	allowed, ok := allowedSuppliers[buyer]
	if !ok {
		return nil
	}
	out := make([]enums.UserRole, len(allowed))
	copy(out, allowed)
	return out
}

// CanSupply reports whether a supplier of the given role may serve a buyer of
// the given role.
func CanSupply(buyer, supplier enums.UserRole) bool {
	for _, role := range allowedSuppliers[buyer] {
		if role == supplier {
			return true
		}
	}
	return false
}

// IsBuyerRole reports whether the role can be attached to a cart as the buyer.
func IsBuyerRole(role enums.UserRole) bool {
	for _, r := range buyerRoles {
		if r == role {
			return true
		}
	}
	return false
}

// BuyerRoles returns a copy of the roles permitted as cart buyers.
func BuyerRoles() []enums.UserRole {
	out := make([]enums.UserRole, len(buyerRoles))
	copy(out, buyerRoles)
	return out
}

// DescribeRoles renders a role set for error messages, e.g. "DISTRIBUTOR, STOCKIST".
func DescribeRoles(roles []enums.UserRole) string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.String())
	}
	return strings.Join(names, ", ")
}
