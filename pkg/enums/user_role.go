package enums

import "fmt"

// UserRole positions a user within the distribution hierarchy.
type UserRole string

const (
	UserRoleSuperAdmin  UserRole = "SUPER_ADMIN"
	UserRoleAdmin       UserRole = "ADMIN"
	UserRoleSalesperson UserRole = "SALESPERSON"
	UserRoleRetailer    UserRole = "RETAILER"
	UserRoleDistributor UserRole = "DISTRIBUTOR"
	UserRoleStockist    UserRole = "STOCKIST"
)

var validUserRoles = []UserRole{
	UserRoleSuperAdmin,
	UserRoleAdmin,
	UserRoleSalesperson,
	UserRoleRetailer,
	UserRoleDistributor,
	UserRoleStockist,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserRole.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
