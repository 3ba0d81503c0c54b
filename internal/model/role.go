package model

// Role is the user's privilege ceiling. Roles form a total order:
// super_admin > account_admin > project_admin > end_user.
type Role string

const (
	RoleSuperAdmin   Role = "super_admin"
	RoleAccountAdmin Role = "account_admin"
	RoleProjectAdmin Role = "project_admin"
	RoleEndUser      Role = "end_user"
)

var roleRank = map[Role]int{
	RoleSuperAdmin:   4,
	RoleAccountAdmin: 3,
	RoleProjectAdmin: 2,
	RoleEndUser:      1,
}

// AtLeast reports whether r sits at or above min in the role hierarchy.
// Unknown roles rank below end_user.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// ParseRole returns the role for the given string, defaulting to end_user
// for anything unrecognized.
func ParseRole(s string) Role {
	r := Role(s)
	if !r.Valid() {
		return RoleEndUser
	}
	return r
}
