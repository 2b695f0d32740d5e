package domain

// Role values stored on a user row. Keep these in sync with the
// CHECK constraint in the schema.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

func IsValidRole(r string) bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// RoleRank orders roles for "at least" checks. Unknown roles rank below
// everything so a corrupted value never grants access.
func RoleRank(r string) int {
	switch r {
	case RoleUser:
		return 1
	case RoleModerator:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}
