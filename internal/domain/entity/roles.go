package entity

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	DefaultRole = RoleAdmin
)

const (
	RightGetUsers    = "getUsers"
	RightManageUsers = "manageUsers"
)

var roleRights = map[string][]string{
	RoleUser:  {},
	RoleAdmin: {RightGetUsers, RightManageUsers},
}

func IsValidRole(role string) bool {
	_, ok := roleRights[role]
	return ok
}

// HasRight reports whether role grants right. Unknown roles grant nothing.
func HasRight(role, right string) bool {
	for _, r := range roleRights[role] {
		if r == right {
			return true
		}
	}
	return false
}
