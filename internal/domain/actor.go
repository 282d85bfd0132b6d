package domain

// Role enumerates the caller roles recognized by guarded operations.
type Role string

const (
	RoleRoot       Role = "root"
	RoleAdmin      Role = "admin"
	RoleSubAdmin   Role = "subadmin"
	RoleVendor     Role = "vendor"
	RoleTechnician Role = "technician"
	RoleUser       Role = "user"
)

// Actor identifies the caller of a guarded operation. It is supplied on every
// call; the engine holds no session state.
type Actor struct {
	ID          string
	Role        Role
	Permissions []string
}

// IsRoot reports whether the actor bypasses all guards.
func (a Actor) IsRoot() bool {
	return a.Role == RoleRoot
}

// HasPermission reports whether the actor's flat permission list contains the
// given identifier.
func (a Actor) HasPermission(perm string) bool {
	for _, p := range a.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
