package domain

import "time"

// Role is the privilege level of a user.
type Role string

// Roles form a total order of privilege: admin > maintenance > reporter.
const (
	RoleReporter    Role = "REPORTER"
	RoleMaintenance Role = "MAINTENANCE"
	RoleAdmin       Role = "ADMIN"
)

var roleRank = map[Role]int{
	RoleReporter:    1,
	RoleMaintenance: 2,
	RoleAdmin:       3,
}

// IsValid checks if the role is known.
func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// HasPermission reports whether the role meets or exceeds the required
// privilege level.
func (r Role) HasPermission(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

// IsAdmin reports whether the role is admin.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// IsMaintenance reports whether the role is maintenance-capable, which
// includes admins.
func (r Role) IsMaintenance() bool {
	return r.HasPermission(RoleMaintenance)
}

// User represents a system user.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	FullName  string    `json:"full_name,omitempty"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RefreshToken is a stored refresh token hash with its expiry.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
