package entity

type UserRole string

const (
	RoleGuardian UserRole = "guardian"
	RoleOperator UserRole = "operator"
)

type User struct {
	Base
	Username     string   `db:"username"`
	Email        string   `db:"email"`
	PasswordHash string   `db:"password"`
	Phone        *string  `db:"phone"`
	Role         UserRole `db:"role"`
	IsActive     bool     `db:"is_active"`
}

// IsOperator reports whether the user may perform operator-only actions
// (phase transitions, matching runs, booking overrides).
func (u *User) IsOperator() bool {
	return u.Role == RoleOperator
}
