package models

// Role determines which dashboard an account is routed to after login.
type Role string

// Supported roles. The gateway knows exactly these two; there is no
// role-management surface.
const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Valid reports whether the role is one of the supported roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// Account represents a registered user in the system
type Account struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Never serialize password hash
	Role         Role   `json:"role"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}
