package entity

import "time"

// Role is fixed at signup; there is no role mutation path.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleMerchant Role = "MERCHANT"
	RoleBanker   Role = "BANKER"
)

// ParseRole validates a role string from untrusted input.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleCustomer, RoleMerchant, RoleBanker:
		return Role(s), true
	}
	return "", false
}

// User is the aggregate root for the user directory.
// PasswordHash is a bcrypt hash and must never leave the backend.
type User struct {
	ID           string
	Email        string
	Phone        string
	PasswordHash string
	Name         string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
