package entity

import "time"

// Roles. Cashiers run the register; admins also manage catalog and purchases.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// User is a system user. Authentication resolves the acting user before any
// engine operation runs; operations receive the user id explicitly.
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt, never plaintext past registration
	Name         string
	Role         string
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
