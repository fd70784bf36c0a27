package model

import "time"

// Role names stored in users.role and carried in the JWT "role" claim.
const (
	RoleCustomer  = "CUSTOMER"
	RoleBeekeeper = "BEEKEEPER"
	RoleAdmin     = "ADMIN"
)

// ValidRole reports whether s is one of the known role names.
func ValidRole(s string) bool {
	switch s {
	case RoleCustomer, RoleBeekeeper, RoleAdmin:
		return true
	}
	return false
}

// User represents an application user record as stored in the `users` table.
// The json tags are omitted because these structs are used internally by the
// repository layer; handlers define separate response types.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name.
//	Email        – unique email address.
//	Phone        – contact phone number.
//	PasswordHash – bcrypt hashed password.
//	Role         – role name (CUSTOMER, BEEKEEPER or ADMIN).
//	IsBlocked    – blocked accounts cannot log in.
//	IsApproved   – approval flag; only approved beekeepers appear in
//	               locality lookups.
//	Locality     – beekeeper's area of service.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	Phone        string    // users.phone
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsBlocked    bool      // users.is_blocked
	IsApproved   bool      // users.is_approved
	Locality     string    // users.locality
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table. Each refresh
// token belongs to a user; the plain token is never stored, only its SHA-256
// hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
