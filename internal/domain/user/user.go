package user

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a referenced user does not exist.
var ErrNotFound = errors.New("user not found")

// Role controls access to administrative operations.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User is the authenticated identity that owns orders and catalog entries.
// The core does not manage users; it only resolves them for ownership
// stamping and presentation.
type User struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

// IsAdmin reports whether the user may call administrative operations.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Credential pairs a user with the stored HMAC-SHA256 hash of their API key.
// The hash is returned alongside the user so the authentication layer can
// perform a constant-time comparison against the computed value.
type Credential struct {
	User    User
	KeyHash string
}

// Repository provides user lookups.
type Repository interface {
	// GetByID resolves a user reference, e.g. to attach the owner's name and
	// email to an order. Returns ErrNotFound when the user does not exist.
	GetByID(ctx context.Context, id string) (*User, error)

	// FindByKeyHash looks up the credential of an active API key by hash.
	// Returns ErrNotFound for unknown hashes.
	FindByKeyHash(ctx context.Context, hash string) (*Credential, error)
}
