package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storefront-go/storefront/internal/domain/user"
)

const (
	getUserByIDSQL = `SELECT id, name, email, role FROM users WHERE id = $1 AND active`

	getUserByKeyHashSQL = `SELECT id, name, email, role, key_hash FROM users
		WHERE key_hash = $1 AND active`
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID resolves an active user by ID. Returns user.ErrNotFound when absent.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	var (
		u    user.User
		role string
	)
	err := r.pool.QueryRow(ctx, getUserByIDSQL, id).Scan(&u.ID, &u.Name, &u.Email, &role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user %q: %w", id, err)
	}
	u.Role = user.Role(role)
	return &u, nil
}

// FindByKeyHash looks up an active user's credential by the HMAC-SHA256 hash
// of their API key. Returns user.ErrNotFound for unknown hashes.
func (r *UserRepository) FindByKeyHash(ctx context.Context, hash string) (*user.Credential, error) {
	var (
		c    user.Credential
		role string
	)
	err := r.pool.QueryRow(ctx, getUserByKeyHashSQL, hash).Scan(
		&c.User.ID, &c.User.Name, &c.User.Email, &role, &c.KeyHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("finding user by key hash: %w", err)
	}
	c.User.Role = user.Role(role)
	return &c, nil
}
