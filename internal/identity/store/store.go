package store

import (
	"context"
	"errors"
	"time"

	"github.com/parleychat/parley/internal/identity/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// UserUpdate is a partial update of the administrative user fields. Nil
// pointers mean "leave unchanged". BlockedUntil is only applied when
// IsBlocked is being set.
type UserUpdate struct {
	FullName     *string
	Role         *string
	Phone        *string
	Address      *string
	IsBlocked    *bool
	BlockedUntil *time.Time
}

// IsEmpty reports whether the update touches nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.FullName == nil && u.Role == nil && u.Phone == nil &&
		u.Address == nil && u.IsBlocked == nil
}

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement this; services only ever see the interface.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back when fn
	// errors and committing otherwise. Preferred over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying connection pool.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id, or ErrNotFound.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks a user up by the (lowercased) identity key.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new record (id is provided by the app via
	// ULID). Returns ErrAlreadyExists when the email is taken; the
	// UNIQUE index is the authority, there is no check-then-insert.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser applies a partial administrative update and bumps
	// updated_at. Returns ErrNotFound when id is absent.
	UpdateUser(ctx context.Context, id string, upd UserUpdate) error

	// ConfirmEmail marks the record confirmed and clears the
	// confirmation code and its expiry in one atomic write.
	ConfirmEmail(ctx context.Context, email string) error

	// ListUsers returns all records ordered by creation. The password
	// hash is never selected; redaction here is mandatory.
	ListUsers(ctx context.Context) ([]domain.User, error)
}
