package ports

import (
	"context"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// UserRepository persists user rows. Implementations returned by a Tx are bound
// to that transaction.
type UserRepository interface {
	// Create inserts the user and returns it with its generated ID and timestamps.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update writes username, email, phone, is_active and password hash.
	Update(ctx context.Context, user *domain.User) error
	UpdateAPIToken(ctx context.Context, userID int64, token string) error
	// Delete removes the row; role assignments are removed by cascade.
	Delete(ctx context.Context, userID int64) error

	FindByID(ctx context.Context, userID int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByAPIToken(ctx context.Context, token string) (*domain.User, error)
	// List returns every user with its roles loaded, ordered by ID.
	List(ctx context.Context) ([]*domain.User, error)
}

// RoleRepository manages the many-to-many relation between users and roles.
type RoleRepository interface {
	// Assign adds roles to the user. Already-held roles are left untouched.
	Assign(ctx context.Context, userID int64, names []string) error
	// Sync replaces the user's role set with exactly names.
	Sync(ctx context.Context, userID int64, names []string) error
	NamesForUser(ctx context.Context, userID int64) ([]string, error)
	ListNames(ctx context.Context) ([]string, error)
}

// Tx is a transaction scope. Rollback after a successful Commit is a no-op, so
// callers defer Rollback right after Begin.
type Tx interface {
	Users() UserRepository
	Roles() RoleRepository
	Commit() error
	Rollback() error
}

// UserStore is the persistence boundary consumed by the user services.
type UserStore interface {
	Begin(ctx context.Context) (Tx, error)
	Users() UserRepository
	Roles() RoleRepository
}
