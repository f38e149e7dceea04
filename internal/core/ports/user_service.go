package ports

import (
	"context"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// CreateUserInput is the validated payload for CreateUser.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Phone    string
	// IsActive is nil when the flag was absent from the request.
	IsActive *bool
	// APIToken is generated when empty.
	APIToken string
	Roles    []string
}

// UpdateUserInput is the validated payload for UpdateUser.
type UpdateUserInput struct {
	Username string
	Email    string
	Phone    string
	// Password keeps the stored hash when empty.
	Password string
	IsActive *bool
	Roles    []string
}

// UserActions tells the presentation layer which row actions to offer.
type UserActions struct {
	View        bool `json:"view"`
	Edit        bool `json:"edit"`
	Delete      bool `json:"delete"`
	RotateToken bool `json:"rotate_token"`
}

// UserListItem is one row of the user listing.
type UserListItem struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Phone    *string  `json:"phone"`
	APIToken string   `json:"api_token"`
	IsActive bool     `json:"is_active"`
	Roles    []string `json:"roles"`
	// RolesDisplay enumerates Roles for display; empty when the user has none.
	RolesDisplay string      `json:"roles_display"`
	Actions      UserActions `json:"actions"`
}

// UserWriter owns every mutation of users and their role assignments.
type UserWriter interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User, input UpdateUserInput) (*domain.User, error)
	RotateAPIKey(ctx context.Context, user *domain.User) (string, error)
	DeleteUser(ctx context.Context, user *domain.User) error
}

// UserReader serves the listing and single-user lookups.
type UserReader interface {
	ListUsers(ctx context.Context) ([]UserListItem, error)
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
	ListRoles(ctx context.Context) ([]string, error)
}

// UserListingCache stores the computed listing between writes. Invalidate
// starts a new generation, and a listing stored under an older generation is
// never served.
type UserListingCache interface {
	// Get returns the listing cached for the current generation. On a miss the
	// generation is still returned; callers read the store afterwards and pass
	// it back to Set.
	Get(ctx context.Context) (items []UserListItem, generation int64, ok bool)
	Set(ctx context.Context, generation int64, items []UserListItem)
	Invalidate(ctx context.Context)
}

// PasswordHasher is a salted one-way hash.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}
