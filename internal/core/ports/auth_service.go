package ports

import (
	"context"

	"github.com/99minutos/user-admin/internal/core/domain"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	ResolveAPIToken(ctx context.Context, token string) (*domain.User, error)
	// ResolveSubject reloads the user a login token was issued to.
	ResolveSubject(ctx context.Context, userID int64) (*domain.User, error)
}
