package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

// UserQueryService implements ports.UserReader.
type UserQueryService struct {
	store     ports.UserStore
	cache     ports.UserListingCache
	protected string
	logger    zerolog.Logger
}

// NewUserQueryService returns the read service. Rows whose username equals
// protectedUsername get their view/edit/delete actions suppressed in the
// listing; an empty protectedUsername disables the rule.
func NewUserQueryService(store ports.UserStore, cache ports.UserListingCache, protectedUsername string, logger zerolog.Logger) *UserQueryService {
	if cache == nil {
		cache = nopCache{}
	}
	return &UserQueryService{
		store:     store,
		cache:     cache,
		protected: protectedUsername,
		logger:    logger,
	}
}

// ListUsers returns every user with its roles and derived display columns.
func (s *UserQueryService) ListUsers(ctx context.Context) ([]ports.UserListItem, error) {
	// The generation is taken before the read. A write committed meanwhile
	// bumps it, so the listing below can only land under a stale generation.
	cached, generation, ok := s.cache.Get(ctx)
	if ok {
		s.logger.Debug().Int("count", len(cached)).Msg("user listing served from cache")
		return cached, nil
	}

	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	items := make([]ports.UserListItem, 0, len(users))
	for _, u := range users {
		items = append(items, s.toListItem(u))
	}

	s.cache.Set(ctx, generation, items)
	return items, nil
}

// GetUser resolves a user with its roles.
func (s *UserQueryService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ListRoles returns the names of all assignable roles.
func (s *UserQueryService) ListRoles(ctx context.Context) ([]string, error) {
	names, err := s.store.Roles().ListNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return names, nil
}

func (s *UserQueryService) toListItem(u *domain.User) ports.UserListItem {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	protected := s.protected != "" && u.Username == s.protected

	return ports.UserListItem{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Phone:        u.Phone,
		APIToken:     u.APIToken,
		IsActive:     u.IsActive,
		Roles:        roles,
		RolesDisplay: strings.Join(roles, ", "),
		Actions: ports.UserActions{
			View:        !protected,
			Edit:        !protected,
			Delete:      !protected,
			RotateToken: true,
		},
	}
}
