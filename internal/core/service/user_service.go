package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

// UserService implements ports.UserWriter. Every multi-statement mutation runs
// inside a single transaction acquired from the store.
type UserService struct {
	store    ports.UserStore
	hasher   ports.PasswordHasher
	audit    ports.AuditRecorder
	cache    ports.UserListingCache
	newToken func() string
	logger   zerolog.Logger
}

// NewUserService wires the write service. audit and cache may be nil.
func NewUserService(
	store ports.UserStore,
	hasher ports.PasswordHasher,
	audit ports.AuditRecorder,
	cache ports.UserListingCache,
	logger zerolog.Logger,
) *UserService {
	if audit == nil {
		audit = nopAudit{}
	}
	if cache == nil {
		cache = nopCache{}
	}
	return &UserService{
		store:    store,
		hasher:   hasher,
		audit:    audit,
		cache:    cache,
		newToken: uuid.NewString,
		logger:   logger,
	}
}

// CreateUser hashes the password, inserts the user and assigns its roles in one
// transaction. On any failure nothing is persisted.
func (s *UserService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token := in.APIToken
	if token == "" {
		token = s.newToken()
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		Phone:        optional(in.Phone),
		PasswordHash: hash,
		APIToken:     token,
		IsActive:     flag(in.IsActive),
	}
	roles := domain.NormalizeRoles(in.Roles)

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("create user: begin: %w", err)
	}
	defer tx.Rollback()

	created, err := tx.Users().Create(ctx, user)
	if err != nil {
		s.logger.Warn().Err(err).Str("username", in.Username).Msg("create user failed")
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := tx.Roles().Assign(ctx, created.ID, roles); err != nil {
		s.logger.Warn().Err(err).Str("username", in.Username).Strs("roles", roles).Msg("assign roles failed")
		return nil, fmt.Errorf("create user: assign roles: %w", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error().Err(err).Str("username", in.Username).Msg("create user commit failed")
		return nil, fmt.Errorf("create user: commit: %w", err)
	}
	created.Roles = roles

	s.logger.Info().Int64("user_id", created.ID).Str("username", created.Username).Strs("roles", roles).Msg("user created")
	s.afterWrite(ctx, domain.AuditUserCreated, created)

	return created, nil
}

// UpdateUser applies the input to user, persists it, reloads it and replaces
// its role set, all in one transaction. An empty password keeps the stored hash.
// The caller's record is left untouched; the refreshed user is returned.
func (s *UserService) UpdateUser(ctx context.Context, user *domain.User, in ports.UpdateUserInput) (*domain.User, error) {
	hash := user.PasswordHash
	if in.Password != "" {
		h, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		hash = h
	}

	next := *user
	next.Username = in.Username
	next.Email = in.Email
	next.Phone = optional(in.Phone)
	next.IsActive = flag(in.IsActive)
	next.PasswordHash = hash
	roles := domain.NormalizeRoles(in.Roles)

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("update user: begin: %w", err)
	}
	defer tx.Rollback()

	if err := tx.Users().Update(ctx, &next); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("update user failed")
		return nil, fmt.Errorf("update user: %w", err)
	}

	fresh, err := tx.Users().FindByID(ctx, next.ID)
	if err != nil {
		return nil, fmt.Errorf("update user: reload: %w", err)
	}

	if err := tx.Roles().Sync(ctx, fresh.ID, roles); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", user.ID).Strs("roles", roles).Msg("sync roles failed")
		return nil, fmt.Errorf("update user: sync roles: %w", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("update user commit failed")
		return nil, fmt.Errorf("update user: commit: %w", err)
	}
	fresh.Roles = roles

	s.logger.Info().
		Int64("user_id", fresh.ID).
		Str("username", fresh.Username).
		Bool("password_changed", in.Password != "").
		Strs("roles", roles).
		Msg("user updated")
	s.afterWrite(ctx, domain.AuditUserUpdated, fresh)

	return fresh, nil
}

// RotateAPIKey replaces the user's API token with a fresh random UUID and
// returns it. On failure the returned token is empty and err is non-nil.
func (s *UserService) RotateAPIKey(ctx context.Context, user *domain.User) (string, error) {
	token := s.newToken()

	if err := s.store.Users().UpdateAPIToken(ctx, user.ID, token); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("rotate api key failed")
		return "", fmt.Errorf("rotate api key: %w", err)
	}
	user.APIToken = token

	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("api key rotated")
	s.afterWrite(ctx, domain.AuditAPITokenRotated, user)

	return token, nil
}

// DeleteUser permanently removes the user and its role assignments.
func (s *UserService) DeleteUser(ctx context.Context, user *domain.User) error {
	if err := s.store.Users().Delete(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("delete user failed")
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user deleted")
	s.afterWrite(ctx, domain.AuditUserDeleted, user)

	return nil
}

// afterWrite runs the post-commit side effects. Neither can fail the operation.
func (s *UserService) afterWrite(ctx context.Context, action domain.AuditAction, user *domain.User) {
	s.cache.Invalidate(ctx)
	s.audit.Record(domain.AuditEvent{
		Action:    action,
		UserID:    user.ID,
		Username:  user.Username,
		Actor:     domain.ActorFrom(ctx),
		Roles:     user.Roles,
		Timestamp: time.Now().UTC(),
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func flag(b *bool) bool {
	return b != nil && *b
}

type nopAudit struct{}

func (nopAudit) Record(domain.AuditEvent) {}

type nopCache struct{}

func (nopCache) Get(context.Context) ([]ports.UserListItem, int64, bool) { return nil, 0, false }
func (nopCache) Set(context.Context, int64, []ports.UserListItem) {}
func (nopCache) Invalidate(context.Context) {}
