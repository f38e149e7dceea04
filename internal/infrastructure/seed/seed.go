// Package seed creates the initial accounts of a fresh installation.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

// Admin describes the bootstrap superadmin.
type Admin struct {
	Username string
	Email    string
	Password string
	Role     string
}

type usersFile struct {
	Users []struct {
		Username string   `yaml:"username"`
		Email    string   `yaml:"email"`
		Password string   `yaml:"password"`
		Phone    string   `yaml:"phone"`
		Active   *bool    `yaml:"active"`
		Roles    []string `yaml:"roles"`
	} `yaml:"users"`
}

// Seeder creates users through the regular write path, so seeded accounts get
// hashed passwords, tokens, role rows and audit entries like any other.
type Seeder struct {
	writer ports.UserWriter
	users  ports.UserRepository
	log    zerolog.Logger
}

func NewSeeder(writer ports.UserWriter, users ports.UserRepository, log zerolog.Logger) *Seeder {
	return &Seeder{writer: writer, users: users, log: log}
}

// EnsureAdmin creates the bootstrap account unless a user with that username
// already exists. An empty username disables it.
func (s *Seeder) EnsureAdmin(ctx context.Context, admin Admin) error {
	if admin.Username == "" {
		return nil
	}
	active := true
	created, err := s.create(ctx, ports.CreateUserInput{
		Username: admin.Username,
		Email:    admin.Email,
		Password: admin.Password,
		IsActive: &active,
		Roles:    []string{admin.Role},
	})
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		s.log.Info().Str("username", admin.Username).Str("role", admin.Role).Msg("bootstrap admin created")
	}
	return nil
}

// SeedFromFile creates the users listed in a YAML file. Entries without a
// username or password are ignored and existing usernames are skipped.
func (s *Seeder) SeedFromFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	return s.Seed(ctx, data)
}

// Seed is SeedFromFile over an in-memory document.
func (s *Seeder) Seed(ctx context.Context, data []byte) error {
	var uf usersFile
	if err := yaml.Unmarshal(data, &uf); err != nil {
		return fmt.Errorf("seed users: parse: %w", err)
	}

	var n int
	for _, u := range uf.Users {
		if u.Username == "" || u.Password == "" {
			continue
		}
		created, err := s.create(ctx, ports.CreateUserInput{
			Username: u.Username,
			Email:    u.Email,
			Password: u.Password,
			Phone:    u.Phone,
			IsActive: u.Active,
			Roles:    u.Roles,
		})
		if err != nil {
			return fmt.Errorf("seed user %q: %w", u.Username, err)
		}
		if created {
			n++
		}
	}

	s.log.Info().Int("created", n).Int("listed", len(uf.Users)).Msg("seed users applied")
	return nil
}

// create reports false when the username is already present.
func (s *Seeder) create(ctx context.Context, in ports.CreateUserInput) (bool, error) {
	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		return false, nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return false, err
	}

	if _, err := s.writer.CreateUser(ctx, in); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
