package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

type stubWriter struct {
	ports.UserWriter
	created []ports.CreateUserInput
	err     error
}

func (w *stubWriter) CreateUser(_ context.Context, in ports.CreateUserInput) (*domain.User, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.created = append(w.created, in)
	return &domain.User{ID: int64(len(w.created)), Username: in.Username}, nil
}

type stubUsers struct {
	ports.UserRepository
	existing map[string]bool
}

func (r *stubUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.existing[username] {
		return &domain.User{Username: username}, nil
	}
	return nil, domain.ErrUserNotFound
}

const seedYAML = `
users:
  - username: clerk
    email: clerk@example.com
    password: Clerk-password-1
    active: true
    roles: [staff]
  - username: robot
    email: robot@example.com
    password: Robot-password-1
    roles: [apiuser, manager]
  - username: existing
    email: existing@example.com
    password: Existing-pass-1
    roles: [staff]
  - username: nopassword
    email: nopassword@example.com
`

func TestSeeder_Seed(t *testing.T) {
	writer := &stubWriter{}
	s := NewSeeder(writer, &stubUsers{existing: map[string]bool{"existing": true}}, zerolog.Nop())

	if err := s.Seed(context.Background(), []byte(seedYAML)); err != nil {
		t.Fatalf("Seed returned error: %v", err)
	}

	if len(writer.created) != 2 {
		t.Fatalf("expected 2 users created, got %d", len(writer.created))
	}
	clerk, robot := writer.created[0], writer.created[1]
	if clerk.Username != "clerk" || clerk.IsActive == nil || !*clerk.IsActive {
		t.Fatalf("unexpected clerk input: %+v", clerk)
	}
	if robot.IsActive != nil {
		t.Fatalf("absent active flag must stay nil")
	}
	if !slices.Equal(robot.Roles, []string{"apiuser", "manager"}) {
		t.Fatalf("unexpected robot roles: %v", robot.Roles)
	}
}

func TestSeeder_SeedFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	if err := os.WriteFile(path, []byte(seedYAML), 0o600); err != nil {
		t.Fatalf("write seed file: %v", err)
	}

	writer := &stubWriter{}
	s := NewSeeder(writer, &stubUsers{}, zerolog.Nop())
	if err := s.SeedFromFile(context.Background(), path); err != nil {
		t.Fatalf("SeedFromFile returned error: %v", err)
	}
	if len(writer.created) != 3 {
		t.Fatalf("expected 3 users created, got %d", len(writer.created))
	}

	if err := s.SeedFromFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSeeder_SeedInvalidYAML(t *testing.T) {
	s := NewSeeder(&stubWriter{}, &stubUsers{}, zerolog.Nop())
	if err := s.Seed(context.Background(), []byte("users: [unterminated")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSeeder_EnsureAdmin(t *testing.T) {
	writer := &stubWriter{}
	s := NewSeeder(writer, &stubUsers{}, zerolog.Nop())

	err := s.EnsureAdmin(context.Background(), Admin{
		Username: "root",
		Email:    "root@example.com",
		Password: "Sup3r-secret-pass",
		Role:     domain.RoleSuperAdmin,
	})
	if err != nil {
		t.Fatalf("EnsureAdmin returned error: %v", err)
	}
	if len(writer.created) != 1 {
		t.Fatalf("expected admin to be created")
	}
	in := writer.created[0]
	if !slices.Equal(in.Roles, []string{domain.RoleSuperAdmin}) || in.IsActive == nil || !*in.IsActive {
		t.Fatalf("unexpected admin input: %+v", in)
	}
}

func TestSeeder_EnsureAdmin_SkipsExistingAndDisabled(t *testing.T) {
	writer := &stubWriter{}
	s := NewSeeder(writer, &stubUsers{existing: map[string]bool{"root": true}}, zerolog.Nop())

	if err := s.EnsureAdmin(context.Background(), Admin{Username: "root"}); err != nil {
		t.Fatalf("EnsureAdmin returned error: %v", err)
	}
	if err := s.EnsureAdmin(context.Background(), Admin{}); err != nil {
		t.Fatalf("EnsureAdmin returned error: %v", err)
	}
	if len(writer.created) != 0 {
		t.Fatalf("expected no users created, got %d", len(writer.created))
	}
}

func TestSeeder_CreateFailure(t *testing.T) {
	writer := &stubWriter{err: errors.New("db down")}
	s := NewSeeder(writer, &stubUsers{}, zerolog.Nop())

	if err := s.EnsureAdmin(context.Background(), Admin{Username: "root", Role: domain.RoleSuperAdmin}); err == nil {
		t.Fatalf("expected error")
	}

	writer.err = domain.ErrUsernameTaken
	if err := s.EnsureAdmin(context.Background(), Admin{Username: "root", Role: domain.RoleSuperAdmin}); err != nil {
		t.Fatalf("a concurrent create of the same admin is not an error: %v", err)
	}
}
