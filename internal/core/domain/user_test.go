package domain

import (
	"context"
	"fmt"
	"slices"
	"testing"
)

func TestNormalizeRoles(t *testing.T) {
	got := NormalizeRoles([]string{"manager", "", "apiuser", "manager"})
	want := []string{"apiuser", "manager"}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if got := NormalizeRoles(nil); len(got) != 0 {
		t.Fatalf("expected empty set, got %v", got)
	}
}

func TestUser_HasRole(t *testing.T) {
	u := &User{Roles: []string{RoleSuperAdmin, RoleManager}}
	if !u.HasRole(RoleManager) {
		t.Fatalf("expected manager role")
	}
	if u.HasRole(RoleStaff) {
		t.Fatalf("unexpected staff role")
	}
	if !u.HasAnyRole(RoleStaff, RoleSuperAdmin) {
		t.Fatalf("expected HasAnyRole to match superadmin")
	}
}

func TestFieldOf(t *testing.T) {
	wrapped := fmt.Errorf("create user: %w", ErrEmailTaken)
	cases := []struct {
		err  error
		want string
	}{
		{ErrUsernameTaken, "username"},
		{wrapped, "email"},
		{ErrAPITokenTaken, "api_token"},
		{ErrRoleNotFound, "roles"},
		{fmt.Errorf("hash password: %w", ErrPasswordTooLong), "password"},
		{ErrUserNotFound, ""},
	}
	for _, tc := range cases {
		if got := FieldOf(tc.err); got != tc.want {
			t.Fatalf("FieldOf(%v): expected %q, got %q", tc.err, tc.want, got)
		}
	}
}

func TestActorFrom(t *testing.T) {
	if got := ActorFrom(context.Background()); got != "system" {
		t.Fatalf("expected system actor, got %q", got)
	}
	ctx := WithActor(context.Background(), "alice")
	if got := ActorFrom(ctx); got != "alice" {
		t.Fatalf("expected alice, got %q", got)
	}
}
