package domain

import (
	"context"
	"time"
)

// AuditAction identifies a user-administration action recorded in the audit trail.
type AuditAction string

const (
	AuditUserCreated     AuditAction = "user.created"
	AuditUserUpdated     AuditAction = "user.updated"
	AuditUserDeleted     AuditAction = "user.deleted"
	AuditAPITokenRotated AuditAction = "user.api_token_rotated"
)

// AuditEvent records who did what to which user. It never carries secrets.
type AuditEvent struct {
	Action    AuditAction
	UserID    int64
	Username  string
	Actor     string
	Roles     []string
	Timestamp time.Time
}

type actorKey struct{}

// WithActor returns a copy of ctx carrying the username of the authenticated caller.
func WithActor(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, actorKey{}, username)
}

// ActorFrom returns the caller stored by WithActor, or "system" when none is set.
func ActorFrom(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey{}).(string); ok && v != "" {
		return v
	}
	return "system"
}
