package middleware

import (
	"context"

	"github.com/amanagarwal0602/randomcafe-sub001/internal/editsession"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
	"github.com/google/uuid"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxRole     contextKey = "actor_role"
	ctxAccessID contextKey = "access_id"
	ctxEditGate contextKey = "edit_gate"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

// UserUUIDFromContext returns the authenticated user id, or nil for anonymous requests.
func UserUUIDFromContext(ctx context.Context) *uuid.UUID {
	raw := UserIDFromContext(ctx)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

func RoleFromContext(ctx context.Context) enums.Role {
	if ctx == nil {
		return enums.RoleNone
	}
	if v, ok := ctx.Value(ctxRole).(enums.Role); ok {
		return v
	}
	return enums.RoleNone
}

func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// EditGateFromContext returns the edit gate built by EditSession, if any.
func EditGateFromContext(ctx context.Context) *editsession.Gate {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxEditGate).(*editsession.Gate); ok {
		return v
	}
	return nil
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithRole injects the actor role into the context.
func WithRole(ctx context.Context, role enums.Role) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}

// WithEditGate injects an edit gate into the context for downstream handlers.
func WithEditGate(ctx context.Context, gate *editsession.Gate) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxEditGate, gate)
}

// CredentialFromContext converts the authenticated actor into an edit session credential.
func CredentialFromContext(ctx context.Context) editsession.Credential {
	userID := UserIDFromContext(ctx)
	if userID == "" {
		return editsession.Anonymous
	}
	return editsession.Credential{
		Authenticated: true,
		UserID:        userID,
		Role:          RoleFromContext(ctx),
	}
}
