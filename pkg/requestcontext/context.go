// Package requestcontext provides HTTP-independent accessors for
// request-scoped values.
//
// Middleware sets these values; services read them. Keeping the package free
// of net/http lets services depend on identity and request time without
// pulling in transport code.
//
// Usage in services:
//
//	archerID := requestcontext.ArcherID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithArcherID(ctx, archerID)
package requestcontext

import (
	"context"
	"time"

	id "quiverbook/pkg/domain"
)

// Role distinguishes what an authenticated caller may do. Recorders and
// admins can resolve staging scores; archers can only submit and read.
type Role string

const (
	RoleArcher   Role = "archer"
	RoleRecorder Role = "recorder"
	RoleAdmin    Role = "admin"
)

// CanResolve reports whether this role may approve, reject, or delete
// staging scores.
func (r Role) CanResolve() bool {
	return r == RoleRecorder || r == RoleAdmin
}

type (
	archerIDKey    struct{}
	roleKey        struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported keys for tests that need raw context.WithValue.
var (
	ContextKeyArcherID    = archerIDKey{}
	ContextKeyRole        = roleKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// ArcherID retrieves the authenticated archer's ID, or the zero value when
// the request is unauthenticated.
func ArcherID(ctx context.Context) id.ArcherID {
	if archerID, ok := ctx.Value(ContextKeyArcherID).(id.ArcherID); ok {
		return archerID
	}
	return id.ArcherID{}
}

// WithArcherID injects an archer ID into the context.
func WithArcherID(ctx context.Context, archerID id.ArcherID) context.Context {
	return context.WithValue(ctx, ContextKeyArcherID, archerID)
}

// CallerRole retrieves the authenticated role; the zero value means unknown.
func CallerRole(ctx context.Context) Role {
	if role, ok := ctx.Value(ContextKeyRole).(Role); ok {
		return role
	}
	return ""
}

// WithRole injects a caller role into the context.
func WithRole(ctx context.Context, role Role) context.Context {
	return context.WithValue(ctx, ContextKeyRole, role)
}

// RequestID retrieves the request ID set by middleware.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time, falling back to time.Now for
// non-HTTP contexts (workers, CLI, tests that don't care).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a fixed time, used by tests and batch workers that need a
// consistent clock within one unit of work.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
