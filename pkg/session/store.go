package session

import (
	"context"
	"errors"
)

// ErrNotFound reports an absent value. Stores must return it instead of a
// backend-specific sentinel so callers can treat "missing" uniformly.
var ErrNotFound = errors.New("session: value not found")

// Store is the minimal persistence surface the session context needs. A
// durable store holds state that survives the process (token, active tenant
// id, cached user); a scoped store holds state that must die with the
// session (act-as override, pending temp-password record).
type Store interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

const (
	KeyToken       = "token"
	KeyTenantID    = "tenant_id"
	KeyUser        = "session_user"
	KeyActAsTenant = "act_as_tenant"
	KeyPendingTemp = "pending_temp_password"
)
