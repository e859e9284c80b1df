package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// TempPasswordTTL bounds how long a pending temporary-password record stays
// usable after issuance.
const TempPasswordTTL = 60 * time.Second

// User is the cached identity of the signed-in operator.
type User struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	EmployeeID string `json:"employee_id,omitempty"`
	Role       string `json:"role,omitempty"`
}

// PendingTempPassword is the session-scoped record written when a login used
// a temporary password and a real one still has to be set.
type PendingTempPassword struct {
	Value    string    `json:"value"`
	IssuedAt time.Time `json:"issued_at"`
}

// Expired reports whether the record is past its 60 second validity window.
func (p PendingTempPassword) Expired(now time.Time) bool {
	return now.Sub(p.IssuedAt) > TempPasswordTTL
}

// Context is the injected session-context object: the single owner of token,
// tenant and user bookkeeping. Durable state survives the process; scoped
// state dies with it.
type Context struct {
	durable Store
	scoped  Store
}

func NewContext(durable, scoped Store) (*Context, error) {
	if durable == nil {
		return nil, fmt.Errorf("durable store is required")
	}
	if scoped == nil {
		scoped = NewMemStore()
	}
	return &Context{durable: durable, scoped: scoped}, nil
}

func (c *Context) Token(ctx context.Context) string {
	return c.get(ctx, c.durable, KeyToken)
}

func (c *Context) SetToken(ctx context.Context, token string) error {
	return c.durable.Set(ctx, KeyToken, token)
}

// ActiveTenantID resolves the tenant scoping every request: a session-scoped
// act-as override wins, then the persisted id.
func (c *Context) ActiveTenantID(ctx context.Context) string {
	if override := c.get(ctx, c.scoped, KeyActAsTenant); override != "" {
		return override
	}
	return c.get(ctx, c.durable, KeyTenantID)
}

// PersistedTenantID skips the act-as override.
func (c *Context) PersistedTenantID(ctx context.Context) string {
	return c.get(ctx, c.durable, KeyTenantID)
}

func (c *Context) SetActiveTenantID(ctx context.Context, tenantID string) error {
	return c.durable.Set(ctx, KeyTenantID, tenantID)
}

// SetActAsTenant installs the session-only override. It never writes through
// to the persisted tenant id.
func (c *Context) SetActAsTenant(ctx context.Context, tenantID string) error {
	return c.scoped.Set(ctx, KeyActAsTenant, tenantID)
}

func (c *Context) ClearActAsTenant(ctx context.Context) error {
	return c.scoped.Del(ctx, KeyActAsTenant)
}

func (c *Context) User(ctx context.Context) (*User, bool) {
	raw := c.get(ctx, c.durable, KeyUser)
	if raw == "" {
		return nil, false
	}
	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, false
	}
	return &user, true
}

func (c *Context) SetUser(ctx context.Context, user User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return c.durable.Set(ctx, KeyUser, string(raw))
}

func (c *Context) PendingTempPassword(ctx context.Context) (*PendingTempPassword, bool) {
	raw := c.get(ctx, c.scoped, KeyPendingTemp)
	if raw == "" {
		return nil, false
	}
	var pending PendingTempPassword
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		return nil, false
	}
	return &pending, true
}

func (c *Context) SetPendingTempPassword(ctx context.Context, pending PendingTempPassword) error {
	raw, err := json.Marshal(pending)
	if err != nil {
		return err
	}
	return c.scoped.Set(ctx, KeyPendingTemp, string(raw))
}

func (c *Context) ClearPendingTempPassword(ctx context.Context) error {
	return c.scoped.Del(ctx, KeyPendingTemp)
}

// ClearAuth removes the token, cached user, and every session-scoped value.
// The persisted tenant id is deliberately preserved so the next login lands
// in the same tenant. Individual storage failures are collected, never
// panicked on.
func (c *Context) ClearAuth(ctx context.Context) error {
	return multierr.Combine(
		c.durable.Del(ctx, KeyToken, KeyUser),
		c.scoped.Del(ctx, KeyActAsTenant, KeyPendingTemp),
	)
}

func (c *Context) get(ctx context.Context, store Store, key string) string {
	value, err := store.Get(ctx, key)
	if err != nil {
		return ""
	}
	return value
}
