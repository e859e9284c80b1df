package auth

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/session"
)

// LoginRequest carries the credentials and optional tenant for a login.
type LoginRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	TenantID string
}

// LoginResult reports where the UI should land after a successful login.
type LoginResult struct {
	User       session.User
	TenantID   string
	RedirectTo string
	// RequiresNewPassword is set when the login used a temporary password
	// and a real one must be chosen before anything else.
	RequiresNewPassword bool
}

// ChangePasswordRequest is validated locally before any network call.
type ChangePasswordRequest struct {
	NewPassword string `validate:"required,min=8"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type passwordStatusResponse struct {
	MustChange     bool `json:"must_change"`
	RequiresChange bool `json:"requires_password_change"`
}

func (p passwordStatusResponse) requiresChange() bool {
	return p.MustChange || p.RequiresChange
}

// identityPayload tolerates both response generations: a nested user object
// and top-level identity fields.
type identityPayload struct {
	User *identityFields `json:"user"`
	identityFields
}

type identityFields struct {
	// ID arrives as a string in current payloads and as a number in the
	// oldest ones.
	ID         any    `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	FullName   string `json:"full_name"`
	EmployeeID string `json:"employee_id"`
	Role       string `json:"role"`
}

func (p identityPayload) toSessionUser() session.User {
	fields := p.identityFields
	if p.User != nil {
		fields = *p.User
	}
	name := strings.TrimSpace(fields.Name)
	if name == "" {
		name = strings.TrimSpace(fields.FullName)
	}
	return session.User{
		ID:         normalizeID(fields.ID),
		Email:      strings.TrimSpace(fields.Email),
		Name:       name,
		EmployeeID: strings.TrimSpace(fields.EmployeeID),
		Role:       strings.TrimSpace(strings.ToLower(fields.Role)),
	}
}

func normalizeID(id any) string {
	switch v := id.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}
