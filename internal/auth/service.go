package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/apiclient"
	pkgerrors "github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/errors"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/logger"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/session"
)

// TempPasswordPrefix marks backend-issued temporary passwords.
const TempPasswordPrefix = "TEMP-"

const (
	DashboardTarget      = "/dashboard"
	NewPasswordTarget    = "/account/password/new"
	ChangePasswordTarget = "/account/password/change"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Service owns the login, temporary-password, and forced-change flows.
type Service struct {
	client *apiclient.Client
	sess   *session.Context
	logg   *logger.Logger
	now    func() time.Time
}

// ServiceParams bundles the dependencies required to build the auth service.
type ServiceParams struct {
	Client *apiclient.Client
	Logger *logger.Logger
	// Now overrides the clock in tests.
	Now func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("api client is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		client: params.Client,
		sess:   params.Client.Session(),
		logg:   params.Logger,
		now:    now,
	}, nil
}

// AcquireToken exchanges form-encoded credentials for a bearer token.
func (s *Service) AcquireToken(ctx context.Context, email, password string) (string, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)
	form.Set("grant_type", "password")

	var resp tokenResponse
	if err := s.client.PostForm(ctx, "login", "/token", form, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.AccessToken) == "" {
		return "", pkgerrors.New(pkgerrors.CodeDecode, "login response carried no token")
	}
	return resp.AccessToken, nil
}

// ResolveIdentity fetches the current user, trying the nested user object
// first, then top-level identity fields.
func (s *Service) ResolveIdentity(ctx context.Context, tenantID string) (session.User, error) {
	req := apiclient.Request{
		Operation: "users.me",
		Method:    http.MethodGet,
		Path:      "/users/me",
	}
	if tenantID != "" {
		req.Headers = map[string]string{"X-Tenant-ID": tenantID}
	}
	var payload identityPayload
	req.Out = &payload
	if err := s.client.Do(ctx, req); err != nil {
		return session.User{}, err
	}
	user := payload.toSessionUser()
	if user.ID == "" && user.Email == "" {
		return session.User{}, pkgerrors.New(pkgerrors.CodeDecode, "identity response carried no user")
	}
	return user, nil
}

// Login runs the full sequence: acquire token, persist it, resolve and
// cache the identity, and persist the tenant when one was supplied. A
// temporary password routes the caller to the set-new-password screen.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid credentials input")
	}

	token, err := s.AcquireToken(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if err := s.sess.SetToken(ctx, token); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting token")
	}

	user, err := s.ResolveIdentity(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}
	if err := s.sess.SetUser(ctx, user); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "caching session user")
	}
	if req.TenantID != "" {
		if err := s.sess.SetActiveTenantID(ctx, req.TenantID); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "persisting tenant id")
		}
	}

	result := &LoginResult{
		User:       user,
		TenantID:   req.TenantID,
		RedirectTo: DashboardTarget,
	}
	if strings.HasPrefix(req.Password, TempPasswordPrefix) {
		pending := session.PendingTempPassword{Value: req.Password, IssuedAt: s.now()}
		if err := s.sess.SetPendingTempPassword(ctx, pending); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording temporary password")
		}
		result.RequiresNewPassword = true
		result.RedirectTo = NewPasswordTarget
	}
	return result, nil
}

// ChangeTempPassword finalizes a temporary-password login. Everything is
// checked locally before any network call; on failure the pending record is
// kept so the operator can retry, except when it has expired.
func (s *Service) ChangeTempPassword(ctx context.Context, newPassword string) error {
	pending, ok := s.sess.PendingTempPassword(ctx)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "no pending temporary password; request a new one")
	}
	if pending.Expired(s.now()) {
		if err := s.sess.ClearPendingTempPassword(ctx); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "discarding expired temporary password")
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "temporary password expired; request a new one")
	}

	tenantID := s.sess.ActiveTenantID(ctx)
	if tenantID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "no active tenant for password change")
	}
	user, ok := s.sess.User(ctx)
	if !ok || user.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "no signed-in user for password change")
	}
	if err := validate.Struct(ChangePasswordRequest{NewPassword: newPassword}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "password must be at least 8 characters")
	}

	body := map[string]string{
		"user_id":            user.ID,
		"tenant_id":          tenantID,
		"temporary_password": pending.Value,
		"new_password":       newPassword,
	}
	if err := s.client.PostJSON(ctx, "auth.change_password", "/auth/change-password", body, nil); err != nil {
		return err
	}

	if err := s.sess.ClearPendingTempPassword(ctx); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "clearing pending temporary password")
	}
	return nil
}

// ForcedChangeRedirect asks the backend whether the account is flagged for
// a password change. It never blocks navigation: network failures and
// cancelled contexts both report no redirect.
func (s *Service) ForcedChangeRedirect(ctx context.Context) string {
	if s.sess.Token(ctx) == "" {
		return ""
	}

	var status passwordStatusResponse
	err := s.client.GetJSON(ctx, "users.password_status", "/users/password-status", nil, &status)
	if ctx.Err() != nil {
		// The caller went away; a late result must not be acted on.
		return ""
	}
	if err != nil {
		s.logg.Debug(s.logg.WithField(ctx, "error", err.Error()), "password status probe failed")
		return ""
	}
	if status.requiresChange() {
		return ChangePasswordTarget
	}
	return ""
}

// StartForcedChangeProbe runs the probe off the caller's path and reports a
// non-empty redirect target through onRedirect.
func (s *Service) StartForcedChangeProbe(ctx context.Context, onRedirect func(target string)) {
	go func() {
		if target := s.ForcedChangeRedirect(ctx); target != "" && onRedirect != nil {
			onRedirect(target)
		}
	}()
}

// SessionReady reports whether a token is present and, when it is a
// parseable JWT, not obviously expired. Opaque tokens count as ready.
func (s *Service) SessionReady(ctx context.Context) bool {
	token := s.sess.Token(ctx)
	if token == "" {
		return false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.After(s.now())
}

// Logout clears the token and session-scoped state. The persisted tenant
// id stays so the next login lands in the same tenant.
func (s *Service) Logout(ctx context.Context) error {
	return s.sess.ClearAuth(ctx)
}
