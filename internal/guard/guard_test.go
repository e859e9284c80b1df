package guard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/apiclient"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/session"
)

func newSession(t *testing.T) *session.Context {
	t.Helper()
	sess, err := session.NewContext(session.NewMemStore(), session.NewMemStore())
	require.NoError(t, err)
	return sess
}

func TestRequireAuthRedirectsAnonymousRequests(t *testing.T) {
	sess := newSession(t)
	called := false
	handler := RequireAuth(sess, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", resp.Code)
	}
	if got := resp.Header().Get("Location"); got != apiclient.LoginExpiredTarget {
		t.Fatalf("expected redirect to %q got %q", apiclient.LoginExpiredTarget, got)
	}
	if called {
		t.Fatal("handler must not run for anonymous requests")
	}
}

func TestRequireAuthSeedsContext(t *testing.T) {
	sess := newSession(t)
	ctx := context.Background()
	require.NoError(t, sess.SetToken(ctx, "tok"))
	require.NoError(t, sess.SetActiveTenantID(ctx, "t1"))
	require.NoError(t, sess.SetUser(ctx, session.User{ID: "u1", Role: "admin"}))

	var captured struct {
		user   string
		role   string
		tenant string
	}
	handler := RequireAuth(sess, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.user = UserIDFromContext(r.Context())
		captured.role = RoleFromContext(r.Context())
		captured.tenant = TenantIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.user != "u1" || captured.role != "admin" || captured.tenant != "t1" {
		t.Fatalf("context not seeded: %+v", captured)
	}
}

func TestRequireAuthHonorsActAsTenant(t *testing.T) {
	sess := newSession(t)
	ctx := context.Background()
	require.NoError(t, sess.SetToken(ctx, "tok"))
	require.NoError(t, sess.SetActiveTenantID(ctx, "home"))
	require.NoError(t, sess.SetActAsTenant(ctx, "other"))

	var tenant string
	handler := RequireAuth(sess, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenant = TenantIDFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if tenant != "other" {
		t.Fatalf("expected act-as tenant, got %q", tenant)
	}
}

func TestRequireRole(t *testing.T) {
	allowed := RequireRole("admin", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), ctxRole, "admin"))
	resp := httptest.NewRecorder()
	allowed.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), ctxRole, "viewer"))
	resp = httptest.NewRecorder()
	allowed.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}
