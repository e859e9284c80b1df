package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/apiclient"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/config"
	pkgerrors "github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/errors"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/logger"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/session"
)

type fixture struct {
	service  *Service
	sess     *session.Context
	requests *atomic.Int64
	now      time.Time
}

func newFixture(t *testing.T, handler http.HandlerFunc) *fixture {
	t.Helper()

	requests := &atomic.Int64{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	sess, err := session.NewContext(session.NewMemStore(), session.NewMemStore())
	require.NoError(t, err)

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client, err := apiclient.New(apiclient.Options{
		Config:  config.APIConfig{BaseURL: server.URL},
		Session: sess,
		Logger:  logg,
	})
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service, err := NewService(ServiceParams{
		Client: client,
		Logger: logg,
		Now:    func() time.Time { return now },
	})
	require.NoError(t, err)

	return &fixture{service: service, sess: sess, requests: requests, now: now}
}

func loginHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			require.NoError(t, r.ParseForm())
			if r.PostForm.Get("password") == "wrong" {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"detail": "Incorrect email or password"})
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-xyz", "token_type": "bearer"})
		case "/users/me":
			json.NewEncoder(w).Encode(map[string]any{
				"user": map[string]any{"id": "u1", "email": "ana@ward.example", "role": "Admin"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestLoginSequencePersistsState(t *testing.T) {
	f := newFixture(t, loginHandler(t))
	ctx := context.Background()

	result, err := f.service.Login(ctx, LoginRequest{
		Email:    "ana@ward.example",
		Password: "s3cret-pass",
		TenantID: "t1",
	})
	require.NoError(t, err)

	assert.Equal(t, "tok-xyz", f.sess.Token(ctx))
	assert.Equal(t, "t1", f.sess.ActiveTenantID(ctx))
	user, ok := f.sess.User(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "admin", user.Role)
	assert.Equal(t, DashboardTarget, result.RedirectTo)
	assert.False(t, result.RequiresNewPassword)
}

func TestLoginWithTemporaryPasswordRoutesToNewPassword(t *testing.T) {
	f := newFixture(t, loginHandler(t))
	ctx := context.Background()

	result, err := f.service.Login(ctx, LoginRequest{
		Email:    "ana@ward.example",
		Password: "TEMP-abcdef",
	})
	require.NoError(t, err)

	assert.True(t, result.RequiresNewPassword)
	assert.Equal(t, NewPasswordTarget, result.RedirectTo)

	pending, ok := f.sess.PendingTempPassword(ctx)
	require.True(t, ok)
	assert.Equal(t, "TEMP-abcdef", pending.Value)
	assert.Equal(t, f.now, pending.IssuedAt)
}

func TestLoginSurfacesBackendDetail(t *testing.T) {
	f := newFixture(t, loginHandler(t))

	_, err := f.service.Login(context.Background(), LoginRequest{
		Email:    "ana@ward.example",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect email or password")
}

func TestAcquireTokenRejectsMissingTokenField(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token_type": "bearer"})
	})

	_, err := f.service.AcquireToken(context.Background(), "a@b.c", "pw")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDecode), "got %v", err)
}

func TestResolveIdentityTopLevelFallback(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": float64(7), "email": "bo@ward.example"})
	})

	user, err := f.service.ResolveIdentity(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "7", user.ID)
	assert.Equal(t, "bo@ward.example", user.Email)
}

func TestChangeTempPasswordExpiredRecordIsDiscarded(t *testing.T) {
	f := newFixture(t, loginHandler(t))
	ctx := context.Background()

	require.NoError(t, f.sess.SetActiveTenantID(ctx, "t1"))
	require.NoError(t, f.sess.SetUser(ctx, session.User{ID: "u1", Email: "a@b.c"}))
	require.NoError(t, f.sess.SetPendingTempPassword(ctx, session.PendingTempPassword{
		Value:    "TEMP-abcdef",
		IssuedAt: f.now.Add(-61 * time.Second),
	}))

	err := f.service.ChangeTempPassword(ctx, "new-password-1")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
	assert.Contains(t, err.Error(), "expired")

	_, ok := f.sess.PendingTempPassword(ctx)
	assert.False(t, ok, "expired record must be discarded")
	assert.Zero(t, f.requests.Load(), "no network call for an expired record")
}

func TestChangeTempPasswordShortPasswordRejectedLocally(t *testing.T) {
	f := newFixture(t, loginHandler(t))
	ctx := context.Background()

	require.NoError(t, f.sess.SetActiveTenantID(ctx, "t1"))
	require.NoError(t, f.sess.SetUser(ctx, session.User{ID: "u1", Email: "a@b.c"}))
	require.NoError(t, f.sess.SetPendingTempPassword(ctx, session.PendingTempPassword{
		Value:    "TEMP-abcdef",
		IssuedAt: f.now.Add(-time.Second),
	}))

	err := f.service.ChangeTempPassword(ctx, "short")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
	assert.Zero(t, f.requests.Load(), "no network call on local validation failure")

	_, ok := f.sess.PendingTempPassword(ctx)
	assert.True(t, ok, "pending record must survive a local failure")
}

func TestChangeTempPasswordRequiresTenantAndUser(t *testing.T) {
	f := newFixture(t, loginHandler(t))
	ctx := context.Background()

	require.NoError(t, f.sess.SetPendingTempPassword(ctx, session.PendingTempPassword{
		Value:    "TEMP-abcdef",
		IssuedAt: f.now.Add(-time.Second),
	}))

	err := f.service.ChangeTempPassword(ctx, "new-password-1")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
	assert.Contains(t, err.Error(), "tenant")
	assert.Zero(t, f.requests.Load())
}

func TestChangeTempPasswordSuccessClearsRecord(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/change-password", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "u1", body["user_id"])
		assert.Equal(t, "t1", body["tenant_id"])
		assert.Equal(t, "TEMP-abcdef", body["temporary_password"])
		w.Write([]byte(`{}`))
	})
	ctx := context.Background()

	require.NoError(t, f.sess.SetActiveTenantID(ctx, "t1"))
	require.NoError(t, f.sess.SetUser(ctx, session.User{ID: "u1", Email: "a@b.c"}))
	require.NoError(t, f.sess.SetPendingTempPassword(ctx, session.PendingTempPassword{
		Value:    "TEMP-abcdef",
		IssuedAt: f.now.Add(-time.Second),
	}))

	require.NoError(t, f.service.ChangeTempPassword(ctx, "new-password-1"))
	_, ok := f.sess.PendingTempPassword(ctx)
	assert.False(t, ok, "record cleared on success")
}

func TestChangeTempPasswordBackendFailureKeepsRecord(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"detail": "password recently used"})
	})
	ctx := context.Background()

	require.NoError(t, f.sess.SetActiveTenantID(ctx, "t1"))
	require.NoError(t, f.sess.SetUser(ctx, session.User{ID: "u1", Email: "a@b.c"}))
	require.NoError(t, f.sess.SetPendingTempPassword(ctx, session.PendingTempPassword{
		Value:    "TEMP-abcdef",
		IssuedAt: f.now.Add(-time.Second),
	}))

	err := f.service.ChangeTempPassword(ctx, "new-password-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password recently used")

	_, ok := f.sess.PendingTempPassword(ctx)
	assert.True(t, ok, "record kept on backend failure")
}

func TestForcedChangeRedirect(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"must_change": true})
	})
	ctx := context.Background()
	require.NoError(t, f.sess.SetToken(ctx, "tok"))

	assert.Equal(t, ChangePasswordTarget, f.service.ForcedChangeRedirect(ctx))
}

func TestForcedChangeRedirectNeverBlocksOnFailure(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	ctx := context.Background()
	require.NoError(t, f.sess.SetToken(ctx, "tok"))

	assert.Empty(t, f.service.ForcedChangeRedirect(ctx))
}

func TestForcedChangeRedirectDiscardsCancelledResults(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"must_change": true})
	})
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, f.sess.SetToken(ctx, "tok"))
	cancel()

	assert.Empty(t, f.service.ForcedChangeRedirect(ctx))
}

func TestForcedChangeRedirectSkipsWithoutToken(t *testing.T) {
	f := newFixture(t, loginHandler(t))
	assert.Empty(t, f.service.ForcedChangeRedirect(context.Background()))
	assert.Zero(t, f.requests.Load())
}

func TestSessionReady(t *testing.T) {
	f := newFixture(t, loginHandler(t))
	ctx := context.Background()

	assert.False(t, f.service.SessionReady(ctx), "no token, not ready")

	require.NoError(t, f.sess.SetToken(ctx, "opaque-token"))
	assert.True(t, f.service.SessionReady(ctx), "opaque tokens count as ready")

	expired := mintJWT(t, f.now.Add(-time.Minute))
	require.NoError(t, f.sess.SetToken(ctx, expired))
	assert.False(t, f.service.SessionReady(ctx), "expired jwt is not ready")

	live := mintJWT(t, f.now.Add(time.Hour))
	require.NoError(t, f.sess.SetToken(ctx, live))
	assert.True(t, f.service.SessionReady(ctx))
}

func mintJWT(t *testing.T, expiry time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiry),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}
