package guard

import (
	"context"
	"net/http"

	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/internal/auth"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/apiclient"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/logger"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/session"
)

// RequireAuth gates a route behind a live session. The check runs before the
// wrapped handler; anonymous requests are sent to the login page and the
// handler is never invoked.
func RequireAuth(sess *session.Context, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sess.Token(r.Context()) == "" {
				http.Redirect(w, r, apiclient.LoginExpiredTarget, http.StatusSeeOther)
				return
			}

			ctx := r.Context()
			if tenant := sess.ActiveTenantID(ctx); tenant != "" {
				ctx = WithTenantID(ctx, tenant)
				if logg != nil {
					ctx = logg.WithTenantID(ctx, tenant)
				}
			}
			if user, ok := sess.User(ctx); ok {
				ctx = withUser(ctx, user)
				if logg != nil {
					ctx = logg.WithUserID(ctx, user.ID)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route behind the signed-in user's role. It assumes
// RequireAuth already ran; requests without the role get a 403.
func RequireRole(role string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != role {
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "required_role", role), "role check failed")
				}
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCurrentPassword redirects accounts flagged for a forced password
// change. The probe never blocks a page on backend trouble: on any probe
// failure the request passes through.
func RequireCurrentPassword(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if target := svc.ForcedChangeRedirect(r.Context()); target != "" {
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func withUser(ctx context.Context, user *session.User) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, user.ID)
	return context.WithValue(ctx, ctxRole, user.Role)
}
