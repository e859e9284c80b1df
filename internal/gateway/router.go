// Package gateway serves a small HTTP facade over the client stack so shared
// kiosks and dashboards can ride one managed session instead of embedding
// credentials each.
package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/internal/auth"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/internal/guard"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/internal/hours"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/internal/normalize"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/internal/swaps"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/internal/tenants"
	pkgerrors "github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/errors"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/logger"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/session"
)

// Services carries everything the router serves.
type Services struct {
	Session *session.Context
	Auth    *auth.Service
	Tenants *tenants.Service
	Swaps   *swaps.Service
	Hours   *hours.Service
}

func NewRouter(logg *logger.Logger, svcs Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		guard.Recoverer(logg),
		guard.RequestID(logg),
		guard.Logging(logg),
	)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeSuccess(w, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/login", loginHandler(logg, svcs.Auth))
	r.Get("/login", loginPageHandler())

	r.Group(func(r chi.Router) {
		r.Use(
			guard.RequireAuth(svcs.Session, logg),
			guard.RequireCurrentPassword(svcs.Auth),
		)

		r.Post("/logout", logoutHandler(logg, svcs.Auth))
		r.Get("/me", meHandler(logg, svcs.Session))
		r.Get("/api/swaps", swapListHandler(logg, svcs.Swaps))
		r.Get("/api/hours", hourListHandler(logg, svcs.Hours))

		r.Group(func(r chi.Router) {
			r.Use(guard.RequireRole("admin", logg))
			r.Get("/api/tenants", tenantListHandler(logg, svcs.Tenants))
		})
	})

	return r
}

func loginHandler(logg *logger.Logger, svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed form"))
			return
		}

		result, err := svc.Login(r.Context(), auth.LoginRequest{
			Email:    r.PostFormValue("email"),
			Password: r.PostFormValue("password"),
			TenantID: r.PostFormValue("tenant"),
		})
		if err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}
		writeSuccess(w, map[string]any{
			"redirect_to":           result.RedirectTo,
			"requires_new_password": result.RequiresNewPassword,
			"user":                  result.User,
		})
	}
}

// loginPageHandler is where expired sessions land. The gateway has no UI of
// its own, so it just reports why the caller was sent here.
func loginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"reason": r.URL.Query().Get("reason"),
		})
	}
}

func logoutHandler(logg *logger.Logger, svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Logout(r.Context()); err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}
		writeSuccess(w, map[string]string{"status": "signed out"})
	}
}

func meHandler(logg *logger.Logger, sess *session.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := sess.User(r.Context())
		if !ok {
			writeError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no session user"))
			return
		}
		writeSuccess(w, map[string]any{
			"user":   user,
			"tenant": sess.ActiveTenantID(r.Context()),
		})
	}
}

func swapListHandler(logg *logger.Logger, svc *swaps.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := normalize.SwapStatus(r.URL.Query().Get("status"))
		list, err := svc.List(r.Context(), status)
		if err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}
		writeSuccess(w, list)
	}
}

func hourListHandler(logg *logger.Logger, svc *hours.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListSummaries(r.Context())
		if err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}
		writeSuccess(w, list)
	}
}

func tenantListHandler(logg *logger.Logger, svc *tenants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			writeError(r.Context(), logg, w, err)
			return
		}
		writeSuccess(w, list)
	}
}
