package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/internal/auth"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/internal/gateway"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/internal/hours"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/internal/swaps"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/internal/tenants"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/apiclient"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/config"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/logger"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/metrics"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/session"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "gateway"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Debug(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "gateway",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	var durable session.Store
	switch cfg.Session.Backend {
	case "redis":
		store, err := session.NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis session store", err)
			os.Exit(1)
		}
		defer store.Close()
		durable = store
	case "memory":
		durable = session.NewMemStore()
	default:
		durable = session.NewFileStore(cfg.Session.Dir)
	}

	sess, err := session.NewContext(durable, session.NewMemStore())
	if err != nil {
		logg.Error(ctx, "failed to create session context", err)
		os.Exit(1)
	}

	client, err := apiclient.New(apiclient.Options{
		Config:  cfg.API,
		Session: sess,
		Logger:  logg,
		Metrics: metrics.NewClientMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logg.Error(ctx, "failed to create api client", err)
		os.Exit(1)
	}
	client.EnsureExpiryHandler(func(target string) {
		logg.Warn(logg.WithField(ctx, "target", target), "session expired")
	})
	// Another process clearing the shared token signs this gateway out too;
	// the next guarded request redirects to the login target.
	sess.WatchToken(ctx, 2*time.Second, func() {
		logg.Warn(ctx, "session token cleared externally")
	})

	authSvc, err := auth.NewService(auth.ServiceParams{Client: client, Logger: logg})
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}
	tenantSvc, err := tenants.NewService(tenants.ServiceParams{Client: client, Logger: logg})
	if err != nil {
		logg.Error(ctx, "failed to create tenants service", err)
		os.Exit(1)
	}
	swapSvc, err := swaps.NewService(swaps.ServiceParams{Client: client, Logger: logg})
	if err != nil {
		logg.Error(ctx, "failed to create swaps service", err)
		os.Exit(1)
	}
	hourSvc, err := hours.NewService(hours.ServiceParams{Client: client, Logger: logg})
	if err != nil {
		logg.Error(ctx, "failed to create hours service", err)
		os.Exit(1)
	}

	addr := ":" + cfg.Gateway.Port
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "addr": addr})
	logg.Info(ctx, "starting session gateway")

	server := &http.Server{
		Addr: addr,
		Handler: gateway.NewRouter(logg, gateway.Services{
			Session: sess,
			Auth:    authSvc,
			Tenants: tenantSvc,
			Swaps:   swapSvc,
			Hours:   hourSvc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "gateway stopped unexpectedly", err)
		os.Exit(1)
	}
}
