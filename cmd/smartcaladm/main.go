package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/internal/auth"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/internal/availability"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/internal/cache"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/internal/hours"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/internal/normalize"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/internal/shifts"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/internal/swaps"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/internal/tenants"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/apiclient"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/config"
	pkgerrors "github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/errors"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/logger"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/session"
)

const usage = `usage: smartcaladm <command> [args]

commands:
  login -email <email> -password <password> [-tenant <id>]
  change-password -new <password>
  whoami
  logout
  tenants list
  tenant switch|act-as <id>
  tenant clear-act-as
  tenant rate <id> [new-rate]
  shifts list [-user <id>]
  swaps list [-status <status>]
  swaps approve|decline|cancel <id>
  availability list [-status <status>]
  availability approve|deny|cancel <id>
  hours list
  hours user <id>
`

type app struct {
	cfg          *config.Config
	logg         *logger.Logger
	sess         *session.Context
	client       *apiclient.Client
	auth         *auth.Service
	tenants      *tenants.Service
	shifts       *shifts.Service
	swaps        *swaps.Service
	availability *availability.Service
	hours        *hours.Service
	snapshots    *cache.Store
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "smartcaladm"})
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
		ServiceName: "smartcaladm",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	a, cleanup, err := newApp(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap", err)
		os.Exit(1)
	}
	defer cleanup()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if pkgerrors.IsCode(err, pkgerrors.CodeExpired) {
			fmt.Fprintln(os.Stderr, "session expired, run `smartcaladm login` again")
		}
		os.Exit(1)
	}
}

func newApp(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*app, func(), error) {
	cleanup := func() {}

	durable, closer, err := durableStore(ctx, cfg, logg)
	if err != nil {
		return nil, cleanup, err
	}
	if closer != nil {
		cleanup = closer
	}

	sess, err := session.NewContext(durable, session.NewMemStore())
	if err != nil {
		return nil, cleanup, err
	}

	client, err := apiclient.New(apiclient.Options{Config: cfg.API, Session: sess, Logger: logg})
	if err != nil {
		return nil, cleanup, err
	}
	client.EnsureExpiryHandler(func(target string) {
		logg.Warn(logg.WithField(ctx, "target", target), "session expired")
	})

	authSvc, err := auth.NewService(auth.ServiceParams{Client: client, Logger: logg})
	if err != nil {
		return nil, cleanup, err
	}
	tenantSvc, err := tenants.NewService(tenants.ServiceParams{Client: client, Logger: logg})
	if err != nil {
		return nil, cleanup, err
	}
	shiftSvc, err := shifts.NewService(shifts.ServiceParams{Client: client, Logger: logg})
	if err != nil {
		return nil, cleanup, err
	}
	swapSvc, err := swaps.NewService(swaps.ServiceParams{Client: client, Logger: logg})
	if err != nil {
		return nil, cleanup, err
	}
	availSvc, err := availability.NewService(availability.ServiceParams{Client: client, Logger: logg})
	if err != nil {
		return nil, cleanup, err
	}
	hourSvc, err := hours.NewService(hours.ServiceParams{Client: client, Logger: logg})
	if err != nil {
		return nil, cleanup, err
	}

	a := &app{
		cfg:          cfg,
		logg:         logg,
		sess:         sess,
		client:       client,
		auth:         authSvc,
		tenants:      tenantSvc,
		shifts:       shiftSvc,
		swaps:        swapSvc,
		availability: availSvc,
		hours:        hourSvc,
	}

	if cfg.Cache.Enabled {
		snapshots, err := cache.Open(ctx, cfg.Cache, logg)
		if err != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "snapshot cache unavailable")
		} else {
			a.snapshots = snapshots
			prev := cleanup
			cleanup = func() {
				snapshots.Close()
				prev()
			}
		}
	}

	return a, cleanup, nil
}

func durableStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (session.Store, func(), error) {
	switch strings.ToLower(cfg.Session.Backend) {
	case "redis":
		store, err := session.NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		logg.Debug(ctx, "session store backed by redis")
		return store, func() { store.Close() }, nil
	case "memory":
		return session.NewMemStore(), nil, nil
	default:
		return session.NewFileStore(cfg.Session.Dir), nil, nil
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.cmdLogin(ctx, args)
	case "change-password":
		return a.cmdChangePassword(ctx, args)
	case "whoami":
		return a.cmdWhoami(ctx)
	case "logout":
		return a.auth.Logout(ctx)
	case "tenants":
		if len(args) == 1 && args[0] == "list" {
			return a.cmdTenantsList(ctx)
		}
	case "tenant":
		return a.cmdTenant(ctx, args)
	case "shifts":
		return a.cmdShifts(ctx, args)
	case "swaps":
		return a.cmdSwaps(ctx, args)
	case "availability":
		return a.cmdAvailability(ctx, args)
	case "hours":
		return a.cmdHours(ctx, args)
	}
	fmt.Fprint(os.Stderr, usage)
	return fmt.Errorf("unknown command %q", command)
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	tenant := fs.String("tenant", "", "tenant id to activate")
	fs.Parse(args)

	result, err := a.auth.Login(ctx, auth.LoginRequest{Email: *email, Password: *password, TenantID: *tenant})
	if err != nil {
		return err
	}
	if result.RequiresNewPassword {
		fmt.Println("temporary password accepted; set a new one with `smartcaladm change-password` within 60 seconds")
		return nil
	}
	fmt.Printf("signed in as %s\n", result.User.Email)
	return nil
}

func (a *app) cmdChangePassword(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("change-password", flag.ExitOnError)
	newPassword := fs.String("new", "", "new password")
	fs.Parse(args)

	if err := a.auth.ChangeTempPassword(ctx, *newPassword); err != nil {
		return err
	}
	fmt.Println("password updated")
	return nil
}

func (a *app) cmdWhoami(ctx context.Context) error {
	if !a.auth.SessionReady(ctx) {
		return pkgerrors.New(pkgerrors.CodeExpired, "not signed in")
	}
	user, ok := a.sess.User(ctx)
	if !ok {
		fetched, err := a.auth.ResolveIdentity(ctx, a.sess.ActiveTenantID(ctx))
		if err != nil {
			return err
		}
		user = &fetched
	}
	fmt.Printf("user: %s (%s)\n", user.Email, user.ID)
	if user.Role != "" {
		fmt.Printf("role: %s\n", user.Role)
	}
	if tenant := a.sess.ActiveTenantID(ctx); tenant != "" {
		fmt.Printf("tenant: %s", tenant)
		if tenant != a.sess.PersistedTenantID(ctx) {
			fmt.Print(" (acting as)")
		}
		fmt.Println()
	}
	if target := a.auth.ForcedChangeRedirect(ctx); target != "" {
		fmt.Println("a password change is required before anything else")
	}
	return nil
}

func (a *app) cmdTenantsList(ctx context.Context) error {
	list, err := a.tenants.List(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIMEZONE")
	for _, tenant := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\n", tenant.ID, tenant.Name, tenant.Timezone)
	}
	return w.Flush()
}

func (a *app) cmdTenant(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("tenant: subcommand required")
	}
	switch args[0] {
	case "switch":
		if len(args) != 2 {
			return fmt.Errorf("tenant switch: id required")
		}
		tenant, err := a.tenants.Switch(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("active tenant is now %s (%s)\n", tenant.Name, tenant.ID)
		return nil
	case "act-as":
		if len(args) != 2 {
			return fmt.Errorf("tenant act-as: id required")
		}
		if err := a.tenants.ActAs(ctx, args[1]); err != nil {
			return err
		}
		fmt.Printf("acting as tenant %s for this process\n", args[1])
		return nil
	case "clear-act-as":
		if err := a.tenants.ClearActAs(ctx); err != nil {
			return err
		}
		fmt.Printf("reverted to tenant %s\n", a.sess.PersistedTenantID(ctx))
		return nil
	case "rate":
		if len(args) == 2 {
			rate, err := a.tenants.HourlyRate(ctx, args[1])
			if err != nil {
				return err
			}
			fmt.Printf("hourly rate: %s\n", rate.StringFixed(2))
			return nil
		}
		if len(args) == 3 {
			rate, err := decimal.NewFromString(args[2])
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse rate")
			}
			if err := a.tenants.SetHourlyRate(ctx, args[1], rate); err != nil {
				return err
			}
			fmt.Printf("hourly rate set to %s\n", rate.StringFixed(2))
			return nil
		}
		return fmt.Errorf("tenant rate: id [new-rate] required")
	}
	return fmt.Errorf("tenant: unknown subcommand %q", args[0])
}

func (a *app) cmdShifts(ctx context.Context, args []string) error {
	if len(args) < 1 || args[0] != "list" {
		return fmt.Errorf("shifts: only `list` is supported")
	}
	fs := flag.NewFlagSet("shifts list", flag.ExitOnError)
	userID := fs.String("user", "", "filter by user id")
	fs.Parse(args[1:])

	list, err := a.shifts.List(ctx, shifts.ListShiftsInput{UserID: *userID})
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSER\tUNIT\tSTART\tEND")
	for _, shift := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", shift.ID, shift.UserID, shift.Unit, timeOrDash(shift.Start), timeOrDash(shift.End))
	}
	return w.Flush()
}

func (a *app) cmdSwaps(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("swaps: subcommand required")
	}
	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("swaps list", flag.ExitOnError)
		status := fs.String("status", "", "filter by status")
		fs.Parse(args[1:])
		return a.cmdSwapsList(ctx, normalize.SwapStatus(*status))
	case "approve", "decline", "cancel":
		if len(args) != 2 {
			return fmt.Errorf("swaps %s: id required", args[0])
		}
		var swap *normalize.Swap
		var err error
		switch args[0] {
		case "approve":
			swap, err = a.swaps.Approve(ctx, args[1])
		case "decline":
			swap, err = a.swaps.Decline(ctx, args[1])
		case "cancel":
			swap, err = a.swaps.Cancel(ctx, args[1])
		}
		if err != nil {
			return err
		}
		fmt.Printf("swap %s is now %s\n", swap.ID, swap.Status)
		return nil
	}
	return fmt.Errorf("swaps: unknown subcommand %q", args[0])
}

func (a *app) cmdSwapsList(ctx context.Context, status normalize.SwapStatus) error {
	tenantID := a.sess.ActiveTenantID(ctx)
	list, err := a.swaps.List(ctx, status)
	if err != nil {
		if a.snapshots == nil || !pkgerrors.IsCode(err, pkgerrors.CodeNetwork) {
			return err
		}
		cached, fetchedAt, cacheErr := a.snapshots.Swaps(ctx, tenantID)
		if cacheErr != nil || len(cached) == 0 {
			return err
		}
		fmt.Printf("backend unreachable, showing snapshot from %s\n", fetchedAt.Format("2006-01-02 15:04"))
		list = cached
	} else if a.snapshots != nil && status == "" {
		if saveErr := a.snapshots.SaveSwaps(ctx, tenantID, list); saveErr != nil {
			a.logg.Warn(a.logg.WithField(ctx, "error", saveErr.Error()), "saving swap snapshot")
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tFROM\tTO\tSHIFT")
	for _, swap := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", swap.ID, swap.Status, swap.FromUserName, swap.ToUserName, swap.ShiftID)
	}
	return w.Flush()
}

func (a *app) cmdAvailability(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("availability: subcommand required")
	}
	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("availability list", flag.ExitOnError)
		status := fs.String("status", "", "filter by status")
		fs.Parse(args[1:])
		list, err := a.availability.List(ctx, availability.ListRequestsInput{Status: *status})
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSER\tKIND\tSTATUS\tSTART\tEND")
		for _, req := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", req.ID, req.UserID, req.Kind, req.Status, timeOrDash(req.Start), timeOrDash(req.End))
		}
		return w.Flush()
	case "approve", "deny", "cancel":
		if len(args) != 2 {
			return fmt.Errorf("availability %s: id required", args[0])
		}
		var req *availability.Request
		var err error
		switch args[0] {
		case "approve":
			req, err = a.availability.Approve(ctx, args[1])
		case "deny":
			req, err = a.availability.Deny(ctx, args[1])
		case "cancel":
			req, err = a.availability.Cancel(ctx, args[1])
		}
		if err != nil {
			return err
		}
		fmt.Printf("request %s is now %s\n", req.ID, req.Status)
		return nil
	}
	return fmt.Errorf("availability: unknown subcommand %q", args[0])
}

func (a *app) cmdHours(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("hours: subcommand required")
	}
	switch args[0] {
	case "list":
		return a.cmdHoursList(ctx)
	case "user":
		if len(args) != 2 {
			return fmt.Errorf("hours user: id required")
		}
		summary, err := a.hours.UserSummary(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s: regular %.2f, overtime %.2f, pto %.2f, sick %.2f, vacation %.2f, total %.2f\n",
			summary.Name, summary.RegularHours, summary.OvertimeHours, summary.PTOHours,
			summary.SickHours, summary.VacationHours, summary.TotalHours)
		return nil
	}
	return fmt.Errorf("hours: unknown subcommand %q", args[0])
}

func (a *app) cmdHoursList(ctx context.Context) error {
	tenantID := a.sess.ActiveTenantID(ctx)
	list, err := a.hours.ListSummaries(ctx)
	if err != nil {
		if a.snapshots == nil || !pkgerrors.IsCode(err, pkgerrors.CodeNetwork) {
			return err
		}
		cached, fetchedAt, cacheErr := a.snapshots.HourSummaries(ctx, tenantID)
		if cacheErr != nil || len(cached) == 0 {
			return err
		}
		fmt.Printf("backend unreachable, showing snapshot from %s\n", fetchedAt.Format("2006-01-02 15:04"))
		list = cached
	} else if a.snapshots != nil {
		if saveErr := a.snapshots.SaveHourSummaries(ctx, tenantID, list); saveErr != nil {
			a.logg.Warn(a.logg.WithField(ctx, "error", saveErr.Error()), "saving hour snapshot")
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tREGULAR\tOVERTIME\tPTO\tSICK\tVACATION\tTOTAL")
	for _, summary := range list {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n",
			summary.Name, summary.RegularHours, summary.OvertimeHours, summary.PTOHours,
			summary.SickHours, summary.VacationHours, summary.TotalHours)
	}
	return w.Flush()
}

func timeOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}
