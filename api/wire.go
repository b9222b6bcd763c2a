package api

import (
	"fmt"
	"time"

	"github.com/warp/edutime/attendance"
	"github.com/warp/edutime/auth"
	"github.com/warp/edutime/generic"
	"github.com/warp/edutime/i18n"
	"github.com/warp/edutime/live"
	"github.com/warp/edutime/notify"
	"github.com/warp/edutime/personnel"
	"github.com/warp/edutime/report"
	"github.com/warp/edutime/timeoff"
)

// Options configures NewServices. Zero values pick the package defaults.
type Options struct {
	Clock            generic.Clock
	Locale           string
	JWTSecret        string
	TokenTTL         time.Duration
	Bootstrap        *auth.BootstrapAdmin
	Hours            attendance.Hours
	FallbackLocation string
	LeaveTypes       []timeoff.LeaveType
	LiveBuffer       int
}

// Services are the domain services behind the HTTP handlers.
type Services struct {
	Ledger        *generic.Ledger
	Translator    *i18n.Translator
	Notifications *notify.Center
	Users         *personnel.Directory
	Auth          *auth.Service
	Catalog       *timeoff.Catalog
	Balances      *timeoff.Provisioner
	Leave         *timeoff.Workflow
	Attendance    *attendance.Engine
	Exporter      *report.Exporter
	Stats         *report.Stats
	Hub           *live.Hub
	Clock         generic.Clock
}

// NewServices builds every service on top of one ledger.
func NewServices(ledger *generic.Ledger, opts Options) (Services, error) {
	clock := opts.Clock
	if clock == nil {
		clock = generic.SystemClock{}
	}
	translator, err := i18n.New(opts.Locale)
	if err != nil {
		return Services{}, fmt.Errorf("load translations: %w", err)
	}

	center := notify.NewCenter(ledger, translator, clock)
	users := personnel.NewDirectory(ledger, center, clock)
	catalog := timeoff.NewCatalog(ledger, center, opts.LeaveTypes)
	leave := timeoff.NewWorkflow(ledger, catalog, center, clock)
	hub := live.NewHub(opts.LiveBuffer)
	engine := attendance.NewEngine(ledger, center, hub, clock, attendance.Options{
		Hours:            opts.Hours,
		FallbackLocation: opts.FallbackLocation,
	})

	return Services{
		Ledger:        ledger,
		Translator:    translator,
		Notifications: center,
		Users:         users,
		Auth:          auth.NewService(users, opts.JWTSecret, opts.TokenTTL, clock, opts.Bootstrap),
		Catalog:       catalog,
		Balances:      timeoff.NewProvisioner(ledger, catalog),
		Leave:         leave,
		Attendance:    engine,
		Exporter:      report.NewExporter(engine),
		Stats:         report.NewStats(engine, leave, users, clock),
		Hub:           hub,
		Clock:         clock,
	}, nil
}
