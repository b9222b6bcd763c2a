/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the EduTime attendance and leave server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load configuration (defaults, .env, YAML, EDUTIME_* env, flags)
  3. Open the configured store
  4. Build services, handler and router
  5. Optionally load a demo scenario
  6. Start the provisioning scheduler and the HTTP server

COMMAND-LINE FLAGS:
  --config   YAML configuration file
  --port     HTTP server port (overrides config)
  --store    sqlite | postgres | mongo | memory (overrides config)
  --dsn      Store DSN or database path (overrides config)
  --seed     Scenario to load at startup (dev only), e.g. busy-morning

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Close the live hub so open streams end
  2. Stop accepting new connections
  3. Wait for active requests to complete (shutdown timeout)
  4. Stop the scheduler and close the store

EXAMPLES:
  ./server --config=config.yaml
  ./server --store=memory --seed=busy-morning
  EDUTIME_STORE=postgres EDUTIME_DSN=postgres://... ./server

SEE ALSO:
  - config/config.go: Configuration sources
  - api/server.go: Router configuration
  - api/wire.go: Service construction
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/warp/edutime/api"
	"github.com/warp/edutime/attendance"
	"github.com/warp/edutime/auth"
	"github.com/warp/edutime/config"
	"github.com/warp/edutime/generic"
	"github.com/warp/edutime/generic/store"
	"github.com/warp/edutime/store/mongo"
	"github.com/warp/edutime/store/postgres"
	"github.com/warp/edutime/store/sqlite"
	"github.com/warp/edutime/timeoff"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Flags
	configPath := pflag.String("config", "", "YAML configuration file")
	port := pflag.Int("port", 0, "HTTP server port (overrides config)")
	driver := pflag.String("store", "", "store driver: sqlite, postgres, mongo or memory")
	dsn := pflag.String("dsn", "", "store DSN or database path")
	seed := pflag.String("seed", "", "scenario to load at startup (dev only)")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *driver != "" {
		cfg.Store.Driver = *driver
	}
	if *dsn != "" {
		cfg.Store.DSN = *dsn
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	slog.SetDefault(cfg.Log.NewLogger(os.Stderr))

	ctx := context.Background()

	// Initialize store
	backend, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer closeStore()

	svc, err := api.NewServices(generic.NewLedger(backend), options(cfg))
	if err != nil {
		return err
	}
	handler := api.NewHandler(svc)
	devRoutes := cfg.Env == config.EnvDev

	if *seed != "" {
		if !devRoutes {
			return errors.New("--seed is only available in the dev environment")
		}
		if err := handler.Load(ctx, *seed); err != nil {
			return fmt.Errorf("seed %s: %w", *seed, err)
		}
		slog.Info("scenario loaded", "scenario", *seed)
	}

	scheduler := api.NewProvisioningScheduler(svc)
	scheduler.Start()
	defer scheduler.Stop()

	// Create server
	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewRouter(handler, api.RouterOptions{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			DevRoutes:      devRoutes,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	errc := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", server.Addr, "env", cfg.Env, "store", cfg.Store.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return err
	case <-quit:
	}

	slog.Info("shutting down server")
	svc.Hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func openStore(ctx context.Context, cfg config.Store) (generic.Store, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := sqlite.New(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { logClose(s.Close()) }, nil
	case config.DriverPostgres:
		s, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { logClose(s.Close()) }, nil
	case config.DriverMongo:
		s, err := mongo.New(ctx, cfg.DSN, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			logClose(s.Close(closeCtx))
		}, nil
	case config.DriverMemory:
		return store.NewTxMemory(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func logClose(err error) {
	if err != nil {
		slog.Warn("close store", "error", err)
	}
}

func options(cfg *config.Config) api.Options {
	opts := api.Options{
		Clock:     generic.SystemClock{Location: cfg.Location()},
		Locale:    cfg.Locale,
		JWTSecret: cfg.Auth.JWTSecret,
		TokenTTL:  cfg.Auth.TokenTTL,
		Hours: attendance.Hours{
			Start: generic.ClockTime(cfg.School.Start),
			Grace: generic.ClockTime(cfg.School.Grace),
			End:   generic.ClockTime(cfg.School.End),
		},
		FallbackLocation: cfg.School.FallbackLocation,
		LiveBuffer:       cfg.Live.Buffer,
	}
	if cfg.Auth.AdminEmail != "" {
		opts.Bootstrap = &auth.BootstrapAdmin{
			ID:           "admin-0",
			Name:         cfg.Auth.AdminName,
			Email:        cfg.Auth.AdminEmail,
			PasswordHash: cfg.Auth.AdminPasswordHash,
		}
	}
	for i, lt := range cfg.LeaveTypes {
		opts.LeaveTypes = append(opts.LeaveTypes, timeoff.LeaveType{
			ID:             fmt.Sprintf("lt-%d", i+1),
			Name:           lt.Name,
			DefaultBalance: decimal.NewFromFloat(lt.DefaultBalance),
			Icon:           lt.Icon,
			Color:          lt.Color,
		})
	}
	return opts
}
