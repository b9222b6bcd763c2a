/*
scheduler.go - Background balance provisioning

PURPOSE:
  Periodically provisions balances for every user so that a leave type
  added to the catalog shows up in everyone's stored balances without
  waiting for each user's next read.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on Start
  - Provisioning is idempotent: users already holding every type are not
    rewritten

USAGE:
  sweeper := NewProvisioningScheduler(handler.Services)
  sweeper.Start()
  // ... later
  sweeper.Stop()

SEE ALSO:
  - timeoff/provision.go: EnsureBalances
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/edutime/personnel"
	"github.com/warp/edutime/timeoff"
)

// ProvisioningScheduler runs EnsureBalances for every user on a ticker.
type ProvisioningScheduler struct {
	Users         *personnel.Directory
	Balances      *timeoff.Provisioner
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewProvisioningScheduler creates a scheduler checking once an hour.
func NewProvisioningScheduler(svc Services) *ProvisioningScheduler {
	return &ProvisioningScheduler{
		Users:         svc.Users,
		Balances:      svc.Balances,
		CheckInterval: time.Hour,
		Enabled:       true,
	}
}

// Start begins the scheduler.
func (ps *ProvisioningScheduler) Start() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if !ps.Enabled {
		slog.Info("scheduler: disabled, not starting")
		return
	}
	if ps.ticker != nil {
		return
	}

	ps.ticker = time.NewTicker(ps.CheckInterval)
	ps.stop = make(chan struct{})
	ps.wg.Add(1)
	go ps.run()

	slog.Info("scheduler: started", "interval", ps.CheckInterval)
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (ps *ProvisioningScheduler) Stop() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.ticker == nil {
		return
	}
	ps.ticker.Stop()
	close(ps.stop)
	ps.wg.Wait()
	ps.ticker = nil
	slog.Info("scheduler: stopped")
}

func (ps *ProvisioningScheduler) run() {
	defer ps.wg.Done()

	// Run immediately on start
	ps.Sweep(context.Background())

	for {
		select {
		case <-ps.ticker.C:
			ps.Sweep(context.Background())
		case <-ps.stop:
			return
		}
	}
}

// Sweep provisions every user once and returns how many were processed.
// Failures are logged and skipped.
func (ps *ProvisioningScheduler) Sweep(ctx context.Context) int {
	users, err := ps.Users.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "scheduler: list users", "error", err)
		return 0
	}

	processed := 0
	for _, u := range users {
		if _, err := ps.Balances.EnsureBalances(ctx, u.ID); err != nil {
			slog.WarnContext(ctx, "scheduler: provision balances", "userId", u.ID, "error", err)
			continue
		}
		processed++
	}
	slog.DebugContext(ctx, "scheduler: sweep done", "users", processed)
	return processed
}
