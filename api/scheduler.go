/*
scheduler.go - Automated day-close scheduler

PURPOSE:
  Periodically checks whether the business day has rolled over since the
  last shift close and, when it has, closes the previous day automatically:
  archiving the report, clearing the open collections, and notifying the
  operator.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - The closing engine itself decides whether a close is due, so a tick
    on an already-closed day is a cheap no-op
  - Automatic closes are tagged as such on the archived report

CONFIGURATION:
  - CheckInterval: How often to check (default: 5 minutes)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewAutoCloseScheduler(engine, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: CloseDay endpoint (manual close)
  - closing/closing.go: Engine.AutoCloseIfNeeded
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/trotech/dealer-core/closing"
)

// AutoCloseScheduler closes the previous business day unattended.
type AutoCloseScheduler struct {
	Engine        *closing.Engine
	CheckInterval time.Duration
	Enabled       bool

	log    *zap.Logger
	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewAutoCloseScheduler creates a new scheduler.
func NewAutoCloseScheduler(engine *closing.Engine, log *zap.Logger) *AutoCloseScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AutoCloseScheduler{
		Engine:        engine,
		CheckInterval: 5 * time.Minute,
		Enabled:       true,
		log:           log,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (as *AutoCloseScheduler) Start() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if !as.Enabled {
		as.log.Info("auto-close scheduler disabled, not starting")
		return
	}

	as.ticker = time.NewTicker(as.CheckInterval)
	as.wg.Add(1)

	go as.run()

	as.log.Info("auto-close scheduler started", zap.Duration("interval", as.CheckInterval))
}

// Stop stops the scheduler.
func (as *AutoCloseScheduler) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.ticker != nil {
		as.ticker.Stop()
		close(as.stop)
		as.wg.Wait()
		as.log.Info("auto-close scheduler stopped")
	}
}

func (as *AutoCloseScheduler) run() {
	defer as.wg.Done()

	// Run immediately on start
	as.check()

	for {
		select {
		case <-as.ticker.C:
			as.check()
		case <-as.stop:
			return
		}
	}
}

func (as *AutoCloseScheduler) check() {
	ctx := context.Background()

	report, err := as.Engine.AutoCloseIfNeeded(ctx)
	if err != nil {
		as.log.Error("automatic day close failed", zap.Error(err))
		return
	}
	if report != nil {
		as.log.Info("day closed automatically",
			zap.String("report_id", report.ID),
			zap.String("business_date", report.Date.String()),
			zap.String("gross_revenue", report.GrossRevenue.StringFixed(2)))
	}
}

// RunNow triggers an immediate check (for testing/admin).
func (as *AutoCloseScheduler) RunNow() {
	as.check()
}
