// Package scheduler runs the inventory reconciliation on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/library/internal/lending"
	"github.com/mrlokans/library/internal/settingsstore"
)

// Reconciler runs a full inventory sweep.
type Reconciler interface {
	ReconcileAll(ctx context.Context) (*lending.ReconcileResult, error)
}

// ReconcileRecorder records the outcome of a run.
type ReconcileRecorder interface {
	LogReconcile(userID uint, bookID string, checked, corrected int, err error)
}

// ReconcileSettings provides the schedule and keeps the last run status.
type ReconcileSettings interface {
	GetReconcileConfig() settingsstore.ReconcileConfig
	SetReconcileStatus(status, message string) error
}

// ReconcileScheduler manages periodic inventory reconciliation.
type ReconcileScheduler struct {
	reconciler Reconciler
	settings   ReconcileSettings
	recorder   ReconcileRecorder

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	runMu     sync.Mutex
	isRunning bool
	runCtx    context.Context
	cancel    context.CancelFunc
}

// NewReconcileScheduler creates a scheduler. recorder may be nil.
func NewReconcileScheduler(reconciler Reconciler, settings ReconcileSettings, recorder ReconcileRecorder) *ReconcileScheduler {
	return &ReconcileScheduler{
		reconciler: reconciler,
		settings:   settings,
		recorder:   recorder,
	}
}

// Start schedules the reconciliation if it is enabled. The scheduler stops
// when ctx is cancelled.
func (s *ReconcileScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	cfg := s.settings.GetReconcileConfig()
	if !cfg.Enabled {
		log.Printf("[RECONCILE] Scheduler disabled")
		return nil
	}

	if err := settingsstore.ValidateCronSchedule(cfg.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", cfg.Schedule, err)
	}

	s.cron = cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)))
	s.runCtx, s.cancel = context.WithCancel(ctx)
	runCtx := s.runCtx

	entryID, err := s.cron.AddFunc(cfg.Schedule, func() {
		s.run(runCtx)
	})
	if err != nil {
		s.cancel()
		return fmt.Errorf("failed to schedule reconciliation: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := settingsstore.GetNextRunTime(cfg.Schedule)
	log.Printf("[RECONCILE] Scheduler started with schedule '%s' (%s). Next run: %v",
		cfg.Schedule, settingsstore.GetCronDescription(cfg.Schedule), nextRun)

	go func() {
		<-runCtx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.runCtx == runCtx {
			s.stopLocked()
		}
	}()

	return nil
}

// Stop stops accepting new runs and waits for a running one to finish.
func (s *ReconcileScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *ReconcileScheduler) stopLocked() {
	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.cancel()
	s.isRunning = false

	log.Printf("[RECONCILE] Scheduler stopped")
}

// Reschedule applies a changed schedule.
func (s *ReconcileScheduler) Reschedule(ctx context.Context) error {
	s.Stop()
	return s.Start(ctx)
}

// RunNow performs one reconciliation synchronously, regardless of whether
// the schedule is enabled.
func (s *ReconcileScheduler) RunNow(ctx context.Context) (*lending.ReconcileResult, error) {
	return s.run(ctx)
}

func (s *ReconcileScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next run is due, or nil when stopped.
func (s *ReconcileScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	return &next
}

// run performs one sweep. Runs never overlap.
func (s *ReconcileScheduler) run(ctx context.Context) (*lending.ReconcileResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	log.Printf("[RECONCILE] Starting inventory reconciliation")
	start := time.Now()

	result, err := s.reconciler.ReconcileAll(ctx)
	checked, corrected := 0, 0
	if result != nil {
		checked, corrected = result.Checked, result.Corrected
	}

	status := "success"
	message := fmt.Sprintf("Checked %d books, corrected %d in %v", checked, corrected, time.Since(start).Round(time.Millisecond))
	if err != nil {
		status = "failed"
		message = fmt.Sprintf("%s: %v", message, err)
	}
	log.Printf("[RECONCILE] %s", message)

	if setErr := s.settings.SetReconcileStatus(status, message); setErr != nil {
		log.Printf("[RECONCILE] Failed to save run status: %v", setErr)
	}
	if s.recorder != nil {
		s.recorder.LogReconcile(0, "", checked, corrected, err)
	}
	return result, err
}
