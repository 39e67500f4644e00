package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/nexosupport/nexomfa/internal/mfa/store"
)

// Sweeper is anything holding in-memory state that needs periodic pruning,
// e.g. the memory send throttle.
type Sweeper interface {
	Sweep() int
}

// HousekeepingService periodically removes expired one-time codes, expired
// sessions and audit rows past retention, and releases timed-out lockouts.
// Validation never relies on it: expiry is always checked at use.
type HousekeepingService struct {
	Store           store.Store
	Logger          *slog.Logger
	Interval        time.Duration
	AuditRetention  time.Duration
	LockoutDuration time.Duration
	Sweepers        []Sweeper
	Now             func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		Now:      utcNow,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the worker in the background. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// CleanupReport counts what a cleanup pass removed.
type CleanupReport struct {
	OTPCodes    int64
	Sessions    int64
	AuditEvents int64
	Unlocked    int64
	Swept       int
	Failures    int
}

// Cleanup runs one pass. Each step is independent; a failing step is
// logged and the rest still run.
func (s *HousekeepingService) Cleanup(ctx context.Context) CleanupReport {
	now := s.Now()
	var rep CleanupReport

	step := func(name string, fn func() (int64, error)) int64 {
		n, err := fn()
		if err != nil {
			s.Logger.Error("housekeeping step failed", "step", name, "error", err)
			rep.Failures++
			return 0
		}
		s.Logger.Debug("housekeeping step done", "step", name, "deleted", n)
		return n
	}

	rep.OTPCodes = step("otp_codes", func() (int64, error) {
		return s.Store.OTPCodes().DeleteExpiredOTPCodes(ctx, now)
	})
	rep.Sessions = step("sessions", func() (int64, error) {
		return s.Store.Sessions().DeleteExpiredSessions(ctx, now)
	})
	if s.AuditRetention > 0 {
		rep.AuditEvents = step("audit", func() (int64, error) {
			return s.Store.Audit().DeleteAuditEventsBefore(ctx, now.Add(-s.AuditRetention))
		})
	}
	if s.LockoutDuration > 0 {
		rep.Unlocked = step("lockouts", func() (int64, error) {
			return s.Store.Enrollments().UnlockExpired(ctx, now.Add(-s.LockoutDuration), now)
		})
	}
	for _, sw := range s.Sweepers {
		rep.Swept += sw.Sweep()
	}

	s.Logger.Info("housekeeping cleanup completed",
		"otp_codes", rep.OTPCodes,
		"sessions", rep.Sessions,
		"audit_events", rep.AuditEvents,
		"unlocked", rep.Unlocked,
		"failures", rep.Failures,
	)
	return rep
}
