package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/outagewatch/internal/monitor"
)

// CycleRunner runs one poll cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context) monitor.CycleReport
}

// Config controls the cadence of the poll loop.
type Config struct {
	Interval     time.Duration
	CycleTimeout time.Duration
	RunOnStart   bool
}

// Scheduler drives the poll cycle on a fixed interval. Only one cycle runs
// at a time: an activation that arrives while a cycle is still running is
// skipped rather than queued, and the next activation is always computed
// from the current time so a stalled process never fires catch-up cycles.
type Scheduler struct {
	ctx    context.Context
	runner CycleRunner
	cfg    Config
	logger *logrus.Logger
	cron   *cron.Cron
	job    cron.Job
	// startup tracks the run-on-start cycle, which cron does not know about
	startup sync.WaitGroup
}

func NewScheduler(ctx context.Context, runner CycleRunner, cfg Config, logger *logrus.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(logger)
	s := &Scheduler{
		ctx:    ctx,
		runner: runner,
		cfg:    cfg,
		logger: logger,
		cron:   cron.New(cron.WithLogger(cronLogger)),
	}
	s.job = cron.NewChain(
		cron.SkipIfStillRunning(cronLogger),
		cron.Recover(cronLogger),
	).Then(cron.FuncJob(s.collectData))
	return s
}

// Start the scheduler
func (s *Scheduler) Start() error {
	if s.cfg.Interval < time.Second {
		return fmt.Errorf("poll interval must be at least 1s, got %s", s.cfg.Interval)
	}

	s.cron.Schedule(cron.Every(s.cfg.Interval), s.job)
	s.cron.Start()

	if s.cfg.RunOnStart {
		s.startup.Add(1)
		go func() {
			defer s.startup.Done()
			s.job.Run()
		}()
	}

	s.logger.WithFields(logrus.Fields{
		"interval":     s.cfg.Interval.String(),
		"run_on_start": s.cfg.RunOnStart,
	}).Info("Poll scheduler started")
	return nil
}

// collectData runs a single cycle under a bounded context
func (s *Scheduler) collectData() {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.CycleTimeout)
	defer cancel()

	report := s.runner.RunCycle(ctx)

	s.logger.WithFields(logrus.Fields{
		"cycle_id":     report.ID,
		"online":       report.Online,
		"outages":      report.OutageCount,
		"refreshed":    report.Refreshed,
		"notification": report.Notification != nil,
		"duration":     report.Duration.String(),
	}).Info("Poll cycle finished")
}

// Stop the scheduler and wait for a running cycle to finish, or for ctx to
// expire.
func (s *Scheduler) Stop(ctx context.Context) {
	cronCtx := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronCtx.Done()
		s.startup.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("Timed out waiting for the running poll cycle to finish")
	}
}
