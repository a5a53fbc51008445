package dating

import (
	"context"
	"sync"
	"time"

	"github.com/imadgeboyega/kiekky-matchmaker/internal/common/logger"
)

// Jobs are the maintenance tasks the scheduler runs.
type Jobs interface {
	GenerateDailyHotpicks(ctx context.Context) error
	CleanupExpiredHotpicks(ctx context.Context) error
}

type Scheduler struct {
	jobs Jobs
	log  logger.Logger
	now  func() time.Time
	wg   sync.WaitGroup
}

func NewScheduler(jobs Jobs, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Scheduler{
		jobs: jobs,
		log:  log.WithFields(map[string]interface{}{"component": "scheduler"}),
		now:  time.Now,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	// Daily hotpicks generation at 9 AM
	s.goDaily(ctx, "daily_hotpicks", 9, 0, s.jobs.GenerateDailyHotpicks)

	// Cleanup expired hotpicks daily at 2 AM
	s.goDaily(ctx, "hotpick_cleanup", 2, 0, s.jobs.CleanupExpiredHotpicks)
}

// Wait blocks until every task loop has returned after ctx is cancelled.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) goDaily(ctx context.Context, name string, hour, minute int, task func(context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runDaily(ctx, name, hour, minute, task)
	}()
}

func (s *Scheduler) runDaily(ctx context.Context, name string, hour, minute int, task func(context.Context) error) {
	for {
		now := s.now()
		timer := time.NewTimer(nextRun(now, hour, minute).Sub(now))

		select {
		case <-timer.C:
			s.runTask(ctx, name, task)
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

func (s *Scheduler) runTask(ctx context.Context, name string, task func(context.Context) error) {
	start := time.Now()
	fields := map[string]interface{}{"task": name}

	if err := task(ctx); err != nil {
		s.log.WithError(err).Error("scheduled task failed", fields)
		return
	}

	fields["elapsed_ms"] = time.Since(start).Milliseconds()
	s.log.Info("scheduled task completed", fields)
}

// nextRun returns the next instant strictly after now at hour:minute local
// time.
func nextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
