package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

type Schedules struct {
	Deactivate string
	LogPrune   string
}

type Scheduler struct {
	cron      *cron.Cron
	jobs      *Jobs
	logger    *slog.Logger
	schedules Schedules
}

func NewScheduler(jobs *Jobs, logger *slog.Logger, schedules Schedules) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)))

	return &Scheduler{
		cron:      c,
		jobs:      jobs,
		logger:    logger,
		schedules: schedules,
	}
}

// Start registers the jobs and starts the cron scheduler. A job whose
// schedule does not parse is logged and skipped.
func (s *Scheduler) Start() {
	s.add("deactivate inactive users", s.schedules.Deactivate, s.jobs.runDeactivate)
	s.add("prune system logs", s.schedules.LogPrune, s.jobs.runPrune)
	s.cron.Start()
}

func (s *Scheduler) add(name, spec string, fn func()) {
	if _, err := s.cron.AddFunc(spec, fn); err != nil {
		s.logger.Error("failed to schedule job", "job", name, "schedule", spec, "error", err)
		return
	}
	s.logger.Info("scheduled job", "job", name, "schedule", spec)
}

// Stop stops the scheduler; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Entries reports how many jobs were registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
