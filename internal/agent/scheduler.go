package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/platform/logger"
)

// Runner is satisfied by *Agent.
type Runner interface {
	RunOnce(ctx context.Context) (RunReport, error)
}

// Scheduler fires a Runner on a cron spec until its context is cancelled.
type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	log     *logger.Logger
	entryID cron.EntryID
	runCtx  context.Context
}

func NewScheduler(runner Runner, spec string, loc *time.Location, log *logger.Logger) (*Scheduler, error) {
	if log == nil {
		log = logger.Nop()
	}
	if loc == nil {
		loc = time.Local
	}
	cl := logger.CronLogger{L: log}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		runner: runner,
		log:    log,
		runCtx: context.Background(),
	}
	id, err := s.cron.AddFunc(spec, s.fire)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	s.entryID = id
	return s, nil
}

func (s *Scheduler) fire() {
	rep, err := s.runner.RunOnce(s.runCtx)
	switch {
	case errors.Is(err, ErrRunInProgress):
		s.log.Warn("scheduled run skipped, previous run still active")
	case err != nil:
		s.log.Error("scheduled run failed", "run_id", rep.RunID, "error", err)
	default:
		s.log.Info("scheduled run done", "run_id", rep.RunID, "selected", len(rep.Selected), "sent", rep.Sent)
	}
}

// Next is the next fire time; zero before Run starts.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entryID).Next
}

// Run starts the cron loop and blocks until ctx is done, then waits for an
// in-flight run to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.runCtx = ctx
	s.cron.Start()
	s.log.Info("scheduler started", "next_run", s.Next())

	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()
	s.log.Info("scheduler stopped")
	return nil
}
