// Package agent runs the daily revision cycle: sync, select, explain,
// dispatch, record.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/explain"
	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/leetcode"
	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/models"
	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/platform/logger"
	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/review"
)

// ErrRunInProgress is returned when RunOnce is called while another run holds the lock.
var ErrRunInProgress = errors.New("agent: run already in progress")

// Store is everything a run reads and writes.
type Store interface {
	review.Store
	explain.ExplanationStore
}

type Syncer interface {
	Sync(ctx context.Context) (leetcode.SyncReport, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, day time.Time, problems []models.Problem) error
}

type Options struct {
	Count      int
	Location   *time.Location
	SyncOnRun  bool
	RunTimeout time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// RunReport describes what one run did.
type RunReport struct {
	RunID     string
	Day       time.Time
	Sync      *leetcode.SyncReport
	Selected  []models.Problem
	Explained int
	Sent      bool
	Recorded  bool
}

type Agent struct {
	store      Store
	engine     *review.Engine
	recorder   *review.Recorder
	syncer     Syncer
	dispatcher Dispatcher
	log        *logger.Logger
	opts       Options
	mu         sync.Mutex
}

// New builds an agent. syncer may be nil when no LeetCode account is configured.
func New(store Store, syncer Syncer, dispatcher Dispatcher, log *logger.Logger, opts Options) *Agent {
	if log == nil {
		log = logger.Nop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Agent{
		store:      store,
		engine:     review.NewEngine(store),
		recorder:   review.NewRecorder(store),
		syncer:     syncer,
		dispatcher: dispatcher,
		log:        log,
		opts:       opts,
	}
}

func (a *Agent) now() time.Time {
	return a.opts.Now().In(a.opts.Location)
}

// RunOnce performs one daily cycle. Reviews are recorded only after the
// digest was accepted by the transport; any earlier failure leaves the store
// untouched apart from refreshed problems and cached explanations.
func (a *Agent) RunOnce(ctx context.Context) (RunReport, error) {
	if !a.mu.TryLock() {
		return RunReport{}, ErrRunInProgress
	}
	defer a.mu.Unlock()

	if a.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.RunTimeout)
		defer cancel()
	}

	rep := RunReport{RunID: uuid.NewString(), Day: a.now()}
	log := a.log.With("run_id", rep.RunID)
	log.Info("revision run started", "day", rep.Day.Format("2006-01-02"), "count", a.opts.Count)

	if a.syncer != nil && a.opts.SyncOnRun {
		sr, err := a.syncer.Sync(ctx)
		if err != nil {
			log.Warn("sync failed, using stored problems", "error", err)
		} else {
			rep.Sync = &sr
		}
	}

	selected, err := a.engine.SelectForToday(ctx, a.opts.Count, rep.Day)
	if err != nil {
		log.Error("selection failed, skipping today", "error", err)
		return rep, fmt.Errorf("select problems: %w", err)
	}
	rep.Selected = selected
	if len(selected) == 0 {
		log.Info("no problems to review today")
		return rep, nil
	}

	rep.Explained = explain.Backfill(ctx, a.store, selected, log)

	if err := a.dispatcher.Dispatch(ctx, rep.Day, selected); err != nil {
		log.Error("dispatch failed, nothing recorded", "error", err)
		return rep, fmt.Errorf("dispatch digest: %w", err)
	}
	rep.Sent = true

	// The digest is out; recording must not be cut short by the run deadline.
	recordCtx := context.WithoutCancel(ctx)
	ids := make([]int64, len(selected))
	for i, p := range selected {
		ids[i] = p.ID
	}
	err = a.recorder.RecordReviewed(recordCtx, ids, rep.Day)
	if errors.Is(err, review.ErrPartialWrite) {
		log.Warn("recording partially failed, retrying", "error", err)
		err = a.recorder.RecordReviewed(recordCtx, ids, rep.Day)
	}
	if err != nil {
		log.Error("recording failed after dispatch", "problem_ids", ids, "error", err)
		return rep, fmt.Errorf("record reviews: %w", err)
	}
	rep.Recorded = true

	log.Info("revision run finished", "problem_ids", ids)
	return rep, nil
}

// Preview returns what a run right now would send, without sending or
// recording anything.
func (a *Agent) Preview(ctx context.Context) ([]models.Problem, time.Time, error) {
	day := a.now()
	selected, err := a.engine.SelectForToday(ctx, a.opts.Count, day)
	if err != nil {
		return nil, day, fmt.Errorf("select problems: %w", err)
	}
	explain.Backfill(ctx, a.store, selected, a.log)
	return selected, day, nil
}
