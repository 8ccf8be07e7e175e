package leetcode

import (
	"context"
	"errors"
	"fmt"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/models"
	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/platform/logger"
)

// Source is the part of Client the syncer needs.
type Source interface {
	RecentAccepted(ctx context.Context, limit int) ([]models.Submission, error)
	Question(ctx context.Context, slug string) (*Question, error)
	SolutionCode(ctx context.Context, slug string) (*Solution, error)
}

// ProblemStore is where synced problems land.
type ProblemStore interface {
	UpsertProblem(ctx context.Context, p models.Problem) (int64, error)
	GetProblemBySlug(ctx context.Context, slug string) (*models.Problem, error)
}

// SyncReport summarises one ingestion pass.
type SyncReport struct {
	Fetched int
	Added   int
	Updated int
	Skipped int
	Failed  int
}

type Syncer struct {
	source   Source
	store    ProblemStore
	log      *logger.Logger
	limit    int
	notFound error
}

// NewSyncer wires a source to a store. notFound is the store's "no such
// problem" sentinel so existing rows can be told apart from lookup failures.
func NewSyncer(source Source, store ProblemStore, log *logger.Logger, limit int, notFound error) *Syncer {
	if log == nil {
		log = logger.Nop()
	}
	return &Syncer{source: source, store: store, log: log, limit: limit, notFound: notFound}
}

// Sync ingests recent accepted submissions. Problems already stored with code
// are left alone; new ones get their details and, when possible, their code.
// A failing submission list fails the sync; per-problem failures are logged.
func (s *Syncer) Sync(ctx context.Context) (SyncReport, error) {
	var rep SyncReport
	subs, err := s.source.RecentAccepted(ctx, s.limit)
	if err != nil {
		return rep, fmt.Errorf("fetch submissions: %w", err)
	}
	rep.Fetched = len(subs)

	// The list is newest first; the oldest accepted time per slug wins.
	order := make([]string, 0, len(subs))
	bySlug := make(map[string]models.Submission, len(subs))
	for _, sub := range subs {
		prev, ok := bySlug[sub.Slug]
		if !ok {
			order = append(order, sub.Slug)
			bySlug[sub.Slug] = sub
			continue
		}
		if sub.Timestamp.Before(prev.Timestamp) {
			bySlug[sub.Slug] = sub
		}
	}

	for _, slug := range order {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		sub := bySlug[slug]
		existing, err := s.store.GetProblemBySlug(ctx, slug)
		switch {
		case err == nil:
		case s.notFound != nil && errors.Is(err, s.notFound):
			existing = nil
		default:
			rep.Failed++
			s.log.Warn("lookup problem failed", "slug", slug, "error", err)
			continue
		}
		if existing != nil && existing.Code != "" {
			rep.Skipped++
			continue
		}

		p, err := s.buildProblem(ctx, sub)
		if err != nil {
			rep.Failed++
			s.log.Warn("fetch problem details failed", "slug", slug, "error", err)
			continue
		}
		if _, err := s.store.UpsertProblem(ctx, p); err != nil {
			rep.Failed++
			s.log.Warn("store problem failed", "slug", slug, "error", err)
			continue
		}
		if existing == nil {
			rep.Added++
		} else {
			rep.Updated++
		}
	}

	s.log.Info("sync finished",
		"fetched", rep.Fetched, "added", rep.Added, "updated", rep.Updated,
		"skipped", rep.Skipped, "failed", rep.Failed)
	return rep, nil
}

func (s *Syncer) buildProblem(ctx context.Context, sub models.Submission) (models.Problem, error) {
	q, err := s.source.Question(ctx, sub.Slug)
	if err != nil {
		return models.Problem{}, err
	}
	p := models.Problem{
		Title:      q.Title,
		Slug:       sub.Slug,
		Difficulty: q.Difficulty,
		Topics:     models.JoinTopics(q.Topics),
		Statement:  q.Statement,
		Language:   sub.Language,
		AcceptedAt: sub.Timestamp,
	}
	if p.Title == "" {
		p.Title = sub.Title
	}

	sol, err := s.source.SolutionCode(ctx, sub.Slug)
	switch {
	case err == nil:
		p.Code = sol.Code
		if sol.Language != "" {
			p.Language = sol.Language
		}
	case errors.Is(err, ErrNoSession):
	default:
		s.log.Warn("fetch solution code failed", "slug", sub.Slug, "error", err)
	}
	return p, nil
}
