package review

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/models"
)

// memStore is an in-memory Store with the same ordering rules as the SQLite store.
type memStore struct {
	problems map[int64]*models.Problem
	events   []models.ReviewEvent

	failUnreviewed error
	failFifo       error
	failSetOn      int64 // SetLastReviewed fails for this id when non-zero
	calls          int
}

func newMemStore(problems ...models.Problem) *memStore {
	s := &memStore{problems: make(map[int64]*models.Problem)}
	for i := range problems {
		p := problems[i]
		s.problems[p.ID] = &p
	}
	return s
}

func (s *memStore) reviewedOn(id int64, today time.Time) bool {
	start, end := models.DayBounds(today)
	for _, ev := range s.events {
		if ev.ProblemID == id && !ev.ReviewedAt.Before(start) && ev.ReviewedAt.Before(end) {
			return true
		}
	}
	return false
}

func (s *memStore) pool(today time.Time) []models.Problem {
	var out []models.Problem
	for _, p := range s.problems {
		if !s.reviewedOn(p.ID, today) {
			out = append(out, *p)
		}
	}
	return out
}

func limitTo(ps []models.Problem, limit int) []models.Problem {
	if len(ps) > limit {
		return ps[:limit]
	}
	return ps
}

func (s *memStore) ListUnreviewedToday(_ context.Context, today time.Time, limit int) ([]models.Problem, error) {
	s.calls++
	if s.failUnreviewed != nil {
		return nil, s.failUnreviewed
	}
	ps := s.pool(today)
	sort.Slice(ps, func(i, j int) bool {
		a, b := ps[i], ps[j]
		if a.Difficulty.Rank() != b.Difficulty.Rank() {
			return a.Difficulty.Rank() < b.Difficulty.Rank()
		}
		if (a.LastReviewed == nil) != (b.LastReviewed == nil) {
			return a.LastReviewed == nil
		}
		if a.LastReviewed != nil && !a.LastReviewed.Equal(*b.LastReviewed) {
			return a.LastReviewed.Before(*b.LastReviewed)
		}
		if !a.AcceptedAt.Equal(b.AcceptedAt) {
			return a.AcceptedAt.Before(b.AcceptedAt)
		}
		return a.ID < b.ID
	})
	return limitTo(ps, limit), nil
}

func (s *memStore) ListFifoCandidates(_ context.Context, today time.Time, limit int) ([]models.Problem, error) {
	s.calls++
	if s.failFifo != nil {
		return nil, s.failFifo
	}
	ps := s.pool(today)
	sort.Slice(ps, func(i, j int) bool {
		if !ps[i].AcceptedAt.Equal(ps[j].AcceptedAt) {
			return ps[i].AcceptedAt.Before(ps[j].AcceptedAt)
		}
		return ps[i].ID < ps[j].ID
	})
	return limitTo(ps, limit), nil
}

func (s *memStore) AppendReviewEvent(_ context.Context, id int64, at time.Time) error {
	if _, ok := s.problems[id]; !ok {
		return fmt.Errorf("problem %d not found", id)
	}
	s.events = append(s.events, models.ReviewEvent{ID: int64(len(s.events) + 1), ProblemID: id, ReviewedAt: at})
	return nil
}

func (s *memStore) SetLastReviewed(_ context.Context, id int64, at time.Time) error {
	if s.failSetOn != 0 && id == s.failSetOn {
		return errors.New("disk full")
	}
	p, ok := s.problems[id]
	if !ok {
		return fmt.Errorf("problem %d not found", id)
	}
	if p.LastReviewed == nil || p.LastReviewed.Before(at) {
		t := at
		p.LastReviewed = &t
	}
	return nil
}

func (s *memStore) eventCount(id int64) int {
	n := 0
	for _, ev := range s.events {
		if ev.ProblemID == id {
			n++
		}
	}
	return n
}

// txStore adds snapshot/rollback transactions on top of memStore.
type txStore struct {
	*memStore
	txCount int
}

func (s *txStore) InTx(_ context.Context, fn func(ReviewWriter) error) error {
	s.txCount++
	events := append([]models.ReviewEvent(nil), s.events...)
	last := make(map[int64]*time.Time, len(s.problems))
	for id, p := range s.problems {
		last[id] = p.LastReviewed
	}
	if err := fn(s.memStore); err != nil {
		s.events = events
		for id, p := range s.problems {
			p.LastReviewed = last[id]
		}
		return err
	}
	return nil
}
