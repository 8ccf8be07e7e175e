// Package review decides which solved problems go into today's digest and
// records which ones were actually sent.
//
// Selection is a pure read of the store scoped to a calendar day. Recording is
// the only write path for the review log and for Problem.LastReviewed, and it
// must run only after the digest has been dispatched.
package review

import (
	"context"
	"time"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/models"
)

// CandidateSource is the read side of the problem store used for selection.
type CandidateSource interface {
	// ListUnreviewedToday returns problems with no review event on today's
	// calendar day ordered by difficulty rank, last reviewed (never first),
	// then accepted time.
	ListUnreviewedToday(ctx context.Context, today time.Time, limit int) ([]models.Problem, error)
	// ListFifoCandidates returns problems not reviewed today, oldest accepted first.
	ListFifoCandidates(ctx context.Context, today time.Time, limit int) ([]models.Problem, error)
}

// ReviewWriter is the write side of the problem store.
type ReviewWriter interface {
	AppendReviewEvent(ctx context.Context, problemID int64, at time.Time) error
	SetLastReviewed(ctx context.Context, problemID int64, at time.Time) error
}

// Transactor is implemented by stores that can apply a batch of review writes atomically.
type Transactor interface {
	InTx(ctx context.Context, fn func(ReviewWriter) error) error
}

type Store interface {
	CandidateSource
	ReviewWriter
}
