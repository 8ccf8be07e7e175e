package review

import (
	"context"
	"fmt"
	"time"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/models"
)

// Engine selects the problems for one day's digest.
type Engine struct {
	source CandidateSource
}

func NewEngine(source CandidateSource) *Engine {
	return &Engine{source: source}
}

// SelectForToday returns at most count problems for the calendar day of today:
// the difficulty-priority candidates first, padded with FIFO candidates when
// the priority pass comes up short. Problems already reviewed today are never
// returned. An empty result is not an error.
func (e *Engine) SelectForToday(ctx context.Context, count int, today time.Time) ([]models.Problem, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive, got %d", ErrInvalidArgument, count)
	}
	if today.IsZero() {
		return nil, fmt.Errorf("%w: today is required", ErrInvalidArgument)
	}

	selected, err := e.source.ListUnreviewedToday(ctx, today, count)
	if err != nil {
		return nil, fmt.Errorf("%w: priority pass: %w", ErrStoreUnavailable, err)
	}
	if len(selected) >= count {
		return selected[:count], nil
	}

	fifo, err := e.source.ListFifoCandidates(ctx, today, count)
	if err != nil {
		return nil, fmt.Errorf("%w: fifo pass: %w", ErrStoreUnavailable, err)
	}
	seen := make(map[int64]bool, len(selected))
	for _, p := range selected {
		seen[p.ID] = true
	}
	for _, p := range fifo {
		if len(selected) >= count {
			break
		}
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		selected = append(selected, p)
	}
	if selected == nil {
		selected = []models.Problem{}
	}
	return selected, nil
}
