package explain

import (
	"context"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/models"
	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/platform/logger"
)

// ExplanationStore persists generated explanations.
type ExplanationStore interface {
	SetExplanation(ctx context.Context, id int64, explanation string) error
}

// Backfill fills in a missing explanation for every problem in place and
// persists it. A failed write is logged; the problem keeps the generated text
// for this run and is retried on the next one.
func Backfill(ctx context.Context, store ExplanationStore, problems []models.Problem, log *logger.Logger) int {
	if log == nil {
		log = logger.Nop()
	}
	filled := 0
	for i := range problems {
		p := &problems[i]
		if p.Explanation != nil && *p.Explanation != "" {
			continue
		}
		text := Explain(p.Code, p.Language)
		p.Explanation = &text
		filled++
		if store == nil {
			continue
		}
		if err := store.SetExplanation(ctx, p.ID, text); err != nil {
			log.Warn("persist explanation failed", "problem_id", p.ID, "slug", p.Slug, "error", err)
		}
	}
	return filled
}
