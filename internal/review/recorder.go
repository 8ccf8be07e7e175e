package review

import (
	"context"
	"fmt"
	"time"
)

// Recorder commits the outcome of a dispatched digest.
type Recorder struct {
	store ReviewWriter
}

// NewRecorder wraps store. If store also implements Transactor every batch is
// applied in a single transaction.
func NewRecorder(store ReviewWriter) *Recorder {
	return &Recorder{store: store}
}

// RecordReviewed appends one review event per id and moves each problem's
// last reviewed time to at. Call it only after the digest containing exactly
// these ids was sent. Re-running with the same ids is safe.
func (r *Recorder) RecordReviewed(ctx context.Context, ids []int64, at time.Time) error {
	if at.IsZero() {
		return fmt.Errorf("%w: review time is required", ErrInvalidArgument)
	}
	if len(ids) == 0 {
		return nil
	}
	ids = dedupe(ids)

	if tx, ok := r.store.(Transactor); ok {
		var failed int64
		err := tx.InTx(ctx, func(w ReviewWriter) error {
			for _, id := range ids {
				if err := recordOne(ctx, w, id, at); err != nil {
					failed = id
					return err
				}
			}
			return nil
		})
		if err != nil {
			// rolled back: nothing was applied
			return &PartialWriteError{Failed: failed, Err: err}
		}
		return nil
	}

	applied := make([]int64, 0, len(ids))
	for _, id := range ids {
		if err := recordOne(ctx, r.store, id, at); err != nil {
			return &PartialWriteError{Applied: applied, Failed: id, Err: err}
		}
		applied = append(applied, id)
	}
	return nil
}

func recordOne(ctx context.Context, w ReviewWriter, id int64, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := w.AppendReviewEvent(ctx, id, at); err != nil {
		return err
	}
	return w.SetLastReviewed(ctx, id, at)
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
