package review

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the review package.
// Use errors.Is to check: errors.Is(err, review.ErrStoreUnavailable)
var (
	ErrInvalidArgument  = errors.New("review: invalid argument")
	ErrStoreUnavailable = errors.New("review: problem store unavailable")
	ErrPartialWrite     = errors.New("review: partial write")
)

// PartialWriteError reports a non-transactional batch that stopped partway.
// Retrying the whole batch is safe.
type PartialWriteError struct {
	Applied []int64
	Failed  int64
	Err     error
}

func (e *PartialWriteError) Error() string {
	applied := make([]string, len(e.Applied))
	for i, id := range e.Applied {
		applied[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("review: partial write: problem %d failed after [%s]: %v",
		e.Failed, strings.Join(applied, ","), e.Err)
}

func (e *PartialWriteError) Unwrap() []error {
	return []error{ErrPartialWrite, e.Err}
}
