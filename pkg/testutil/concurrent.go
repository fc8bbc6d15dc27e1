package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/platform/sentinel"
)

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes int32
	Errors    int32
	Conflicts int32
	NotFounds int32
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Errors + r.Conflicts + r.NotFounds
}

// RunConcurrent runs fn in parallel goroutines released together and tallies
// the outcomes. Already-revoked and already-exists count as conflicts.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var wg sync.WaitGroup
	var successes, errs, conflicts, notFounds atomic.Int32
	start := make(chan struct{})

	for i := range goroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			err := fn(idx)
			switch {
			case err == nil:
				successes.Add(1)
			case isConflict(err):
				conflicts.Add(1)
			case isNotFound(err):
				notFounds.Add(1)
			default:
				errs.Add(1)
			}
		}(i)
	}

	close(start)
	wg.Wait()

	return &ConcurrentResult{
		Successes: successes.Load(),
		Errors:    errs.Load(),
		Conflicts: conflicts.Load(),
		NotFounds: notFounds.Load(),
	}
}

func isConflict(err error) bool {
	return errors.Is(err, sentinel.ErrAlreadyExists) ||
		errors.Is(err, sentinel.ErrInvalidState) ||
		dErrors.HasCode(err, dErrors.CodeAlreadyRevoked) ||
		dErrors.HasCode(err, dErrors.CodeConflict)
}

func isNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound) ||
		dErrors.HasCode(err, dErrors.CodeUnknownCredential) ||
		dErrors.HasCode(err, dErrors.CodeNotFound)
}
