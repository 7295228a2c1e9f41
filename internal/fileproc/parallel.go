// Package fileproc provides concurrent processing utilities for
// per-file and per-pair stage work. Units of work are independent and
// produce immutable results, so no coordination beyond the result
// append is needed.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// ProcessingError represents an error that occurred while processing one unit.
type ProcessingError struct {
	Key string
	Err error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

// ProcessingErrors collects multiple processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(key string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Key: key, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d units failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for
// worker count. 2x suits the mixed CPU and I/O stage workloads.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each unit is processed.
type ProgressFunc func()

// Map processes items in parallel and collects the results in
// arbitrary order. Errors from individual items are silently skipped;
// use MapCollectErrors for error handling.
func Map[T, R any](items []T, fn func(T) (R, error)) []R {
	return MapN(items, 0, fn, nil)
}

// MapWithProgress processes items in parallel with a progress callback.
func MapWithProgress[T, R any](items []T, fn func(T) (R, error), onProgress ProgressFunc) []R {
	return MapN(items, 0, fn, onProgress)
}

// MapN processes items with a configurable worker count.
// If maxWorkers is <= 0, defaults to 2x NumCPU.
func MapN[T, R any](items []T, maxWorkers int, fn func(T) (R, error), onProgress ProgressFunc) []R {
	if len(items) == 0 {
		return nil
	}
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	results := make([]R, 0, len(items))
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(maxWorkers)
	for _, item := range items {
		p.Go(func() {
			result, err := fn(item)
			if onProgress != nil {
				onProgress()
			}
			if err != nil {
				return
			}
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		})
	}
	p.Wait()

	return results
}

// MapCollectErrors processes items in parallel and collects all errors.
// keyFn derives the error key (path, repo URL) from the item.
func MapCollectErrors[T, R any](items []T, keyFn func(T) string, fn func(T) (R, error), onProgress ProgressFunc) ([]R, *ProcessingErrors) {
	if len(items) == 0 {
		return nil, nil
	}

	maxWorkers := runtime.NumCPU() * DefaultWorkerMultiplier
	results := make([]R, 0, len(items))
	errs := &ProcessingErrors{}
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(maxWorkers)
	for _, item := range items {
		p.Go(func() {
			result, err := fn(item)
			if onProgress != nil {
				onProgress()
			}
			if err != nil {
				errs.Add(keyFn(item), err)
				return
			}
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		})
	}
	p.Wait()

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}

// MapWithContext processes items in parallel with cancellation support.
// Returns results collected before cancellation and any errors
// including context errors.
func MapWithContext[T, R any](ctx context.Context, items []T, keyFn func(T) string, fn func(context.Context, T) (R, error), onProgress ProgressFunc) ([]R, *ProcessingErrors) {
	if len(items) == 0 {
		return nil, nil
	}

	maxWorkers := runtime.NumCPU() * DefaultWorkerMultiplier
	results := make([]R, 0, len(items))
	errs := &ProcessingErrors{}
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(maxWorkers).WithContext(ctx)
	for _, item := range items {
		p.Go(func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				errs.Add(keyFn(item), ctx.Err())
				return ctx.Err()
			default:
			}

			result, err := fn(ctx, item)
			if onProgress != nil {
				onProgress()
			}
			if err != nil {
				errs.Add(keyFn(item), err)
				return nil // individual failures don't stop the pool
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}
	_ = p.Wait() // context errors are already captured in errs

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}
