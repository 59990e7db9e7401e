// Package parallel runs a function over a list of arguments with a bounded
// number of goroutines.
package parallel

import (
	"context"
	"runtime"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Run calls fn once per element of args using at most maxWorkers goroutines
// (all CPUs when maxWorkers <= 0) and returns the results in completion
// order, not submission order.
//
// The first error stops tasks that have not started yet and is returned
// unchanged once every running task has finished. Results of a failed run
// are discarded.
func Run[A, R any](fn func(A) (R, error), args []A, maxWorkers int) ([]R, error) {
	if len(args) == 0 {
		return []R{}, nil
	}

	workers := maxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(args) {
		workers = len(args)
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)

	var mu sync.Mutex
	results := make([]R, 0, len(args))

	for _, arg := range args {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			r, err := fn(arg)
			if err != nil {
				return err
			}

			mu.Lock()
			results = append(results, r)
			done := len(results)
			mu.Unlock()

			log.WithFields(log.Fields{
				"done":  done,
				"total": len(args),
			}).Debug("Task completed")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
