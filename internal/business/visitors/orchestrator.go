package visitors

import (
	"context"
	"sync"

	"github.com/acolhimento-gf/visitantes-api/pkg/model"
)

// lookupResult is what a backfill worker reports for one visitor.
type lookupResult struct {
	visitorID string
	outcome   backfillOutcome
	reason    string
}

type backfillOutcome int

const (
	outcomeUpdated backfillOutcome = iota
	outcomeSkipped
	outcomeFailed
)

type workerFn func(ctx context.Context, v model.Visitor) lookupResult

// orchestrator runs a function over visitors with bounded concurrency.
type orchestrator struct {
	workerCount int
}

func newOrchestrator(workerCount int) *orchestrator {
	if workerCount <= 0 {
		workerCount = 4
	}
	return &orchestrator{workerCount: workerCount}
}

// run stops handing out work once ctx is cancelled. The returned channel closes
// after every started worker has finished.
func (o *orchestrator) run(ctx context.Context, items []model.Visitor, fn workerFn) <-chan lookupResult {
	out := make(chan lookupResult)

	go func() {
		defer close(out)

		jobs := make(chan model.Visitor)
		var wg sync.WaitGroup

		worker := func() {
			defer wg.Done()
			for v := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				res := fn(ctx, v)
				select {
				case out <- res:
				case <-ctx.Done():
					return
				}
			}
		}

		for i := 0; i < o.workerCount; i++ {
			wg.Add(1)
			go worker()
		}

		for _, v := range items {
			select {
			case jobs <- v:
			case <-ctx.Done():
				close(jobs)
				wg.Wait()
				return
			}
		}
		close(jobs)
		wg.Wait()
	}()

	return out
}
