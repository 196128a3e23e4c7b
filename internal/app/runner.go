package service

import (
	"context"

	"github.com/okian/hoopsrank/internal/adapters/mq/worker"
	"github.com/okian/hoopsrank/internal/domain/scoring"
)

// puntRunner fans punt variants out over the worker pool. Batches never
// exceed the queue capacity so a run cannot be refused for size alone.
type puntRunner struct {
	pool  *worker.Pool
	batch int
}

func (r *puntRunner) RunPunts(ctx context.Context, sets []scoring.PuntSet, rate func(context.Context, scoring.PuntSet) (scoring.PuntRating, error)) ([]scoring.PuntRating, error) {
	out := make([]scoring.PuntRating, len(sets))
	batch := max(r.batch, 1)
	for lo := 0; lo < len(sets); lo += batch {
		hi := min(lo+batch, len(sets))
		jobs := make([]worker.Job, 0, hi-lo)
		for i := lo; i < hi; i++ {
			jobs = append(jobs, worker.Job{
				Name: sets[i].Key(),
				Run: func(ctx context.Context) error {
					pr, err := rate(ctx, sets[i])
					if err != nil {
						return err
					}
					out[i] = pr
					return nil
				},
			})
		}
		if err := r.pool.Do(ctx, jobs); err != nil {
			return nil, err
		}
	}
	return out, nil
}
