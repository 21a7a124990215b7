package resilience

import (
	"context"
	"sync"
)

// TaskGroup runs context-aware tasks on a private WorkerPool.
// The first task error cancels the group context; tasks that have not
// started yet are skipped.
type TaskGroup struct {
	pool   *WorkerPool
	ctx    context.Context
	cancel context.CancelFunc

	wg   sync.WaitGroup
	once sync.Once
	err  error
}

// NewTaskGroup creates a group with the given concurrency. queueSize bounds
// how many tasks may wait for a worker before Go blocks.
func NewTaskGroup(ctx context.Context, workers, queueSize int) *TaskGroup {
	groupCtx, cancel := context.WithCancel(ctx)
	return &TaskGroup{
		pool:   NewWorkerPool(workers, queueSize),
		ctx:    groupCtx,
		cancel: cancel,
	}
}

// Workers returns the group's concurrency limit.
func (g *TaskGroup) Workers() int {
	return g.pool.Size()
}

// Go schedules task. It returns an error only when the task could not be queued.
func (g *TaskGroup) Go(task func(ctx context.Context) error) error {
	g.wg.Add(1)
	err := g.pool.Submit(g.ctx, func() {
		defer g.wg.Done()
		if err := g.ctx.Err(); err != nil {
			g.fail(err)
			return
		}
		if err := task(g.ctx); err != nil {
			g.fail(err)
		}
	})
	if err != nil {
		g.wg.Done()
		g.fail(err)
	}
	return err
}

// Wait blocks until every queued task has finished, releases the workers and
// returns the first error.
func (g *TaskGroup) Wait() error {
	g.wg.Wait()
	g.pool.Close()
	g.pool.Wait()
	g.cancel()
	return g.err
}

func (g *TaskGroup) fail(err error) {
	g.once.Do(func() {
		g.err = err
		g.cancel()
	})
}
