package queue

import (
	"context"
	"fmt"
	"sync"
)

// Handler processes a queued task
type Handler func(ctx context.Context, data interface{}) (interface{}, error)

// Queue is a worker queue with a fixed amount of workers
type Queue struct {
	ctx     context.Context
	queue   chan job
	workers int
	handler Handler
}

type job struct {
	ctx    context.Context
	data   interface{}
	result chan jobResult
}

type jobResult struct {
	result interface{}
	err    error
}

// New creates a new Queue with the specified amount of workers.
// The queue shuts down when the given context is canceled.
func New(ctx context.Context, workers int, handler Handler) *Queue {
	return &Queue{
		ctx:     ctx,
		queue:   make(chan job),
		workers: workers,
		handler: handler,
	}
}

// Run starts the workers and blocks until they have all shut down
func (q *Queue) Run() {
	var wg sync.WaitGroup

	for i := 0; i < q.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.worker()
		}()
	}

	wg.Wait()
}

func (q *Queue) worker() {
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.queue:
			result, err := q.handler(job.ctx, job.data)
			job.result <- jobResult{
				result: result,
				err:    err,
			}
		}
	}
}

// Process adds a job to the queue, waits for it to process, and returns the result
func (q *Queue) Process(ctx context.Context, data interface{}) (interface{}, error) {
	select {
	case <-q.ctx.Done():
		return nil, fmt.Errorf("queue has been shutdown")
	default:
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resultChan := make(chan jobResult, 1)

	select {
	case <-q.ctx.Done():
		return nil, fmt.Errorf("queue has been shutdown")
	case <-ctx.Done():
		return nil, ctx.Err()
	case q.queue <- job{ctx: ctx, data: data, result: resultChan}:
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-resultChan:
		if result.err != nil {
			return nil, result.err
		}

		return result.result, nil
	}
}
