package ai

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Queue serializes external AI calls: a single worker drains submissions in
// FIFO order and a rate limiter enforces a fixed delay between consecutive
// calls. At most one request is in flight at a time.
type Queue struct {
	tasks   chan queueTask
	limiter *rate.Limiter
	done    chan struct{}
}

type queueTask struct {
	run      func()
	finished chan struct{}
}

func NewQueue(delay time.Duration) *Queue {
	if delay <= 0 {
		delay = time.Second
	}
	return &Queue{
		tasks:   make(chan queueTask, 16),
		limiter: rate.NewLimiter(rate.Every(delay), 1),
		done:    make(chan struct{}),
	}
}

func (q *Queue) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case task := <-q.tasks:
				if err := q.limiter.Wait(ctx); err != nil {
					close(task.finished)
					return
				}
				task.run()
				close(task.finished)
			case <-q.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (q *Queue) Stop() { close(q.done) }

// Do submits fn and blocks until it has run or ctx expires. fn itself must
// honor ctx for its own cancellation.
func (q *Queue) Do(ctx context.Context, fn func()) error {
	task := queueTask{run: fn, finished: make(chan struct{})}
	select {
	case q.tasks <- task:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-task.finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
