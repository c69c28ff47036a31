package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Task is a unit of work executed by the pool.
type Task func(ctx context.Context) error

// Logger defines the logging surface the pool relies on.
type Logger interface {
	WarnObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) WarnObj(string, string, interface{}) {}

// Pool runs submitted tasks on a bounded set of goroutines.
type Pool struct {
	wg   sync.WaitGroup
	jobs chan Task
	quit chan struct{}
	n    int
	log  Logger
}

// NewPool builds a pool with the given number of workers. Zero or negative
// worker counts fall back to the number of CPUs.
func NewPool(workers int, log Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if log == nil {
		log = noopLogger{}
	}
	return &Pool{
		jobs: make(chan Task, workers*4),
		quit: make(chan struct{}),
		n:    workers,
		log:  log,
	}
}

// Start launches the workers. They exit when ctx is cancelled or Stop is
// called.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-p.quit:
					return
				case task := <-p.jobs:
					if task == nil {
						continue
					}
					if err := task(ctx); err != nil {
						p.log.WarnObj("worker task failed", "worker_task_error", map[string]any{
							"worker": id,
							"error":  err.Error(),
						})
					}
				}
			}
		}(i)
	}
}

// Stop signals the workers and waits for them to drain.
func (p *Pool) Stop() {
	close(p.quit)
	p.wg.Wait()
}

// Submit enqueues a task. It fails fast instead of blocking when the queue
// is saturated.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	select {
	case p.jobs <- task:
		return nil
	default:
		return errors.New("worker queue full")
	}
}
