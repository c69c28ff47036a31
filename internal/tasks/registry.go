package tasks

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samvad-hq/samvad-social-ingestor/internal/worker"
)

// Fn is the work a task performs. The returned value becomes the result
// data.
type Fn func(ctx context.Context) (any, error)

// Scheduler runs task closures in the background. *worker.Pool satisfies it.
type Scheduler interface {
	Submit(task worker.Task) error
}

// Logger defines the logging surface the registry relies on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

type entry struct {
	task Task
	fn   Fn
}

// Registry tracks task lifecycles in memory. State does not survive a
// process restart.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	log     Logger
}

// NewRegistry builds an empty task registry.
func NewRegistry(log Logger) *Registry {
	if log == nil {
		log = noopLogger{}
	}
	return &Registry{
		entries: make(map[string]*entry),
		log:     log,
	}
}

// Create registers a new pending task and returns its id.
func (r *Registry) Create(taskType string, params map[string]any, fn Fn, priority Priority) string {
	id := uuid.NewString()
	if priority == "" {
		priority = PriorityMedium
	}

	r.mu.Lock()
	r.entries[id] = &entry{
		task: Task{
			ID:        id,
			Type:      taskType,
			Params:    params,
			Priority:  priority,
			Status:    StatusPending,
			CreatedAt: time.Now().UTC(),
		},
		fn: fn,
	}
	r.mu.Unlock()

	return id
}

// ExecuteSync runs the task on the calling goroutine and returns its result.
func (r *Registry) ExecuteSync(ctx context.Context, id string) (Result, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return Result{}, &NotFoundError{ID: id}
	}

	return r.run(ctx, id, e.fn), nil
}

// ExecuteAsync hands the task to the scheduler. When the scheduler rejects
// the submission the task is marked failed immediately.
func (r *Registry) ExecuteAsync(id string, sched Scheduler) error {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return &NotFoundError{ID: id}
	}

	err := sched.Submit(func(ctx context.Context) error {
		r.run(ctx, id, e.fn)
		return nil
	})
	if err != nil {
		r.fail(id, fmt.Errorf("schedule task: %w", err))
		return err
	}
	return nil
}

// run drives one execution: Pending -> Running -> Completed/Failed. Panics
// never escape to the scheduler.
func (r *Registry) run(ctx context.Context, id string, fn Fn) Result {
	started := time.Now().UTC()

	r.mu.Lock()
	if e, ok := r.entries[id]; ok {
		e.task.Status = StatusRunning
		e.task.StartedAt = started
	}
	r.mu.Unlock()

	var (
		data any
		err  error
	)
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				frames := strings.SplitN(string(debug.Stack()), "\n", 8)
				err = fmt.Errorf("task panicked: %v (%s)", rec, strings.TrimSpace(frames[len(frames)-1]))
			}
		}()
		data, err = fn(ctx)
	}()

	completed := time.Now().UTC()
	result := Result{
		Success:         err == nil,
		Data:            data,
		StartedAt:       started,
		CompletedAt:     completed,
		DurationSeconds: completed.Sub(started).Seconds(),
	}
	if err != nil {
		result.Error = err.Error()
	}

	r.mu.Lock()
	if e, ok := r.entries[id]; ok {
		e.task.CompletedAt = completed
		e.task.Result = &result
		if err != nil {
			e.task.Status = StatusFailed
			e.task.Error = err.Error()
		} else {
			e.task.Status = StatusCompleted
		}
	}
	r.mu.Unlock()

	if err != nil {
		r.log.ErrorObj("task failed", "task_failed", map[string]any{
			"task_id": id,
			"error":   err.Error(),
		})
	} else {
		r.log.InfoObj("task completed", "task_completed", map[string]any{
			"task_id":          id,
			"duration_seconds": result.DurationSeconds,
		})
	}

	return result
}

func (r *Registry) fail(id string, err error) {
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return
	}
	e.task.Status = StatusFailed
	e.task.Error = err.Error()
	e.task.CompletedAt = now
	e.task.Result = &Result{
		Success:     false,
		Error:       err.Error(),
		CompletedAt: now,
	}
}

// Status returns a snapshot of the task.
func (r *Registry) Status(id string) (Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return Task{}, &NotFoundError{ID: id}
	}
	return e.task, nil
}

// List returns task snapshots newest first, optionally filtered by status.
// A non-positive limit returns everything after the offset.
func (r *Registry) List(statusFilter *Status, limit, offset int) []Task {
	r.mu.RLock()
	out := make([]Task, 0, len(r.entries))
	for _, e := range r.entries {
		if statusFilter != nil && e.task.Status != *statusFilter {
			continue
		}
		out = append(out, e.task)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if offset >= len(out) {
		return nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

// Sweep removes terminal tasks older than maxAge and returns how many were
// dropped. Pending and running tasks are always retained.
func (r *Registry) Sweep(maxAge time.Duration) int {
	cutoff := time.Now().UTC().Add(-maxAge)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.entries {
		if !e.task.Status.Terminal() {
			continue
		}
		stamp := e.task.CompletedAt
		if stamp.IsZero() {
			stamp = e.task.CreatedAt
		}
		if stamp.Before(cutoff) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}
