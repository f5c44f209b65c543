// Package tasks runs background work and keeps its state observable by id.
package tasks

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "interview-capture/internal/app/errors"
	"interview-capture/internal/app/logging"
	"interview-capture/internal/app/metrics"
)

// State of a background task
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Done reports whether the task has finished
func (s State) Done() bool {
	return s == StateSucceeded || s == StateFailed
}

// Task is a snapshot of one background job
type Task struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Subject    string     `json:"subject"`
	State      State      `json:"state"`
	Result     string     `json:"result,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Func is the work of a task; the returned string is recorded as its result
type Func func(ctx context.Context) (string, error)

type entry struct {
	task Task
	done chan struct{}
}

// Tracker runs tasks with bounded concurrency and remembers their outcome
type Tracker struct {
	mu        sync.RWMutex
	tasks     map[string]*entry
	sem       chan struct{}
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	retention time.Duration
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewTracker creates a tracker that runs at most concurrency tasks at once
func NewTracker(concurrency int, logger *zap.Logger, m *metrics.Metrics) *Tracker {
	if concurrency <= 0 {
		concurrency = 4
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		tasks:     make(map[string]*entry),
		sem:       make(chan struct{}, concurrency),
		ctx:       ctx,
		cancel:    cancel,
		retention: 24 * time.Hour,
		logger:    logging.Component(logger, "tasks"),
		metrics:   m,
	}
}

// Submit schedules fn and returns the pending task immediately
func (t *Tracker) Submit(kind, subject string, fn Func) Task {
	e := &entry{
		task: Task{
			ID:        uuid.New().String(),
			Kind:      kind,
			Subject:   subject,
			State:     StatePending,
			CreatedAt: time.Now(),
		},
		done: make(chan struct{}),
	}

	t.mu.Lock()
	t.pruneLocked()
	t.tasks[e.task.ID] = e
	snapshot := e.task
	t.mu.Unlock()
	t.metrics.TaskTransition("", string(StatePending))

	t.wg.Add(1)
	go t.run(e, fn)
	return snapshot
}

func (t *Tracker) run(e *entry, fn Func) {
	defer t.wg.Done()
	defer close(e.done)

	select {
	case t.sem <- struct{}{}:
	case <-t.ctx.Done():
		t.finish(e, StatePending, "", t.ctx.Err())
		return
	}
	defer func() { <-t.sem }()

	now := time.Now()
	t.mu.Lock()
	e.task.State = StateRunning
	e.task.StartedAt = &now
	t.mu.Unlock()
	t.metrics.TaskTransition(string(StatePending), string(StateRunning))

	result, err := t.invoke(fn)
	t.finish(e, StateRunning, result, err)
}

func (t *Tracker) invoke(fn Func) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			t.logger.Error("background task panicked",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
		}
	}()
	return fn(t.ctx)
}

func (t *Tracker) finish(e *entry, from State, result string, err error) {
	now := time.Now()
	t.mu.Lock()
	e.task.FinishedAt = &now
	e.task.Result = result
	if err != nil {
		e.task.State = StateFailed
		e.task.Error = err.Error()
	} else {
		e.task.State = StateSucceeded
	}
	task := e.task
	t.mu.Unlock()
	t.metrics.TaskTransition(string(from), string(task.State))

	fields := []zap.Field{
		zap.String("task_id", task.ID),
		zap.String("kind", task.Kind),
		zap.String("subject", task.Subject),
	}
	if err != nil {
		t.logger.Error("background task failed", append(fields, zap.Error(err))...)
		return
	}
	t.logger.Info("background task succeeded", append(fields, zap.String("result", result))...)
}

// Get returns a snapshot of a task
func (t *Tracker) Get(id string) (Task, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.tasks[id]
	if !ok {
		return Task{}, apperrors.NotFound("task", id)
	}
	return e.task, nil
}

// Wait blocks until the task finishes or ctx is done
func (t *Tracker) Wait(ctx context.Context, id string) (Task, error) {
	t.mu.RLock()
	e, ok := t.tasks[id]
	t.mu.RUnlock()
	if !ok {
		return Task{}, apperrors.NotFound("task", id)
	}
	select {
	case <-e.done:
		return t.Get(id)
	case <-ctx.Done():
		return Task{}, ctx.Err()
	}
}

// Shutdown cancels the context handed to tasks and waits for them to return until ctx is done
func (t *Tracker) Shutdown(ctx context.Context) error {
	t.cancel()
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pruneLocked forgets finished tasks older than the retention window
func (t *Tracker) pruneLocked() {
	cutoff := time.Now().Add(-t.retention)
	for id, e := range t.tasks {
		if e.task.State.Done() && e.task.FinishedAt != nil && e.task.FinishedAt.Before(cutoff) {
			delete(t.tasks, id)
		}
	}
}
