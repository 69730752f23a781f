// Package task runs octree subdivision and mesh extraction in the
// background. Tasks are queued, picked up by a fixed number of workers and
// report their progress to listeners.
package task

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/soypat/fncad"
	"golang.org/x/sync/errgroup"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Done reports whether the status is final.
func (s Status) Done() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

var (
	ErrUnknownTask = errors.New("task: unknown task")
	ErrClosed      = errors.New("task: queue closed")
)

// Task is a unit of background work.
type Task interface {
	// Kind names the type of task, such as "octree" or "mesh".
	Kind() string
	// Run performs the work. It should return promptly with ctx.Err()
	// once ctx is cancelled and report completed fractions in [0,1]
	// through progress.
	Run(ctx context.Context, progress func(fraction float64)) (result any, err error)
}

// Progress is a snapshot of a task's state.
type Progress struct {
	ID       string
	Kind     string
	Status   Status
	Progress float64
	// Result is set once Status is StatusCompleted.
	Result any
	// Err is set once Status is StatusFailed or StatusCancelled.
	Err error
}

type entry struct {
	p      Progress
	task   Task
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// Queue runs tasks on a fixed pool of workers in the order they were added.
type Queue struct {
	ctx    context.Context
	cancel context.CancelFunc
	g      *errgroup.Group
	wake   chan struct{}

	mu        sync.Mutex
	closed    bool
	counter   int
	tasks     map[string]*entry
	pending   []*entry
	listeners map[int]func(Progress)
	nextL     int
}

// NewQueue starts a queue with the given number of workers. Cancelling ctx
// cancels every task.
func NewQueue(ctx context.Context, workers int) *Queue {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	q := &Queue{
		ctx:       gctx,
		cancel:    cancel,
		g:         g,
		wake:      make(chan struct{}, workers),
		tasks:     make(map[string]*entry),
		listeners: make(map[int]func(Progress)),
	}
	for i := 0; i < workers; i++ {
		g.Go(q.work)
	}
	return q
}

// Add queues t and returns its id. Ids are "task-1", "task-2" and so on.
// Adding to a closed queue yields a task that is immediately cancelled.
func (q *Queue) Add(t Task) string {
	q.mu.Lock()
	q.counter++
	id := fmt.Sprintf("task-%d", q.counter)
	ctx, cancel := context.WithCancel(q.ctx)
	e := &entry{
		p:      Progress{ID: id, Kind: t.Kind(), Status: StatusQueued},
		task:   t,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	q.tasks[id] = e
	closed := q.closed
	snap := e.p
	q.mu.Unlock()
	if closed {
		q.finish(e, nil, ErrClosed)
		return id
	}
	q.notify(snap)

	q.mu.Lock()
	switch {
	case q.closed:
		q.mu.Unlock()
		q.finish(e, nil, ErrClosed)
		return id
	case e.ctx.Err() != nil:
		// Cancelled before reaching the pending list.
		q.mu.Unlock()
		q.finish(e, nil, context.Canceled)
		return id
	}
	q.pending = append(q.pending, e)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
	return id
}

// OnProgress registers a listener called on every status or progress
// change of any task. Listeners run on the goroutine causing the change and
// must not block. The returned function unregisters the listener.
func (q *Queue) OnProgress(listener func(Progress)) (remove func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	key := q.nextL
	q.nextL++
	q.listeners[key] = listener
	return func() {
		q.mu.Lock()
		delete(q.listeners, key)
		q.mu.Unlock()
	}
}

// Get returns the current state of task id.
func (q *Queue) Get(id string) (Progress, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.tasks[id]
	if !ok {
		return Progress{}, false
	}
	return e.p, true
}

// Cancel cancels task id. A queued task is never started, a running task
// has its context cancelled. Cancelling a finished task has no effect.
func (q *Queue) Cancel(id string) error {
	q.mu.Lock()
	e, ok := q.tasks[id]
	if !ok {
		q.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownTask, id)
	}
	wasPending := q.removePending(e)
	q.mu.Unlock()
	e.cancel()
	if wasPending {
		q.finish(e, nil, context.Canceled)
	}
	return nil
}

// Wait blocks until task id is done or ctx is cancelled.
func (q *Queue) Wait(ctx context.Context, id string) (Progress, error) {
	q.mu.Lock()
	e, ok := q.tasks[id]
	q.mu.Unlock()
	if !ok {
		return Progress{}, fmt.Errorf("%w: %q", ErrUnknownTask, id)
	}
	select {
	case <-e.done:
	case <-ctx.Done():
		return Progress{}, ctx.Err()
	}
	p, _ := q.Get(id)
	return p, nil
}

// Close cancels all queued and running tasks and waits for the workers to
// exit.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	pending := q.pending
	q.pending = nil
	q.mu.Unlock()
	for _, e := range pending {
		e.cancel()
		q.finish(e, nil, context.Canceled)
	}
	q.cancel()
	return q.g.Wait()
}

func (q *Queue) work() error {
	for {
		if e := q.pop(); e != nil {
			q.run(e)
			continue
		}
		select {
		case <-q.ctx.Done():
			return nil
		case <-q.wake:
		}
	}
}

func (q *Queue) pop() *entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	e := q.pending[0]
	q.pending = q.pending[1:]
	return e
}

// removePending must be called with q.mu held.
func (q *Queue) removePending(e *entry) bool {
	for i, p := range q.pending {
		if p == e {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return true
		}
	}
	return false
}

func (q *Queue) run(e *entry) {
	q.mu.Lock()
	if e.p.Status != StatusQueued {
		q.mu.Unlock()
		return
	}
	e.p.Status = StatusRunning
	snap := e.p
	q.mu.Unlock()
	q.notify(snap)
	log := fncad.Logger()
	log.Debug("task started", "id", snap.ID, "kind", snap.Kind)

	if err := e.ctx.Err(); err != nil {
		q.finish(e, nil, err)
		return
	}
	result, err := e.task.Run(e.ctx, func(fraction float64) {
		q.mu.Lock()
		if e.p.Status != StatusRunning || fraction < e.p.Progress {
			q.mu.Unlock()
			return
		}
		e.p.Progress = min(fraction, 1)
		snap := e.p
		q.mu.Unlock()
		q.notify(snap)
	})
	q.finish(e, result, err)
	if err != nil {
		log.Debug("task ended", "id", snap.ID, "err", err)
	} else {
		log.Debug("task completed", "id", snap.ID)
	}
}

// finish records the outcome of e, notifies listeners and releases waiters.
func (q *Queue) finish(e *entry, result any, err error) {
	q.mu.Lock()
	if e.p.Status.Done() {
		q.mu.Unlock()
		return
	}
	switch {
	case e.ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrClosed):
		// A cancelled task never completes, even if Run returned a result.
		e.p.Status = StatusCancelled
		e.p.Err = err
		if err == nil {
			e.p.Err = e.ctx.Err()
		}
	case err == nil:
		e.p.Status = StatusCompleted
		e.p.Progress = 1
		e.p.Result = result
	default:
		e.p.Status = StatusFailed
		e.p.Err = err
	}
	snap := e.p
	q.mu.Unlock()
	e.cancel()
	q.notify(snap)
	close(e.done)
}

func (q *Queue) notify(p Progress) {
	q.mu.Lock()
	ls := make([]func(Progress), 0, len(q.listeners))
	for _, l := range q.listeners {
		ls = append(ls, l)
	}
	q.mu.Unlock()
	for _, l := range ls {
		l(p)
	}
}
