package task_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/soypat/fncad"
	"github.com/soypat/fncad/field"
	"github.com/soypat/fncad/octree"
	"github.com/soypat/fncad/render"
	"github.com/soypat/fncad/task"
	"gonum.org/v1/gonum/spatial/r3"
)

// blockTask runs until released or cancelled.
type blockTask struct {
	started chan struct{}
	release chan struct{}
}

func newBlockTask() *blockTask {
	return &blockTask{started: make(chan struct{}), release: make(chan struct{})}
}

func (*blockTask) Kind() string { return "block" }

func (b *blockTask) Run(ctx context.Context, progress func(float64)) (any, error) {
	progress(0.5)
	close(b.started)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-b.release:
		return "released", nil
	}
}

// stubbornTask ignores its context and returns a result once released.
type stubbornTask struct{ started, release chan struct{} }

func (stubbornTask) Kind() string { return "stubborn" }

func (s stubbornTask) Run(context.Context, func(float64)) (any, error) {
	close(s.started)
	<-s.release
	return "done", nil
}

// gatedField blocks the first point evaluation until released.
type gatedField struct {
	fncad.Field
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (g *gatedField) Evaluate(p r3.Vec) float64 {
	g.once.Do(func() {
		close(g.started)
		<-g.release
	})
	return g.Field.Evaluate(p)
}

type failTask struct{ err error }

func (failTask) Kind() string { return "fail" }

func (f failTask) Run(context.Context, func(float64)) (any, error) { return nil, f.err }

func waitStatus(t *testing.T, q *task.Queue, id string, want task.Status) task.Progress {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	p, err := q.Wait(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != want {
		t.Fatalf("task %s: got status %s (err=%v). want %s", id, p.Status, p.Err, want)
	}
	return p
}

func TestOctreeThenMesh(t *testing.T) {
	q := task.NewQueue(context.Background(), 2)
	defer q.Close()
	f := field.Sphere(1)
	id := q.Add(task.OctreeTask{Field: f, Size: 4, MinSize: 0.25, Budget: 100000})
	if id != "task-1" {
		t.Errorf("first id %q. want task-1", id)
	}
	p := waitStatus(t, q, id, task.StatusCompleted)
	res, ok := p.Result.(task.OctreeResult)
	if !ok {
		t.Fatalf("octree result type %T", p.Result)
	}
	if p.Progress != 1 || res.Cells < 9 {
		t.Errorf("unexpected octree result: progress %g cells %d", p.Progress, res.Cells)
	}

	id = q.Add(task.MeshTask{Field: f, Octree: res.Encoded, Optimize: true})
	if id != "task-2" {
		t.Errorf("second id %q. want task-2", id)
	}
	p = waitStatus(t, q, id, task.StatusCompleted)
	m, ok := p.Result.(*render.Mesh)
	if !ok || m.IsEmpty() {
		t.Fatalf("bad mesh result %T", p.Result)
	}
	// Same mesh as extracting directly from the tree.
	tree, err := octree.Decode(res.Encoded, f)
	if err != nil {
		t.Fatal(err)
	}
	direct, err := render.Extract(context.Background(), tree, render.ExtractConfig{Optimize: true})
	if err != nil {
		t.Fatal(err)
	}
	if direct.TriangleCount() != m.TriangleCount() {
		t.Errorf("task mesh has %d triangles, direct extraction %d", m.TriangleCount(), direct.TriangleCount())
	}
}

func TestProgressListener(t *testing.T) {
	q := task.NewQueue(context.Background(), 1)
	defer q.Close()
	var (
		mu     sync.Mutex
		events []task.Progress
	)
	remove := q.OnProgress(func(p task.Progress) {
		mu.Lock()
		events = append(events, p)
		mu.Unlock()
	})
	id := q.Add(task.OctreeTask{Field: field.Sphere(1), Size: 4, MinSize: 0.25, Budget: 100000})
	waitStatus(t, q, id, task.StatusCompleted)

	mu.Lock()
	got := append([]task.Progress(nil), events...)
	mu.Unlock()
	if len(got) < 3 {
		t.Fatalf("got %d events", len(got))
	}
	if got[0].Status != task.StatusQueued || got[len(got)-1].Status != task.StatusCompleted {
		t.Errorf("events should start queued and end completed, got %s..%s", got[0].Status, got[len(got)-1].Status)
	}
	last := 0.0
	for _, p := range got {
		if p.ID != id || p.Kind != "octree" {
			t.Fatalf("unexpected event %+v", p)
		}
		if p.Progress < last || p.Progress > 1 {
			t.Fatalf("progress not monotonic: %g after %g", p.Progress, last)
		}
		last = p.Progress
		if p.Status == task.StatusRunning && p.Progress >= 1 {
			t.Fatalf("running octree task reported full progress")
		}
	}

	remove()
	id = q.Add(failTask{err: errors.New("boom")})
	waitStatus(t, q, id, task.StatusFailed)
	mu.Lock()
	defer mu.Unlock()
	if len(events) != len(got) {
		t.Errorf("removed listener received %d more events", len(events)-len(got))
	}
}

func TestFailedTask(t *testing.T) {
	q := task.NewQueue(context.Background(), 1)
	defer q.Close()
	boom := errors.New("boom")
	p := waitStatus(t, q, q.Add(failTask{err: boom}), task.StatusFailed)
	if !errors.Is(p.Err, boom) {
		t.Errorf("got err %v. want %v", p.Err, boom)
	}
	// Budget exhaustion surfaces as a failed octree task.
	p = waitStatus(t, q, q.Add(task.OctreeTask{Field: field.Sphere(1), Size: 4, MinSize: 0.25, Budget: 1}), task.StatusFailed)
	if !errors.Is(p.Err, octree.ErrCellBudgetExhausted) {
		t.Errorf("got err %v. want ErrCellBudgetExhausted", p.Err)
	}
}

func TestCancel(t *testing.T) {
	q := task.NewQueue(context.Background(), 1)
	defer q.Close()
	running := newBlockTask()
	runningID := q.Add(running)
	<-running.started
	queued := newBlockTask()
	queuedID := q.Add(queued)

	if p, _ := q.Get(queuedID); p.Status != task.StatusQueued {
		t.Fatalf("second task should be queued behind the first, got %s", p.Status)
	}
	if err := q.Cancel(queuedID); err != nil {
		t.Fatal(err)
	}
	waitStatus(t, q, queuedID, task.StatusCancelled)
	select {
	case <-queued.started:
		t.Fatal("cancelled queued task was started")
	default:
	}

	if p, _ := q.Get(runningID); p.Status != task.StatusRunning || p.Progress != 0.5 {
		t.Fatalf("got %+v. want running at 0.5", p)
	}
	if err := q.Cancel(runningID); err != nil {
		t.Fatal(err)
	}
	p := waitStatus(t, q, runningID, task.StatusCancelled)
	if !errors.Is(p.Err, context.Canceled) {
		t.Errorf("got err %v. want context.Canceled", p.Err)
	}
	if err := q.Cancel("task-99"); !errors.Is(err, task.ErrUnknownTask) {
		t.Errorf("got %v. want ErrUnknownTask", err)
	}
}

func TestCloseCancelsTasks(t *testing.T) {
	q := task.NewQueue(context.Background(), 1)
	running := newBlockTask()
	runningID := q.Add(running)
	<-running.started
	queuedID := q.Add(newBlockTask())
	if err := q.Close(); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{runningID, queuedID} {
		if p, _ := q.Get(id); p.Status != task.StatusCancelled {
			t.Errorf("task %s: got %s after close. want cancelled", id, p.Status)
		}
	}
	id := q.Add(task.OctreeTask{Field: field.Sphere(1), Center: r3.Vec{}, Size: 4, MinSize: 1, Budget: 100})
	if p, _ := q.Get(id); p.Status != task.StatusCancelled || !errors.Is(p.Err, task.ErrClosed) {
		t.Errorf("task added after close: got %+v", p)
	}
}

func TestCancelRunningMesh(t *testing.T) {
	sphere := field.Sphere(1)
	tree, err := octree.New(sphere, r3.Vec{}, 4)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = tree.Subdivide(context.Background(), octree.SubdivideConfig{MinSize: 0.25, Budget: 100000}); err != nil {
		t.Fatal(err)
	}
	encoded, err := tree.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	f := &gatedField{Field: sphere, started: make(chan struct{}), release: make(chan struct{})}
	q := task.NewQueue(context.Background(), 1)
	defer q.Close()
	id := q.Add(task.MeshTask{Field: f, Octree: encoded, Optimize: true})
	// Relaxation has started once the field is evaluated at a point.
	<-f.started
	if err := q.Cancel(id); err != nil {
		t.Fatal(err)
	}
	close(f.release)
	p := waitStatus(t, q, id, task.StatusCancelled)
	if !errors.Is(p.Err, context.Canceled) || p.Result != nil {
		t.Errorf("got %+v. want cancelled without result", p)
	}
}

func TestCancelledTaskNeverCompletes(t *testing.T) {
	q := task.NewQueue(context.Background(), 1)
	defer q.Close()
	st := stubbornTask{started: make(chan struct{}), release: make(chan struct{})}
	id := q.Add(st)
	<-st.started
	if err := q.Cancel(id); err != nil {
		t.Fatal(err)
	}
	close(st.release)
	p := waitStatus(t, q, id, task.StatusCancelled)
	if !errors.Is(p.Err, context.Canceled) || p.Result != nil {
		t.Errorf("got %+v. want cancelled without result", p)
	}
}
