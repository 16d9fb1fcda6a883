package scheduler

import (
	"os"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/henry232323/saffron-lang/pkg/errors"
	"github.com/henry232323/saffron-lang/pkg/vm"
)

// newTestScheduler uses a controllable clock and a poll that never blocks,
// so queue mechanics can be tested without real time passing.
func newTestScheduler() (*Scheduler, *float64) {
	now := 0.0
	s := New()
	s.now = func() float64 { return now }
	s.poll = func(nfds int, readable, writable, errs *unix.FdSet, timeout *unix.Timeval) (int, error) {
		return 0, nil
	}
	return s, &now
}

func spawnTask(t *testing.T, s *Scheduler, name string) *vm.Task {
	t.Helper()
	handle, err := s.Spawn(vm.NewClosure(&vm.Closure{Name: name}))
	if err != nil {
		t.Fatalf("spawn %s: %v", name, err)
	}
	return handle.AsTask()
}

func TestSpawnLinksParentAndIndex(t *testing.T) {
	s, _ := newTestScheduler()

	a := spawnTask(t, s, "a")
	if a.Index != 0 || a.Parent != nil {
		t.Errorf("first task: index=%d parent=%v", a.Index, a.Parent)
	}
	if a.State != vm.Spawned {
		t.Errorf("first task state: %v", a.State)
	}

	// The second spawn happens while a is the current task.
	b := spawnTask(t, s, "b")
	if b.Parent != a || b.Index != 1 {
		t.Errorf("child task: index=%d parent=%v", b.Index, b.Parent)
	}

	if len(s.Ready()) != 2 {
		t.Errorf("ready queue: expected 2 tasks, got %d", len(s.Ready()))
	}
}

func TestSpawnRejectsNonClosure(t *testing.T) {
	s, _ := newTestScheduler()
	_, err := s.Spawn(vm.Number(1))
	if err == nil {
		t.Fatal("expected an error for a non-closure spawn")
	}
	if _, ok := err.(*errors.RuntimeError); !ok {
		t.Errorf("expected RuntimeError, got %T", err)
	}
}

func TestPlainYieldRoundRobin(t *testing.T) {
	s, _ := newTestScheduler()
	a := spawnTask(t, s, "a")
	b := spawnTask(t, s, "b")
	c := spawnTask(t, s, "c")

	if s.CurrentTask() != a {
		t.Fatal("expected a to run first")
	}
	if err := s.HandleYield(vm.Number(0)); err != nil {
		t.Fatal(err)
	}
	if s.CurrentTask() != b {
		t.Error("expected b after first yield")
	}
	s.HandleYield(vm.Nil)
	if s.CurrentTask() != c {
		t.Error("expected c after second yield")
	}
	s.HandleYield(vm.Nil)
	if s.CurrentTask() != a {
		t.Error("expected the cursor to wrap back to a")
	}
}

func TestSleepParksAndWakes(t *testing.T) {
	s, now := newTestScheduler()
	a := spawnTask(t, s, "a")
	b := spawnTask(t, s, "b")

	if err := s.HandleYield(vm.NewList(vm.Number(OpSleep), vm.Number(1.0))); err != nil {
		t.Fatal(err)
	}

	if len(s.Ready()) != 1 || s.Ready()[0] != b {
		t.Fatal("a should be parked, leaving b ready")
	}
	if a.State != vm.Suspended {
		t.Errorf("parked task state: %v", a.State)
	}

	// Not yet expired.
	*now = 0.5
	s.WakeTasks()
	if len(s.Ready()) != 1 {
		t.Error("task woke before its deadline")
	}

	*now = 1.5
	if got := s.WakeTasks(); got != 1 {
		t.Errorf("WakeTasks: expected 1, got %d", got)
	}
	if len(s.Ready()) != 2 {
		t.Fatal("a should be back in the ready queue")
	}
	if !a.Stored.Equals(vm.Bool(true)) {
		t.Error("woken task should carry its wake-up value")
	}
}

func TestSleepersWakeInInsertionOrderOnTies(t *testing.T) {
	s, now := newTestScheduler()
	tasks := make([]*vm.Task, 4)
	for i := range tasks {
		tasks[i] = spawnTask(t, s, "t")
	}

	// Park all four with the same deadline.
	for range tasks {
		if err := s.HandleYield(vm.NewList(vm.Number(OpSleep), vm.Number(1.0))); err != nil {
			t.Fatal(err)
		}
	}
	if len(s.Ready()) != 0 {
		t.Fatalf("all tasks should be parked, %d still ready", len(s.Ready()))
	}

	*now = 2.0
	s.WakeTasks()

	if len(s.Ready()) != 4 {
		t.Fatalf("expected 4 woken tasks, got %d", len(s.Ready()))
	}
	for i, task := range s.Ready() {
		if task != tasks[i] {
			t.Fatalf("wake order differs from insertion order at %d", i)
		}
	}
}

func TestSleepersBeforeIO(t *testing.T) {
	s, now := newTestScheduler()
	sleepTask := spawnTask(t, s, "sleeper")
	readTask := spawnTask(t, s, "reader")

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	// Park the reader first, then the sleeper; wake order is still
	// sleepers before I/O.
	s.current = 1
	if err := s.HandleYield(vm.NewList(vm.Number(OpWaitIORead), vm.Number(float64(r.Fd())))); err != nil {
		t.Fatal(err)
	}
	if err := s.HandleYield(vm.NewList(vm.Number(OpSleep), vm.Number(0.5))); err != nil {
		t.Fatal(err)
	}

	s.poll = func(nfds int, readable, writable, errs *unix.FdSet, timeout *unix.Timeval) (int, error) {
		// Report the reader's fd as readable.
		return 1, nil
	}
	*now = 1.0
	s.WakeTasks()

	if len(s.Ready()) != 2 {
		t.Fatalf("expected both tasks woken, got %d", len(s.Ready()))
	}
	if s.Ready()[0] != sleepTask || s.Ready()[1] != readTask {
		t.Error("expired sleepers should wake before I/O waiters")
	}
}

func TestIOReadWake(t *testing.T) {
	s := New()
	task := spawnTask(t, s, "reader")

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	if err := s.HandleYield(vm.NewList(vm.Number(OpWaitIORead), vm.Number(float64(r.Fd())))); err != nil {
		t.Fatal(err)
	}
	if len(s.Ready()) != 0 {
		t.Fatal("reader should be parked")
	}

	if _, err := w.Write([]byte("x")); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(time.Second)
	for len(s.Ready()) == 0 && time.Now().Before(deadline) {
		s.WakeTasks()
	}

	if len(s.Ready()) != 1 || s.Ready()[0] != task {
		t.Fatal("reader should wake once its fd is readable")
	}
	if !task.Stored.Equals(vm.Bool(true)) {
		t.Error("woken reader should carry its wake-up value")
	}
}

func TestIOWriteWake(t *testing.T) {
	s := New()
	task := spawnTask(t, s, "writer")

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	// An empty pipe is immediately writable.
	if err := s.HandleYield(vm.NewList(vm.Number(OpWaitIOWrite), vm.Number(float64(w.Fd())))); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(time.Second)
	for len(s.Ready()) == 0 && time.Now().Before(deadline) {
		s.WakeTasks()
	}

	if len(s.Ready()) != 1 || s.Ready()[0] != task {
		t.Fatal("writer should wake on a writable fd")
	}
}

// Two tasks sleeping 50 ms both resume well inside the 200 ms poll
// quantum plus slack.
func TestCooperativeSleepLiveness(t *testing.T) {
	s := New()
	a := spawnTask(t, s, "a")
	b := spawnTask(t, s, "b")

	start := time.Now()
	if err := s.HandleYield(vm.NewList(vm.Number(OpSleep), vm.Number(0.05))); err != nil {
		t.Fatal(err)
	}
	if err := s.HandleYield(vm.NewList(vm.Number(OpSleep), vm.Number(0.05))); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(time.Second)
	for len(s.Ready()) < 2 && time.Now().Before(deadline) {
		s.WakeTasks()
	}
	elapsed := time.Since(start)

	if len(s.Ready()) != 2 {
		t.Fatal("both sleepers should have resumed")
	}
	if elapsed < 50*time.Millisecond {
		t.Errorf("tasks resumed too early: %v", elapsed)
	}
	if elapsed > 300*time.Millisecond {
		t.Errorf("tasks resumed too late: %v", elapsed)
	}
	_ = a
	_ = b
}

func TestMalformedYields(t *testing.T) {
	cases := []vm.Value{
		vm.NewList(),                                    // empty list
		vm.NewList(vm.String("sleep")),                  // non-numeric op
		vm.NewList(vm.Number(OpSleep)),                  // missing argument
		vm.NewList(vm.Number(OpSleep), vm.String("s")),  // non-numeric argument
		vm.NewList(vm.Number(9), vm.Number(1)),          // unknown op
		vm.NewList(vm.Number(OpWaitIORead), vm.Nil),     // non-numeric fd
	}

	for i, value := range cases {
		s, _ := newTestScheduler()
		spawnTask(t, s, "t")
		err := s.HandleYield(value)
		if err == nil {
			t.Errorf("case %d: expected a runtime error", i)
			continue
		}
		if _, ok := err.(*errors.RuntimeError); !ok {
			t.Errorf("case %d: expected RuntimeError, got %T", i, err)
		}
	}
}

func TestWakeTasksIdleReturnsZero(t *testing.T) {
	s, _ := newTestScheduler()
	if got := s.WakeTasks(); got != 0 {
		t.Errorf("idle WakeTasks: expected 0, got %d", got)
	}
}
