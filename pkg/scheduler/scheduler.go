package scheduler

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/henry232323/saffron-lang/pkg/errors"
	"github.com/henry232323/saffron-lang/pkg/vm"
)

// Yield op codes. These integers are part of the wire protocol between
// user code and the scheduler; downstream code constructs them by literal.
const (
	OpSleep       = 1
	OpWaitIORead  = 2
	OpWaitIOWrite = 4
)

// pollQuantum is the maximum latency between an event arriving and the
// waiting task being moved back to the ready queue.
const pollQuantum = 200 * time.Millisecond

// PollFunc is the multiplexed I/O wait primitive. The default is
// unix.Select; tests substitute their own.
type PollFunc func(nfds int, readable, writable, errs *unix.FdSet, timeout *unix.Timeval) (int, error)

// Scheduler interleaves cooperative tasks: a ready queue with a cursor,
// and three wait queues (timer, readable fd, writable fd) that drain back
// into the ready set. Single-threaded by contract; only the interpreter
// loop calls into it.
type Scheduler struct {
	ready   []*vm.Task
	current int

	sleepers sleeperQueue
	seq      int

	readers   []*vm.Task
	readerFDs []int
	writers   []*vm.Task
	writerFDs []int

	now  func() float64
	poll PollFunc
}

// New creates a scheduler using the real clock and select(2).
func New() *Scheduler {
	start := time.Now()
	return &Scheduler{
		now: func() float64 { return time.Since(start).Seconds() },
		poll: func(nfds int, readable, writable, errs *unix.FdSet, timeout *unix.Timeval) (int, error) {
			return unix.Select(nfds, readable, writable, errs, timeout)
		},
	}
}

// Spawn allocates a call frame for closure, links it as a child of the
// current task, pushes it onto the ready queue, and returns a task handle.
func (s *Scheduler) Spawn(closure vm.Value) (vm.Value, error) {
	if !closure.IsClosure() {
		return vm.Nil, runtimeError("Invalid argument for parameter 0, expect a function")
	}

	frame := vm.NewTask(closure.AsClosure(), s.CurrentTask())
	s.ready = append(s.ready, frame)
	return vm.NewTaskValue(frame), nil
}

// CurrentTask returns the task at the ready-queue cursor, or nil when the
// ready queue is empty.
func (s *Scheduler) CurrentTask() *vm.Task {
	if s.current >= len(s.ready) {
		return nil
	}
	return s.ready[s.current]
}

// Ready exposes the ready queue, in order.
func (s *Scheduler) Ready() []*vm.Task { return s.ready }

// HandleYield processes a value yielded by the current task. A plain value
// advances the round-robin cursor; an [op, arg] list parks the task on the
// corresponding wait queue.
func (s *Scheduler) HandleYield(value vm.Value) error {
	if !value.IsList() {
		if s.current+1 >= len(s.ready) {
			s.WakeTasks()
		}
		s.advanceCursor(s.current + 1)
		return nil
	}

	list := value.AsList()
	if len(list) == 0 || !list[0].IsNumber() {
		return runtimeError("Yielded invalid type")
	}
	op := int(list[0].AsNumber())

	switch op {
	case OpSleep:
		if len(list) < 2 || !list[1].IsNumber() {
			return runtimeError("Yielded invalid type")
		}
		seconds := list[1].AsNumber()

		task := s.removeCurrent()
		if task == nil {
			return runtimeError("No task to suspend")
		}
		task.State = vm.Suspended
		s.seq++
		s.sleepers.push(&sleeper{task: task, deadline: s.now() + seconds, seq: s.seq})

	case OpWaitIORead:
		fd, err := s.fdArg(list)
		if err != nil {
			return err
		}
		task := s.removeCurrent()
		if task == nil {
			return runtimeError("No task to suspend")
		}
		task.State = vm.Suspended
		s.readers = append(s.readers, task)
		s.readerFDs = append(s.readerFDs, fd)

	case OpWaitIOWrite:
		fd, err := s.fdArg(list)
		if err != nil {
			return err
		}
		task := s.removeCurrent()
		if task == nil {
			return runtimeError("No task to suspend")
		}
		task.State = vm.Suspended
		s.writers = append(s.writers, task)
		s.writerFDs = append(s.writerFDs, fd)

	default:
		return runtimeError(fmt.Sprintf("Invalid yield op %d", op))
	}

	if s.current >= len(s.ready) {
		s.WakeTasks()
	}
	s.advanceCursor(s.current)
	return nil
}

func (s *Scheduler) fdArg(list []vm.Value) (int, error) {
	if len(list) < 2 || !list[1].IsNumber() {
		return 0, runtimeError("Yielded invalid type")
	}
	return int(list[1].AsNumber()), nil
}

func (s *Scheduler) removeCurrent() *vm.Task {
	if s.current >= len(s.ready) {
		return nil
	}
	task := s.ready[s.current]
	s.ready = append(s.ready[:s.current], s.ready[s.current+1:]...)
	return task
}

func (s *Scheduler) advanceCursor(next int) {
	if len(s.ready) == 0 {
		s.current = 0
		return
	}
	s.current = next % len(s.ready)
}

// WakeTasks drains the wait queues: expired sleepers move to ready first,
// then readable fds, then writable fds. Blocks in the multiplexed wait for
// up to the poll quantum, and not at all once a sleeper has been woken.
// Returns 1 if any task was woken, 0 when there is
// nothing to wait for, and -1 when waiters exist but none were ready.
func (s *Scheduler) WakeTasks() int {
	if s.sleepers.Len() == 0 && len(s.readers) == 0 && len(s.writers) == 0 {
		return 0
	}

	found := -1

	now := s.now()
	for s.sleepers.Len() > 0 && s.sleepers.peek().deadline < now {
		s.wake(s.sleepers.pop().task)
		found = 1
	}

	var readSet, writeSet, errSet unix.FdSet
	nfds := 0
	for _, fd := range s.readerFDs {
		readSet.Set(fd)
		errSet.Set(fd)
		if fd+1 > nfds {
			nfds = fd + 1
		}
	}
	for _, fd := range s.writerFDs {
		writeSet.Set(fd)
		errSet.Set(fd)
		if fd+1 > nfds {
			nfds = fd + 1
		}
	}

	wait := pollQuantum
	if found == 1 {
		// Woken sleepers can run now; check the fds without blocking.
		wait = 0
	}
	timeout := unix.NsecToTimeval(wait.Nanoseconds())
	n, err := s.poll(nfds, &readSet, &writeSet, &errSet, &timeout)
	if err != nil {
		return found
	}
	if n == 0 {
		return found
	}

	var remReaders []*vm.Task
	var remReaderFDs []int
	for i, task := range s.readers {
		if readSet.IsSet(s.readerFDs[i]) {
			s.wake(task)
			found = 1
		} else {
			remReaders = append(remReaders, task)
			remReaderFDs = append(remReaderFDs, s.readerFDs[i])
		}
	}
	s.readers, s.readerFDs = remReaders, remReaderFDs

	var remWriters []*vm.Task
	var remWriterFDs []int
	for i, task := range s.writers {
		if writeSet.IsSet(s.writerFDs[i]) {
			s.wake(task)
			found = 1
		} else {
			remWriters = append(remWriters, task)
			remWriterFDs = append(remWriterFDs, s.writerFDs[i])
		}
	}
	s.writers, s.writerFDs = remWriters, remWriterFDs

	return found
}

// wake moves a parked task back to the ready queue with its wake-up data
// set.
func (s *Scheduler) wake(task *vm.Task) {
	task.Stored = vm.Bool(true)
	task.State = vm.Spawned
	s.ready = append(s.ready, task)
}

func runtimeError(message string) error {
	return &errors.RuntimeError{Msg: message}
}
