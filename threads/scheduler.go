package threads

import (
	"log/slog"
	"slices"

	"github.com/jobala/vmsim/util"
)

// NewScheduler returns a cooperative scheduler. It is not safe for
// concurrent use: one goroutine drives every simulated thread, and threads
// only change hands at Suspend and Dispatch.
func NewScheduler(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		logger: util.OrDefault(logger).With("component", "scheduler"),
	}
}

func (s *Scheduler) NewTask() *Task {
	s.nextTaskId++
	return &Task{id: s.nextTaskId}
}

// NewThread creates a ready thread for task and queues it.
func (s *Scheduler) NewThread(task *Task) *Thread {
	s.nextThreadId++
	t := &Thread{
		id:    s.nextThreadId,
		task:  task,
		sched: s,
	}
	t.setStatus(Ready)
	s.ready = append(s.ready, t)

	return t
}

// Suspend parks t on ev until ev is notified.
func (s *Scheduler) Suspend(t *Thread, ev *Event) {
	if !t.IsAlive() {
		return
	}
	if s.running == t {
		s.running = nil
	}
	s.ready = slices.DeleteFunc(s.ready, func(r *Thread) bool { return r == t })

	t.setStatus(Waiting)
	t.waitingOn = ev
	ev.add(t)

	s.logger.Debug("thread suspended", "thread", t, "event", ev.Name())
}

// Kill terminates t. I/O already issued on its behalf still completes; the
// issuer notices through Status.
func (s *Scheduler) Kill(t *Thread) {
	if !t.IsAlive() {
		return
	}
	if t.waitingOn != nil {
		t.waitingOn.remove(t)
		t.waitingOn = nil
	}
	if s.running == t {
		s.running = nil
	}
	s.ready = slices.DeleteFunc(s.ready, func(r *Thread) bool { return r == t })
	t.setStatus(Killed)

	s.logger.Debug("thread killed", "thread", t)
}

// Dispatch picks the next ready thread and makes it the running one. A
// still running thread goes to the back of the ready queue. Returns nil when
// nothing is runnable.
func (s *Scheduler) Dispatch() *Thread {
	if s.running != nil && s.running.Status() == Running {
		s.running.setStatus(Ready)
		s.ready = append(s.ready, s.running)
	}
	s.running = nil

	if len(s.ready) == 0 {
		return nil
	}

	next := s.ready[0]
	s.ready = s.ready[1:]
	next.setStatus(Running)
	s.running = next

	s.logger.Debug("thread dispatched", "thread", next)
	return next
}

func (s *Scheduler) Running() *Thread {
	return s.running
}

// ReadyQueue returns the runnable threads in dispatch order.
func (s *Scheduler) ReadyQueue() []*Thread {
	return slices.Clone(s.ready)
}

func (s *Scheduler) resume(t *Thread) {
	t.setStatus(Ready)
	s.ready = append(s.ready, t)
}

type Scheduler struct {
	logger       *slog.Logger
	ready        []*Thread
	running      *Thread
	nextTaskId   int
	nextThreadId int
}
