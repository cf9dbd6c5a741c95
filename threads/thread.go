package threads

import (
	"fmt"
	"sync/atomic"
)

type Status int32

const (
	Ready Status = iota
	Running
	Waiting
	Killed
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Waiting:
		return "waiting"
	case Killed:
		return "killed"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}

// Task owns threads and is the unit frames are reserved under.
type Task struct {
	id int
}

func (t *Task) ID() int {
	return t.id
}

func (t *Task) String() string {
	return fmt.Sprintf("task-%d", t.id)
}

type Thread struct {
	id     int
	task   *Task
	sched  *Scheduler
	status atomic.Int32

	// event the thread is suspended on, nil unless Waiting
	waitingOn *Event
}

func (t *Thread) ID() int {
	return t.id
}

func (t *Thread) Task() *Task {
	return t.task
}

func (t *Thread) Status() Status {
	return Status(t.status.Load())
}

func (t *Thread) IsAlive() bool {
	return t.Status() != Killed
}

func (t *Thread) String() string {
	return fmt.Sprintf("thread-%d(%s)", t.id, t.task)
}

func (t *Thread) setStatus(s Status) {
	t.status.Store(int32(s))
}
