package threads

// Event is a broadcast suspension point. Threads are put on it with
// Scheduler.Suspend and all of them are released together by NotifyAll.
type Event struct {
	name    string
	waiters []*Thread
}

func NewEvent(name string) *Event {
	return &Event{name: name}
}

func (e *Event) Name() string {
	return e.name
}

// Waiters returns the threads currently suspended on e.
func (e *Event) Waiters() []*Thread {
	res := make([]*Thread, len(e.waiters))
	copy(res, e.waiters)
	return res
}

func (e *Event) HasWaiters() bool {
	return len(e.waiters) > 0
}

// NotifyAll resumes every waiter and empties the wait list. Killed threads
// are dropped without being resumed.
func (e *Event) NotifyAll() int {
	waiters := e.waiters
	e.waiters = nil

	resumed := 0
	for _, t := range waiters {
		t.waitingOn = nil
		if !t.IsAlive() {
			continue
		}
		t.sched.resume(t)
		resumed++
	}

	return resumed
}

func (e *Event) add(t *Thread) {
	e.waiters = append(e.waiters, t)
}

func (e *Event) remove(t *Thread) {
	for i, w := range e.waiters {
		if w == t {
			e.waiters = append(e.waiters[:i], e.waiters[i+1:]...)
			return
		}
	}
}
