package memory

import (
	"fmt"
	"log/slog"

	"github.com/jobala/vmsim/threads"
	"github.com/jobala/vmsim/util"
)

type AccessKind int

const (
	Read AccessKind = iota
	Write
)

func (k AccessKind) String() string {
	if k == Write {
		return "write"
	}
	return "read"
}

type Disposition int

const (
	Success Disposition = iota
	Failure
	NoMemory
)

func (d Disposition) String() string {
	switch d {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case NoMemory:
		return "no-memory"
	default:
		return fmt.Sprintf("disposition(%d)", int(d))
	}
}

// Result is the outcome of one fault. Reschedule tells the caller the
// faulting thread gave up the processor and Dispatch must run next.
type Result struct {
	Disposition Disposition
	Err         error
	Reschedule  bool
}

// ThreadControl is the part of the scheduler the fault path drives.
type ThreadControl interface {
	Suspend(t *threads.Thread, ev *threads.Event)
	Dispatch() *threads.Thread
}

func NewFaultResolver(frames *FrameTable, swap BackingStore, control ThreadControl, logger *slog.Logger) *FaultResolver {
	return &FaultResolver{
		frames:  frames,
		swap:    swap,
		control: control,
		logger:  util.OrDefault(logger).With("component", "fault"),
	}
}

// Resolve brings page into a frame on behalf of thread. The caller must not
// call it for a page that already has a validating thread; such faulters
// wait on the page's event instead.
//
// On every return the page has no validating thread and everything waiting
// on the page has been released.
func (r *FaultResolver) Resolve(thread *threads.Thread, kind AccessKind, page *Page) Result {
	log := r.logger.With("thread", thread, "page", page, "access", kind)

	if page.IsValid() {
		log.Debug("page already valid")
		return Result{Disposition: Failure, Err: util.ErrAlreadyValid, Reschedule: true}
	}

	page.SetValidatingThread(thread)

	frame := r.frames.FirstAvailable()
	if frame == nil {
		page.SetValidatingThread(nil)
		page.Event().NotifyAll()

		log.Warn("no frame available")
		return Result{Disposition: NoMemory, Err: util.ErrNoMemory, Reschedule: true}
	}
	frame.SetReserved(thread.Task())
	log = log.With("frame", frame.ID())
	log.Debug("frame reserved")

	faultEvent := threads.NewEvent(fmt.Sprintf("fault-%d", page.ID()))
	r.control.Suspend(thread, faultEvent)

	if victim := frame.Page(); victim != nil {
		if frame.IsDirty() {
			log.Debug("swapping out", "victim", victim)

			// references to the victim wait on it until the write is done,
			// a store landing in the frame now would be lost
			victim.SetValid(false)
			victim.SetValidatingThread(thread)

			if err := r.swap.Write(frame, victim, thread); err != nil {
				// victim keeps its frame, its contents never reached the swap file
				r.releaseVictim(victim, true)
				log.Error("swap out failed", "victim", victim, "err", err)
				return r.fail(frame, page, faultEvent, err)
			}
			frame.SetDirty(false)

			if !thread.IsAlive() {
				frame.SetPage(nil)
				r.releaseVictim(victim, false)
				log.Info("thread killed during swap out")
				return r.fail(frame, page, faultEvent, util.ErrThreadTerminated)
			}
		}

		victim.SetValid(false)
		frame.SetPage(nil)
		r.releaseVictim(victim, false)
	}

	frame.SetReferenced(false)

	log.Debug("swapping in")
	if err := r.swap.Read(frame, page, thread); err != nil {
		frame.SetDirty(false)
		log.Error("swap in failed", "err", err)
		return r.fail(frame, page, faultEvent, err)
	}
	if !thread.IsAlive() {
		frame.SetDirty(false)
		log.Info("thread killed during swap in")
		return r.fail(frame, page, faultEvent, util.ErrThreadTerminated)
	}

	frame.SetDirty(kind == Write)
	frame.SetPage(page)
	frame.ClearReserved()
	page.SetValid(true)
	page.SetValidatingThread(nil)

	faultEvent.NotifyAll()
	page.Event().NotifyAll()

	log.Debug("fault resolved")
	return Result{Disposition: Success, Reschedule: true}
}

// fail releases everything the fault claimed so the page and the frame can
// be faulted on again.
func (r *FaultResolver) fail(frame *Frame, page *Page, faultEvent *threads.Event, err error) Result {
	frame.ClearReserved()
	page.SetValidatingThread(nil)

	faultEvent.NotifyAll()
	page.Event().NotifyAll()

	return Result{Disposition: Failure, Err: err, Reschedule: true}
}

// releaseVictim ends the swap out of victim and wakes whoever referred to
// it meanwhile. They retry, faulting the page back in if it left memory.
func (r *FaultResolver) releaseVictim(victim *Page, resident bool) {
	victim.SetValid(resident)
	victim.SetValidatingThread(nil)
	victim.Event().NotifyAll()
}

type FaultResolver struct {
	frames  *FrameTable
	swap    BackingStore
	control ThreadControl
	logger  *slog.Logger
}
