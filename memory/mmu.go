package memory

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jobala/vmsim/threads"
	"github.com/jobala/vmsim/util"
)

type Outcome int

const (
	// page was resident, the access went through
	Hit Outcome = iota
	// a fault on the page is in flight, the thread waits on the page
	Waiting
	// the fault was resolved, the access must be retried
	Faulted
	Failed
	OutOfMemory
)

func (o Outcome) String() string {
	switch o {
	case Hit:
		return "hit"
	case Waiting:
		return "waiting"
	case Faulted:
		return "faulted"
	case Failed:
		return "failed"
	case OutOfMemory:
		return "out-of-memory"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// NewMMU wires the fault path. Every sweepEvery references all referenced
// bits are cleared; zero disables the sweep.
func NewMMU(frames *FrameTable, swap BackingStore, control ThreadControl, sweepEvery int, logger *slog.Logger) *MMU {
	logger = util.OrDefault(logger)

	return &MMU{
		frames:     frames,
		resolver:   NewFaultResolver(frames, swap, control, logger),
		swap:       swap,
		control:    control,
		pageTables: map[*threads.Task]*PageTable{},
		sweepEvery: sweepEvery,
		logger:     logger.With("component", "mmu"),
	}
}

func (m *MMU) Frames() *FrameTable {
	return m.frames
}

// NewPageTable creates and registers the page table of task.
func (m *MMU) NewPageTable(task *threads.Task, pages int) *PageTable {
	pt := NewPageTable(task, pages, m.nextPageId)
	m.nextPageId += int64(pages)
	m.pageTables[task] = pt

	return pt
}

func (m *MMU) PageTable(task *threads.Task) (*PageTable, bool) {
	pt, ok := m.pageTables[task]
	return pt, ok
}

// ReleaseTask frees the frames and swap slots of task and forgets its page
// table. Every slot is released even if some fail; the first error is
// returned.
func (m *MMU) ReleaseTask(task *threads.Task) error {
	released := m.frames.ReleaseTask(task)

	var firstErr error
	if pt, ok := m.pageTables[task]; ok {
		for _, page := range pt.pages {
			if err := m.swap.Release(page); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	delete(m.pageTables, task)

	m.logger.Info("task released", "task", task, "frames", released, "err", firstErr)
	return firstErr
}

// Refer performs an access by thread to page number of its task. A page
// that is already being brought in is never faulted twice: the thread is
// suspended on the page and woken when that fault finishes.
func (m *MMU) Refer(thread *threads.Thread, number int, kind AccessKind) (Outcome, error) {
	if !thread.IsAlive() {
		return Failed, util.ErrThreadTerminated
	}

	page, err := m.lookup(thread, number)
	if err != nil {
		return Failed, err
	}

	m.refs++
	if m.sweepEvery > 0 && m.refs%m.sweepEvery == 0 {
		m.frames.ResetReferenced()
		m.logger.Debug("referenced bits cleared", "refs", m.refs)
	}

	if page.IsValid() {
		frame := page.Frame()
		frame.SetReferenced(true)
		if kind == Write {
			frame.SetDirty(true)
		}
		return Hit, nil
	}

	if page.ValidatingThread() != nil {
		m.control.Suspend(thread, page.Event())
		m.logger.Debug("waiting for in-flight fault", "thread", thread, "page", page, "validating", page.ValidatingThread())
		return Waiting, nil
	}

	res := m.resolver.Resolve(thread, kind, page)
	if res.Reschedule {
		m.control.Dispatch()
	}

	m.logger.Info("page fault", "thread", thread, "page", page, "access", kind, "result", res.Disposition)

	switch res.Disposition {
	case Success:
		return Faulted, nil
	case NoMemory:
		return OutOfMemory, res.Err
	default:
		return Failed, res.Err
	}
}

// Load reads one byte of a page. The byte is only meaningful on a Hit.
func (m *MMU) Load(thread *threads.Thread, number, offset int) (byte, Outcome, error) {
	if err := m.checkOffset(offset); err != nil {
		return 0, Failed, err
	}

	out, err := m.Refer(thread, number, Read)
	if out != Hit {
		return 0, out, err
	}

	page, _ := m.lookup(thread, number)
	return page.Frame().data[offset], Hit, nil
}

// Store writes one byte of a page. The byte is only written on a Hit.
func (m *MMU) Store(thread *threads.Thread, number, offset int, b byte) (Outcome, error) {
	if err := m.checkOffset(offset); err != nil {
		return Failed, err
	}

	out, err := m.Refer(thread, number, Write)
	if out != Hit {
		return out, err
	}

	page, _ := m.lookup(thread, number)
	page.Frame().data[offset] = b
	return Hit, nil
}

// Dump writes the msgpack encoded frame table to path.
func (m *MMU) Dump(path string) error {
	data, err := m.frames.Dump()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing dump: %w", err)
	}

	m.logger.Info("frame table dumped", "path", path, "frames", m.frames.Size())
	return nil
}

func (m *MMU) lookup(thread *threads.Thread, number int) (*Page, error) {
	pt, ok := m.pageTables[thread.Task()]
	if !ok {
		return nil, fmt.Errorf("%s has no page table", thread.Task())
	}
	return pt.Page(number)
}

func (m *MMU) checkOffset(offset int) error {
	if offset < 0 || offset >= m.frames.PageSize() {
		return fmt.Errorf("offset %d: %w", offset, util.ErrOffsetOutOfRange)
	}
	return nil
}

type MMU struct {
	frames     *FrameTable
	resolver   *FaultResolver
	swap       BackingStore
	control    ThreadControl
	pageTables map[*threads.Task]*PageTable
	nextPageId int64
	sweepEvery int
	refs       int
	logger     *slog.Logger
}
