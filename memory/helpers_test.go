package memory

import (
	"testing"

	"github.com/jobala/vmsim/threads"
	"github.com/stretchr/testify/require"
)

const testPageSize = 16

// fakeStore keeps swapped pages in memory. The hooks run once the transfer
// is done but before the resolver regains control, which is where other
// threads get to run in the cooperative model.
type fakeStore struct {
	contents map[int64][]byte
	writes   []int64
	reads    []int64
	released []int64

	onWrite  func(page *Page)
	onRead   func(page *Page)
	writeErr error
	readErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{contents: map[int64][]byte{}}
}

func (s *fakeStore) Write(frame *Frame, page *Page, thread *threads.Thread) error {
	if s.writeErr == nil {
		data := make([]byte, len(frame.Data()))
		copy(data, frame.Data())
		s.contents[page.ID()] = data
		s.writes = append(s.writes, page.ID())
	}

	if s.onWrite != nil {
		s.onWrite(page)
	}
	return s.writeErr
}

func (s *fakeStore) Read(frame *Frame, page *Page, thread *threads.Thread) error {
	if s.readErr != nil {
		return s.readErr
	}

	clear(frame.Data())
	copy(frame.Data(), s.contents[page.ID()])
	s.reads = append(s.reads, page.ID())

	if s.onRead != nil {
		s.onRead(page)
	}
	return nil
}

func (s *fakeStore) Release(page *Page) error {
	delete(s.contents, page.ID())
	s.released = append(s.released, page.ID())
	return nil
}

type fixture struct {
	sched  *threads.Scheduler
	store  *fakeStore
	frames *FrameTable
	mmu    *MMU
	task   *threads.Task
	pages  *PageTable
	thread *threads.Thread
}

func newFixture(t *testing.T, frames int) *fixture {
	t.Helper()

	sched := threads.NewScheduler(nil)
	store := newFakeStore()
	ft := NewFrameTable(frames, testPageSize)
	mmu := NewMMU(ft, store, sched, 0, nil)

	task := sched.NewTask()
	pages := mmu.NewPageTable(task, 8)
	thread := sched.NewThread(task)
	require.Equal(t, thread, sched.Dispatch())

	return &fixture{
		sched:  sched,
		store:  store,
		frames: ft,
		mmu:    mmu,
		task:   task,
		pages:  pages,
		thread: thread,
	}
}

func (f *fixture) page(t *testing.T, number int) *Page {
	t.Helper()

	p, err := f.pages.Page(number)
	require.NoError(t, err)
	return p
}

// occupy puts page into frame as if an earlier fault had brought it in.
func occupy(frame *Frame, page *Page, dirty bool) {
	frame.SetPage(page)
	frame.SetDirty(dirty)
	page.SetValid(true)
}

func dump(t *testing.T, ft *FrameTable) []byte {
	t.Helper()

	data, err := ft.Dump()
	require.NoError(t, err)
	return data
}
