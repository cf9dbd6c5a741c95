package memory

import "github.com/jobala/vmsim/threads"

func (f *Frame) ID() int {
	return f.id
}

func (f *Frame) Data() []byte {
	return f.data
}

// Page returns the page whose contents f currently holds.
func (f *Frame) Page() *Page {
	return f.page
}

// SetPage makes p the occupant of f. Passing nil detaches the current one.
func (f *Frame) SetPage(p *Page) {
	if f.page != nil && f.page.frame == f {
		f.page.frame = nil
	}

	f.page = p
	if p != nil {
		p.frame = f
	}
}

func (f *Frame) IsReferenced() bool {
	return f.referenced
}

func (f *Frame) SetReferenced(referenced bool) {
	f.referenced = referenced
}

func (f *Frame) IsDirty() bool {
	return f.dirty
}

func (f *Frame) SetDirty(dirty bool) {
	f.dirty = dirty
}

func (f *Frame) IsReserved() bool {
	return f.reserved != nil
}

// Reserved returns the task holding the reservation on f.
func (f *Frame) Reserved() *threads.Task {
	return f.reserved
}

func (f *Frame) SetReserved(task *threads.Task) {
	f.reserved = task
}

func (f *Frame) ClearReserved() {
	f.reserved = nil
}

func (f *Frame) IsFree() bool {
	return f.page == nil && f.reserved == nil
}

func (f *Frame) reset() {
	f.SetPage(nil)
	f.referenced = false
	f.dirty = false
	clear(f.data)
}

type Frame struct {
	id         int
	data       []byte
	page       *Page
	referenced bool
	dirty      bool
	reserved   *threads.Task
}
