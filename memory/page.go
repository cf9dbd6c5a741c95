package memory

import (
	"fmt"

	"github.com/jobala/vmsim/threads"
	"github.com/jobala/vmsim/util"
)

func newPage(task *threads.Task, number int, id int64) *Page {
	return &Page{
		id:     id,
		number: number,
		task:   task,
		event:  threads.NewEvent(fmt.Sprintf("page-%d", id)),
	}
}

func (p *Page) ID() int64 {
	return p.id
}

func (p *Page) Number() int {
	return p.number
}

func (p *Page) Task() *threads.Task {
	return p.task
}

func (p *Page) IsValid() bool {
	return p.valid
}

func (p *Page) SetValid(valid bool) {
	p.valid = valid
}

// ValidatingThread is the thread resolving a fault on p, nil when no fault
// is in flight.
func (p *Page) ValidatingThread() *threads.Thread {
	return p.validatingThread
}

func (p *Page) SetValidatingThread(t *threads.Thread) {
	p.validatingThread = t
}

// Event is notified whenever a fault on p finishes, successfully or not.
func (p *Page) Event() *threads.Event {
	return p.event
}

// Frame returns the frame holding p's contents, if any.
func (p *Page) Frame() *Frame {
	return p.frame
}

func (p *Page) String() string {
	return fmt.Sprintf("page-%d(%s#%d)", p.id, p.task, p.number)
}

type Page struct {
	id               int64
	number           int
	task             *threads.Task
	valid            bool
	validatingThread *threads.Thread
	event            *threads.Event
	frame            *Frame
}

// NewPageTable creates the pages of task. Page n is stored in the backing
// store under idBase+n.
func NewPageTable(task *threads.Task, pages int, idBase int64) *PageTable {
	pt := &PageTable{
		task:  task,
		pages: make([]*Page, pages),
	}

	for i := range pages {
		pt.pages[i] = newPage(task, i, idBase+int64(i))
	}

	return pt
}

func (pt *PageTable) Page(number int) (*Page, error) {
	if number < 0 || number >= len(pt.pages) {
		return nil, fmt.Errorf("%s page %d: %w", pt.task, number, util.ErrPageOutOfRange)
	}

	return pt.pages[number], nil
}

func (pt *PageTable) Task() *threads.Task {
	return pt.task
}

func (pt *PageTable) Size() int {
	return len(pt.pages)
}

type PageTable struct {
	task  *threads.Task
	pages []*Page
}
