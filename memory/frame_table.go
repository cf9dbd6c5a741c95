package memory

import (
	"github.com/jobala/vmsim/storage/disk"
	"github.com/jobala/vmsim/threads"
	"github.com/jobala/vmsim/util"
)

func NewFrameTable(size, pageSize int) *FrameTable {
	frames := make([]*Frame, size)

	for i := range size {
		frames[i] = &Frame{
			id:   i,
			data: make([]byte, pageSize),
		}
	}

	return &FrameTable{
		frames:   frames,
		pageSize: pageSize,
	}
}

func (ft *FrameTable) Size() int {
	return len(ft.frames)
}

func (ft *FrameTable) PageSize() int {
	return ft.pageSize
}

// Frame returns the frame at index i, or nil if i is out of range.
func (ft *FrameTable) Frame(i int) *Frame {
	if i < 0 || i >= len(ft.frames) {
		return nil
	}
	return ft.frames[i]
}

// FirstAvailable scans the frames in index order and returns the first one
// that is neither referenced nor reserved.
func (ft *FrameTable) FirstAvailable() *Frame {
	for _, f := range ft.frames {
		if !f.referenced && !f.IsReserved() {
			return f
		}
	}
	return nil
}

func (ft *FrameTable) ResetReferenced() {
	for _, f := range ft.frames {
		f.referenced = false
	}
}

// ReleaseTask frees every frame holding a page of task. Frames reserved by
// an in-flight fault are left to that fault.
func (ft *FrameTable) ReleaseTask(task *threads.Task) int {
	released := 0
	for _, f := range ft.frames {
		if f.page == nil || f.page.task != task || f.IsReserved() {
			continue
		}

		f.page.SetValid(false)
		f.reset()
		released++
	}

	return released
}

func (ft *FrameTable) Snapshot() []FrameState {
	res := make([]FrameState, len(ft.frames))

	for i, f := range ft.frames {
		state := FrameState{
			Id:         f.id,
			PageId:     disk.INVALID_PAGE_ID,
			Referenced: f.referenced,
			Dirty:      f.dirty,
		}
		if f.page != nil {
			state.PageId = f.page.id
		}
		if f.reserved != nil {
			state.ReservedBy = f.reserved.ID()
		}
		res[i] = state
	}

	return res
}

// Dump encodes the bookkeeping of every frame with msgpack. Frame contents
// are not included.
func (ft *FrameTable) Dump() ([]byte, error) {
	return util.ToBytes(ft.Snapshot())
}

func LoadDump(data []byte) ([]FrameState, error) {
	return util.ToStruct[[]FrameState](data)
}

type FrameTable struct {
	frames   []*Frame
	pageSize int
}

// FrameState is a frame's bookkeeping at a point in time. PageId is
// disk.INVALID_PAGE_ID for an empty frame and ReservedBy is 0 when the frame
// is not reserved.
type FrameState struct {
	Id         int   `msgpack:"id"`
	PageId     int64 `msgpack:"page_id"`
	Referenced bool  `msgpack:"referenced"`
	Dirty      bool  `msgpack:"dirty"`
	ReservedBy int   `msgpack:"reserved_by"`
}
