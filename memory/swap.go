package memory

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jobala/vmsim/storage/disk"
	"github.com/jobala/vmsim/threads"
	"github.com/jobala/vmsim/util"
)

// BackingStore moves page contents between frames and stable storage. Both
// calls block until the transfer is done, and finish even if thread is
// killed in the meantime.
type BackingStore interface {
	Write(frame *Frame, page *Page, thread *threads.Thread) error
	Read(frame *Frame, page *Page, thread *threads.Thread) error
	// Release drops the stored copy of page once its task is gone.
	Release(page *Page) error
}

func NewSwapFile(scheduler *disk.DiskScheduler, logger *slog.Logger) *SwapFile {
	return &SwapFile{
		scheduler: scheduler,
		logger:    util.OrDefault(logger).With("component", "swap"),
	}
}

// OpenSwapFile creates (or truncates) the file at path and starts a disk
// scheduler on it. Close releases both.
func OpenSwapFile(path string, pageSize int, logger *slog.Logger) (*SwapFile, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("error opening swap file: %w", err)
	}

	sf := NewSwapFile(disk.NewScheduler(disk.NewManager(file, pageSize)), logger)
	sf.file = file
	return sf, nil
}

func (s *SwapFile) Write(frame *Frame, page *Page, thread *threads.Thread) error {
	data := make([]byte, len(frame.data))
	copy(data, frame.data)

	resp := <-s.scheduler.Schedule(disk.NewRequest(page.ID(), data, true))
	if !resp.Success {
		return util.NewSwapError(page.ID(), resp.Err)
	}

	s.logger.Debug("page written", "page", page, "frame", frame.ID(), "thread", thread)
	return nil
}

func (s *SwapFile) Read(frame *Frame, page *Page, thread *threads.Thread) error {
	resp := <-s.scheduler.Schedule(disk.NewRequest(page.ID(), nil, false))
	if !resp.Success {
		return util.NewSwapError(page.ID(), resp.Err)
	}
	copy(frame.data, resp.Data)

	s.logger.Debug("page read", "page", page, "frame", frame.ID(), "thread", thread)
	return nil
}

func (s *SwapFile) Release(page *Page) error {
	resp := <-s.scheduler.Schedule(disk.NewDeleteRequest(page.ID()))
	if !resp.Success {
		return util.NewSwapError(page.ID(), resp.Err)
	}
	return nil
}

func (s *SwapFile) Close() error {
	s.scheduler.Shutdown()
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

type SwapFile struct {
	scheduler *disk.DiskScheduler
	file      *os.File
	logger    *slog.Logger
}
