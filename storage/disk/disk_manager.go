package disk

import (
	"fmt"
	"os"
	"sync"
)

// NewManager manages a swap file made of pageSize slots. Pages get a slot on
// first use and keep it until deleted.
func NewManager(file *os.File, pageSize int) *diskManager {
	if pageSize <= 0 {
		pageSize = DEFAULT_PAGE_SIZE
	}

	return &diskManager{
		swapFile:     file,
		pageSize:     pageSize,
		pageCapacity: DEFAULT_PAGE_CAPACITY,
		freeSlots:    []int{},
		pages:        map[int64]int{},
	}
}

func (dm *diskManager) writePage(pageId int64, data []byte) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if len(data) > dm.pageSize {
		return fmt.Errorf("page %d: %d bytes do not fit in a %d byte slot", pageId, len(data), dm.pageSize)
	}

	offset, err := dm.slotFor(pageId)
	if err != nil {
		return err
	}

	if _, err := dm.swapFile.WriteAt(data, int64(offset)); err != nil {
		return fmt.Errorf("error writing at offset %d: %w", offset, err)
	}

	return nil
}

func (dm *diskManager) readPage(pageId int64) ([]byte, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	offset, err := dm.slotFor(pageId)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, dm.pageSize)
	if _, err := dm.swapFile.ReadAt(buf, int64(offset)); err != nil {
		return nil, fmt.Errorf("error reading from offset %d: %w", offset, err)
	}

	return buf, nil
}

// deletePage zeroes the slot of pageId and hands it back to the free list.
func (dm *diskManager) deletePage(pageId int64) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	offset, ok := dm.pages[pageId]
	if !ok {
		return nil
	}

	if _, err := dm.swapFile.WriteAt(make([]byte, dm.pageSize), int64(offset)); err != nil {
		return fmt.Errorf("error clearing offset %d: %w", offset, err)
	}
	dm.freeSlots = append(dm.freeSlots, offset)
	delete(dm.pages, pageId)

	return nil
}

// slotFor must be called with mu held.
func (dm *diskManager) slotFor(pageId int64) (int, error) {
	if offset, ok := dm.pages[pageId]; ok {
		return offset, nil
	}

	offset, err := dm.allocatePage()
	if err != nil {
		return -1, err
	}
	dm.pages[pageId] = offset

	return offset, nil
}

func (dm *diskManager) allocatePage() (int, error) {
	if len(dm.freeSlots) > 0 {
		offset := dm.freeSlots[0]
		dm.freeSlots = dm.freeSlots[1:]

		return offset, nil
	}

	if len(dm.pages)+1 > dm.pageCapacity {
		dm.pageCapacity *= 2
	}
	if err := dm.ensureSize(int64(dm.pageCapacity) * int64(dm.pageSize)); err != nil {
		return -1, err
	}

	return dm.getNextOffset(), nil
}

func (dm *diskManager) ensureSize(size int64) error {
	info, err := dm.swapFile.Stat()
	if err != nil {
		return fmt.Errorf("error reading swap file size: %w", err)
	}
	if info.Size() >= size {
		return nil
	}

	if err := dm.swapFile.Truncate(size); err != nil {
		return fmt.Errorf("error resizing swap file: %w", err)
	}
	return nil
}

func (dm *diskManager) getNextOffset() int {
	return len(dm.pages) * dm.pageSize
}

type diskManager struct {
	mu           sync.Mutex
	swapFile     *os.File
	pageSize     int
	pages        map[int64]int
	freeSlots    []int
	pageCapacity int
}
