package disk

import (
	"fmt"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiskManager(t *testing.T) {
	t.Run("test page allocation", func(t *testing.T) {
		swapFile := CreateSwapFile(t)

		dm := NewManager(swapFile, DEFAULT_PAGE_SIZE)
		offset1, err := dm.allocatePage()
		dm.pages[0] = offset1
		assert.NoError(t, err)

		offset2, err := dm.allocatePage()
		dm.pages[1] = offset2
		assert.NoError(t, err)

		assert.Equal(t, 0, offset1)
		assert.Equal(t, 4096, offset2)
	})

	t.Run("allocate reuses free slots", func(t *testing.T) {
		swapFile := CreateSwapFile(t)

		dm := NewManager(swapFile, DEFAULT_PAGE_SIZE)
		dm.freeSlots = []int{8192}

		offset, err := dm.allocatePage()
		assert.NoError(t, err)

		assert.Equal(t, 8192, offset)
		assert.Empty(t, dm.freeSlots)
	})

	t.Run("test swap file gets resized when full", func(t *testing.T) {
		// creates a 4kb file
		swapFile := CreateSwapFile(t)

		dm := NewManager(swapFile, DEFAULT_PAGE_SIZE)
		dm.pageCapacity = 1
		dm.pages = map[int64]int{
			0: 0,
		}

		offset, err := dm.allocatePage()
		assert.NoError(t, err)

		assert.Equal(t, 4096, offset)
		assert.Equal(t, 2, dm.pageCapacity)

		fileInfo, err := os.Stat(swapFile.Name())
		assert.NoError(t, err)
		assert.Equal(t, int64(DEFAULT_PAGE_SIZE)*2, fileInfo.Size())
	})

	t.Run("test reading and writing a page", func(t *testing.T) {
		swapFile := CreateSwapFile(t)

		dm := NewManager(swapFile, DEFAULT_PAGE_SIZE)
		dm.pageCapacity = 1

		buf := make([]byte, DEFAULT_PAGE_SIZE)
		copy(buf, []byte("hello world"))

		err := dm.writePage(1, buf)
		assert.NoError(t, err)

		res, err := dm.readPage(1)
		assert.NoError(t, err)

		assert.Equal(t, buf, res)
	})

	t.Run("unwritten pages read as zeroes", func(t *testing.T) {
		swapFile := CreateSwapFile(t)

		dm := NewManager(swapFile, 64)
		res, err := dm.readPage(42)
		assert.NoError(t, err)
		assert.Equal(t, make([]byte, 64), res)
	})

	t.Run("oversized writes are rejected", func(t *testing.T) {
		swapFile := CreateSwapFile(t)

		dm := NewManager(swapFile, 64)
		err := dm.writePage(1, make([]byte, 65))
		assert.Error(t, err)
	})

	t.Run("test page deletion", func(t *testing.T) {
		swapFile := CreateSwapFile(t)

		dm := NewManager(swapFile, DEFAULT_PAGE_SIZE)
		dm.pageCapacity = 1
		dm.pages[1] = 0
		assert.Equal(t, len(dm.freeSlots), 0)

		assert.NoError(t, dm.deletePage(1))
		assert.Equal(t, len(dm.freeSlots), 1)
	})

	t.Run("deleted slots are reused zeroed", func(t *testing.T) {
		swapFile := CreateSwapFile(t)

		dm := NewManager(swapFile, 8)
		assert.NoError(t, dm.writePage(1, []byte("old data")))
		assert.NoError(t, dm.deletePage(1))

		res, err := dm.readPage(2)
		assert.NoError(t, err)
		assert.Equal(t, make([]byte, 8), res)
		assert.Equal(t, 0, dm.pages[2])
		assert.Empty(t, dm.freeSlots)
	})
}

func CreateSwapFile(t *testing.T) *os.File {
	t.Helper()
	swapPath := path.Join(t.TempDir(), "test.swap")

	file, err := os.OpenFile(swapPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		panic(fmt.Sprintf("failed creating swap file\n%v", err))
	}
	t.Cleanup(func() {
		_ = file.Close()
	})

	// create 4kb file
	_ = os.Truncate(file.Name(), DEFAULT_PAGE_SIZE)
	fileInfo, err := os.Stat(file.Name())
	assert.NoError(t, err)
	assert.Equal(t, int64(DEFAULT_PAGE_SIZE), fileInfo.Size())
	return file
}
