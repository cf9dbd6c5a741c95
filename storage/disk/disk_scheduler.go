package disk

import (
	"errors"
	"sync"
)

var ErrSchedulerClosed = errors.New("disk scheduler is shut down")

// NewScheduler starts the dispatcher goroutine. Requests for the same page
// are served in the order they were scheduled; different pages proceed in
// parallel.
func NewScheduler(diskManager *diskManager) *DiskScheduler {
	ds := &DiskScheduler{
		reqCh:       make(chan DiskReq, 100),
		pageQueue:   make(map[int64]chan DiskReq),
		diskManager: diskManager,
		done:        make(chan struct{}),
	}

	go ds.handleDiskReq()
	return ds
}

func NewRequest(pageId int64, data []byte, isWrite bool) DiskReq {
	return DiskReq{
		PageId: pageId,
		Data:   data,
		Write:  isWrite,
		RespCh: make(chan DiskResp, 1),
	}
}

// NewDeleteRequest frees the slot of pageId so another page can reuse it.
func NewDeleteRequest(pageId int64) DiskReq {
	return DiskReq{
		PageId: pageId,
		Delete: true,
		RespCh: make(chan DiskResp, 1),
	}
}

// Schedule does not wait for the request to be served; receive from the
// returned channel for the result. After Shutdown every request fails with
// ErrSchedulerClosed.
func (ds *DiskScheduler) Schedule(req DiskReq) <-chan DiskResp {
	ds.closeMu.RLock()
	defer ds.closeMu.RUnlock()

	if ds.closed {
		respCh := make(chan DiskResp, 1)
		respCh <- DiskResp{Success: false, Err: ErrSchedulerClosed}
		return respCh
	}

	ds.reqCh <- req
	return req.RespCh
}

// Shutdown stops accepting requests and waits for queued ones to drain.
func (ds *DiskScheduler) Shutdown() {
	ds.closeMu.Lock()
	if !ds.closed {
		ds.closed = true
		close(ds.reqCh)
	}
	ds.closeMu.Unlock()

	<-ds.done
	ds.workers.Wait()
}

func (ds *DiskScheduler) handleDiskReq() {
	defer close(ds.done)

	for req := range ds.reqCh {
		ds.pageQueueMu.Lock()
		queue, ok := ds.pageQueue[req.PageId]
		if !ok {
			queue = make(chan DiskReq, 10)
			ds.pageQueue[req.PageId] = queue
		}

		// !ok means we created a new page queue, therefore we should start a
		// new worker to handle the queue's page requests
		if !ok {
			ds.workers.Add(1)
			go ds.pageWorker(req.PageId, queue)
		}

		// enqueue under the lock so an idle worker cannot retire the queue
		// between lookup and send
		queue <- req
		ds.pageQueueMu.Unlock()
	}
}

func (ds *DiskScheduler) pageWorker(pageId int64, reqQueue chan DiskReq) {
	defer ds.workers.Done()

	for {
		select {
		case req := <-reqQueue:
			ds.serve(req)

		default:
			// done handling requests for this page, remove the queue unless
			// the dispatcher handed it a request in the meantime
			ds.pageQueueMu.Lock()
			if len(reqQueue) > 0 {
				ds.pageQueueMu.Unlock()
				continue
			}
			delete(ds.pageQueue, pageId)
			ds.pageQueueMu.Unlock()
			return
		}
	}
}

func (ds *DiskScheduler) serve(req DiskReq) {
	if req.Delete {
		if err := ds.diskManager.deletePage(req.PageId); err != nil {
			req.RespCh <- DiskResp{Success: false, Err: err}
		} else {
			req.RespCh <- DiskResp{Success: true}
		}
		return
	}

	if req.Write {
		if err := ds.diskManager.writePage(req.PageId, req.Data); err != nil {
			req.RespCh <- DiskResp{Success: false, Err: err}
		} else {
			req.RespCh <- DiskResp{Success: true}
		}
		return
	}

	if data, err := ds.diskManager.readPage(req.PageId); err != nil {
		req.RespCh <- DiskResp{Success: false, Err: err}
	} else {
		req.RespCh <- DiskResp{Success: true, Data: data}
	}
}

type DiskScheduler struct {
	reqCh       chan DiskReq
	diskManager *diskManager

	pageQueue   map[int64]chan DiskReq
	pageQueueMu sync.Mutex

	workers sync.WaitGroup
	closeMu sync.RWMutex
	closed  bool
	done    chan struct{}
}

type DiskReq struct {
	PageId int64
	Data   []byte
	Write  bool
	Delete bool
	RespCh chan DiskResp
}

type DiskResp struct {
	Success bool
	Data    []byte
	Err     error
}
