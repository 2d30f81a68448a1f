package disk

import "sync"

// Scheduler serialises concurrent read/write requests per page onto a
// single background worker per page, so the buffer manager never needs to
// hold a lock across disk I/O.
type Scheduler struct {
	reqCh       chan Request
	manager     *Manager
	pageQueue   map[PageID]chan Request
	pageQueueMu sync.Mutex
}

type Request struct {
	PageID PageID
	Data   []byte
	Write  bool
	RespCh chan Response
}

type Response struct {
	Success bool
	Data    []byte
	Err     error
}

func NewScheduler(manager *Manager) *Scheduler {
	ds := &Scheduler{
		reqCh:     make(chan Request, 100),
		manager:   manager,
		pageQueue: make(map[PageID]chan Request),
	}

	go ds.handleRequests()
	return ds
}

func NewRequest(pageID PageID, data []byte, write bool) Request {
	return Request{
		PageID: pageID,
		Data:   data,
		Write:  write,
		RespCh: make(chan Response, 1),
	}
}

func (ds *Scheduler) Schedule(req Request) <-chan Response {
	ds.reqCh <- req
	return req.RespCh
}

func (ds *Scheduler) handleRequests() {
	for req := range ds.reqCh {
		ds.pageQueueMu.Lock()
		queue, ok := ds.pageQueue[req.PageID]
		if !ok {
			queue = make(chan Request, 10)
			ds.pageQueue[req.PageID] = queue
		}
		ds.pageQueueMu.Unlock()

		queue <- req

		if !ok {
			go ds.pageWorker(req.PageID, queue)
		}
	}
}

func (ds *Scheduler) pageWorker(pageID PageID, reqQueue chan Request) {
	for {
		select {
		case req := <-reqQueue:
			if req.Write {
				if err := ds.manager.WritePage(req.PageID, req.Data); err != nil {
					req.RespCh <- Response{Success: false, Err: err}
				} else {
					req.RespCh <- Response{Success: true}
				}
			} else {
				data, err := ds.manager.ReadPage(req.PageID)
				if err != nil {
					req.RespCh <- Response{Success: false, Err: err}
				} else {
					req.RespCh <- Response{Success: true, Data: data}
				}
			}
		default:
			ds.pageQueueMu.Lock()
			delete(ds.pageQueue, pageID)
			ds.pageQueueMu.Unlock()
			return
		}
	}
}
