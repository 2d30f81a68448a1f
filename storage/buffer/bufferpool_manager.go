// Package buffer implements the buffer manager: a fixed pool of page
// frames backed by a disk scheduler, with LRU-K eviction and a pin-count
// discipline enforced through ReadPageGuard/WritePageGuard.
package buffer

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/sutrodb/bptree-index/storage/disk"
)

// Manager owns a fixed number of frames and serves FetchPageRead/
// FetchPageWrite requests against a disk.Scheduler, evicting an unpinned
// frame via LRU-K once no free frame is left, and waiting when every
// frame is pinned.
type Manager struct {
	mu         sync.Mutex
	cond       sync.Cond
	frames     []*frame
	pageTable  map[disk.PageID]int
	freeFrames []int
	nextPageID atomic.Int64
	replacer   *lrukReplacer
	scheduler  *disk.Scheduler
	log        *logrus.Entry
}

// NewManager allocates size frames and wires them to scheduler, evicting
// under the LRU-K policy with history depth k.
func NewManager(size int, k int, scheduler *disk.Scheduler) *Manager {
	frames := make([]*frame, size)
	freeFrames := make([]int, size)

	for i := 0; i < size; i++ {
		frames[i] = &frame{
			id:   i,
			data: make([]byte, disk.PAGE_SIZE),
		}
		freeFrames[i] = i
	}

	bpm := &Manager{
		frames:     frames,
		pageTable:  make(map[disk.PageID]int),
		freeFrames: freeFrames,
		replacer:   NewLrukReplacer(size, k),
		scheduler:  scheduler,
		log:        logrus.WithField("component", "bufferpool"),
	}
	bpm.cond.L = &bpm.mu
	// pages 0-2 are reserved (unused, meta, initial root); the counter
	// starts here so NewPageID's first call returns 3.
	bpm.nextPageID.Store(2)

	return bpm
}

// NewPageID returns the next unused page id. Page 0 is reserved and
// never handed out.
func (b *Manager) NewPageID() disk.PageID {
	return b.nextPageID.Add(1)
}

// FetchPageRead pins pageID and returns a guard holding the frame's read
// lock. The caller must call Drop on the guard exactly once.
func (b *Manager) FetchPageRead(pageID disk.PageID) (*ReadPageGuard, error) {
	f, err := b.fetch(pageID)
	if err != nil {
		return nil, err
	}

	f.mu.RLock()
	return newReadPageGuard(f, b), nil
}

// FetchPageWrite pins pageID and returns a guard holding the frame's
// write lock. The caller must call Drop on the guard exactly once.
func (b *Manager) FetchPageWrite(pageID disk.PageID) (*WritePageGuard, error) {
	f, err := b.fetch(pageID)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.dirty = true
	return newWritePageGuard(f, b), nil
}

func (b *Manager) fetch(pageID disk.PageID) (*frame, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for {
		if id, ok := b.pageTable[pageID]; ok {
			f := b.frames[id]
			f.pin()
			b.replacer.recordAccess(f.id)
			b.replacer.setEvictable(f.id, false)

			return f, nil
		}

		f, err := b.claimFrame()
		if err != nil {
			return nil, err
		}

		if f != nil {
			delete(b.pageTable, f.pageID)
			b.pageTable[pageID] = f.id

			f.reset()
			f.pin()
			f.pageID = pageID
			b.replacer.recordAccess(f.id)
			b.replacer.setEvictable(f.id, false)

			respCh := b.scheduler.Schedule(disk.NewRequest(pageID, nil, false))
			resp := <-respCh
			if resp.Err != nil {
				return nil, resp.Err
			}
			copy(f.data, resp.Data)

			return f, nil
		}

		b.log.Debug("no frame available, waiting for one to be unpinned")
		b.cond.Wait()
	}
}

// claimFrame returns a frame ready for reassignment: a free frame if one
// exists, otherwise an evicted one (flushed first if dirty). Returns nil
// if every frame is pinned.
func (b *Manager) claimFrame() (*frame, error) {
	if len(b.freeFrames) > 0 {
		id := b.freeFrames[0]
		b.freeFrames = b.freeFrames[1:]
		return b.frames[id], nil
	}

	id, err := b.replacer.evict()
	if err != nil {
		return nil, err
	}
	if id == INVALID_FRAME_ID {
		return nil, nil
	}

	f := b.frames[id]
	if err := b.flush(f); err != nil {
		return nil, err
	}

	return f, nil
}

// releaseFrame is called by a guard's Drop: it unpins the frame and, if
// the pin count drops to zero, marks it evictable again.
func (b *Manager) releaseFrame(f *frame) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if f.unpin() == 0 {
		b.replacer.setEvictable(f.id, true)
	}

	b.cond.Signal()
}

func (b *Manager) flush(f *frame) error {
	if !f.dirty {
		return nil
	}

	respCh := b.scheduler.Schedule(disk.NewRequest(f.pageID, f.data, true))
	resp := <-respCh

	return resp.Err
}

// FlushAll forces every dirty frame to disk, e.g. before closing an
// index file.
func (b *Manager) FlushAll() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, f := range b.frames {
		if err := b.flush(f); err != nil {
			return err
		}
	}

	return nil
}
