// Package disk implements the paged-file collaborator: page allocation,
// page read/write and page-existence queries over a single OS file.
package disk

import (
	"fmt"
	"os"
)

// PAGE_SIZE is the fixed size, in bytes, of every page in an index file.
const PAGE_SIZE = 4096

// PageID identifies a page within a file. Page 0 is never used, page 1 is
// reserved for the meta page and page 2 is the initial root.
type PageID = int64

const INVALID_PAGE_ID PageID = -1

const DEFAULT_PAGE_CAPACITY = 16

// NewManager wraps an already-open OS file as a paged file.
func NewManager(file *os.File) *Manager {
	return &Manager{
		dbFile:       file,
		pageCapacity: DEFAULT_PAGE_CAPACITY,
		freeSlots:    []int{},
		pages:        map[PageID]int{},
	}
}

// WritePage persists data for pageID, allocating a slot on first write.
func (dm *Manager) WritePage(pageID PageID, data []byte) error {
	offset, pageFound := dm.pages[pageID]

	if !pageFound {
		var err error
		offset, err = dm.allocatePage()
		if err != nil {
			return err
		}
		dm.pages[pageID] = offset
	}

	if _, err := dm.dbFile.WriteAt(data, int64(offset)); err != nil {
		return fmt.Errorf("error writing at offset %d: %v", offset, err)
	}

	return nil
}

// ReadPage returns the PAGE_SIZE bytes stored for pageID, allocating a
// (zeroed) slot on first read so callers can read-before-write a freshly
// allocated page.
func (dm *Manager) ReadPage(pageID PageID) ([]byte, error) {
	offset, pageFound := dm.pages[pageID]

	if !pageFound {
		var err error
		offset, err = dm.allocatePage()
		if err != nil {
			return nil, err
		}
		dm.pages[pageID] = offset
	}

	buf := make([]byte, PAGE_SIZE)
	if _, err := dm.dbFile.ReadAt(buf, int64(offset)); err != nil {
		return nil, fmt.Errorf("error reading from offset %d: %v", offset, err)
	}

	return buf, nil
}

// Exists reports whether pageID has ever been written or read.
func (dm *Manager) Exists(pageID PageID) bool {
	_, ok := dm.pages[pageID]
	return ok
}

func (dm *Manager) allocatePage() (int, error) {
	if len(dm.freeSlots) > 0 {
		offset := dm.freeSlots[0]
		dm.freeSlots = dm.freeSlots[1:]

		return offset, nil
	}

	if len(dm.pages)+1 > dm.pageCapacity {
		dm.pageCapacity *= 2
		if err := os.Truncate(dm.dbFile.Name(), int64(dm.pageCapacity)*PAGE_SIZE); err != nil {
			return -1, fmt.Errorf("error resizing db file: %v", err)
		}
	}

	return dm.getNextOffset(), nil
}

func (dm *Manager) getNextOffset() int {
	return len(dm.pages) * PAGE_SIZE
}

func (dm *Manager) Close() error {
	return dm.dbFile.Close()
}

func (dm *Manager) Name() string {
	return dm.dbFile.Name()
}

type Manager struct {
	dbFile       *os.File
	pages        map[PageID]int
	freeSlots    []int
	pageCapacity int
}
