package bptree

import (
	"github.com/sutrodb/bptree-index/storage/buffer"
	"github.com/sutrodb/bptree-index/storage/disk"
	"github.com/sutrodb/bptree-index/storage/relation"
)

// Op is one of the four scan comparison operators. StartScan restricts
// low_op to {GT, GTE} and high_op to {LT, LTE}.
type Op int

const (
	GT Op = iota
	GTE
	LT
	LTE
)

const invalidEntry = -1

func (t *tree[K]) satisfiesLow(k K) bool {
	switch t.lowOp {
	case GT:
		return t.lowVal.Less(k)
	case GTE:
		return !k.Less(t.lowVal)
	default:
		return false
	}
}

func (t *tree[K]) satisfiesHigh(k K) bool {
	switch t.highOp {
	case LT:
		return k.Less(t.highVal)
	case LTE:
		return !t.highVal.Less(k)
	default:
		return false
	}
}

// startScan implements §4.5 start_scan.
func (t *tree[K]) startScan(lowVal K, lowOp Op, highVal K, highOp Op) error {
	if t.scanExecuting {
		t.endScan()
	}

	if lowOp != GT && lowOp != GTE {
		return ErrBadOpcodes
	}
	if highOp != LT && highOp != LTE {
		return ErrBadOpcodes
	}
	if highVal.Less(lowVal) {
		return ErrBadScanRange
	}

	t.lowVal, t.lowOp = lowVal, lowOp
	t.highVal, t.highOp = highVal, highOp

	leafPageID, err := t.descendToLeafForScan(lowVal)
	if err != nil {
		return err
	}

	return t.positionScan(leafPageID)
}

// positionScan walks forward from pageID along the right-sibling chain
// looking for the first entry satisfying the low predicate, leaving that
// leaf pinned on success.
func (t *tree[K]) positionScan(pageID disk.PageID) error {
	for {
		guard, err := t.bpm.FetchPageRead(pageID)
		if err != nil {
			return err
		}

		node, err := decodeLeaf[K](guard.Data())
		if err != nil {
			guard.Drop()
			return err
		}

		for entry := 0; entry < node.Len; entry++ {
			if t.satisfiesLow(node.Keys[entry]) {
				t.currentGuard = guard
				t.currentPageNo = pageID
				t.nextEntry = entry
				t.scanExecuting = true
				return nil
			}
		}

		next := node.RightSib
		guard.Drop()

		if next == disk.INVALID_PAGE_ID {
			if t.isRootLeaf {
				t.scanExecuting = false
				return ErrNoSuchKeyFound
			}

			t.scanExecuting = true
			t.currentGuard = nil
			t.currentPageNo = disk.INVALID_PAGE_ID
			t.nextEntry = invalidEntry
			return nil
		}

		pageID = next
	}
}

// scanNext implements §4.5 scan_next.
func (t *tree[K]) scanNext() (relation.RID, error) {
	if !t.scanExecuting {
		return relation.RID{}, ErrScanNotInitialized
	}
	if t.nextEntry == invalidEntry {
		return relation.RID{}, ErrIndexScanCompleted
	}

	node, err := decodeLeaf[K](t.currentGuard.Data())
	if err != nil {
		return relation.RID{}, err
	}

	if !t.satisfiesHigh(node.Keys[t.nextEntry]) {
		t.nextEntry = invalidEntry
		return relation.RID{}, ErrIndexScanCompleted
	}

	rid := node.Rids[t.nextEntry]
	t.nextEntry++

	if t.nextEntry < node.Len {
		if !t.satisfiesHigh(node.Keys[t.nextEntry]) {
			t.nextEntry = invalidEntry
		}
		return rid, nil
	}

	next := node.RightSib
	if next == disk.INVALID_PAGE_ID {
		t.nextEntry = invalidEntry
		return rid, nil
	}

	t.currentGuard.Drop()

	nextGuard, err := t.bpm.FetchPageRead(next)
	if err != nil {
		return relation.RID{}, err
	}

	nextNode, err := decodeLeaf[K](nextGuard.Data())
	if err != nil {
		nextGuard.Drop()
		return relation.RID{}, err
	}

	t.currentGuard = nextGuard
	t.currentPageNo = next

	if nextNode.Len == 0 || !t.satisfiesHigh(nextNode.Keys[0]) {
		t.nextEntry = invalidEntry
	} else {
		t.nextEntry = 0
	}

	return rid, nil
}

// endScan implements §4.5 end_scan.
func (t *tree[K]) endScan() error {
	if !t.scanExecuting {
		return ErrScanNotInitialized
	}

	if t.currentGuard != nil {
		t.currentGuard.Drop()
		t.currentGuard = nil
	}

	t.scanExecuting = false
	t.nextEntry = invalidEntry
	t.currentPageNo = disk.INVALID_PAGE_ID

	return nil
}

// scanFields is embedded in tree[K] to hold §4.5's cursor state.
type scanFields[K Key[K]] struct {
	scanExecuting bool
	lowOp, highOp Op
	lowVal        K
	highVal       K
	currentPageNo disk.PageID
	currentGuard  *buffer.ReadPageGuard
	nextEntry     int
}
