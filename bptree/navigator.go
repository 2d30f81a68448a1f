package bptree

import "github.com/sutrodb/bptree-index/storage/disk"

// descendToLeafForScan implements descend_to_leaf specialised for the
// read-only routing StartScan needs: every internal page visited is
// unpinned immediately after its child is chosen, and the returned page
// id is not itself pinned — the caller pins it with the mode it needs.
//
// Routing uses findInsertPosition's "smallest i with keys[i] >= probe"
// rule rather than route's strict ">" — a leaf split that lands in the
// middle of a run of duplicate keys promotes a separator equal to
// entries left behind on both sides of it, and route's "equal goes
// right" convention would strand the left side unreachable from a
// forward-only scan. Landing one leaf earlier than route would is
// always safe here: positionScan walks the right-sibling chain forward
// until it finds the first entry satisfying the low bound.
func (t *tree[K]) descendToLeafForScan(probe K) (disk.PageID, error) {
	if t.isRootLeaf {
		return t.rootPageID, nil
	}

	pageID := t.rootPageID
	for {
		guard, err := t.bpm.FetchPageRead(pageID)
		if err != nil {
			return disk.INVALID_PAGE_ID, err
		}

		node, err := decodeInternal[K](guard.Data())
		if err != nil {
			guard.Drop()
			return disk.INVALID_PAGE_ID, err
		}

		idx := findInsertPosition(node.Keys, probe)
		child := node.Children[idx]
		level := node.Level
		guard.Drop()

		if level == 1 {
			return child, nil
		}
		pageID = child
	}
}
