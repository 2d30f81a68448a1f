package bptree

import (
	"github.com/sutrodb/bptree-index/storage/disk"
	"github.com/sutrodb/bptree-index/storage/relation"
)

// findInsertPosition returns the smallest i with keys[i] >= probe, or
// len(keys) if no such index exists. Used as the routing rule for a
// scan's lower-bound descent (descendToLeafForScan), where landing on
// the leftmost child that could hold probe matters more than matching
// insert's routing. Split propagation does not use it: insertKeyChild
// takes its position from the caller.
func findInsertPosition[K Key[K]](keys []K, probe K) int {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := (lo + hi) / 2
		if keys[mid].Less(probe) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// findInsertPositionLeaf returns the smallest i such that entry i is
// >= (probeKey, probeRid) under (key, rid.page_number) lexicographic
// order, so that inserting at that index preserves ascending order among
// duplicate keys (S4).
func findInsertPositionLeaf[K Key[K]](keys []K, rids []relation.RID, probeKey K, probeRid relation.RID) int {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := (lo + hi) / 2

		before := keys[mid].Less(probeKey) ||
			(keys[mid].Equal(probeKey) && rids[mid].PageNumber < probeRid.PageNumber)

		if before {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// route returns the smallest i with keys[i] > probe, or len(keys) if
// none: strict-left, non-strict-right. Used for insert's point descent
// (§4.3), where landing exactly on the child a prior insert of the same
// key would have used matters more than favoring the leftmost subtree.
// Scan's lower-bound descent uses findInsertPosition instead.
func route[K Key[K]](keys []K, probe K) int {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := (lo + hi) / 2
		if probe.Less(keys[mid]) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// insertKeyRID inserts (key, rid) into the sorted parallel Keys/Rids
// arrays at the position found by findInsertPositionLeaf, shifting the
// tail right.
func insertKeyRID[K Key[K]](keys []K, rids []relation.RID, key K, rid relation.RID) ([]K, []relation.RID, int) {
	pos := findInsertPositionLeaf(keys, rids, key, rid)

	keys = append(keys, key)
	copy(keys[pos+1:], keys[pos:len(keys)-1])
	keys[pos] = key

	rids = append(rids, rid)
	copy(rids[pos+1:], rids[pos:len(rids)-1])
	rids[pos] = rid

	return keys, rids, pos
}

// insertKeyChild inserts key at index pos and the corresponding child
// pointer at pos+1 — the alignment rule for internal-node split
// propagation described in §4.2. pos must be the index of the child
// that just split (the same index route used to descend into it), not
// re-derived from key via findInsertPosition: when the parent already
// holds a separator equal to the promoted key — a duplicate run
// spanning an internal node's boundary — findInsertPosition would
// return pos-1, placing the new right page one slot too far left and
// swapping it with its sibling relative to the separators around it.
func insertKeyChild[K Key[K]](keys []K, children []disk.PageID, pos int, key K, child disk.PageID) ([]K, []disk.PageID) {
	keys = append(keys, key)
	copy(keys[pos+1:], keys[pos:len(keys)-1])
	keys[pos] = key

	children = append(children, disk.INVALID_PAGE_ID)
	copy(children[pos+2:], children[pos+1:len(children)-1])
	children[pos+1] = child

	return keys, children
}
