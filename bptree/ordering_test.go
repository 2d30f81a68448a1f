package bptree

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sutrodb/bptree-index/storage/disk"
	"github.com/sutrodb/bptree-index/storage/relation"
)

func TestFindInsertPositionLowerBound(t *testing.T) {
	keys := []Int32Key{1, 3, 5, 7}

	assert.Equal(t, 0, findInsertPosition(keys, Int32Key(0)))
	assert.Equal(t, 1, findInsertPosition(keys, Int32Key(3)))
	assert.Equal(t, 4, findInsertPosition(keys, Int32Key(9)))
}

func TestRouteStrictLeftNonStrictRight(t *testing.T) {
	keys := []Int32Key{10, 20, 30}

	// key < keys[0]: route to child 0
	assert.Equal(t, 0, route(keys, Int32Key(5)))
	// key == keys[0]: non-strict-right means route past it, to child 1
	assert.Equal(t, 1, route(keys, Int32Key(10)))
	assert.Equal(t, 2, route(keys, Int32Key(25)))
	assert.Equal(t, 3, route(keys, Int32Key(99)))
}

func TestFindInsertPositionLeafTieBreaksByPageNumber(t *testing.T) {
	keys := []Int32Key{10, 10}
	rids := []relation.RID{{PageNumber: 1}, {PageNumber: 3}}

	pos := findInsertPositionLeaf(keys, rids, Int32Key(10), relation.RID{PageNumber: 2})
	assert.Equal(t, 1, pos)
}

func TestInsertKeyRIDPreservesOrder(t *testing.T) {
	var keys []Int32Key
	var rids []relation.RID

	keys, rids, _ = insertKeyRID(keys, rids, Int32Key(10), relation.RID{PageNumber: 1})
	keys, rids, _ = insertKeyRID(keys, rids, Int32Key(10), relation.RID{PageNumber: 2})
	keys, rids, _ = insertKeyRID(keys, rids, Int32Key(10), relation.RID{PageNumber: 3})

	assert.Equal(t, []Int32Key{10, 10, 10}, keys)
	assert.Equal(t, []relation.RID{{PageNumber: 1}, {PageNumber: 2}, {PageNumber: 3}}, rids)
}

func TestInsertKeyChildAlignsPointerAtPosPlusOne(t *testing.T) {
	keys := []Int32Key{10, 30}
	children := []disk.PageID{100, 200, 300}

	// pos is the split child's own index, the same value route would
	// have returned when descending into it — here, child 1 (page 200)
	// split and its new right half (999) must land right after it.
	keys, children = insertKeyChild(keys, children, 1, Int32Key(20), 999)

	assert.Equal(t, []Int32Key{10, 20, 30}, keys)
	assert.Equal(t, []disk.PageID{100, 200, 999, 300}, children)
}

func TestInsertKeyChildUsesGivenPosNotSearchedPosition(t *testing.T) {
	// the parent already has a separator equal to the promoted key (a
	// duplicate run spanning an internal boundary): findInsertPosition
	// would return 0 here, one slot left of where the split child
	// actually lives. insertKeyChild must honor the given pos instead.
	keys := []Int32Key{20, 30}
	children := []disk.PageID{100, 200, 300}

	keys, children = insertKeyChild(keys, children, 1, Int32Key(20), 999)

	assert.Equal(t, []Int32Key{20, 20, 30}, keys)
	assert.Equal(t, []disk.PageID{100, 200, 999, 300}, children)
}
