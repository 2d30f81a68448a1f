package bptree

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sutrodb/bptree-index/storage/buffer"
	"github.com/sutrodb/bptree-index/storage/disk"
	"github.com/sutrodb/bptree-index/storage/relation"
)

func newTestBpm(t *testing.T, poolSize int) *buffer.Manager {
	t.Helper()

	file, err := os.CreateTemp(t.TempDir(), "index-*.db")
	require.NoError(t, err)
	t.Cleanup(func() { file.Close() })

	require.NoError(t, file.Truncate(int64(disk.DEFAULT_PAGE_CAPACITY)*disk.PAGE_SIZE))

	dm := disk.NewManager(file)
	scheduler := disk.NewScheduler(dm)

	return buffer.NewManager(poolSize, 2, scheduler)
}

func createEmptyIndex(t *testing.T, attrType AttrType) *Index {
	t.Helper()

	bpm := newTestBpm(t, 32)
	idx, err := Open(bpm, true, "emp", 0, attrType, nil)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	return idx
}

// S1 — empty -> single insert -> scan.
func TestSingleInsertAndScan(t *testing.T) {
	idx := createEmptyIndex(t, AttrInt)

	require.NoError(t, idx.InsertEntry(int32(42), relation.RID{PageNumber: 5, SlotNumber: 3}))

	require.NoError(t, idx.StartScan(int32(42), GTE, int32(42), LTE))
	rid, err := idx.ScanNext()
	require.NoError(t, err)
	assert.Equal(t, relation.RID{PageNumber: 5, SlotNumber: 3}, rid)

	_, err = idx.ScanNext()
	assert.ErrorIs(t, err, ErrIndexScanCompleted)

	require.NoError(t, idx.EndScan())
}

// S2 — fill-to-split: after inserting one more than leaf capacity, the
// root is an internal node whose two children are linked by right_sib.
func TestFillToSplitProducesInternalRoot(t *testing.T) {
	idx := createEmptyIndex(t, AttrInt)
	cap := LeafCapacity[Int32Key]()

	for i := 0; i <= cap; i++ {
		require.NoError(t, idx.InsertEntry(int32(i), relation.RID{PageNumber: uint32(i)}))
	}

	tr := idx.eng.(*tree[Int32Key])
	assert.False(t, tr.isRootLeaf)

	guard, err := tr.bpm.FetchPageRead(tr.rootPageID)
	require.NoError(t, err)
	root, err := decodeInternal[Int32Key](guard.Data())
	require.NoError(t, err)
	guard.Drop()

	assert.Equal(t, 1, root.Len)
	assert.Len(t, root.Children, 2)
}

// S3 — scan with exclusive bounds.
func TestScanWithBounds(t *testing.T) {
	idx := createEmptyIndex(t, AttrInt)

	for i := 0; i < 100; i++ {
		require.NoError(t, idx.InsertEntry(int32(i), relation.RID{PageNumber: uint32(i)}))
	}

	require.NoError(t, idx.StartScan(int32(20), GT, int32(80), LT))

	var got []int32
	for {
		rid, err := idx.ScanNext()
		if err != nil {
			assert.ErrorIs(t, err, ErrIndexScanCompleted)
			break
		}
		got = append(got, int32(rid.PageNumber))
	}

	var want []int32
	for i := int32(21); i < 80; i++ {
		want = append(want, i)
	}
	assert.Equal(t, want, got)
}

// S4 — duplicates preserve insertion (ascending page) order.
func TestDuplicateKeysPreserveRidOrder(t *testing.T) {
	idx := createEmptyIndex(t, AttrInt)

	r1 := relation.RID{PageNumber: 1}
	r2 := relation.RID{PageNumber: 2}
	r3 := relation.RID{PageNumber: 3}

	require.NoError(t, idx.InsertEntry(int32(10), r1))
	require.NoError(t, idx.InsertEntry(int32(10), r2))
	require.NoError(t, idx.InsertEntry(int32(10), r3))

	require.NoError(t, idx.StartScan(int32(10), GTE, int32(10), LTE))

	var got []relation.RID
	for {
		rid, err := idx.ScanNext()
		if err != nil {
			break
		}
		got = append(got, rid)
	}

	assert.Equal(t, []relation.RID{r1, r2, r3}, got)
}

// A duplicate run that straddles a leaf split's boundary must remain
// fully visible to a forward scan: the promoted separator equals
// entries left behind in the leaf that split, not just the ones that
// moved to the new right leaf.
func TestDuplicateRunSpanningLeafSplitIsFullyScanned(t *testing.T) {
	idx := createEmptyIndex(t, AttrInt)
	cap := LeafCapacity[Int32Key]()

	// enough copies of the same key to force a split whose midpoint
	// falls inside the run of duplicates.
	n := cap + 5
	for i := 0; i < n; i++ {
		require.NoError(t, idx.InsertEntry(int32(10), relation.RID{PageNumber: uint32(i)}))
	}

	tr := idx.eng.(*tree[Int32Key])
	assert.False(t, tr.isRootLeaf, "duplicate run must have forced a split")

	require.NoError(t, idx.StartScan(int32(10), GTE, int32(10), LTE))
	var got []uint32
	for {
		rid, err := idx.ScanNext()
		if err != nil {
			assert.ErrorIs(t, err, ErrIndexScanCompleted)
			break
		}
		got = append(got, rid.PageNumber)
	}

	assert.Len(t, got, n, "every duplicate must be reachable from the scan, including any left behind by the split")
	var want []uint32
	for i := uint32(0); i < uint32(n); i++ {
		want = append(want, i)
	}
	assert.Equal(t, want, got)
}

// S5 — string keys, lexicographic over the full 10 bytes.
func TestStringKeyScan(t *testing.T) {
	idx := createEmptyIndex(t, AttrString)

	require.NoError(t, idx.InsertEntry("banana____", relation.RID{PageNumber: 2}))
	require.NoError(t, idx.InsertEntry("apple_____", relation.RID{PageNumber: 1}))
	require.NoError(t, idx.InsertEntry("cherry____", relation.RID{PageNumber: 3}))

	require.NoError(t, idx.StartScan("apple_____", GTE, "cherry____", LT))

	var got []uint32
	for {
		rid, err := idx.ScanNext()
		if err != nil {
			break
		}
		got = append(got, rid.PageNumber)
	}

	assert.Equal(t, []uint32{1, 2}, got)
}

// S6 — cascading splits still satisfy universal invariants.
func TestCascadingSplitsSatisfyInvariants(t *testing.T) {
	idx := createEmptyIndex(t, AttrInt)
	// enough entries to force several leaf splits, each propagating a
	// separator into the internal root. At this page size the root's
	// internal capacity is not reached, so no internal split happens;
	// a two-internal-level tree would need far more entries.
	n := LeafCapacity[Int32Key]()*3 + 17

	for i := 0; i < n; i++ {
		require.NoError(t, idx.InsertEntry(int32(i), relation.RID{PageNumber: uint32(i)}))
	}

	tr := idx.eng.(*tree[Int32Key])
	assertLeafChainSorted(t, tr)

	require.NoError(t, idx.StartScan(int32(0), GTE, int32(n-1), LTE))
	count := 0
	for {
		_, err := idx.ScanNext()
		if err != nil {
			break
		}
		count++
	}
	assert.Equal(t, n, count)
}

func assertLeafChainSorted(t *testing.T, tr *tree[Int32Key]) {
	t.Helper()

	pageID, err := tr.descendToLeafForScan(Int32Key(-1 << 30))
	require.NoError(t, err)

	var last Int32Key
	first := true

	for pageID != disk.INVALID_PAGE_ID {
		guard, err := tr.bpm.FetchPageRead(pageID)
		require.NoError(t, err)

		node, err := decodeLeaf[Int32Key](guard.Data())
		require.NoError(t, err)

		for _, k := range node.Keys {
			if !first {
				assert.False(t, k.Less(last), "leaf chain must be non-decreasing")
			}
			last = k
			first = false
		}

		next := node.RightSib
		guard.Drop()
		pageID = next
	}
}

// S7 — reopen: closing and reopening validates meta and preserves data.
func TestReopenPreservesData(t *testing.T) {
	file, err := os.CreateTemp(t.TempDir(), "reopen-*.db")
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, file.Truncate(int64(disk.DEFAULT_PAGE_CAPACITY)*disk.PAGE_SIZE))

	dm := disk.NewManager(file)
	scheduler := disk.NewScheduler(dm)
	bpm := buffer.NewManager(16, 2, scheduler)

	idx, err := Open(bpm, true, "emp", 4, AttrInt, nil)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		require.NoError(t, idx.InsertEntry(int32(i), relation.RID{PageNumber: uint32(i)}))
	}
	require.NoError(t, idx.Close())

	reopened, err := Open(bpm, false, "emp", 4, AttrInt, nil)
	require.NoError(t, err)
	defer reopened.Close()

	require.NoError(t, reopened.StartScan(int32(0), GTE, int32(49), LTE))
	count := 0
	for {
		_, err := reopened.ScanNext()
		if err != nil {
			break
		}
		count++
	}
	assert.Equal(t, 50, count)

	_, err = Open(bpm, false, "wrong", 4, AttrInt, nil)
	assert.ErrorIs(t, err, ErrBadIndexInfo)
}

// S8 — bad inputs.
func TestBadScanInputs(t *testing.T) {
	idx := createEmptyIndex(t, AttrInt)

	err := idx.StartScan(int32(5), LT, int32(10), LT)
	assert.ErrorIs(t, err, ErrBadOpcodes)

	err = idx.StartScan(int32(10), GTE, int32(5), LTE)
	assert.ErrorIs(t, err, ErrBadScanRange)
}

func TestScanNextBeforeStartScanFails(t *testing.T) {
	idx := createEmptyIndex(t, AttrInt)

	_, err := idx.ScanNext()
	assert.ErrorIs(t, err, ErrScanNotInitialized)

	err = idx.EndScan()
	assert.ErrorIs(t, err, ErrScanNotInitialized)
}

func TestBulkLoadFromScanner(t *testing.T) {
	dir := t.TempDir()
	relPath := dir + "/emp.rel"

	recordSize := 8
	recordsPerPage := 4
	records := 20

	f, err := os.Create(relPath)
	require.NoError(t, err)
	for i := 0; i < records; i++ {
		buf := make([]byte, recordSize)
		buf[0] = byte(i)
		_, err := f.Write(buf)
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())

	scanner, err := relation.NewFileScanner(relPath, recordSize, recordsPerPage)
	require.NoError(t, err)

	bpm := newTestBpm(t, 32)
	idx, err := Open(bpm, true, "emp", 0, AttrInt, scanner)
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.StartScan(int32(0), GTE, int32(0), LTE))
	count := 0
	for {
		_, err := idx.ScanNext()
		if err != nil {
			break
		}
		count++
	}
	assert.Equal(t, 1, count)
}
