package bptree

import (
	"encoding/binary"
	"fmt"

	"github.com/vmihailenco/msgpack"

	"github.com/sutrodb/bptree-index/storage/disk"
	"github.com/sutrodb/bptree-index/storage/relation"
	"github.com/sutrodb/bptree-index/util"
)

// LeafNode and InternalNode pack their own wire format by hand, through
// EncodeMsgpack/DecodeMsgpack, instead of letting msgpack walk the
// struct via reflection: a reflected encode turns each RID into a
// {"PageNumber":...,"SlotNumber":...} map and each key into a
// variable-width int or float, so a page's encoded size depends on the
// values it holds, not just the entry count — capacities derived from
// nominal field sizes then silently undercount, and a page that grows
// past that undercounted threshold overflows PAGE_SIZE on encode. The
// fixed-width layout below removes that: every entry is exactly
// keySize[K]()+ridWireSize (leaf) or keySize[K]()+pageIDWireSize
// (internal) bytes, wrapped once in a single msgpack bin value, so the
// capacities below are the true maximum rather than an estimate.
const (
	ridWireSize    = 6 // RID: PageNumber uint32 + SlotNumber uint16
	pageIDWireSize = 8 // disk.PageID: int64

	leafFixedHeader = pageIDWireSize + 4 // RightSib + Len
	intFixedHeader  = 4 + 4              // Level + Len

	// binEnvelope is the msgpack bin16 header (0xc5 + 2-byte length),
	// the widest framing a PAGE_SIZE-bounded payload ever needs since
	// PAGE_SIZE is well under the bin16 ceiling of 65535 bytes.
	binEnvelope = 3
)

// LeafCapacity returns LEAF_CAP(K): the maximum number of entries a leaf
// page of key type K can hold without its encoded form exceeding
// PAGE_SIZE.
func LeafCapacity[K Key[K]]() int {
	return (disk.PAGE_SIZE - binEnvelope - leafFixedHeader) / (keySize[K]() + ridWireSize)
}

// InternalCapacity returns INT_CAP(K): the maximum number of separator
// keys an internal page of key type K can hold (children = keys+1).
func InternalCapacity[K Key[K]]() int {
	return (disk.PAGE_SIZE - binEnvelope - intFixedHeader - pageIDWireSize) / (keySize[K]() + pageIDWireSize)
}

// LeafNode is the on-page layout for a leaf: parallel sorted Keys/Rids
// arrays, the right-sibling chain pointer, and the live entry count.
type LeafNode[K Key[K]] struct {
	Keys     []K
	Rids     []relation.RID
	RightSib disk.PageID
	Len      int
}

func newLeafNode[K Key[K]](capacity int) *LeafNode[K] {
	return &LeafNode[K]{
		Keys:     make([]K, 0, capacity+1),
		Rids:     make([]relation.RID, 0, capacity+1),
		RightSib: disk.INVALID_PAGE_ID,
	}
}

// InternalNode is the on-page layout for an internal node: Level is 1
// iff Children point directly at leaves, Keys[i] separates Children[i]
// from Children[i+1].
type InternalNode[K Key[K]] struct {
	Level    int
	Keys     []K
	Children []disk.PageID
	Len      int
}

func newInternalNode[K Key[K]](capacity int) *InternalNode[K] {
	return &InternalNode[K]{
		Keys:     make([]K, 0, capacity+1),
		Children: make([]disk.PageID, 0, capacity+2),
	}
}

// EncodeMsgpack packs the leaf's fixed header followed by Len entries of
// exactly keySize[K]()+ridWireSize bytes each into one raw buffer, then
// writes that buffer as a single msgpack bin value.
func (ln *LeafNode[K]) EncodeMsgpack(enc *msgpack.Encoder) error {
	ks := keySize[K]()
	buf := make([]byte, leafFixedHeader+len(ln.Keys)*(ks+ridWireSize))

	binary.LittleEndian.PutUint64(buf[0:8], uint64(ln.RightSib))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(ln.Len))

	off := leafFixedHeader
	for i, k := range ln.Keys {
		copy(buf[off:off+ks], k.Encode())
		off += ks
		binary.LittleEndian.PutUint32(buf[off:off+4], ln.Rids[i].PageNumber)
		binary.LittleEndian.PutUint16(buf[off+4:off+6], ln.Rids[i].SlotNumber)
		off += ridWireSize
	}

	return enc.EncodeBytes(buf)
}

// DecodeMsgpack is EncodeMsgpack's inverse.
func (ln *LeafNode[K]) DecodeMsgpack(dec *msgpack.Decoder) error {
	buf, err := dec.DecodeBytes()
	if err != nil {
		return err
	}
	if len(buf) < leafFixedHeader {
		return fmt.Errorf("bptree: truncated leaf page (%d bytes)", len(buf))
	}

	ln.RightSib = disk.PageID(binary.LittleEndian.Uint64(buf[0:8]))
	ln.Len = int(binary.LittleEndian.Uint32(buf[8:12]))

	ks := keySize[K]()
	entrySize := ks + ridWireSize
	off := leafFixedHeader

	ln.Keys = make([]K, 0, ln.Len)
	ln.Rids = make([]relation.RID, 0, ln.Len)
	for i := 0; i < ln.Len; i++ {
		if off+entrySize > len(buf) {
			return fmt.Errorf("bptree: truncated leaf entry %d of %d", i, ln.Len)
		}
		ln.Keys = append(ln.Keys, decodeKey[K](buf[off:off+ks]))
		off += ks
		ln.Rids = append(ln.Rids, relation.RID{
			PageNumber: binary.LittleEndian.Uint32(buf[off : off+4]),
			SlotNumber: binary.LittleEndian.Uint16(buf[off+4 : off+6]),
		})
		off += ridWireSize
	}

	return nil
}

// EncodeMsgpack packs the internal node's fixed header, its Len keys and
// its Len+1 children into one raw buffer, wrapped as a single msgpack
// bin value — the same deterministic layout LeafNode uses.
func (in *InternalNode[K]) EncodeMsgpack(enc *msgpack.Encoder) error {
	ks := keySize[K]()
	buf := make([]byte, intFixedHeader+len(in.Keys)*ks+len(in.Children)*pageIDWireSize)

	binary.LittleEndian.PutUint32(buf[0:4], uint32(in.Level))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(in.Len))

	off := intFixedHeader
	for _, k := range in.Keys {
		copy(buf[off:off+ks], k.Encode())
		off += ks
	}
	for _, c := range in.Children {
		binary.LittleEndian.PutUint64(buf[off:off+8], uint64(c))
		off += pageIDWireSize
	}

	return enc.EncodeBytes(buf)
}

// DecodeMsgpack is EncodeMsgpack's inverse.
func (in *InternalNode[K]) DecodeMsgpack(dec *msgpack.Decoder) error {
	buf, err := dec.DecodeBytes()
	if err != nil {
		return err
	}
	if len(buf) < intFixedHeader {
		return fmt.Errorf("bptree: truncated internal page (%d bytes)", len(buf))
	}

	in.Level = int(int32(binary.LittleEndian.Uint32(buf[0:4])))
	in.Len = int(binary.LittleEndian.Uint32(buf[4:8]))

	ks := keySize[K]()
	off := intFixedHeader

	in.Keys = make([]K, 0, in.Len)
	for i := 0; i < in.Len; i++ {
		if off+ks > len(buf) {
			return fmt.Errorf("bptree: truncated internal key %d of %d", i, in.Len)
		}
		in.Keys = append(in.Keys, decodeKey[K](buf[off:off+ks]))
		off += ks
	}

	numChildren := in.Len + 1
	in.Children = make([]disk.PageID, 0, numChildren)
	for i := 0; i < numChildren; i++ {
		if off+pageIDWireSize > len(buf) {
			return fmt.Errorf("bptree: truncated internal child %d of %d", i, numChildren)
		}
		in.Children = append(in.Children, disk.PageID(binary.LittleEndian.Uint64(buf[off:off+8])))
		off += pageIDWireSize
	}

	return nil
}

// decodeLeaf and decodeInternal round-trip a page's bytes through
// msgpack, the same codec the buffer layer's callers use for meta pages.

func decodeLeaf[K Key[K]](data []byte) (*LeafNode[K], error) {
	return util.ToStruct[*LeafNode[K]](data)
}

func encodeLeaf[K Key[K]](node *LeafNode[K]) ([]byte, error) {
	return util.ToByteSlice(node)
}

func decodeInternal[K Key[K]](data []byte) (*InternalNode[K], error) {
	return util.ToStruct[*InternalNode[K]](data)
}

func encodeInternal[K Key[K]](node *InternalNode[K]) ([]byte, error) {
	return util.ToByteSlice(node)
}

// isFull reports whether ln already holds capacity or more entries. The
// insert and split paths do not call it; they compare Len against
// LeafCapacity/InternalCapacity directly.
func (ln *LeafNode[K]) isFull(capacity int) bool {
	return ln.Len >= capacity
}

func (in *InternalNode[K]) isFull(capacity int) bool {
	return in.Len >= capacity
}
