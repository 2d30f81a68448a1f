// Package bptree implements a disk-backed B+Tree secondary index over a
// single attribute of a record-oriented relation, keyed by INT, DOUBLE
// or a fixed 10-byte STRING, mapping attribute values to RIDs.
package bptree

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sutrodb/bptree-index/storage/buffer"
	"github.com/sutrodb/bptree-index/storage/disk"
	"github.com/sutrodb/bptree-index/storage/relation"
)

// engine is the attrType-erased surface every concrete tree[K] provides,
// letting Index dispatch to the right key type chosen at Open time.
type engine interface {
	InsertEntry(key any, rid relation.RID) error
	StartScan(lowVal any, lowOp Op, highVal any, highOp Op) error
	ScanNext() (relation.RID, error)
	EndScan() error
	Close() error
}

// tree is the generic B+Tree engine parameterised by key type; it is
// never exposed directly, only through the Index façade.
type tree[K Key[K]] struct {
	scanFields[K]

	bpm          *buffer.Manager
	rootPageID   disk.PageID
	isRootLeaf   bool
	relationName string
	attrOffset   int32
	attrType     AttrType
	decode       func([]byte) K
	convert      func(any) (K, bool)
	log          *logrus.Entry
}

func (t *tree[K]) InsertEntry(key any, rid relation.RID) error {
	k, ok := t.convert(key)
	if !ok {
		return newError(fmt.Sprintf("insert_entry: key %v is not a valid %s value", key, t.attrType), ErrBadKeyValue)
	}
	return t.insert(k, rid)
}

func (t *tree[K]) StartScan(lowVal any, lowOp Op, highVal any, highOp Op) error {
	low, ok := t.convert(lowVal)
	if !ok {
		return ErrBadKeyValue
	}
	high, ok := t.convert(highVal)
	if !ok {
		return ErrBadKeyValue
	}
	return t.startScan(low, lowOp, high, highOp)
}

func (t *tree[K]) ScanNext() (relation.RID, error) {
	return t.scanNext()
}

func (t *tree[K]) EndScan() error {
	return t.endScan()
}

func (t *tree[K]) Close() error {
	if t.scanExecuting {
		t.endScan()
	}

	mp := &MetaPage{
		AttrByteOffset: t.attrOffset,
		AttrType:       t.attrType,
		RootPageNo:     t.rootPageID,
		IsRootLeaf:     t.isRootLeaf,
	}
	copy(mp.RelationName[:], t.relationName)

	if err := writeMetaPage(t.bpm, mp); err != nil {
		t.log.WithError(err).Warn("failed to sync meta page on close")
	}

	if err := t.bpm.FlushAll(); err != nil {
		t.log.WithError(err).Warn("failed to flush buffer pool on close")
	}

	return nil
}

// Index is the root-visible handle described in §3: a relation name, an
// attribute offset/type, and a bulk-loaded or reopened B+Tree behind a
// buffer manager.
type Index struct {
	eng            engine
	RelationName   string
	AttrByteOffset int32
	AttrType       AttrType
}

// Name is the file-name convention from §6.
func (ix *Index) Name() string {
	return IndexName(ix.RelationName, ix.AttrByteOffset)
}

func (ix *Index) InsertEntry(key any, rid relation.RID) error {
	return ix.eng.InsertEntry(key, rid)
}

func (ix *Index) StartScan(lowVal any, lowOp Op, highVal any, highOp Op) error {
	return ix.eng.StartScan(lowVal, lowOp, highVal, highOp)
}

func (ix *Index) ScanNext() (relation.RID, error) {
	return ix.eng.ScanNext()
}

func (ix *Index) EndScan() error {
	return ix.eng.EndScan()
}

// Close flushes the meta page and every dirty frame, swallowing errors
// the way a destructor is expected to (§4.6).
func (ix *Index) Close() error {
	return ix.eng.Close()
}

// Open constructs the index handle: when create is true, a fresh meta
// page and empty root leaf are written and the tree is bulk-loaded from
// scanner; otherwise the existing meta page is validated against
// relationName/attrByteOffset/attrType, failing with ErrBadIndexInfo on
// mismatch. bpm must be bound to the index file's own OS file.
func Open(bpm *buffer.Manager, create bool, relationName string, attrByteOffset int32, attrType AttrType, scanner relation.Scanner) (*Index, error) {
	log := logrus.WithFields(logrus.Fields{
		"component": "bptree",
		"relation":  relationName,
		"attr_type": attrType.String(),
	})

	var eng engine
	var err error

	switch attrType {
	case AttrInt:
		eng, err = openTree[Int32Key](bpm, create, relationName, attrByteOffset, attrType, scanner,
			DecodeInt32Key, convertInt32, log)
	case AttrDouble:
		eng, err = openTree[Float64Key](bpm, create, relationName, attrByteOffset, attrType, scanner,
			DecodeFloat64Key, convertFloat64, log)
	case AttrString:
		eng, err = openTree[Str10Key](bpm, create, relationName, attrByteOffset, attrType, scanner,
			DecodeStr10Key, convertStr10, log)
	default:
		return nil, newError(fmt.Sprintf("unsupported attribute type %v", attrType), nil)
	}

	if err != nil {
		return nil, err
	}

	return &Index{eng: eng, RelationName: relationName, AttrByteOffset: attrByteOffset, AttrType: attrType}, nil
}

func openTree[K Key[K]](
	bpm *buffer.Manager,
	create bool,
	relationName string,
	attrByteOffset int32,
	attrType AttrType,
	scanner relation.Scanner,
	decode func([]byte) K,
	convert func(any) (K, bool),
	log *logrus.Entry,
) (*tree[K], error) {
	t := &tree[K]{
		bpm:          bpm,
		relationName: relationName,
		attrOffset:   attrByteOffset,
		attrType:     attrType,
		decode:       decode,
		convert:      convert,
		log:          log,
	}
	t.nextEntry = invalidEntry

	if create {
		if err := t.bootstrap(relationName, attrByteOffset, attrType, scanner); err != nil {
			return nil, err
		}
		return t, nil
	}

	mp, err := readMetaPage(bpm)
	if err != nil {
		return nil, err
	}
	if !mp.matches(relationName, attrByteOffset, attrType) {
		return nil, ErrBadIndexInfo
	}

	t.rootPageID = mp.RootPageNo
	t.isRootLeaf = mp.IsRootLeaf

	return t, nil
}

// bootstrap writes the initial meta page and empty root leaf, then
// bulk-loads by iterating scanner and inserting every record (§2, §4.4
// empty-tree case).
func (t *tree[K]) bootstrap(relationName string, attrByteOffset int32, attrType AttrType, scanner relation.Scanner) error {
	mp := newMetaPage(relationName, attrByteOffset, attrType)
	if err := writeMetaPage(t.bpm, mp); err != nil {
		return err
	}

	t.rootPageID = initialRootPageID
	t.isRootLeaf = true

	root := newLeafNode[K](LeafCapacity[K]())
	root.RightSib = disk.INVALID_PAGE_ID
	if err := t.writeNewLeaf(t.rootPageID, root); err != nil {
		return err
	}

	if scanner == nil {
		return nil
	}
	defer scanner.Close()

	size := keySize[K]()
	for {
		record, rid, err := scanner.Next()
		if err != nil {
			if err == relation.ErrEndOfFile {
				return nil
			}
			return err
		}

		if int(attrByteOffset)+size > len(record) {
			return newError("bulk-load record too short for attribute offset", nil)
		}
		key := t.decode(record[attrByteOffset : int(attrByteOffset)+size])

		if err := t.insert(key, rid); err != nil {
			return err
		}
	}
}

func convertInt32(v any) (Int32Key, bool) {
	switch n := v.(type) {
	case Int32Key:
		return n, true
	case int32:
		return Int32Key(n), true
	case int:
		return Int32Key(n), true
	default:
		return 0, false
	}
}

func convertFloat64(v any) (Float64Key, bool) {
	switch n := v.(type) {
	case Float64Key:
		return n, true
	case float64:
		return Float64Key(n), true
	case float32:
		return Float64Key(n), true
	default:
		return 0, false
	}
}

func convertStr10(v any) (Str10Key, bool) {
	switch s := v.(type) {
	case Str10Key:
		return s, true
	case string:
		return NewStr10Key(s), true
	case [10]byte:
		return Str10Key(s), true
	default:
		return Str10Key{}, false
	}
}
