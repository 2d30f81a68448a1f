package bptree

import (
	"strconv"

	"github.com/sutrodb/bptree-index/storage/buffer"
	"github.com/sutrodb/bptree-index/storage/disk"
	"github.com/sutrodb/bptree-index/util"
)

// metaPageID and initialRootPageID fix the file layout named in §6:
// page 0 is unused, page 1 is the meta page, page 2 is the initial root.
const (
	metaPageID        disk.PageID = 1
	initialRootPageID disk.PageID = 2
)

// MetaPage is the first page of the index file: the index's
// self-description, checked against caller parameters on every re-open.
type MetaPage struct {
	RelationName    [20]byte
	AttrByteOffset  int32
	AttrType        AttrType
	RootPageNo      disk.PageID
	IsRootLeaf      bool
}

func newMetaPage(relationName string, attrByteOffset int32, attrType AttrType) *MetaPage {
	mp := &MetaPage{
		AttrByteOffset: attrByteOffset,
		AttrType:       attrType,
		RootPageNo:     initialRootPageID,
		IsRootLeaf:     true,
	}
	copy(mp.RelationName[:], relationName)
	return mp
}

// matches reports whether the meta page describes an index built for
// the given caller parameters.
func (mp *MetaPage) matches(relationName string, attrByteOffset int32, attrType AttrType) bool {
	var want [20]byte
	copy(want[:], relationName)

	return mp.RelationName == want &&
		mp.AttrByteOffset == attrByteOffset &&
		mp.AttrType == attrType
}

func readMetaPage(bpm *buffer.Manager) (*MetaPage, error) {
	guard, err := bpm.FetchPageRead(metaPageID)
	if err != nil {
		return nil, err
	}
	defer guard.Drop()

	return util.ToStruct[*MetaPage](guard.Data())
}

func writeMetaPage(bpm *buffer.Manager, mp *MetaPage) error {
	guard, err := bpm.FetchPageWrite(metaPageID)
	if err != nil {
		return err
	}
	defer guard.Drop()

	data, err := util.ToByteSlice(mp)
	if err != nil {
		return err
	}
	guard.SetData(data)
	return nil
}

// IndexName derives the file-name convention from §6: "<relation_name>.<attr_byte_offset>".
func IndexName(relationName string, attrByteOffset int32) string {
	return relationName + "." + strconv.Itoa(int(attrByteOffset))
}
