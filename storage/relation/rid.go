// Package relation supplies the record-identifier type and the relation
// scanner interface an index bulk-loads from on first open.
package relation

// RID identifies a record's storage location in a relation file: the
// page holding it and its slot within that page's slot directory.
type RID struct {
	PageNumber uint32
	SlotNumber uint16
}

// Less orders RIDs by page number, then slot number. The index's leaf
// insert does not call it: duplicate keys there are ordered by page
// number alone.
func (r RID) Less(other RID) bool {
	if r.PageNumber != other.PageNumber {
		return r.PageNumber < other.PageNumber
	}
	return r.SlotNumber < other.SlotNumber
}
