package bptree

import "github.com/sutrodb/bptree-index/util"

// newError wraps msg (and an optional cause) in the same shape every
// public operation returns on contract violation.
func newError(msg string, cause error) *util.IndexError {
	return &util.IndexError{Message: msg, Err: cause}
}

// ErrBadIndexInfo is returned by Open when an existing index file's meta
// page does not match the relation name, attribute offset or attribute
// type the caller asked to open it with.
var ErrBadIndexInfo = newError("bad index info: meta page does not match caller parameters", nil)

// ErrBadOpcodes is returned by StartScan when low_op is not in
// {GT, GTE} or high_op is not in {LT, LTE}.
var ErrBadOpcodes = newError("bad opcodes: scan operators outside allowed sets", nil)

// ErrBadScanRange is returned by StartScan when low_val > high_val.
var ErrBadScanRange = newError("bad scan range: low value exceeds high value", nil)

// ErrBadKeyValue is returned when a caller-supplied key value cannot be
// converted to the index's attribute type.
var ErrBadKeyValue = newError("bad key value: does not match the index's attribute type", nil)

// ErrNoSuchKeyFound is returned by StartScan when the tree is a single
// leaf with no entry satisfying the low predicate.
var ErrNoSuchKeyFound = newError("no such key found", nil)

// ErrScanNotInitialized is returned by ScanNext/EndScan when called
// before a successful StartScan.
var ErrScanNotInitialized = newError("scan not initialized", nil)

// ErrIndexScanCompleted is returned by ScanNext once the qualifying
// range has been fully consumed.
var ErrIndexScanCompleted = newError("index scan completed", nil)

// ErrFileNotFound names the missing-index-file condition. Open does not
// return it: whether to create or open is decided by the caller's create
// argument.
var ErrFileNotFound = newError("index file not found", nil)

// ErrEndOfFile names the end-of-relation condition for callers that only
// import this package. It is a distinct value from relation.ErrEndOfFile
// (errors.Is does not match one against the other), and bulk-load checks
// relation.ErrEndOfFile, not this one.
var ErrEndOfFile = newError("end of file", nil)
