package bptree

import (
	"bytes"
	"encoding/binary"
	"math"
)

// AttrType names the three attribute types an index can be built over.
type AttrType int

const (
	AttrInt AttrType = iota
	AttrDouble
	AttrString
)

func (t AttrType) String() string {
	switch t {
	case AttrInt:
		return "INT"
	case AttrDouble:
		return "DOUBLE"
	case AttrString:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// Key is the capability every indexable key type provides: a total
// order and a fixed-width raw encoding, so the codec and split logic
// never need to special-case a concrete type.
type Key[K any] interface {
	Less(other K) bool
	Equal(other K) bool
	Encode() []byte
}

// Int32Key is the key type for AttrInt.
type Int32Key int32

func (k Int32Key) Less(other Int32Key) bool  { return k < other }
func (k Int32Key) Equal(other Int32Key) bool { return k == other }

func DecodeInt32Key(raw []byte) Int32Key {
	return Int32Key(int32(binary.LittleEndian.Uint32(raw)))
}

func (k Int32Key) Encode() []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(int32(k)))
	return buf
}

// Float64Key is the key type for AttrDouble.
type Float64Key float64

func (k Float64Key) Less(other Float64Key) bool  { return k < other }
func (k Float64Key) Equal(other Float64Key) bool { return k == other }

func DecodeFloat64Key(raw []byte) Float64Key {
	return Float64Key(math.Float64frombits(binary.LittleEndian.Uint64(raw)))
}

func (k Float64Key) Encode() []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, math.Float64bits(float64(k)))
	return buf
}

// Str10Key is the key type for AttrString: a fixed 10-byte string,
// zero-padded at the tail when shorter, compared over the full 10 bytes.
type Str10Key [10]byte

func (k Str10Key) Less(other Str10Key) bool {
	return bytes.Compare(k[:], other[:]) < 0
}

func (k Str10Key) Equal(other Str10Key) bool {
	return k == other
}

func DecodeStr10Key(raw []byte) Str10Key {
	var k Str10Key
	copy(k[:], raw)
	return k
}

func (k Str10Key) Encode() []byte {
	buf := make([]byte, 10)
	copy(buf, k[:])
	return buf
}

// NewStr10Key builds a Str10Key from a Go string, zero-padding or
// truncating to exactly 10 bytes.
func NewStr10Key(s string) Str10Key {
	var k Str10Key
	copy(k[:], s)
	return k
}

// keySize returns the fixed encoded size, in bytes, of key type K. Used
// to derive per-page capacities. Panics on an unrecognized key type,
// which can only happen if a new Key implementation is added without
// updating this table.
func keySize[K Key[K]]() int {
	var zero K
	switch any(zero).(type) {
	case Int32Key:
		return 4
	case Float64Key:
		return 8
	case Str10Key:
		return 10
	default:
		panic("bptree: unregistered key type")
	}
}

// decodeKey decodes a keySize[K]()-byte buffer into K, dispatching on
// the concrete key type the same way keySize does. Used by the node
// codec to unpack the raw entry buffer it packs with K.Encode().
func decodeKey[K Key[K]](raw []byte) K {
	var zero K
	switch any(zero).(type) {
	case Int32Key:
		return any(DecodeInt32Key(raw)).(K)
	case Float64Key:
		return any(DecodeFloat64Key(raw)).(K)
	case Str10Key:
		return any(DecodeStr10Key(raw)).(K)
	default:
		panic("bptree: unregistered key type")
	}
}
