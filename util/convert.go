package util

import (
	"fmt"

	"github.com/vmihailenco/msgpack"

	"github.com/sutrodb/bptree-index/storage/disk"
)

// ToByteSlice msgpack-encodes obj into a zero-padded, PAGE_SIZE-sized
// buffer suitable for writing straight to a page. An encoded value
// larger than PAGE_SIZE is an error, not a silent truncation — a
// truncated page decodes into garbage or a confusing unmarshal failure
// far from where the real problem (an over-capacity node) occurred.
func ToByteSlice[T any](obj T) ([]byte, error) {
	data, err := msgpack.Marshal(obj)
	if err != nil {
		return nil, err
	}
	if len(data) > disk.PAGE_SIZE {
		return nil, fmt.Errorf("util: encoded value is %d bytes, exceeds page size %d", len(data), disk.PAGE_SIZE)
	}

	res := make([]byte, disk.PAGE_SIZE)
	copy(res, data)

	return res, nil
}

// ToStruct msgpack-decodes a page's bytes back into T.
func ToStruct[T any](data []byte) (T, error) {
	var res T

	if err := msgpack.Unmarshal(data, &res); err != nil {
		return res, err
	}

	return res, nil
}
