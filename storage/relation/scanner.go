package relation

import (
	"errors"
	"io"
	"os"
)

// ErrEndOfFile is returned by Scanner.Next once every record has been
// produced. Bulk-load treats it as normal termination, not a failure.
var ErrEndOfFile = errors.New("relation: end of file")

// Scanner produces records, as raw bytes together with the RID they live
// at, for an index to bulk-load from on first open.
type Scanner interface {
	// Next returns the next record and its RID, or ErrEndOfFile once the
	// relation is exhausted.
	Next() ([]byte, RID, error)
	Close() error
}

// FileScanner reads fixed-length records out of a flat relation file
// laid out as RecordsPerPage fixed-size records per page, in RID order.
// It is the default Scanner used when opening an index against a plain
// relation file rather than a live heap file manager.
type FileScanner struct {
	file           *os.File
	recordSize     int
	recordsPerPage int
	pageNumber     uint32
	slotNumber     uint16
}

// NewFileScanner opens path and scans it as a sequence of recordSize-byte
// records, recordsPerPage of them per page.
func NewFileScanner(path string, recordSize, recordsPerPage int) (*FileScanner, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	return &FileScanner{
		file:           file,
		recordSize:     recordSize,
		recordsPerPage: recordsPerPage,
	}, nil
}

func (s *FileScanner) Next() ([]byte, RID, error) {
	buf := make([]byte, s.recordSize)

	if _, err := io.ReadFull(s.file, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, RID{}, ErrEndOfFile
		}
		return nil, RID{}, err
	}

	rid := RID{PageNumber: s.pageNumber, SlotNumber: s.slotNumber}

	s.slotNumber++
	if int(s.slotNumber) >= s.recordsPerPage {
		s.slotNumber = 0
		s.pageNumber++
	}

	return buf, rid, nil
}

func (s *FileScanner) Close() error {
	return s.file.Close()
}
