package buffer

// PageGuard is the embedded base of ReadPageGuard/WritePageGuard: a pin
// held on a frame for the lifetime of the guard. Drop must be called
// exactly once to release the pin.
type PageGuard struct {
	frame *frame
	bpm   *Manager
}

type ReadPageGuard struct {
	PageGuard
}

type WritePageGuard struct {
	PageGuard
}

func newReadPageGuard(frame *frame, bpm *Manager) *ReadPageGuard {
	return &ReadPageGuard{PageGuard{frame: frame, bpm: bpm}}
}

func newWritePageGuard(frame *frame, bpm *Manager) *WritePageGuard {
	return &WritePageGuard{PageGuard{frame: frame, bpm: bpm}}
}

func (pg *ReadPageGuard) Drop() {
	if pg == nil || pg.frame == nil {
		return
	}

	pg.bpm.releaseFrame(pg.frame)
	pg.frame.mu.RUnlock()
	pg.frame = nil
}

func (pg *WritePageGuard) Drop() {
	if pg == nil || pg.frame == nil {
		return
	}

	pg.bpm.releaseFrame(pg.frame)
	pg.frame.mu.Unlock()
	pg.frame = nil
}

// Data returns the frame's page bytes for reading.
func (pg *ReadPageGuard) Data() []byte {
	return pg.frame.data
}

// Data returns the frame's page bytes for reading.
func (pg *WritePageGuard) Data() []byte {
	return pg.frame.data
}

// SetData overwrites the frame's page bytes and marks it dirty.
func (pg *WritePageGuard) SetData(data []byte) {
	copy(pg.frame.data, data)
	pg.frame.dirty = true
}
