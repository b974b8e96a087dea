package stream

import "bytes"

// recordSeparator terminates every record on the wire.
const recordSeparator = '\n'

// Framer splits an incrementally delivered byte stream into newline-delimited
// records. It is not safe for concurrent use; the relay owns it.
type Framer struct {
	buf     []byte
	scanned int // bytes of buf already searched for a separator
	flushed bool
}

// NewFramer creates an empty Framer.
func NewFramer() *Framer {
	return &Framer{}
}

// Feed appends chunk to the internal buffer and returns every record that is
// now complete, without its separator. Bytes following the last separator are
// kept for the next call. Each returned record is a fresh allocation.
func (f *Framer) Feed(chunk []byte) [][]byte {
	if len(chunk) == 0 {
		return nil
	}
	f.buf = append(f.buf, chunk...)

	var records [][]byte
	start := 0
	for {
		idx := bytes.IndexByte(f.buf[f.scanned:], recordSeparator)
		if idx < 0 {
			f.scanned = len(f.buf)
			break
		}
		end := f.scanned + idx
		records = append(records, bytes.Clone(f.buf[start:end]))
		start = end + 1
		f.scanned = start
	}

	// Only the unterminated tail is moved, so every byte is copied at most once
	// more after it is appended.
	if start > 0 {
		n := copy(f.buf, f.buf[start:])
		f.buf = f.buf[:n]
		f.scanned -= start
	}

	return records
}

// Flush signals end of input. It returns the trailing unterminated record, or
// nil when the buffer is empty. Subsequent calls return nil.
func (f *Framer) Flush() []byte {
	if f.flushed {
		return nil
	}
	f.flushed = true
	if len(f.buf) == 0 {
		return nil
	}
	rest := bytes.Clone(f.buf)
	f.buf = f.buf[:0]
	f.scanned = 0
	return rest
}

// Buffered reports how many bytes are held waiting for a separator.
func (f *Framer) Buffered() int {
	return len(f.buf)
}
