package mux

import (
	"errors"
	"io"
	"sync"
)

// ErrWouldBlock reports that no byte is available right now. The controller
// treats it as non-fatal and replays the last received byte.
var ErrWouldBlock = errors.New("mux: input would block")

// An InputStream feeds received bytes into a port. The emulation thread only
// ever calls it when Pending reported a byte, or speculatively on a data-
// register read, so ReadByte must never block.
type InputStream interface {
	// Pending reports whether a byte can be read without blocking.
	Pending() bool

	// ReadByte returns the next byte. It returns ErrWouldBlock when nothing
	// is available and io.EOF when the stream is closed.
	ReadByte() (byte, error)
}

// An OutputStream accepts transmitted bytes from a port.
type OutputStream interface {
	WriteByte(c byte) error
}

// A FIFOStream is an in-memory byte stream. A producer goroutine, such as a
// terminal reader, can feed it while the emulation thread drains it, which
// is how blocking OS streams are bridged into the single-threaded emulation.
type FIFOStream struct {
	mu     sync.Mutex
	buf    []byte
	closed bool
}

// NewFIFOStream creates an empty FIFOStream.
func NewFIFOStream() *FIFOStream {
	return &FIFOStream{}
}

// WriteByte appends a byte to the stream.
func (s *FIFOStream) WriteByte(c byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return io.ErrClosedPipe
	}

	s.buf = append(s.buf, c)
	return nil
}

// Write appends bytes to the stream, implementing io.Writer so a pump can
// io.Copy into it.
func (s *FIFOStream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, io.ErrClosedPipe
	}

	s.buf = append(s.buf, p...)
	return len(p), nil
}

// ReadByte pops the next byte. Empty and open reports ErrWouldBlock; empty
// and closed reports io.EOF.
func (s *FIFOStream) ReadByte() (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.buf) == 0 {
		if s.closed {
			return 0, io.EOF
		}
		return 0, ErrWouldBlock
	}

	c := s.buf[0]
	s.buf = s.buf[1:]
	return c, nil
}

// Pending reports whether a byte is buffered. A closed empty stream also
// reports pending so the reader can observe the EOF.
func (s *FIFOStream) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.buf) > 0 || s.closed
}

// Close marks the end of the stream. Buffered bytes can still be drained.
func (s *FIFOStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
