package serial

import (
	"errors"
	"io"
	"sync"
)

const readChunk = 64

// StreamSource turns a blocking reader into a pollable byte source.
// A background goroutine reads into a buffered channel; Poll never blocks.
type StreamSource struct {
	bytes chan byte
	done  chan struct{}
	stop  chan struct{}

	mu       sync.Mutex
	err      error
	stopOnce sync.Once

	// retry reports whether an io.EOF from the reader only means "nothing
	// yet", as with a serial port read timeout.
	retry func() bool
}

// NewStreamSource starts reading r. Poll reports io.EOF after r does.
func NewStreamSource(r io.Reader) *StreamSource {
	return newStreamSource(r, 256, nil)
}

func newStreamSource(r io.Reader, backlog int, retry func() bool) *StreamSource {
	s := &StreamSource{
		bytes: make(chan byte, backlog),
		done:  make(chan struct{}),
		stop:  make(chan struct{}),
		retry: retry,
	}
	go s.read(r)
	return s
}

func (s *StreamSource) read(r io.Reader) {
	defer close(s.done)

	buf := make([]byte, readChunk)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			select {
			case s.bytes <- b:
			case <-s.stop:
				s.setErr(io.EOF)
				return
			}
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) && s.retry != nil && s.retry() {
			continue
		}
		s.setErr(err)
		return
	}
}

func (s *StreamSource) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// Poll returns the next received byte if one is waiting. Once the reader
// has finished and every byte was delivered it returns the read error.
func (s *StreamSource) Poll() (byte, bool, error) {
	select {
	case b := <-s.bytes:
		return b, true, nil
	default:
	}

	select {
	case <-s.done:
	default:
		return 0, false, nil
	}

	// the reader sends everything before closing done
	select {
	case b := <-s.bytes:
		return b, true, nil
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return 0, false, s.err
}

// Stop abandons the reader. Bytes not yet polled are dropped.
func (s *StreamSource) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}
