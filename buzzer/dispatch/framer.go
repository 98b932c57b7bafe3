package dispatch

import "time"

// Framer collects received bytes into tokens. A token ends at a line
// terminator, when the buffer fills, or when no byte arrives for the
// timeout (apps that send without a newline).
type Framer struct {
	buf     []byte
	size    int
	timeout time.Duration
	last    time.Time
}

func NewFramer(size int, timeout time.Duration) *Framer {
	if size < 1 {
		size = 1
	}
	return &Framer{
		buf:     make([]byte, 0, size),
		size:    size,
		timeout: timeout,
	}
}

// Push adds a byte received at now and returns a token if it completes one.
func (f *Framer) Push(b byte, now time.Time) (string, bool) {
	f.last = now
	if b == '\n' || b == '\r' || b == 0 {
		return f.take()
	}
	f.buf = append(f.buf, b)
	if len(f.buf) >= f.size {
		return f.take()
	}
	return "", false
}

// Expire returns the pending token once the line has been idle for the
// timeout.
func (f *Framer) Expire(now time.Time) (string, bool) {
	if len(f.buf) == 0 || now.Sub(f.last) < f.timeout {
		return "", false
	}
	return f.take()
}

// Flush returns whatever is pending regardless of timing.
func (f *Framer) Flush() (string, bool) {
	return f.take()
}

// Len is the number of pending bytes.
func (f *Framer) Len() int {
	return len(f.buf)
}

func (f *Framer) take() (string, bool) {
	if len(f.buf) == 0 {
		return "", false
	}
	token := string(f.buf)
	f.buf = f.buf[:0]
	return token, true
}
