package serial

import (
	"log/slog"
	"sync"
)

// LineLogger is an io.Writer that logs outgoing text one line at a time.
// Handy to see the acknowledgements sent back to a phone app.
type LineLogger struct {
	mu     sync.Mutex
	line   []byte
	logger *slog.Logger
	label  string
}

type LineLoggerOption func(*LineLogger)

func WithLineLabel(label string) LineLoggerOption {
	return func(l *LineLogger) { l.label = label }
}

func NewLineLogger(logger *slog.Logger, opts ...LineLoggerOption) *LineLogger {
	if logger == nil {
		logger = slog.Default()
	}
	l := &LineLogger{logger: logger, label: "serial"}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *LineLogger) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, b := range p {
		if b == 0 || b == '\n' || b == '\r' {
			l.flush()
			continue
		}
		l.line = append(l.line, b)
	}
	return len(p), nil
}

// Flush logs a pending partial line.
func (l *LineLogger) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flush()
}

func (l *LineLogger) flush() {
	if len(l.line) == 0 {
		return
	}
	l.logger.Info(l.label, "line", string(l.line))
	l.line = l.line[:0]
}
