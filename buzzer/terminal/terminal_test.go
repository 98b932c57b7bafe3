package terminal

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-buzzer/buzzer/note"
	"github.com/valerio/go-buzzer/buzzer/tone"
)

func newSimUI(t *testing.T, opts ...Option) (*UI, tcell.SimulationScreen) {
	t.Helper()
	s := tcell.NewSimulationScreen("")
	require.NoError(t, s.Init())
	s.SetSize(80, 24)
	u := New(s, opts...)
	t.Cleanup(func() { _ = u.Close() })
	return u, s
}

func screenText(s tcell.Screen) string {
	w, h := s.Size()
	var sb strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, _, _, _ := s.GetContent(x, y)
			if r == 0 {
				r = ' '
			}
			sb.WriteRune(r)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func pollAll(u *UI) ([]byte, error) {
	var got []byte
	for i := 0; i < 100; i++ {
		b, ok, err := u.Poll()
		if err != nil {
			return got, err
		}
		if ok {
			got = append(got, b)
		}
	}
	return got, nil
}

func TestUI_KeysBecomeBytes(t *testing.T) {
	u, s := newSimUI(t)

	s.InjectKey(tcell.KeyRune, 'C', tcell.ModNone)
	s.InjectKey(tcell.KeyRune, '4', tcell.ModNone)
	s.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	s.InjectKey(tcell.KeyRune, 'é', tcell.ModNone)
	s.InjectKey(tcell.KeyRune, 'A', tcell.ModNone)

	got, err := pollAll(u)
	require.NoError(t, err)
	assert.Equal(t, "C4\nA", string(got))
}

func TestUI_EscapeEndsInput(t *testing.T) {
	u, s := newSimUI(t)

	s.InjectKey(tcell.KeyRune, 'B', tcell.ModNone)
	s.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)

	got, err := pollAll(u)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "B", string(got), "bytes typed before Esc are still delivered")
}

func TestUI_DrawsStatus(t *testing.T) {
	regs := &tone.Registers{}
	driver := tone.NewDriver(regs)
	u, s := newSimUI(t, WithStatus(driver), WithTitle("keys: token mode"))

	driver.SetTone(note.Resolve("A4").Hz)
	_, err := u.Write([]byte("OK A4 (440.00Hz)\n"))
	require.NoError(t, err)

	text := screenText(s)
	assert.Contains(t, text, "keys: token mode")
	assert.Contains(t, text, "ON")
	assert.Contains(t, text, "A4")
	assert.Contains(t, text, "440.00 Hz")
	assert.Contains(t, text, "OK A4 (440.00Hz)")

	driver.SetTone(0)
	u.Refresh()
	assert.Contains(t, screenText(s), "OFF")
}

func TestUI_TooSmall(t *testing.T) {
	u, s := newSimUI(t)
	s.SetSize(20, 5)
	u.Refresh()
	assert.Contains(t, screenText(s), "too small")
}

func TestUI_LogPaneAndFilter(t *testing.T) {
	logger, buf := NewLogger(slog.LevelDebug)
	u, s := newSimUI(t, WithLogs(buf))

	logger.Debug("tone off")
	logger.Info("dispatcher started", "mode", "byte")
	u.Refresh()

	text := screenText(s)
	assert.Contains(t, text, "dispatcher started mode=byte")
	assert.NotContains(t, text, "tone off")

	s.InjectKey(tcell.KeyF10, 0, tcell.ModNone)
	_, _ = pollAll(u)
	u.Refresh()
	assert.Contains(t, screenText(s), "[DBG] tone off")
	assert.Contains(t, screenText(s), "Logs [DEBUG]")
}

func TestLogBuffer_Ring(t *testing.T) {
	buf := NewLogBuffer(3)
	for i, msg := range []string{"a", "b", "c", "d"} {
		level := slog.LevelInfo
		if i == 2 {
			level = slog.LevelWarn
		}
		buf.Add(LogEntry{Level: level, Message: msg})
	}

	assert.Equal(t, 3, buf.Len())
	var msgs []string
	for _, e := range buf.Recent(0, slog.LevelDebug) {
		msgs = append(msgs, e.Message)
	}
	assert.Equal(t, []string{"d", "c", "b"}, msgs)

	warn := buf.Recent(5, slog.LevelWarn)
	require.Len(t, warn, 1)
	assert.Equal(t, "c", warn[0].Message)
	assert.Len(t, buf.Recent(1, slog.LevelDebug), 1)
}

func TestLogBufferHandler_AttrsAndGroups(t *testing.T) {
	buf := NewLogBuffer(10)
	logger := slog.New(NewLogBufferHandler(buf, slog.LevelInfo))

	logger.With("song", "chords").WithGroup("step").Info("play", "index", 2)
	logger.Debug("hidden")

	entries := buf.Recent(0, slog.LevelDebug)
	require.Len(t, entries, 1)
	assert.Equal(t, "play song=chords step.index=2", entries[0].Message)
}

func TestFormatLogEntry(t *testing.T) {
	at := time.Date(2024, 1, 1, 13, 4, 5, 0, time.UTC)
	assert.Equal(t, "13:04:05 [WRN] late", FormatLogEntry(LogEntry{Time: at, Level: slog.LevelWarn, Message: "late"}))
	assert.Equal(t, "13:04:05 [???] x", FormatLogEntry(LogEntry{Time: at, Level: slog.Level(2), Message: "x"}))
}
