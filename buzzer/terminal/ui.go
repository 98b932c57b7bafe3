// Package terminal is a keyboard front end for the dispatcher: keys become
// command bytes and the screen shows what the channel is playing.
package terminal

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-buzzer/buzzer/tone"
)

const (
	frameTime     = time.Second / 30
	statusHeight  = 9
	minTermWidth  = 40
	minTermHeight = 16
	logCapacity   = 200
)

// StatusProvider reports what the tone channel is doing.
type StatusProvider interface {
	Status() tone.Status
}

// UI reads keys from a tcell screen and draws the channel status. It is a
// dispatch.Source and an io.Writer for acknowledgements.
type UI struct {
	mu       sync.Mutex
	screen   tcell.Screen
	status   StatusProvider
	logs     *LogBuffer
	logLevel slog.Level
	title    string

	pending  []byte
	lastAck  string
	acks     int
	quit     bool
	lastDraw time.Time
}

type Option func(*UI)

// WithStatus shows the status of p on screen.
func WithStatus(p StatusProvider) Option {
	return func(u *UI) { u.status = p }
}

// WithLogs draws the entries of buf in the lower pane.
func WithLogs(buf *LogBuffer) Option {
	return func(u *UI) { u.logs = buf }
}

func WithTitle(title string) Option {
	return func(u *UI) { u.title = title }
}

// Open initializes the real terminal.
func Open(opts ...Option) (*UI, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	return New(screen, opts...), nil
}

// New wraps an initialized screen.
func New(screen tcell.Screen, opts ...Option) *UI {
	u := &UI{
		screen:   screen,
		logLevel: slog.LevelInfo,
		title:    "buzzer",
	}
	for _, opt := range opts {
		opt(u)
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()
	u.draw(time.Now())
	return u
}

// NewLogger captures logs for the on-screen pane; the terminal itself can't
// be written to while the UI is up.
func NewLogger(level slog.Leveler) (*slog.Logger, *LogBuffer) {
	buf := NewLogBuffer(logCapacity)
	return slog.New(NewLogBufferHandler(buf, level)), buf
}

// Poll handles pending key events and returns the next command byte.
// Escape or Ctrl-C end the input with io.EOF.
func (u *UI) Poll() (byte, bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for u.screen.HasPendingEvent() {
		switch ev := u.screen.PollEvent().(type) {
		case *tcell.EventKey:
			u.processKey(ev)
		case *tcell.EventResize:
			u.screen.Sync()
		}
	}

	now := time.Now()
	if now.Sub(u.lastDraw) >= frameTime {
		u.draw(now)
	}

	if len(u.pending) > 0 {
		b := u.pending[0]
		u.pending = u.pending[1:]
		return b, true, nil
	}
	if u.quit {
		return 0, false, io.EOF
	}
	return 0, false, nil
}

func (u *UI) processKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		u.quit = true
	case tcell.KeyEnter:
		u.pending = append(u.pending, '\n')
	case tcell.KeyF9:
		u.changeLogLevel(-1)
	case tcell.KeyF10:
		u.changeLogLevel(1)
	case tcell.KeyRune:
		r := ev.Rune()
		if r > 0 && r < 0x80 {
			u.pending = append(u.pending, byte(r))
		}
	}
}

func (u *UI) changeLogLevel(direction int) {
	old := u.logLevel
	switch {
	case direction > 0 && u.logLevel > slog.LevelDebug:
		u.logLevel -= 4
	case direction < 0 && u.logLevel < slog.LevelError:
		u.logLevel += 4
	}
	if old != u.logLevel {
		slog.Info("log filter changed", "from", old, "to", u.logLevel)
	}
}

// Write records an acknowledgement line and redraws right away, since the
// dispatcher is about to block while the note plays.
func (u *UI) Write(p []byte) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if line := strings.TrimSpace(string(p)); line != "" {
		u.lastAck = line
		u.acks++
	}
	u.draw(time.Now())
	return len(p), nil
}

// Refresh redraws the screen.
func (u *UI) Refresh() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.draw(time.Now())
}

func (u *UI) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.screen.Fini()
	return nil
}

func (u *UI) draw(now time.Time) {
	u.lastDraw = now
	u.screen.Clear()

	w, h := u.screen.Size()
	if w < minTermWidth || h < minTermHeight {
		u.text(0, 0, w, fmt.Sprintf("too small %dx%d", w, h),
			tcell.StyleDefault.Foreground(tcell.ColorRed))
		u.screen.Show()
		return
	}

	border := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	title := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	u.text(1, 0, w-1, " "+u.title+" ", title)
	u.drawStatus(2, 1, w-2)

	for x := 0; x < w; x++ {
		u.screen.SetContent(x, statusHeight, '─', nil, border)
	}
	u.text(1, statusHeight, w-1, fmt.Sprintf(" Logs [%s] ", u.logLevel), title)
	u.drawLogs(1, statusHeight+1, w-2, h-statusHeight-2)

	u.text(0, h-1, w, " type notes, Enter sends, Esc quits | F9/F10 log filter ", border)
	u.screen.Show()
}

func (u *UI) drawStatus(x, y, width int) {
	label := tcell.StyleDefault.Foreground(tcell.ColorGray)
	value := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	on := tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)

	var st tone.Status
	if u.status != nil {
		st = u.status.Status()
	}

	state, stateStyle := "OFF", label
	if st.Enabled {
		state, stateStyle = "ON", on
	}

	rows := []struct {
		name  string
		value string
		style tcell.Style
	}{
		{"Tone", state, stateStyle},
		{"Note", noteLabel(st), value},
		{"Requested", fmt.Sprintf("%.2f Hz", st.Requested), value},
		{"Actual", fmt.Sprintf("%.2f Hz", st.Frequency), value},
		{"Divider", fmt.Sprintf("%.0f  top %d  duty %.0f%%", st.Divider, st.Period, st.DutyCycle*100), value},
		{"Last", u.lastAck, value},
		{"Commands", fmt.Sprint(u.acks), value},
	}
	for i, r := range rows {
		u.text(x, y+i, 12, r.name, label)
		u.text(x+12, y+i, width-12, r.value, r.style)
	}
}

func noteLabel(st tone.Status) string {
	if st.Note == "" {
		return "REST"
	}
	return st.Note
}

func (u *UI) drawLogs(x, y, width, height int) {
	if u.logs == nil || height <= 0 {
		return
	}

	styles := map[slog.Level]tcell.Style{
		slog.LevelDebug: tcell.StyleDefault.Foreground(tcell.ColorGray),
		slog.LevelInfo:  tcell.StyleDefault.Foreground(tcell.ColorBlue),
		slog.LevelWarn:  tcell.StyleDefault.Foreground(tcell.ColorYellow),
		slog.LevelError: tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
	}
	for i, e := range u.logs.Recent(height, u.logLevel) {
		style, ok := styles[e.Level]
		if !ok {
			style = styles[slog.LevelInfo]
		}
		u.text(x, y+i, width, FormatLogEntry(e), style)
	}
}

// text draws s clipped to width cells, marking truncation with "...".
func (u *UI) text(x, y, width int, s string, style tcell.Style) {
	if width <= 0 {
		return
	}
	runes := []rune(s)
	if len(runes) > width {
		if width > 3 {
			runes = append(runes[:width-3], '.', '.', '.')
		} else {
			runes = runes[:width]
		}
	}
	for i, r := range runes {
		u.screen.SetContent(x+i, y, r, nil, style)
	}
}
