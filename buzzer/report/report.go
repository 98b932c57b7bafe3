// Package report prints human-readable tables for the command line.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/valerio/go-buzzer/buzzer/note"
	"github.com/valerio/go-buzzer/buzzer/sequencer"
	"github.com/valerio/go-buzzer/buzzer/song"
	"github.com/valerio/go-buzzer/buzzer/tone"
)

type Styles struct {
	Header lipgloss.Style
	Name   lipgloss.Style
	Value  lipgloss.Style
	Rest   lipgloss.Style
	Err    lipgloss.Style
}

// Color uses the basic ANSI palette:
// 1 red, 3 yellow, 4 blue, 6 cyan, 7 white, 8 gray.
func Color() Styles {
	return Styles{
		Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(3)),
		Name:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(6)),
		Value:  lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(4)),
		Rest:   lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(8)),
		Err:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(1)),
	}
}

// Plain is for output that isn't a terminal.
func Plain() Styles {
	s := lipgloss.NewStyle()
	return Styles{Header: s, Name: s, Value: s, Rest: s, Err: s}
}

type column struct {
	title string
	width int
}

type table struct {
	st   Styles
	cols []column
	sb   strings.Builder
}

func newTable(st Styles, cols ...column) *table {
	t := &table{st: st, cols: cols}
	for _, c := range cols {
		t.sb.WriteString(st.Header.Render(pad(c.title, c.width)))
	}
	t.sb.WriteByte('\n')
	return t
}

// row writes cells in column order, each with its own style. Text longer
// than its column pushes the rest of the row right instead of wrapping.
func (t *table) row(cells ...cell) {
	for i, c := range cells {
		t.sb.WriteString(c.style.Render(pad(c.text, t.cols[i].width)))
	}
	t.sb.WriteByte('\n')
}

func pad(s string, width int) string {
	return fmt.Sprintf("%-*s ", width-1, s)
}

func (t *table) writeTo(w io.Writer) error {
	_, err := io.WriteString(w, t.sb.String())
	return err
}

type cell struct {
	text  string
	style lipgloss.Style
}

// Resolve prints how each token resolves and the register values the
// driver would program for it.
func Resolve(w io.Writer, tokens []string, systemClock uint32, st Styles) error {
	t := newTable(st,
		column{"TOKEN", 10},
		column{"KIND", 8},
		column{"NOTE", 6},
		column{"HZ", 11},
		column{"DIV", 6},
		column{"TOP", 7},
		column{"ACTUAL", 11},
		column{"ERROR", 8},
	)

	for _, tok := range tokens {
		p, err := note.Parse(tok)
		switch {
		case err != nil:
			t.row(cell{tok, st.Name}, cell{p.Kind.String(), st.Err}, cell{err.Error(), st.Err},
				cell{"", st.Value}, cell{"", st.Value}, cell{"", st.Value}, cell{"", st.Value}, cell{"", st.Value})
		case p.IsRest():
			t.row(cell{tok, st.Name}, cell{p.Kind.String(), st.Rest}, cell{"REST", st.Rest},
				cell{"-", st.Rest}, cell{"-", st.Rest}, cell{"-", st.Rest}, cell{"-", st.Rest}, cell{"-", st.Rest})
		default:
			prog := tone.Compute(systemClock, p.Hz)
			actual := prog.Frequency(systemClock)
			drift := (actual - float64(p.Hz)) / float64(p.Hz) * 100
			t.row(
				cell{tok, st.Name},
				cell{p.Kind.String(), st.Value},
				cell{note.Name(p.Hz), st.Value},
				cell{fmt.Sprintf("%.2f", p.Hz), st.Value},
				cell{fmt.Sprintf("%.0f", prog.Divider), st.Value},
				cell{fmt.Sprint(prog.Period), st.Value},
				cell{fmt.Sprintf("%.2f", actual), st.Value},
				cell{fmt.Sprintf("%+.3f%%", drift), st.Value},
			)
		}
	}
	return t.writeTo(w)
}

// Songs lists songs with their length at the tempo in cfg.
func Songs(w io.Writer, songs []song.Song, cfg sequencer.Config, st Styles) error {
	t := newTable(st,
		column{"NAME", 12},
		column{"STEPS", 7},
		column{"ARPS", 6},
		column{"TICKS", 7},
		column{"LENGTH", 10},
	)
	for _, s := range songs {
		arps := 0
		for _, step := range s.Steps {
			if step.Arpeggio {
				arps++
			}
		}
		t.row(
			cell{s.Name, st.Name},
			cell{fmt.Sprint(len(s.Steps)), st.Value},
			cell{fmt.Sprint(arps), st.Value},
			cell{fmt.Sprint(s.TotalTicks()), st.Value},
			cell{Length(s, cfg).String(), st.Value},
		)
	}
	return t.writeTo(w)
}

// Steps prints every step of s with its timing.
func Steps(w io.Writer, s song.Song, cfg sequencer.Config, st Styles) error {
	if _, err := fmt.Fprintf(w, "%s\n", st.Header.Render(s.Name)); err != nil {
		return err
	}
	t := newTable(st,
		column{"#", 5},
		column{"NOTES", 18},
		column{"TICKS", 7},
		column{"GATE", 8},
		column{"REST", 8},
	)
	tick := cfg.Tick()
	for i, step := range s.Steps {
		_, gate, rest := sequencer.Timing(step.Ticks, tick, cfg.GatePercent)
		style := st.Value
		if !step.Lead().Sounding() && !step.Arpeggio {
			style = st.Rest
		}
		t.row(
			cell{fmt.Sprint(i), st.Name},
			cell{stepNotes(step), style},
			cell{fmt.Sprint(step.Ticks), style},
			cell{gate.String(), style},
			cell{rest.String(), style},
		)
	}
	return t.writeTo(w)
}

func stepNotes(step song.Step) string {
	if !step.Arpeggio {
		return note.Name(step.Lead().Hz)
	}
	names := make([]string, len(step.Notes))
	for i, p := range step.Notes {
		names[i] = note.Name(p.Hz)
	}
	return "arp " + strings.Join(names, " ")
}

// Length is how long one pass of s takes with the step timing of cfg.
// Arpeggio steps last their nominal length here; their last slice may
// overrun it slightly when played.
func Length(s song.Song, cfg sequencer.Config) time.Duration {
	tick := cfg.Tick()
	var total time.Duration
	for _, step := range s.Steps {
		d, _, _ := sequencer.Timing(step.Ticks, tick, cfg.GatePercent)
		total += d
	}
	return total
}
