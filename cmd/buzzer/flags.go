package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli"
	"golang.org/x/term"

	"github.com/valerio/go-buzzer/buzzer"
	"github.com/valerio/go-buzzer/buzzer/report"
	"github.com/valerio/go-buzzer/buzzer/sequencer"
	"github.com/valerio/go-buzzer/buzzer/song"
)

func songFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "song",
			Value: song.DefaultName,
			Usage: "Built-in song to use (see 'buzzer songs')",
		},
		cli.StringFlag{
			Name:  "file",
			Usage: "Song file to load instead of a built-in song",
		},
	}
}

func sequencerFlags() []cli.Flag {
	def := sequencer.DefaultConfig()
	return []cli.Flag{
		cli.UintFlag{Name: "bpm", Value: uint(def.BPM), Usage: "Tempo in beats per minute"},
		cli.UintFlag{Name: "ticks-per-beat", Value: uint(def.TicksPerBeat), Usage: "Step ticks per beat"},
		cli.UintFlag{Name: "gate", Value: uint(def.GatePercent), Usage: "Percentage of each step that sounds (0-100)"},
		cli.IntFlag{Name: "arp-ms", Value: int(def.ArpStep.Milliseconds()), Usage: "Length of one arpeggio slice in milliseconds"},
		cli.BoolFlag{Name: "poll-slices", Usage: "Check for interruption between arpeggio slices"},
	}
}

func outputFlag() cli.Flag {
	return cli.StringFlag{
		Name:  "output",
		Value: "speaker",
		Usage: "Where the tone goes: speaker or dry (registers only)",
	}
}

func loadSong(c *cli.Context) (song.Song, error) {
	if path := c.String("file"); path != "" {
		s, err := song.Load(path)
		if err != nil {
			return song.Song{}, err
		}
		return *s, nil
	}

	name := c.String("song")
	s, ok := song.Builtin(name)
	if !ok {
		var names []string
		for _, b := range song.Builtins() {
			names = append(names, b.Name)
		}
		return song.Song{}, fmt.Errorf("unknown song %q (available: %s)", name, strings.Join(names, ", "))
	}
	return s, nil
}

func sequencerConfig(c *cli.Context) (sequencer.Config, error) {
	cfg := sequencer.DefaultConfig()
	cfg.BPM = uint32(c.Uint("bpm"))
	cfg.TicksPerBeat = uint32(c.Uint("ticks-per-beat"))
	if c.Uint("gate") > 100 {
		return cfg, fmt.Errorf("--gate must be 0-100, got %d", c.Uint("gate"))
	}
	cfg.GatePercent = uint8(c.Uint("gate"))
	cfg.ArpStep = time.Duration(c.Int("arp-ms")) * time.Millisecond
	cfg.PollSlices = c.Bool("poll-slices")
	return cfg, cfg.Validate()
}

// engineConfig builds the engine settings shared by the playing commands.
func engineConfig(c *cli.Context) (buzzer.Config, error) {
	cfg := buzzer.DefaultConfig()
	cfg.SystemClock = uint32(c.GlobalUint("clock"))
	if cfg.SystemClock == 0 {
		return cfg, errors.New("--clock must be positive")
	}

	out, err := buzzer.ParseOutput(c.String("output"))
	if err != nil {
		return cfg, err
	}
	cfg.Output = out

	seq, err := sequencerConfig(c)
	if err != nil {
		return cfg, err
	}
	cfg.Sequencer = seq
	return cfg, nil
}

// signalContext is cancelled on SIGINT/SIGTERM/SIGHUP.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func reportStyles() report.Styles {
	if isTerminal(os.Stdout) {
		return report.Color()
	}
	return report.Plain()
}
