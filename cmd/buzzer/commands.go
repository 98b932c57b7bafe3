package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli"

	"github.com/valerio/go-buzzer/buzzer"
	"github.com/valerio/go-buzzer/buzzer/dispatch"
	"github.com/valerio/go-buzzer/buzzer/midi"
	"github.com/valerio/go-buzzer/buzzer/render"
	"github.com/valerio/go-buzzer/buzzer/report"
	"github.com/valerio/go-buzzer/buzzer/sequencer"
	"github.com/valerio/go-buzzer/buzzer/serial"
	"github.com/valerio/go-buzzer/buzzer/song"
	"github.com/valerio/go-buzzer/buzzer/terminal"
)

func playCommand() cli.Command {
	flags := append(songFlags(), sequencerFlags()...)
	flags = append(flags,
		cli.BoolFlag{Name: "once", Usage: "Play the song once instead of looping"},
		outputFlag(),
	)
	return cli.Command{
		Name:   "play",
		Usage:  "Play a song until interrupted",
		Flags:  flags,
		Action: runPlay,
	}
}

func runPlay(c *cli.Context) error {
	s, err := loadSong(c)
	if err != nil {
		return err
	}
	cfg, err := engineConfig(c)
	if err != nil {
		return err
	}
	cfg.Sequencer.Loop = !c.Bool("once")

	engine, err := buzzer.New(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx, stop := signalContext()
	defer stop()

	return engine.PlaySong(ctx, s, sequencer.WithStepHook(func(i int, step song.Step) {
		slog.Debug("step", "index", i, "step", step.String())
	}))
}

func dispatchFlags() []cli.Flag {
	def := dispatch.DefaultConfig()
	return []cli.Flag{
		cli.StringFlag{Name: "mode", Value: def.Mode.String(), Usage: "Command format: byte (A-E) or token (note names)"},
		cli.DurationFlag{Name: "timeout", Value: def.MessageTimeout, Usage: "Idle time that completes a token"},
		cli.StringFlag{Name: "on-invalid", Value: "rest", Usage: "Invalid token handling: rest or ignore"},
		cli.DurationFlag{Name: "note-length", Value: def.NoteDuration, Usage: "How long a received note sounds"},
	}
}

func dispatchConfig(c *cli.Context) (dispatch.Config, error) {
	cfg := dispatch.DefaultConfig()
	mode, err := dispatch.ParseMode(c.String("mode"))
	if err != nil {
		return cfg, err
	}
	policy, err := dispatch.ParseInvalidPolicy(c.String("on-invalid"))
	if err != nil {
		return cfg, err
	}
	cfg.Mode = mode
	cfg.OnInvalid = policy
	cfg.MessageTimeout = c.Duration("timeout")
	cfg.NoteDuration = c.Duration("note-length")
	return cfg, nil
}

func listenCommand() cli.Command {
	flags := append(dispatchFlags(), sequencerFlags()...)
	flags = append(flags,
		cli.StringFlag{Name: "port", Usage: "Serial device (default: first USB/Bluetooth serial device found)"},
		cli.IntFlag{Name: "baud", Value: 9600, Usage: "Serial baud rate"},
		cli.BoolFlag{Name: "stdin", Usage: "Read commands from standard input instead of a serial port"},
		cli.BoolFlag{Name: "echo", Usage: "Log acknowledgements"},
		outputFlag(),
	)
	return cli.Command{
		Name:   "listen",
		Usage:  "Play notes received over a serial link",
		Flags:  flags,
		Action: runListen,
	}
}

func runListen(c *cli.Context) error {
	cfg, err := engineConfig(c)
	if err != nil {
		return err
	}
	if cfg.Dispatch, err = dispatchConfig(c); err != nil {
		return err
	}

	var (
		src  dispatch.Source
		acks []io.Writer
	)
	if c.Bool("stdin") {
		src = serial.NewStreamSource(os.Stdin)
	} else {
		pcfg := serial.DefaultConfig(c.String("port"))
		pcfg.Baud = c.Int("baud")
		port, err := serial.Open(pcfg)
		if err != nil {
			return err
		}
		defer port.Close()
		src = port
		acks = append(acks, port)
	}
	if c.Bool("echo") {
		echo := serial.NewLineLogger(slog.Default(), serial.WithLineLabel("ack"))
		defer echo.Flush()
		acks = append(acks, echo)
	}

	engine, err := buzzer.New(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx, stop := signalContext()
	defer stop()

	var opts []dispatch.Option
	if len(acks) > 0 {
		opts = append(opts, dispatch.WithAck(io.MultiWriter(acks...)))
	}
	return engine.Listen(ctx, src, opts...)
}

func keysCommand() cli.Command {
	flags := append(dispatchFlags(), sequencerFlags()...)
	flags = append(flags, outputFlag())
	return cli.Command{
		Name:   "keys",
		Usage:  "Play notes typed on the keyboard",
		Flags:  flags,
		Action: runKeys,
	}
}

func runKeys(c *cli.Context) error {
	if !isTerminal(os.Stdin) {
		return errors.New("keys needs an interactive terminal")
	}
	cfg, err := engineConfig(c)
	if err != nil {
		return err
	}
	if cfg.Dispatch, err = dispatchConfig(c); err != nil {
		return err
	}

	// logs go to the on-screen pane while the UI owns the terminal
	previous := slog.Default()
	logger, logs := terminal.NewLogger(slog.LevelDebug)
	slog.SetDefault(logger)
	defer slog.SetDefault(previous)
	cfg.Logger = logger

	engine, err := buzzer.New(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	ui, err := terminal.Open(
		terminal.WithStatus(engine),
		terminal.WithLogs(logs),
		terminal.WithTitle(fmt.Sprintf("buzzer keys: %s mode, %s output", cfg.Dispatch.Mode, cfg.Output)),
	)
	if err != nil {
		return err
	}
	defer ui.Close()

	ctx, stop := signalContext()
	defer stop()
	return engine.Listen(ctx, ui, dispatch.WithAck(ui))
}

func resolveCommand() cli.Command {
	return cli.Command{
		Name:      "resolve",
		Usage:     "Show how note tokens resolve and which registers they program",
		ArgsUsage: "TOKEN...",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				cli.ShowCommandHelp(c, "resolve")
				return errors.New("no tokens given")
			}
			return report.Resolve(os.Stdout, c.Args(), uint32(c.GlobalUint("clock")), reportStyles())
		},
	}
}

func songsCommand() cli.Command {
	return cli.Command{
		Name:  "songs",
		Usage: "List the built-in songs",
		Flags: append(sequencerFlags(),
			cli.BoolFlag{Name: "dump", Usage: "Dump the song data structures"},
			cli.StringFlag{Name: "write", Usage: "Print the named song in song file format"},
			cli.StringFlag{Name: "steps", Usage: "Print the steps of the named song with their timing"},
		),
		Action: runSongs,
	}
}

func runSongs(c *cli.Context) error {
	cfg, err := sequencerConfig(c)
	if err != nil {
		return err
	}

	builtin := func(name string) (song.Song, error) {
		s, ok := song.Builtin(name)
		if !ok {
			return s, fmt.Errorf("unknown song %q", name)
		}
		return s, nil
	}

	switch {
	case c.Bool("dump"):
		spew.Dump(song.Builtins())
		return nil
	case c.String("write") != "":
		s, err := builtin(c.String("write"))
		if err != nil {
			return err
		}
		return song.Write(os.Stdout, s)
	case c.String("steps") != "":
		s, err := builtin(c.String("steps"))
		if err != nil {
			return err
		}
		return report.Steps(os.Stdout, s, cfg, reportStyles())
	}
	return report.Songs(os.Stdout, song.Builtins(), cfg, reportStyles())
}

func renderCommand() cli.Command {
	flags := append(songFlags(), sequencerFlags()...)
	flags = append(flags,
		cli.StringFlag{Name: "wav", Usage: "Output WAV file"},
		cli.IntFlag{Name: "sample-rate", Value: render.DefaultSampleRate, Usage: "Sample rate in Hz"},
		cli.Float64Flag{Name: "volume", Value: 0.5, Usage: "Peak amplitude (0-1]"},
	)
	return cli.Command{
		Name:   "render",
		Usage:  "Render one pass of a song to a WAV file",
		Flags:  flags,
		Action: runRender,
	}
}

func runRender(c *cli.Context) error {
	path := c.String("wav")
	if path == "" {
		return errors.New("render requires --wav")
	}
	s, err := loadSong(c)
	if err != nil {
		return err
	}
	cfg, err := sequencerConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	start := time.Now()
	r, err := render.Song(ctx, s, cfg, c.Int("sample-rate"), uint32(c.GlobalUint("clock")))
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := r.WriteWAV(f, float32(c.Float64("volume"))); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	slog.Info("rendered song",
		"song", s.Name,
		"path", path,
		"length", r.Duration(),
		"samples", len(r.Samples()),
		"took", time.Since(start))
	return nil
}

func exportCommand() cli.Command {
	flags := append(songFlags(), sequencerFlags()...)
	flags = append(flags, cli.StringFlag{Name: "midi", Usage: "Output MIDI file"})
	return cli.Command{
		Name:   "export",
		Usage:  "Export a song as a Standard MIDI File",
		Flags:  flags,
		Action: runExport,
	}
}

func runExport(c *cli.Context) error {
	path := c.String("midi")
	if path == "" {
		return errors.New("export requires --midi")
	}
	s, err := loadSong(c)
	if err != nil {
		return err
	}
	cfg, err := sequencerConfig(c)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := midi.Export(f, s, cfg); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	slog.Info("exported song", "song", s.Name, "path", path, "steps", len(s.Steps))
	return nil
}
