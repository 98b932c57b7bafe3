package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"
	"github.com/valerio/go-buzzer/buzzer/tone"
)

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		slog.Error("Error running buzzer", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "buzzer"
	app.Description = "Square-wave tone engine: note resolver, step sequencer and serial note player"
	app.Usage = "buzzer [global options] command [command options]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "Log level: debug, info, warn or error",
		},
		cli.UintFlag{
			Name:  "clock",
			Value: tone.DefaultSystemClock,
			Usage: "System clock feeding the PWM divider, in Hz",
		},
	}
	app.Before = setupLogging
	app.Commands = []cli.Command{
		playCommand(),
		listenCommand(),
		keysCommand(),
		resolveCommand(),
		songsCommand(),
		renderCommand(),
		exportCommand(),
	}
	return app
}

func setupLogging(c *cli.Context) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.GlobalString("log-level"))); err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}
