package serial

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	tarm "github.com/tarm/serial"
)

// Config describes a serial line. The HC-06 Bluetooth module defaults to
// 9600 8N1.
type Config struct {
	Name        string
	Baud        int
	ReadTimeout time.Duration
}

func DefaultConfig(name string) Config {
	return Config{
		Name:        name,
		Baud:        9600,
		ReadTimeout: 100 * time.Millisecond,
	}
}

// Port is an open serial line. It is a pollable command source and the
// writer for acknowledgements.
type Port struct {
	*StreamSource

	name   string
	port   *tarm.Port
	closed atomic.Bool
}

// Open opens the device named in cfg. An empty name picks the first
// device that looks like a USB or Bluetooth serial adapter.
func Open(cfg Config) (*Port, error) {
	if cfg.Name == "" {
		cfg.Name = Find()
		if cfg.Name == "" {
			return nil, fmt.Errorf("no serial device found")
		}
	}
	if cfg.Baud <= 0 {
		cfg.Baud = 9600
	}

	sp, err := tarm.OpenPort(&tarm.Config{
		Name:        cfg.Name,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
		Size:        8,
		Parity:      tarm.ParityNone,
		StopBits:    tarm.Stop1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.Name, err)
	}

	p := &Port{name: cfg.Name, port: sp}
	// a read timeout surfaces as io.EOF; keep reading until Close
	p.StreamSource = newStreamSource(sp, 1024, func() bool { return !p.closed.Load() })

	slog.Info("serial port open", "device", cfg.Name, "baud", cfg.Baud)
	return p, nil
}

func (p *Port) Name() string {
	return p.name
}

func (p *Port) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

func (p *Port) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	p.Stop()
	return p.port.Close()
}

var devicePrefixes = []string{"ttyUSB", "ttyACM", "rfcomm", "tty.usbserial", "tty.HC-06", "cu.HC-06"}

// Find returns the first /dev entry that looks like a serial adapter, or
// "" if there is none.
func Find() string {
	return findIn("/dev")
}

func findIn(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		for _, prefix := range devicePrefixes {
			if strings.HasPrefix(e.Name(), prefix) {
				return dir + "/" + e.Name()
			}
		}
	}
	return ""
}
