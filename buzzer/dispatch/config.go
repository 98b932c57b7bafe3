package dispatch

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects how received bytes are interpreted.
type Mode int

const (
	// ByteMode maps each byte to a fixed frequency.
	ByteMode Mode = iota
	// TokenMode frames bytes into note-name tokens.
	TokenMode
)

func (m Mode) String() string {
	if m == TokenMode {
		return "token"
	}
	return "byte"
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "byte":
		return ByteMode, nil
	case "token":
		return TokenMode, nil
	}
	return ByteMode, fmt.Errorf("unknown mode %q (want byte or token)", s)
}

// InvalidPolicy decides what an unresolvable token does.
type InvalidPolicy int

const (
	PlayRest InvalidPolicy = iota
	Ignore
)

func ParseInvalidPolicy(s string) (InvalidPolicy, error) {
	switch strings.ToLower(s) {
	case "rest":
		return PlayRest, nil
	case "ignore":
		return Ignore, nil
	}
	return PlayRest, fmt.Errorf("unknown invalid-token policy %q (want rest or ignore)", s)
}

// Config holds the dispatcher settings. The defaults suit a phone app
// talking through an HC-06 Bluetooth module.
type Config struct {
	Mode      Mode
	OnInvalid InvalidPolicy

	MessageTimeout time.Duration // token complete after this much silence
	BufferSize     int           // token complete when this many bytes are pending

	NoteDuration time.Duration // how long a received note sounds
	Gap          time.Duration // silence after a note

	PollInterval time.Duration
	Heartbeat    time.Duration
}

func DefaultConfig() Config {
	return Config{
		Mode:           ByteMode,
		OnInvalid:      PlayRest,
		MessageTimeout: 80 * time.Millisecond,
		BufferSize:     64,
		NoteDuration:   250 * time.Millisecond,
		Gap:            30 * time.Millisecond,
		PollInterval:   time.Millisecond,
		Heartbeat:      time.Second,
	}
}

// ByteFrequencies is the one-byte command table. Any other byte is a rest.
var ByteFrequencies = map[byte]float32{
	'A': 100,
	'B': 200,
	'C': 300,
	'D': 400,
	'E': 500,
}
