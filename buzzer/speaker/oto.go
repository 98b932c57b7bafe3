//go:build !headless

package speaker

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Speaker plays a Voice on the default audio device.
type Speaker struct {
	*Voice

	ctx     *oto.Context
	player  *oto.Player
	started bool
	mu      sync.Mutex
}

// Available reports whether this build can open an audio device.
const Available = true

// Open creates the audio context and starts playing a silent voice.
func Open(sampleRate int, systemClock uint32, volume float32) (*Speaker, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}
	<-ready

	s := &Speaker{
		Voice: NewVoice(sampleRate, systemClock, volume),
		ctx:   ctx,
	}
	s.player = ctx.NewPlayer(s.Voice)
	s.start()

	slog.Info("audio output open", "sample_rate", sampleRate)
	return s, nil
}

func (s *Speaker) start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started && s.player != nil {
		s.player.Play()
		s.started = true
	}
}

func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player == nil {
		return nil
	}
	err := s.player.Close()
	s.player = nil
	s.started = false
	return err
}
