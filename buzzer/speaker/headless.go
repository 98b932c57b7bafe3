//go:build headless

package speaker

import "errors"

var ErrUnavailable = errors.New("audio output not available in headless build")

// Speaker is unavailable in headless builds.
type Speaker struct {
	*Voice
}

const Available = false

func Open(sampleRate int, systemClock uint32, volume float32) (*Speaker, error) {
	return nil, ErrUnavailable
}

func (s *Speaker) Close() error {
	return nil
}
