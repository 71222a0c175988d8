//go:build nocgo

package playback

import "context"

// Player is unavailable in nocgo builds.
type Player struct {
	sampleRate int
}

// New always fails with ErrUnavailable.
func New(sampleRate int, opts ...Option) (*Player, error) {
	_ = applyOptions(opts)
	return nil, ErrUnavailable
}

// SampleRate returns the device rate.
func (p *Player) SampleRate() int { return p.sampleRate }

// Play always fails with ErrUnavailable.
func (p *Player) Play(ctx context.Context, samples []float64) error {
	return ErrUnavailable
}
