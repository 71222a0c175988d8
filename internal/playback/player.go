//go:build !nocgo

package playback

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-wiggle/internal/audiofile"
)

const pollInterval = 20 * time.Millisecond

// Player plays mono buffers at a fixed sample rate. The audio device allows
// a single context per process, so create one Player and reuse it.
type Player struct {
	ctx        *oto.Context
	sampleRate int
	logger     *log.Logger
}

// New opens the output device at sampleRate.
func New(sampleRate int, opts ...Option) (*Player, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("playback: sample rate must be positive, got %d", sampleRate)
	}

	o := applyOptions(opts)

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   100 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("playback: open device: %w", err)
	}

	<-ready
	o.logger.Debug("audio device ready", "sample_rate", sampleRate)

	return &Player{ctx: ctx, sampleRate: sampleRate, logger: o.logger}, nil
}

// SampleRate returns the device rate.
func (p *Player) SampleRate() int { return p.sampleRate }

// Play blocks until samples have been played or ctx is done.
func (p *Player) Play(ctx context.Context, samples []float64) error {
	if len(samples) == 0 {
		return nil
	}

	// pcm must stay referenced until the player is closed.
	pcm := audiofile.PCM16(samples)
	player := p.ctx.NewPlayer(bytes.NewReader(pcm))
	defer player.Close()

	player.Play()
	p.logger.Debug("playing", "seconds", float64(len(samples))/float64(p.sampleRate))

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}

	if err := player.Err(); err != nil {
		return fmt.Errorf("playback: %w", err)
	}

	return nil
}
