// Package playback sends rendered audio to the default output device.
package playback

import (
	"errors"

	"github.com/charmbracelet/log"
)

// ErrUnavailable is returned when the binary was built without audio output.
var ErrUnavailable = errors.New("playback: audio output not available in this build")

// Option configures a Player.
type Option func(*options)

type options struct {
	logger *log.Logger
}

// WithLogger sets the logger used for device diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: log.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}
