// Package registry maps synth identities to renderers and converts
// parameter trees to and from plain maps and YAML documents.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/cwbudde/algo-wiggle/fetch"
	"github.com/cwbudde/algo-wiggle/sampler"
	"github.com/cwbudde/algo-wiggle/sequencer"
	"github.com/cwbudde/algo-wiggle/synth"
)

// Decoder rebuilds a params value of one tag from its map form.
type Decoder func(m map[string]any) (synth.Params, error)

// Registry holds renderers in registration order together with the
// decoders for their parameter tags. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	synths   []synth.Synth
	decoders map[string]Decoder
}

// New returns a registry containing synths, with decoders for the sampler
// and sequencer tags installed.
func New(synths ...synth.Synth) (*Registry, error) {
	r := &Registry{decoders: map[string]Decoder{}}
	r.decoders[sampler.Tag] = func(m map[string]any) (synth.Params, error) {
		return sampler.ParametersFromMap(m)
	}

	r.decoders[sequencer.Tag] = func(m map[string]any) (synth.Params, error) {
		return sequencer.ParamsFromMap(m, r.Lookup, r.decodeFor)
	}

	for _, s := range synths {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Option configures Default.
type Option func(*defaults)

type defaults struct {
	sampler   []sampler.Option
	sequencer []sequencer.Option
}

// WithSamplerOptions passes opts to the default sampler.
func WithSamplerOptions(opts ...sampler.Option) Option {
	return func(d *defaults) { d.sampler = append(d.sampler, opts...) }
}

// WithSequencerOptions passes opts to the default sequencer.
func WithSequencerOptions(opts ...sequencer.Option) Option {
	return func(d *defaults) { d.sequencer = append(d.sequencer, opts...) }
}

// Default returns a registry with a sampler reading from f (id 1) and a
// sequencer (id 2).
func Default(f fetch.Fetcher, opts ...Option) (*Registry, error) {
	var d defaults
	for _, opt := range opts {
		if opt != nil {
			opt(&d)
		}
	}

	smp, err := sampler.New(f, d.sampler...)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}

	return New(smp, sequencer.New(d.sequencer...))
}

// Register adds s. Ids and names must be unique.
func (r *Registry) Register(s synth.Synth) error {
	if s == nil {
		return fmt.Errorf("registry: nil synth")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, have := range r.synths {
		if have.ID() == s.ID() || have.Name() == s.Name() {
			return fmt.Errorf("registry: %s (%d) conflicts with %s (%d)", s.Name(), s.ID(), have.Name(), have.ID())
		}
	}

	r.synths = append(r.synths, s)

	return nil
}

// RegisterDecoder installs the decoder for params tagged tag, replacing
// any previous one.
func (r *Registry) RegisterDecoder(tag string, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[tag] = d
}

// List returns the registered synths in registration order.
func (r *Registry) List() []synth.Synth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]synth.Synth(nil), r.synths...)
}

// ByID returns the synth with the given id.
func (r *Registry) ByID(id int) (synth.Synth, error) {
	for _, s := range r.List() {
		if s.ID() == id {
			return s, nil
		}
	}

	return nil, fmt.Errorf("%w: id %d", synth.ErrNotFound, id)
}

// ByName returns the synth with the given name.
func (r *Registry) ByName(name string) (synth.Synth, error) {
	for _, s := range r.List() {
		if s.Name() == name {
			return s, nil
		}
	}

	return nil, fmt.Errorf("%w: name %q", synth.ErrNotFound, name)
}

// Lookup resolves ref, which may be an integer id, an integral float (as
// decoded from JSON), a numeric string or a name. A string that parses as
// an integer is only matched against ids.
func (r *Registry) Lookup(ref any) (synth.Synth, error) {
	switch v := ref.(type) {
	case synth.Synth:
		return v, nil
	case int:
		return r.ByID(v)
	case int64:
		return r.ByID(int(v))
	case uint64:
		return r.ByID(int(v))
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, synth.Invalidf("registry: synth id %g is not an integer", v)
		}

		return r.ByID(int(v))
	case json.Number:
		return r.Lookup(v.String())
	case string:
		if id, err := strconv.Atoi(v); err == nil {
			return r.ByID(id)
		}

		return r.ByName(v)
	default:
		return nil, synth.Invalidf("registry: unsupported synth reference %T", ref)
	}
}

// Render looks up ref and renders p with it.
func (r *Registry) Render(ctx context.Context, ref any, p synth.Params, sampleRate int) ([]float64, error) {
	s, err := r.Lookup(ref)
	if err != nil {
		return nil, err
	}

	return s.Render(ctx, p, sampleRate)
}
