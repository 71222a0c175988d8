package registry

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-wiggle/synth"
)

// Document is a top-level composition: the synth that renders it and its
// parameter tree.
type Document struct {
	Synth  synth.Synth
	Params synth.Params
}

// ToMap returns the map form {synth: id, params: {...}}.
func (d *Document) ToMap() map[string]any {
	return map[string]any{
		"synth":  d.Synth.ID(),
		"params": d.Params.ToMap(),
	}
}

// Validate checks that both fields are set and validates the params tree.
func (d *Document) Validate() error {
	if d.Synth == nil || d.Params == nil {
		return synth.Invalidf("registry: document needs synth and params")
	}

	return d.Params.Validate()
}

// Decode rebuilds the params accepted by s from m, using the decoder
// registered for s.Tag().
func (r *Registry) Decode(s synth.Synth, m map[string]any) (synth.Params, error) {
	return r.decodeFor(s, m)
}

func (r *Registry) decodeFor(s synth.Synth, m map[string]any) (synth.Params, error) {
	return r.ParamsForTag(s.Tag(), m)
}

// ParamsForTag decodes m with the decoder registered for tag.
func (r *Registry) ParamsForTag(tag string, m map[string]any) (synth.Params, error) {
	r.mu.RLock()
	d, ok := r.decoders[tag]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no decoder for params tag %q", synth.ErrNotFound, tag)
	}

	return d(m)
}

// ParamsFromMap resolves ref and decodes m as its params.
func (r *Registry) ParamsFromMap(ref any, m map[string]any) (synth.Synth, synth.Params, error) {
	s, err := r.Lookup(ref)
	if err != nil {
		return nil, nil, err
	}

	p, err := r.decodeFor(s, m)
	if err != nil {
		return nil, nil, err
	}

	return s, p, nil
}

type documentDoc struct {
	Synth  any            `mapstructure:"synth"`
	Params map[string]any `mapstructure:"params"`
}

// DocumentFromMap decodes the form produced by Document.ToMap.
func (r *Registry) DocumentFromMap(m map[string]any) (*Document, error) {
	var doc documentDoc
	if err := synth.DecodeMap(m, &doc); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}

	if doc.Synth == nil {
		return nil, synth.Invalidf("registry: document missing synth")
	}

	s, p, err := r.ParamsFromMap(doc.Synth, doc.Params)
	if err != nil {
		return nil, err
	}

	return &Document{Synth: s, Params: p}, nil
}

// ReadDocument parses a YAML (or JSON) document from rd.
func (r *Registry) ReadDocument(rd io.Reader) (*Document, error) {
	var m map[string]any
	if err := yaml.NewDecoder(rd).Decode(&m); err != nil {
		if err == io.EOF {
			return nil, synth.Invalidf("registry: empty document")
		}

		return nil, fmt.Errorf("%w: registry: %w", synth.ErrInvalid, err)
	}

	return r.DocumentFromMap(m)
}

// WriteDocument encodes d as YAML.
func WriteDocument(w io.Writer, d *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d.ToMap()); err != nil {
		return fmt.Errorf("registry: %w", err)
	}

	return enc.Close()
}
