// Package synth defines the contract shared by every renderer in a
// composition tree.
//
// A composition is a tree of parameter values. Leaves ([KindLeaf]) describe
// one rendered sound; branches ([KindBranch]) hold child events, each of which
// names another [Synth] and carries its own parameters. Rendering a tree
// produces one flat mono buffer of float64 samples.
package synth

import "context"

// Kind tags a parameter value as a leaf or a branch of the composition tree.
type Kind int

const (
	// KindLeaf parameters render a sound without children.
	KindLeaf Kind = iota
	// KindBranch parameters hold child parameter trees.
	KindBranch
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindBranch:
		return "branch"
	default:
		return "unknown"
	}
}

// Params is the parameter value attached to an event.
//
// Implementations are immutable from the renderer's point of view; transforms
// return new values via Clone.
type Params interface {
	Kind() Kind
	// Clone returns a deep copy.
	Clone() Params
	// Sources lists remote material referenced directly by this node,
	// not by its children.
	Sources() []SourceMaterial
	// Children returns nested parameter trees. Leaves return nil.
	Children() []Params
	// Validate reports the first structural problem, wrapping ErrInvalid.
	Validate() error
	// ToMap converts the value into a plain nested map.
	ToMap() map[string]any
}

// Synth renders parameters of one shape into PCM samples.
type Synth interface {
	ID() int
	Name() string
	// Tag names the parameter shape this synth accepts.
	Tag() string
	// Render produces mono samples at sampleRate. ctx only reaches
	// source fetching; rendering itself is not cancellable.
	Render(ctx context.Context, p Params, sampleRate int) ([]float64, error)
}

// SourceMaterial identifies one remote audio resource a tree depends on.
type SourceMaterial struct {
	URL string
}

func (s SourceMaterial) String() string { return s.URL }
