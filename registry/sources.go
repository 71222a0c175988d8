package registry

import "github.com/cwbudde/algo-wiggle/synth"

// SourceMaterial returns every distinct remote resource referenced anywhere
// in the tree rooted at p, in order of first appearance (depth first).
//
// The walk uses an explicit stack, so deep trees do not grow the call
// stack.
func SourceMaterial(p synth.Params) []synth.SourceMaterial {
	if p == nil {
		return nil
	}

	var (
		out   []synth.SourceMaterial
		seen  = map[synth.SourceMaterial]struct{}{}
		stack = []synth.Params{p}
	)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, src := range node.Sources() {
			if _, ok := seen[src]; ok {
				continue
			}

			seen[src] = struct{}{}
			out = append(out, src)
		}

		if node.Kind() != synth.KindBranch {
			continue
		}

		children := node.Children()
		for i := len(children) - 1; i >= 0; i-- {
			if children[i] != nil {
				stack = append(stack, children[i])
			}
		}
	}

	return out
}
