// Package interp provides the interpolation primitives used by the render
// pipeline.
//
//   - [Hermite4]: 4-point cubic Hermite, used for fractional sample reads
//   - [Curve]:    keypoint curves evaluated over a normalized time axis,
//     used for gain envelopes
package interp
