// Package conv provides the linear convolution used by the reverb stage.
//
//   - [Direct]: O(N*M) time-domain convolution for short kernels
//   - [OverlapAdd]: FFT block convolution for long kernels
//   - [Convolve]: picks one of the two by kernel length
//   - [Clamped]: convolution cut to the longer input's length, as used
//     when applying an impulse response to a rendered sound
//
// Usage:
//
//	wet, err := conv.Clamped(dry, impulseResponse)
package conv
