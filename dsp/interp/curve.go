package interp

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errors returned by curve construction.
var (
	ErrUnknownKind   = errors.New("interp: unknown interpolation kind")
	ErrNoKeypoints   = errors.New("interp: curve needs at least one keypoint")
	ErrNotMonotonic  = errors.New("interp: keypoint times must be non-decreasing")
	ErrInvalidLength = errors.New("interp: sample count must be non-negative")
)

// Kind selects the interpolation order of a Curve.
type Kind string

const (
	Linear    Kind = "linear"
	Quadratic Kind = "quadratic"
	Cubic     Kind = "cubic"
)

// ParseKind resolves a case-insensitive interpolation name.
func ParseKind(name string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(name))); k {
	case Linear, Quadratic, Cubic:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}

// Point is one curve keypoint.
type Point struct {
	X, Y float64
}

// Curve interpolates keypoints. Outside the keypoint range the curve holds
// the first or last value. Repeated X values form a step.
type Curve struct {
	kind   Kind
	points []Point
}

// NewCurve validates points and returns a curve of the given kind.
func NewCurve(kind Kind, points []Point) (*Curve, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}

	if len(points) == 0 {
		return nil, ErrNoKeypoints
	}

	for i := 1; i < len(points); i++ {
		if points[i].X < points[i-1].X {
			return nil, fmt.Errorf("%w: %v after %v", ErrNotMonotonic, points[i].X, points[i-1].X)
		}
	}

	pts := make([]Point, len(points))
	copy(pts, points)

	return &Curve{kind: kind, points: pts}, nil
}

// At evaluates the curve at x.
func (c *Curve) At(x float64) float64 {
	pts := c.points
	if x <= pts[0].X {
		return pts[0].Y
	}

	last := len(pts) - 1
	if x >= pts[last].X {
		return pts[last].Y
	}

	// First keypoint strictly right of x; pts[i-1].X <= x < pts[i].X.
	i := sort.Search(len(pts), func(k int) bool { return pts[k].X > x })
	lo, hi := pts[i-1], pts[i]

	switch c.kind {
	case Cubic:
		return c.cubic(i, x)
	case Quadratic:
		if q, ok := c.quadratic(i, x); ok {
			return q
		}
	}

	t := (x - lo.X) / (hi.X - lo.X)

	return lo.Y + t*(hi.Y-lo.Y)
}

// quadratic fits the three distinct keypoints around the segment ending at
// index i. It reports false when fewer than three distinct points exist.
func (c *Curve) quadratic(i int, x float64) (float64, bool) {
	pts := c.points
	a, b := i-1, i
	var p0, p1, p2 Point
	switch {
	case b+1 < len(pts) && pts[b+1].X != pts[b].X:
		p0, p1, p2 = pts[a], pts[b], pts[b+1]
	case a-1 >= 0 && pts[a-1].X != pts[a].X:
		p0, p1, p2 = pts[a-1], pts[a], pts[b]
	default:
		return 0, false
	}

	return Lagrange3(x, p0.X, p1.X, p2.X, p0.Y, p1.Y, p2.Y), true
}

// cubic evaluates a Catmull-Rom style Hermite segment on the normalized
// segment parameter. Missing or coincident neighbours fall back to the
// segment endpoints.
func (c *Curve) cubic(i int, x float64) float64 {
	pts := c.points
	p0, p1 := pts[i-1], pts[i]
	ym1 := p0.Y
	if i-2 >= 0 && pts[i-2].X != p0.X {
		ym1 = pts[i-2].Y
	}

	y2 := p1.Y
	if i+1 < len(pts) && pts[i+1].X != p1.X {
		y2 = pts[i+1].Y
	}

	t := (x - p0.X) / (p1.X - p0.X)

	return Hermite4(t, ym1, p0.Y, p1.Y, y2)
}

// Sample evaluates the curve at n evenly spaced positions spanning
// [lo, hi], both inclusive. n == 1 evaluates lo only.
func (c *Curve) Sample(n int, lo, hi float64) ([]float64, error) {
	if n < 0 {
		return nil, ErrInvalidLength
	}

	out := make([]float64, n)
	if n == 1 {
		out[0] = c.At(lo)
		return out, nil
	}

	span := hi - lo
	for j := range out {
		out[j] = c.At(lo + span*float64(j)/float64(n-1))
	}

	return out, nil
}
