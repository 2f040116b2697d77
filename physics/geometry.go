package physics

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Rect is an axis-aligned box in container coordinates (y grows downward).
type Rect struct {
	X, Y          float64
	Width, Height float64
}

func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.Width &&
		r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height &&
		r.Y+r.Height > other.Y
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Center returns the center relative to the rect's own origin, which is the
// reference point the force field pulls toward.
func (r Rect) Center() cp.Vector {
	return cp.Vector{X: r.Width / 2, Y: r.Height / 2}
}

// Transform is what the presentation layer writes onto an element each frame.
//
// (X, Y) is the body's leading vertex. An element-local point p maps to
// (X, Y) + R(Angle)·p, so the element rotates about its own top-left corner
// pinned to that vertex: the translate(-50%) rotate translate(50%)
// composition of a centered transform origin.
type Transform struct {
	X, Y          float64
	Angle         float64
	Width, Height float64
	Visible       bool
}

// Apply maps an element-local point into container coordinates.
func (t Transform) Apply(px, py float64) (float64, float64) {
	sin, cos := math.Sincos(t.Angle)
	return t.X + px*cos - py*sin, t.Y + px*sin + py*cos
}

// Center returns the element's visual center in container coordinates.
func (t Transform) Center() (float64, float64) {
	return t.Apply(t.Width/2, t.Height/2)
}
