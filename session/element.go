package session

import (
	"sync"

	"github.com/milk9111/physlayout/physics"
)

// Container supplies the area the elements live in. Bounds is read once.
type Container interface {
	Bounds() physics.Rect
}

// Element is one laid-out item. Bounds is read once at bind time; the
// session then owns the element's transform.
type Element interface {
	Bounds() physics.Rect
	SetTransform(t physics.Transform)
}

// Fixed is a Container with constant bounds.
type Fixed physics.Rect

func (f Fixed) Bounds() physics.Rect { return physics.Rect(f) }

// Box is an in-memory Element. It is safe for concurrent use.
type Box struct {
	Label string

	mu        sync.Mutex
	bounds    physics.Rect
	transform physics.Transform
	writes    uint64
}

func NewBox(label string, width, height float64) *Box {
	return &Box{Label: label, bounds: physics.Rect{Width: width, Height: height}}
}

func (b *Box) Bounds() physics.Rect {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bounds
}

func (b *Box) SetTransform(t physics.Transform) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transform = t
	b.writes++
}

// Transform returns the last transform written.
func (b *Box) Transform() physics.Transform {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.transform
}

// Writes counts SetTransform calls.
func (b *Box) Writes() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}
