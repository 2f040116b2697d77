package physics

import (
	"math"
	"math/rand/v2"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlayout/common"
)

// minBodySize keeps mass and moment finite for zero-sized elements.
const minBodySize = 1.0

// BodyOptions are the material settings shared by every element body.
type BodyOptions struct {
	Friction    float64
	FrictionAir float64
	// DensityEnabled derives mass from Density·area; otherwise each body
	// gets unit mass.
	DensityEnabled bool
	Density        float64
}

// Body is a dynamic element body. Width and Height are fixed at creation.
type Body struct {
	Index       int
	Width       float64
	Height      float64
	FrictionAir float64

	body  *cp.Body
	shape *cp.Shape

	lastPos   cp.Vector
	lastAngle float64
}

func (b *Body) CP() *cp.Body {
	if b == nil {
		return nil
	}
	return b.body
}

// LeadingVertex is the body's first corner: the top-left corner of the box
// in the body's own frame, in world coordinates.
func (b *Body) LeadingVertex() cp.Vector {
	return b.body.LocalToWorld(cp.Vector{X: -b.Width / 2, Y: -b.Height / 2})
}

// Mass returns the mass used by the integrator.
func (b *Body) Mass() float64 {
	return b.body.Mass()
}

// Placement picks the top-left offset of an element of size (w, h) inside a
// container of size (cw, ch): uniform on [0, max] per axis, floored to whole
// units, and 0 on an axis where the element does not fit.
func Placement(rng *rand.Rand, cw, ch, w, h float64) (left, top float64) {
	return offset(rng, cw-w), offset(rng, ch-h)
}

func offset(rng *rand.Rand, max float64) float64 {
	r := rng.Float64()
	if max <= 0 || !common.Finite(max) {
		return 0
	}
	return math.Floor(r * max)
}

// AddBodies creates one dynamic body per element, in order, at a random spot
// inside the container. All bodies enter the space under a single lock.
// Overlapping placements are allowed; collision response separates them.
// A closed engine gets no bodies and AddBodies returns nil.
func AddBodies(e *Engine, container Rect, elements []Rect, opts BodyOptions, rng *rand.Rand) []*Body {
	if e == nil {
		return nil
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	cw := common.NonNegative(container.Width)
	ch := common.NonNegative(container.Height)

	bodies := make([]*Body, 0, len(elements))
	for i, el := range elements {
		w := math.Max(common.NonNegative(el.Width), minBodySize)
		h := math.Max(common.NonNegative(el.Height), minBodySize)
		left, top := Placement(rng, cw, ch, w, h)
		bodies = append(bodies, newBody(i, left, top, w, h, opts))
	}

	err := e.Locked(func(space *cp.Space) {
		for _, b := range bodies {
			space.AddBody(b.body)
			space.AddShape(b.shape)
		}
		e.bodies = append(e.bodies, bodies...)
	})
	if err != nil {
		return nil
	}
	return bodies
}

func newBody(index int, left, top, w, h float64, opts BodyOptions) *Body {
	mass := 1.0
	if opts.DensityEnabled && opts.Density > 0 {
		mass = opts.Density * w * h
	}
	frictionAir := common.Clamp(opts.FrictionAir, 0, 1)

	body := cp.NewBody(mass, cp.MomentForBox(mass, w, h))
	center := cp.Vector{X: left + w/2, Y: top + h/2}
	body.SetPosition(center)
	body.SetAngle(0)
	body.SetAngularVelocity(0)
	body.SetVelocityUpdateFunc(airDamping(frictionAir))

	shape := cp.NewBox(body, w, h, 0)
	shape.SetFriction(common.NonNegative(opts.Friction))

	return &Body{
		Index:       index,
		Width:       w,
		Height:      h,
		FrictionAir: frictionAir,
		body:        body,
		shape:       shape,
		lastPos:     center,
	}
}

// airDamping applies per-body air friction on top of the space damping:
// frictionAir is the fraction of velocity lost per 60 Hz frame.
func airDamping(frictionAir float64) func(body *cp.Body, gravity cp.Vector, damping float64, dt float64) {
	retain := 1 - frictionAir
	return func(body *cp.Body, gravity cp.Vector, damping float64, dt float64) {
		cp.BodyUpdateVelocity(body, gravity, damping*math.Pow(retain, dt*60), dt)
	}
}
