package physics

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlayout/common"
)

const (
	// dragForcePerMass caps the pivot force at this many px/s² of pull.
	dragForcePerMass = 50000.0
	// pointerFollow is how far the pointer body moves toward the cursor per step.
	pointerFollow = 0.25
	// angularRate turns angular stiffness into a spring rate relative to the
	// body's moment (1/s²).
	angularRate = 3600.0
)

// DragOptions configure the pointer spring.
type DragOptions struct {
	// Stiffness in [0,1]: near 0 the held body swings loosely, 1 follows
	// rigidly.
	Stiffness float64
	// AngularStiffness in [0,1]: 0 lets the held body rotate freely.
	AngularStiffness float64
}

// DragController pins whichever dynamic body is under the pointer to a
// kinematic pointer body. At most one body is held at a time.
type DragController struct {
	engine *Engine
	opts   DragOptions

	pointer *cp.Body
	target  cp.Vector

	held   *cp.Body
	pivot  *cp.Constraint
	rotary *cp.Constraint
}

// NewDragController registers the pointer-follow hook on the engine.
func NewDragController(e *Engine, opts DragOptions) *DragController {
	opts.Stiffness = common.Clamp(opts.Stiffness, 0, 1)
	opts.AngularStiffness = common.Clamp(opts.AngularStiffness, 0, 1)
	d := &DragController{
		engine:  e,
		opts:    opts,
		pointer: cp.NewKinematicBody(),
	}
	e.AddHook(d.follow)
	return d
}

// follow eases the pointer body toward the target and gives it the matching
// velocity so the joint solver sees the motion.
func (d *DragController) follow(_ *cp.Space, dt float64) {
	cur := d.pointer.Position()
	next := cur.Lerp(d.target, pointerFollow)
	if dt > 0 {
		d.pointer.SetVelocityVector(next.Sub(cur).Mult(1 / dt))
	}
	d.pointer.SetPosition(next)
}

// PressStart grabs the body under (x, y), releasing any previous hold first.
func (d *DragController) PressStart(x, y float64) {
	if !common.Finite(x, y) {
		return
	}
	p := cp.Vector{X: x, Y: y}
	_ = d.engine.Locked(func(space *cp.Space) {
		d.release()
		d.target = p
		d.pointer.SetPosition(p)
		d.pointer.SetVelocity(0, 0)

		info := space.PointQueryNearest(p, 0, cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, cp.ALL_CATEGORIES))
		if info == nil || info.Shape == nil {
			return
		}
		body := info.Shape.Body()
		if body == nil || body.GetType() != cp.BODY_DYNAMIC {
			return
		}

		pivot := cp.NewPivotJoint2(d.pointer, body, cp.Vector{}, body.WorldToLocal(p))
		pivot.SetMaxForce(dragForcePerMass * math.Max(body.Mass(), 1))
		pivot.SetErrorBias(math.Pow(1-d.opts.Stiffness, 60))
		d.engine.addConstraint(pivot)
		d.pivot = pivot

		if a := d.opts.AngularStiffness; a > 0 {
			k := a * body.Moment() * angularRate
			damping := 2 * body.Moment() * math.Sqrt(a*angularRate)
			rotary := cp.NewDampedRotarySpring(d.pointer, body, body.Angle()-d.pointer.Angle(), k, damping)
			d.engine.addConstraint(rotary)
			d.rotary = rotary
		}
		d.held = body
	})
}

// Move updates the pointer target.
func (d *DragController) Move(x, y float64) {
	if !common.Finite(x, y) {
		return
	}
	_ = d.engine.Locked(func(*cp.Space) {
		d.target = cp.Vector{X: x, Y: y}
	})
}

// Release drops the held body, if any.
func (d *DragController) Release() {
	err := d.engine.Locked(func(*cp.Space) {
		d.release()
	})
	if err != nil {
		// The engine already removed every constraint on close.
		d.held, d.pivot, d.rotary = nil, nil, nil
	}
}

// Holding reports whether a body is currently grabbed.
func (d *DragController) Holding() bool {
	holding := false
	_ = d.engine.Locked(func(*cp.Space) {
		holding = d.held != nil
	})
	return holding
}

// Held returns the grabbed element body, or nil.
func (d *DragController) Held() *Body {
	var held *Body
	_ = d.engine.Locked(func(*cp.Space) {
		if d.held == nil {
			return
		}
		for _, b := range d.engine.bodies {
			if b.body == d.held {
				held = b
				return
			}
		}
	})
	return held
}

func (d *DragController) release() {
	d.engine.removeConstraint(d.rotary)
	d.engine.removeConstraint(d.pivot)
	d.held, d.pivot, d.rotary = nil, nil, nil
}
