package physics

import (
	"errors"
	"math"
	"sync"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlayout/common"
)

// ErrClosed is returned when the engine is used after Close.
var ErrClosed = errors.New("physics: engine closed")

const (
	DefaultStep       = 1.0 / 60.0
	DefaultIterations = 20

	// Idle time, in seconds, before a resting group of bodies falls asleep.
	sleepTimeThreshold = 0.5
)

// EngineOptions is fixed at creation; the engine exposes no setters.
type EngineOptions struct {
	// Gravity in px/s².
	Gravity    cp.Vector
	Sleeping   bool
	Iterations int
	// Step is the fixed logical step in seconds.
	Step float64
}

// StepHook runs under the engine lock immediately before the space advances.
type StepHook func(space *cp.Space, dt float64)

// Engine owns the Chipmunk space for one session. Every mutation of the space
// goes through the engine's lock: the frame step, force field ticks and drag
// input are serialized here.
type Engine struct {
	mu     sync.Mutex
	space  *cp.Space
	dt     float64
	closed bool

	steps     uint64
	recovered uint64

	bodies      []*Body
	walls       []*Wall
	constraints map[*cp.Constraint]struct{}
	hooks       []StepHook
}

// NewEngine creates a physics engine with an empty space.
func NewEngine(opts EngineOptions) *Engine {
	iterations := opts.Iterations
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	dt := opts.Step
	if dt <= 0 || !common.Finite(dt) {
		dt = DefaultStep
	}
	gravity := opts.Gravity
	if !common.Finite(gravity.X, gravity.Y) {
		gravity = cp.Vector{}
	}

	space := cp.NewSpace()
	space.Iterations = uint(iterations)
	space.SetGravity(gravity)
	if opts.Sleeping {
		space.SleepTimeThreshold = sleepTimeThreshold
	} else {
		space.SleepTimeThreshold = math.Inf(1)
	}

	return &Engine{
		space:       space,
		dt:          dt,
		constraints: make(map[*cp.Constraint]struct{}),
	}
}

// Locked runs fn with exclusive access to the space. fn must not call back
// into the engine.
func (e *Engine) Locked(fn func(space *cp.Space)) error {
	if e == nil {
		return ErrClosed
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	fn(e.space)
	return nil
}

// AddHook registers a pre-step hook.
func (e *Engine) AddHook(h StepHook) {
	if e == nil || h == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = append(e.hooks, h)
}

// Step advances the simulation by one fixed step.
func (e *Engine) Step() error {
	if e == nil {
		return ErrClosed
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	for _, h := range e.hooks {
		h(e.space, e.dt)
	}
	e.space.Step(e.dt)
	e.steps++
	e.sanitize()
	return nil
}

// sanitize puts any body whose state went non-finite back at its last good
// pose, at rest. Must be called with the lock held.
func (e *Engine) sanitize() {
	for _, b := range e.bodies {
		pos := b.body.Position()
		vel := b.body.Velocity()
		angle := b.body.Angle()
		if common.Finite(pos.X, pos.Y, vel.X, vel.Y, angle, b.body.AngularVelocity()) {
			b.lastPos = pos
			b.lastAngle = angle
			continue
		}
		b.body.SetPosition(b.lastPos)
		b.body.SetAngle(b.lastAngle)
		b.body.SetVelocity(0, 0)
		b.body.SetAngularVelocity(0)
		e.recovered++
	}
}

// Transforms appends the current transform of every dynamic body, in
// creation order, to dst.
func (e *Engine) Transforms(dst []Transform) ([]Transform, error) {
	if e == nil {
		return dst, ErrClosed
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return dst, ErrClosed
	}
	for _, b := range e.bodies {
		v := b.LeadingVertex()
		dst = append(dst, Transform{
			X:       v.X,
			Y:       v.Y,
			Angle:   b.body.Angle(),
			Width:   b.Width,
			Height:  b.Height,
			Visible: true,
		})
	}
	return dst, nil
}

// Bodies returns the dynamic bodies in creation order.
func (e *Engine) Bodies() []*Body {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Body(nil), e.bodies...)
}

// Walls returns the static boundary bodies.
func (e *Engine) Walls() []*Wall {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Wall(nil), e.walls...)
}

// Constraints returns how many constraints are currently in the space.
func (e *Engine) Constraints() int {
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.constraints)
}

func (e *Engine) Steps() uint64 {
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.steps
}

// Recovered counts bodies reset by sanitize.
func (e *Engine) Recovered() uint64 {
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recovered
}

// StepSize returns the fixed step in seconds.
func (e *Engine) StepSize() float64 {
	if e == nil {
		return DefaultStep
	}
	return e.dt
}

// Closed reports whether Close has run.
func (e *Engine) Closed() bool {
	if e == nil {
		return true
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Close removes every constraint, shape and body from the space. Safe to
// call more than once.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	for c := range e.constraints {
		e.space.RemoveConstraint(c)
	}
	for _, b := range e.bodies {
		e.space.RemoveShape(b.shape)
		e.space.RemoveBody(b.body)
	}
	for _, w := range e.walls {
		e.space.RemoveShape(w.shape)
		e.space.RemoveBody(w.body)
	}

	e.constraints = nil
	e.bodies = nil
	e.walls = nil
	e.hooks = nil
	e.closed = true
}

// addConstraint and removeConstraint must be called with the lock held.
func (e *Engine) addConstraint(c *cp.Constraint) {
	if c == nil {
		return
	}
	e.space.AddConstraint(c)
	e.constraints[c] = struct{}{}
}

func (e *Engine) removeConstraint(c *cp.Constraint) {
	if c == nil {
		return
	}
	if _, ok := e.constraints[c]; !ok {
		return
	}
	e.space.RemoveConstraint(c)
	delete(e.constraints, c)
}
