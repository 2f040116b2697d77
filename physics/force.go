package physics

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlayout/common"
)

const (
	DefaultForceMagnitude = 1.0
	DefaultForceInterval  = 5 * time.Millisecond
)

// ApplyCenterAttraction pushes every dynamic body in the space toward center
// with a force of constant magnitude. Bodies sitting exactly on the center,
// or whose direction is not finite, are skipped. It returns how many bodies
// received a force.
//
// The force accumulates on the body until the next step consumes it, so
// several ticks between two steps add up.
func ApplyCenterAttraction(space *cp.Space, center cp.Vector, magnitude float64) int {
	if space == nil || magnitude == 0 || !common.Finite(center.X, center.Y, magnitude) {
		return 0
	}
	pushed := 0
	space.EachBody(func(body *cp.Body) {
		if body.GetType() != cp.BODY_DYNAMIC {
			return
		}
		pos := body.Position()
		dir := center.Sub(pos)
		dist := dir.Length()
		if dist == 0 || !common.Finite(dist) {
			return
		}
		force := dir.Mult(magnitude / dist)
		body.ApplyForceAtWorldPoint(force, pos)
		pushed++
	})
	return pushed
}

// ForceField applies center attraction on its own clock, decoupled from the
// frame loop.
type ForceField struct {
	Engine    *Engine
	Center    cp.Vector
	Magnitude float64
	Interval  time.Duration

	paused atomic.Bool
	ticks  atomic.Uint64
}

// NewForceField pulls toward the center of container.
func NewForceField(e *Engine, container Rect, magnitude float64, interval time.Duration) *ForceField {
	if interval <= 0 {
		interval = DefaultForceInterval
	}
	return &ForceField{
		Engine:    e,
		Center:    container.Center(),
		Magnitude: magnitude,
		Interval:  interval,
	}
}

// Tick applies the field once.
func (f *ForceField) Tick() error {
	if f.paused.Load() {
		return nil
	}
	err := f.Engine.Locked(func(space *cp.Space) {
		ApplyCenterAttraction(space, f.Center, f.Magnitude)
	})
	if err != nil {
		return err
	}
	f.ticks.Add(1)
	return nil
}

// Run ticks until ctx is done or the engine closes.
func (f *ForceField) Run(ctx context.Context) error {
	ticker := time.NewTicker(f.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if ctx.Err() != nil {
				return nil
			}
			if err := f.Tick(); err != nil {
				return err
			}
		}
	}
}

// SetPaused stops force application without stopping the clock. Forces are
// only consumed by steps, so a paused frame loop must pause the field too.
func (f *ForceField) SetPaused(paused bool) {
	f.paused.Store(paused)
}

// Ticks counts applications since creation.
func (f *ForceField) Ticks() uint64 {
	return f.ticks.Load()
}
