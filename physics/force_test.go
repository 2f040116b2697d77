package physics

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// singleBody builds a gravity-free engine holding one 20×20 body whose
// center sits at (cx, cy).
func singleBody(t *testing.T, cx, cy float64) (*Engine, *Body) {
	t.Helper()
	e := NewEngine(EngineOptions{})
	// A container exactly the element's size pins the placement at (0, 0).
	bodies := AddBodies(e, Rect{Width: 20, Height: 20}, []Rect{{Width: 20, Height: 20}}, BodyOptions{}, seeded(1))
	require.Len(t, bodies, 1)
	require.NoError(t, e.Locked(func(*cp.Space) {
		bodies[0].CP().SetPosition(cp.Vector{X: cx, Y: cy})
	}))
	return e, bodies[0]
}

func TestApplyCenterAttractionAtCenterIsZero(t *testing.T) {
	e, b := singleBody(t, 200, 150)
	center := Rect{Width: 400, Height: 300}.Center()

	pushed := -1
	require.NoError(t, e.Locked(func(space *cp.Space) {
		pushed = ApplyCenterAttraction(space, center, 1)
	}))
	assert.Equal(t, 0, pushed)

	require.NoError(t, e.Step())
	vel := b.CP().Velocity()
	assert.Equal(t, 0.0, vel.X)
	assert.Equal(t, 0.0, vel.Y)
	assert.False(t, math.IsNaN(b.CP().Position().X))
	assert.Zero(t, e.Recovered())
}

func TestApplyCenterAttractionDirectionAndMagnitude(t *testing.T) {
	e, b := singleBody(t, 100, 150)
	center := cp.Vector{X: 200, Y: 150}

	require.NoError(t, e.Locked(func(space *cp.Space) {
		assert.Equal(t, 1, ApplyCenterAttraction(space, center, 3))
	}))
	require.NoError(t, e.Step())

	// Unit mass, no gravity, no air friction: Δv = F/m·dt toward the center.
	vel := b.CP().Velocity()
	assert.InDelta(t, 3*e.StepSize(), vel.X, 1e-9)
	assert.InDelta(t, 0.0, vel.Y, 1e-9)
}

func TestApplyCenterAttractionAccumulatesBetweenSteps(t *testing.T) {
	e, b := singleBody(t, 100, 150)
	center := cp.Vector{X: 200, Y: 150}

	require.NoError(t, e.Locked(func(space *cp.Space) {
		ApplyCenterAttraction(space, center, 1)
		ApplyCenterAttraction(space, center, 1)
	}))
	require.NoError(t, e.Step())
	assert.InDelta(t, 2*e.StepSize(), b.CP().Velocity().X, 1e-9)
}

func TestApplyCenterAttractionSkipsStaticBodies(t *testing.T) {
	e := NewEngine(EngineOptions{})
	container := Rect{Width: 400, Height: 300}
	AddWalls(e, container, AllWalls())
	AddBodies(e, container, []Rect{{Width: 10, Height: 10}, {Width: 10, Height: 10}}, BodyOptions{}, seeded(2))

	require.NoError(t, e.Locked(func(space *cp.Space) {
		assert.Equal(t, 2, ApplyCenterAttraction(space, container.Center(), 1))
	}))
}

func TestApplyCenterAttractionRejectsBadInput(t *testing.T) {
	e, _ := singleBody(t, 0, 0)
	require.NoError(t, e.Locked(func(space *cp.Space) {
		assert.Equal(t, 0, ApplyCenterAttraction(space, cp.Vector{X: math.NaN()}, 1))
		assert.Equal(t, 0, ApplyCenterAttraction(space, cp.Vector{X: 5}, 0))
		assert.Equal(t, 0, ApplyCenterAttraction(nil, cp.Vector{X: 5}, 1))
	}))
}

func TestForceFieldTickAndPause(t *testing.T) {
	e, _ := singleBody(t, 10, 10)
	f := NewForceField(e, Rect{Width: 400, Height: 300}, 1, 0)
	assert.Equal(t, DefaultForceInterval, f.Interval)

	require.NoError(t, f.Tick())
	assert.Equal(t, uint64(1), f.Ticks())

	f.SetPaused(true)
	require.NoError(t, f.Tick())
	assert.Equal(t, uint64(1), f.Ticks())

	f.SetPaused(false)
	e.Close()
	assert.ErrorIs(t, f.Tick(), ErrClosed)
}

func TestForceFieldRunStopsOnCancel(t *testing.T) {
	e, _ := singleBody(t, 10, 10)
	f := NewForceField(e, Rect{Width: 400, Height: 300}, 1, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	require.Eventually(t, func() bool { return f.Ticks() > 0 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("force field did not stop after cancel")
	}

	after := f.Ticks()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, after, f.Ticks())
}

func TestForceFieldRunEndsWhenEngineCloses(t *testing.T) {
	e, _ := singleBody(t, 10, 10)
	f := NewForceField(e, Rect{Width: 400, Height: 300}, 1, time.Millisecond)
	e.Close()
	assert.ErrorIs(t, f.Run(context.Background()), ErrClosed)
}
