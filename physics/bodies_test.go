package physics

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestAddBodiesPlacementWithinContainer(t *testing.T) {
	container := Rect{Width: 400, Height: 300}
	elements := []Rect{
		{Width: 50, Height: 50},
		{Width: 120, Height: 40},
		{Width: 400, Height: 10},
		{Width: 10, Height: 300},
		{Width: 1, Height: 1},
	}

	for seed := uint64(1); seed <= 50; seed++ {
		e := NewEngine(EngineOptions{})
		bodies := AddBodies(e, container, elements, BodyOptions{}, seeded(seed))
		require.Len(t, bodies, len(elements))

		for i, b := range bodies {
			el := elements[i]
			v := b.LeadingVertex()
			assert.GreaterOrEqual(t, v.X, -1e-9)
			assert.LessOrEqual(t, v.X, container.Width-el.Width+1e-9)
			assert.GreaterOrEqual(t, v.Y, -1e-9)
			assert.LessOrEqual(t, v.Y, container.Height-el.Height+1e-9)
		}
	}
}

func TestAddBodiesPreservesOrderAndSize(t *testing.T) {
	e := NewEngine(EngineOptions{})
	elements := []Rect{{Width: 10, Height: 20}, {Width: 30, Height: 40}, {Width: 50, Height: 60}}
	bodies := AddBodies(e, Rect{Width: 500, Height: 500}, elements, BodyOptions{}, seeded(7))

	require.Len(t, bodies, 3)
	assert.Equal(t, bodies, e.Bodies())
	for i, b := range bodies {
		assert.Equal(t, i, b.Index)
		assert.Equal(t, elements[i].Width, b.Width)
		assert.Equal(t, elements[i].Height, b.Height)
	}
}

func TestAddBodiesOversizedAndDegenerateElements(t *testing.T) {
	e := NewEngine(EngineOptions{})
	elements := []Rect{
		{Width: 800, Height: 20},
		{Width: 0, Height: -3},
	}
	var bodies []*Body
	require.NotPanics(t, func() {
		bodies = AddBodies(e, Rect{Width: 100, Height: 100}, elements, BodyOptions{}, seeded(3))
	})
	require.Len(t, bodies, 2)

	v := bodies[0].LeadingVertex()
	assert.InDelta(t, 0.0, v.X, 1e-9, "oversized axis floors to 0")

	assert.Equal(t, minBodySize, bodies[1].Width)
	assert.Equal(t, minBodySize, bodies[1].Height)
	require.NoError(t, e.Step())
}

func TestAddBodiesMass(t *testing.T) {
	cases := []struct {
		name string
		opts BodyOptions
		want float64
	}{
		{"density_disabled_unit_mass", BodyOptions{DensityEnabled: false, Density: 0.5}, 1},
		{"density_enabled", BodyOptions{DensityEnabled: true, Density: 0.001}, 2.5},
		{"density_enabled_zero_falls_back", BodyOptions{DensityEnabled: true}, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e := NewEngine(EngineOptions{})
			bodies := AddBodies(e, Rect{Width: 100, Height: 100}, []Rect{{Width: 50, Height: 50}}, c.opts, seeded(1))
			require.Len(t, bodies, 1)
			assert.InDelta(t, c.want, bodies[0].Mass(), 1e-9)
		})
	}
}

func TestAddBodiesSeededStreamIsReproducible(t *testing.T) {
	elements := []Rect{{Width: 20, Height: 20}, {Width: 20, Height: 20}, {Width: 20, Height: 20}}
	container := Rect{Width: 300, Height: 200}

	a := AddBodies(NewEngine(EngineOptions{}), container, elements, BodyOptions{}, seeded(99))
	b := AddBodies(NewEngine(EngineOptions{}), container, elements, BodyOptions{}, seeded(99))
	for i := range a {
		assert.Equal(t, a[i].LeadingVertex(), b[i].LeadingVertex())
	}
}

func TestAddBodiesAllowsOverlap(t *testing.T) {
	// Elements as large as the container have a single valid placement, so
	// the factory must stack them rather than separate them.
	e := NewEngine(EngineOptions{})
	bodies := AddBodies(e, Rect{Width: 50, Height: 50}, []Rect{{Width: 50, Height: 50}, {Width: 50, Height: 50}}, BodyOptions{}, seeded(5))
	require.Len(t, bodies, 2)
	assert.Equal(t, bodies[0].CP().Position(), bodies[1].CP().Position())
}

func TestPlacement(t *testing.T) {
	rng := seeded(11)
	for i := 0; i < 200; i++ {
		left, top := Placement(rng, 100, 80, 30, 20)
		assert.GreaterOrEqual(t, left, 0.0)
		assert.LessOrEqual(t, left, 70.0)
		assert.GreaterOrEqual(t, top, 0.0)
		assert.LessOrEqual(t, top, 60.0)
		assert.Equal(t, float64(int(left)), left, "offsets are whole units")
	}

	left, top := Placement(rng, 10, 10, 20, 30)
	assert.Equal(t, 0.0, left)
	assert.Equal(t, 0.0, top)
}

func TestAddBodiesOnClosedEngine(t *testing.T) {
	e := NewEngine(EngineOptions{})
	e.Close()

	bodies := AddBodies(e, Rect{Width: 400, Height: 300}, []Rect{{Width: 10, Height: 10}}, BodyOptions{}, seeded(1))
	assert.Nil(t, bodies)
	assert.Empty(t, e.Bodies())
	transforms, err := e.Transforms(nil)
	assert.ErrorIs(t, err, ErrClosed)
	assert.Empty(t, transforms)
}
