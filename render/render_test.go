package render

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlayout/physics"
	"github.com/stretchr/testify/assert"
	"golang.org/x/image/colornames"
)

func TestElementGeoMMatchesTransform(t *testing.T) {
	cases := []struct {
		name string
		tr   physics.Transform
	}{
		{name: "identity", tr: physics.Transform{X: 10, Y: 20, Width: 50, Height: 30}},
		{name: "quarter_turn", tr: physics.Transform{X: 100, Y: 90, Angle: math.Pi / 2, Width: 40, Height: 10}},
		{name: "tilted", tr: physics.Transform{X: -5, Y: 7, Angle: 0.3, Width: 12, Height: 80}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := ElementGeoM(c.tr, 3, 4)
			// Unit square corners map to the element's corners.
			for _, p := range [][2]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
				gx, gy := m.Apply(p[0], p[1])
				wx, wy := c.tr.Apply(p[0]*c.tr.Width, p[1]*c.tr.Height)
				assert.InDelta(t, wx+3, gx, 1e-9)
				assert.InDelta(t, wy+4, gy, 1e-9)
			}
		})
	}
}

func TestColor(t *testing.T) {
	assert.Equal(t, colornames.Tomato, Color("tomato", 5))
	assert.Equal(t, palette[1], Color("", 1))
	assert.Equal(t, palette[1], Color("not-a-color", 1+len(palette)))
	assert.Equal(t, palette[2], Color("", -2))
}

func TestShapeColor(t *testing.T) {
	static := cp.NewStaticBody()
	wall := cp.NewBox(static, 10, 10, 0)
	dynamic := cp.NewBody(1, cp.MomentForBox(1, 10, 10))
	box := cp.NewBox(dynamic, 10, 10, 0)

	assert.NotEqual(t, shapeColor(wall), shapeColor(box))
	assert.Equal(t, cp.FColor{R: 1, G: 1, B: 1, A: 1}, shapeColor(nil))
}

func TestFColorToRGBA(t *testing.T) {
	c := fcolorToRGBA(cp.FColor{R: 2, G: -1, B: 0.5, A: 1})
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(0), c.G)
	assert.Equal(t, uint8(127), c.B)
	assert.Equal(t, uint8(255), c.A)
}
