package render

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlayout/physics"
)

// velocityScale turns px/s into an on-screen line length.
const velocityScale = 0.1

// DrawDebug renders the engine's shapes and constraints, plus an angle
// indicator and a velocity line for every element body.
func DrawDebug(screen *ebiten.Image, e *physics.Engine, offX, offY float64) {
	if screen == nil || e == nil {
		return
	}
	d := &debugDrawer{screen: screen, off: cp.Vector{X: offX, Y: offY}}
	_ = e.Locked(func(space *cp.Space) {
		cp.DrawSpace(space, d)
		space.EachBody(func(body *cp.Body) {
			if body.GetType() != cp.BODY_DYNAMIC {
				return
			}
			d.indicators(body)
		})
	})
}

type debugDrawer struct {
	screen *ebiten.Image
	off    cp.Vector
}

func (d *debugDrawer) line(a, b cp.Vector, c color.Color) {
	a, b = a.Add(d.off), b.Add(d.off)
	ebitenutil.DrawLine(d.screen, a.X, a.Y, b.X, b.Y, c)
}

func (d *debugDrawer) indicators(body *cp.Body) {
	pos := body.Position()
	angle := body.Angle()
	d.line(pos, pos.Add(cp.Vector{X: math.Cos(angle), Y: math.Sin(angle)}.Mult(20)), color.RGBA{R: 255, G: 255, B: 255, A: 255})

	vel := body.Velocity()
	if vel.Length() > 1 {
		d.line(pos, pos.Add(vel.Mult(velocityScale)), color.RGBA{R: 255, G: 80, B: 80, A: 255})
	}
}

func (d *debugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	c := fcolorToRGBA(outline)
	steps := 20
	prev := cp.Vector{X: pos.X + radius, Y: pos.Y}
	for i := 1; i <= steps; i++ {
		th := float64(i) * (2 * math.Pi / float64(steps))
		cur := cp.Vector{X: pos.X + math.Cos(th)*radius, Y: pos.Y + math.Sin(th)*radius}
		d.line(prev, cur, c)
		prev = cur
	}
	d.line(pos, cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}, c)
}

func (d *debugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.line(a, b, fcolorToRGBA(fill))
}

func (d *debugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.line(a, b, fcolorToRGBA(outline))
}

func (d *debugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	c := fcolorToRGBA(outline)
	for i := 0; i < count; i++ {
		d.line(verts[i], verts[(i+1)%count], c)
	}
}

func (d *debugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	c := fcolorToRGBA(fill)
	l := size / 2
	d.line(cp.Vector{X: pos.X - l, Y: pos.Y}, cp.Vector{X: pos.X + l, Y: pos.Y}, c)
	d.line(cp.Vector{X: pos.X, Y: pos.Y - l}, cp.Vector{X: pos.X, Y: pos.Y + l}, c)
}

func (d *debugDrawer) Flags() uint {
	return cp.DRAW_SHAPES | cp.DRAW_CONSTRAINTS
}

func (d *debugDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1.0, B: 0.2, A: 1.0}
}

func (d *debugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	return shapeColor(shape)
}

func (d *debugDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1.0, G: 0.85, B: 0.2, A: 1.0}
}

func (d *debugDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1.0, G: 0.1, B: 0.1, A: 1.0}
}

func (d *debugDrawer) Data() interface{} {
	return nil
}

// shapeColor tells walls from elements, and sleeping elements from awake ones.
func shapeColor(shape *cp.Shape) cp.FColor {
	if shape == nil || shape.Body() == nil {
		return cp.FColor{R: 1, G: 1, B: 1, A: 1}
	}
	body := shape.Body()
	switch {
	case body.GetType() == cp.BODY_STATIC:
		return cp.FColor{R: 0.4, G: 0.7, B: 1.0, A: 1.0}
	case body.IsSleeping():
		return cp.FColor{R: 0.5, G: 0.5, B: 0.5, A: 1.0}
	default:
		return cp.FColor{R: 0.9, G: 0.4, B: 0.9, A: 1.0}
	}
}

func fcolorToRGBA(c cp.FColor) color.RGBA {
	clamp := func(v float32) uint8 {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return uint8(v * 255)
	}
	return color.RGBA{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: clamp(c.A)}
}
