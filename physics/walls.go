package physics

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlayout/common"
)

const (
	WallThickness = 100.0
	// WallMargin is how far the top and bottom walls overhang the container
	// horizontally, and the side walls vertically, so corners stay sealed.
	WallMargin   = 100.0
	WallFriction = 2.0
)

type Side int

const (
	SideTop Side = iota
	SideBottom
	SideLeft
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideTop:
		return "top"
	case SideBottom:
		return "bottom"
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "unknown"
	}
}

// WallSides enables each boundary independently.
type WallSides struct {
	Top, Bottom, Left, Right bool
}

func AllWalls() WallSides {
	return WallSides{Top: true, Bottom: true, Left: true, Right: true}
}

// Wall is a static boundary body. Bounds is its box in container coordinates.
type Wall struct {
	Side   Side
	Bounds Rect

	body  *cp.Body
	shape *cp.Shape
}

func (w *Wall) CP() *cp.Body {
	if w == nil {
		return nil
	}
	return w.body
}

// wallBounds lays out the four walls around a container of size (cw, ch).
func wallBounds(cw, ch float64) map[Side]Rect {
	half := WallThickness / 2
	return map[Side]Rect{
		SideBottom: centered(cw/2, ch+half, cw+WallMargin, WallThickness),
		SideTop:    centered(cw/2, -half, cw+WallMargin, WallThickness),
		SideRight:  centered(cw+half, ch/2, WallThickness, ch+WallMargin),
		SideLeft:   centered(-half, ch/2, WallThickness, ch+WallMargin),
	}
}

func centered(cx, cy, w, h float64) Rect {
	return Rect{X: cx - w/2, Y: cy - h/2, Width: w, Height: h}
}

// AddWalls creates one static body per enabled side around the container and
// adds them to the engine's space. Negative or NaN container sizes are
// treated as zero. A closed engine gets no walls and AddWalls returns nil.
func AddWalls(e *Engine, container Rect, sides WallSides) []*Wall {
	if e == nil {
		return nil
	}

	cw := common.NonNegative(container.Width)
	ch := common.NonNegative(container.Height)
	layout := wallBounds(cw, ch)

	enabled := []struct {
		side Side
		on   bool
	}{
		{SideTop, sides.Top},
		{SideBottom, sides.Bottom},
		{SideLeft, sides.Left},
		{SideRight, sides.Right},
	}

	var walls []*Wall
	err := e.Locked(func(space *cp.Space) {
		for _, s := range enabled {
			if !s.on {
				continue
			}
			bounds := layout[s.side]

			body := cp.NewStaticBody()
			body.SetPosition(cp.Vector{X: bounds.X + bounds.Width/2, Y: bounds.Y + bounds.Height/2})
			space.AddBody(body)

			shape := cp.NewBox(body, bounds.Width, bounds.Height, 0)
			shape.SetFriction(WallFriction)
			space.AddShape(shape)

			walls = append(walls, &Wall{Side: s.side, Bounds: bounds, body: body, shape: shape})
		}
		e.walls = append(e.walls, walls...)
	})
	if err != nil {
		return nil
	}
	return walls
}
