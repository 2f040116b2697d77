package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/physlayout/physics"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

var palette = []color.RGBA{
	colornames.Tomato,
	colornames.Gold,
	colornames.Mediumseagreen,
	colornames.Cornflowerblue,
	colornames.Orchid,
	colornames.Darkorange,
	colornames.Steelblue,
	colornames.Salmon,
}

// Color resolves a css color name. Unknown or empty names fall back to the
// palette entry for index i.
func Color(name string, i int) color.RGBA {
	if c, ok := colornames.Map[name]; ok {
		return c
	}
	if i < 0 {
		i = -i
	}
	return palette[i%len(palette)]
}

// ElementGeoM maps the unit square onto an element: scaled to its size,
// rotated about its leading vertex, and moved to (X, Y) plus the container
// offset.
func ElementGeoM(t physics.Transform, offX, offY float64) ebiten.GeoM {
	var m ebiten.GeoM
	m.Scale(t.Width, t.Height)
	m.Rotate(t.Angle)
	m.Translate(t.X+offX, t.Y+offY)
	return m
}

// Sprite is one element as the renderer sees it.
type Sprite struct {
	Label     string
	Color     color.Color
	Transform physics.Transform
}

// Renderer draws elements as filled, labelled rectangles.
type Renderer struct {
	pixel *ebiten.Image
	face  ebtext.Face
}

func NewRenderer() *Renderer {
	pixel := ebiten.NewImage(1, 1)
	pixel.Fill(color.White)
	return &Renderer{
		pixel: pixel,
		face:  ebtext.NewGoXFace(basicfont.Face7x13),
	}
}

// Draw paints sprites in order. Hidden sprites are skipped.
func (r *Renderer) Draw(screen *ebiten.Image, sprites []Sprite, offX, offY float64) {
	if r == nil || screen == nil {
		return
	}
	for _, s := range sprites {
		if !s.Transform.Visible {
			continue
		}
		op := &ebiten.DrawImageOptions{GeoM: ElementGeoM(s.Transform, offX, offY)}
		op.ColorScale.ScaleWithColor(s.Color)
		screen.DrawImage(r.pixel, op)

		if s.Label != "" {
			r.label(screen, s, offX, offY)
		}
	}
}

func (r *Renderer) label(screen *ebiten.Image, s Sprite, offX, offY float64) {
	w, h := ebtext.Measure(s.Label, r.face, 0)
	t := s.Transform

	op := &ebtext.DrawOptions{}
	op.GeoM.Translate((t.Width-w)/2, (t.Height-h)/2)
	op.GeoM.Rotate(t.Angle)
	op.GeoM.Translate(t.X+offX, t.Y+offY)
	op.ColorScale.ScaleWithColor(color.White)
	ebtext.Draw(screen, s.Label, r.face, op)
}

// Text draws a plain status line at (x, y).
func (r *Renderer) Text(screen *ebiten.Image, msg string, x, y float64) {
	if r == nil || screen == nil {
		return
	}
	op := &ebtext.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(colornames.Lightgray)
	ebtext.Draw(screen, msg, r.face, op)
}
