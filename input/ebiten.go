package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/physlayout/physics"
)

// Poller turns ebiten's per-tick mouse, wheel and touch state into Events
// relative to the container.
type Poller struct {
	Container physics.Rect

	inside       bool
	lastX, lastY int
	touchIDs     []ebiten.TouchID
}

func NewPoller(container physics.Rect) *Poller {
	return &Poller{Container: container, lastX: -1, lastY: -1}
}

// Poll pushes this tick's events onto q.
func (p *Poller) Poll(q *Queue) {
	if p == nil || q == nil {
		return
	}

	mx, my := ebiten.CursorPosition()
	x, y := p.local(mx, my)
	inside := p.Container.Contains(float64(mx), float64(my))

	if inside && (mx != p.lastX || my != p.lastY) {
		q.Push(Event{Kind: MouseMove, X: x, Y: y})
	}
	if inside && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		q.Push(Event{Kind: MouseDown, X: x, Y: y})
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		q.Push(Event{Kind: MouseUp, X: x, Y: y})
	}
	if p.inside && !inside {
		q.Push(Event{Kind: Leave, X: x, Y: y})
	}
	p.inside = inside
	p.lastX, p.lastY = mx, my

	if wx, wy := ebiten.Wheel(); wx != 0 || wy != 0 {
		q.Push(Event{Kind: Wheel, X: x, Y: y, DX: wx, DY: wy})
	}

	p.touchIDs = inpututil.AppendJustPressedTouchIDs(p.touchIDs[:0])
	for _, id := range p.touchIDs {
		tx, ty := p.local(ebiten.TouchPosition(id))
		q.Push(Event{Kind: TouchStart, X: tx, Y: ty, Touch: int(id)})
	}

	p.touchIDs = ebiten.AppendTouchIDs(p.touchIDs[:0])
	for _, id := range p.touchIDs {
		if inpututil.TouchPressDuration(id) == 1 {
			continue
		}
		cx, cy := ebiten.TouchPosition(id)
		px, py := inpututil.TouchPositionInPreviousTick(id)
		if cx == px && cy == py {
			continue
		}
		tx, ty := p.local(cx, cy)
		q.Push(Event{Kind: TouchMove, X: tx, Y: ty, Touch: int(id)})
	}

	p.touchIDs = inpututil.AppendJustReleasedTouchIDs(p.touchIDs[:0])
	for _, id := range p.touchIDs {
		tx, ty := p.local(inpututil.TouchPositionInPreviousTick(id))
		q.Push(Event{Kind: TouchEnd, X: tx, Y: ty, Touch: int(id)})
	}
}

func (p *Poller) local(sx, sy int) (float64, float64) {
	return float64(sx) - p.Container.X, float64(sy) - p.Container.Y
}
