package input

// Handler is the modality-agnostic drag surface. Mouse and touch adapters
// both translate into these calls.
type Handler interface {
	PressStart(x, y float64)
	Move(x, y float64)
	Release()
	Holding() bool
}

// Discard is a Handler that ignores everything, used when dragging is off.
var Discard Handler = discard{}

type discard struct{}

func (discard) PressStart(float64, float64) {}
func (discard) Move(float64, float64)       {}
func (discard) Release()                    {}
func (discard) Holding() bool               { return false }

// Adapter maps one input modality onto a Handler. Translate reports whether
// the event was consumed.
type Adapter interface {
	Translate(evt Event, h Handler) bool
}

// MouseAdapter forwards button and motion events. Wheel events are left to
// the host so page scroll and zoom keep working.
type MouseAdapter struct{}

func (MouseAdapter) Translate(evt Event, h Handler) bool {
	switch evt.Kind {
	case MouseDown:
		h.PressStart(evt.X, evt.Y)
		return true
	case MouseMove:
		h.Move(evt.X, evt.Y)
		return true
	case MouseUp:
		h.Release()
		return true
	case Leave:
		h.Release()
		return true
	default:
		return false
	}
}

// TouchAdapter maps the primary touch onto press/move/release. Moves and
// ends are only forwarded while a body is held, so a touch that starts on
// empty space stays a page gesture.
type TouchAdapter struct {
	primary int
	active  bool
}

func (a *TouchAdapter) Translate(evt Event, h Handler) bool {
	switch evt.Kind {
	case TouchStart:
		if a.active && evt.Touch != a.primary {
			return false
		}
		a.primary = evt.Touch
		a.active = true
		h.PressStart(evt.X, evt.Y)
		return h.Holding()
	case TouchMove:
		if !a.active || evt.Touch != a.primary || !h.Holding() {
			return false
		}
		h.Move(evt.X, evt.Y)
		return true
	case TouchEnd:
		if !a.active || evt.Touch != a.primary {
			return false
		}
		a.active = false
		if !h.Holding() {
			return false
		}
		h.Release()
		return true
	default:
		return false
	}
}

// Router dispatches raw events to the adapter for their modality.
type Router struct {
	handler Handler
	mouse   MouseAdapter
	touch   TouchAdapter
}

func NewRouter(h Handler) *Router {
	if h == nil {
		h = Discard
	}
	return &Router{handler: h}
}

// Dispatch routes evt and reports whether it was captured. Uncaptured events
// (wheel, stray touches) belong to the host's default handling.
func (r *Router) Dispatch(evt Event) bool {
	switch evt.Kind {
	case Wheel:
		return false
	case TouchStart, TouchMove, TouchEnd:
		return r.touch.Translate(evt, r.handler)
	default:
		return r.mouse.Translate(evt, r.handler)
	}
}

// DispatchAll routes every event in order and returns the uncaptured ones.
func (r *Router) DispatchAll(events []Event) []Event {
	var rest []Event
	for _, evt := range events {
		if !r.Dispatch(evt) {
			rest = append(rest, evt)
		}
	}
	return rest
}
