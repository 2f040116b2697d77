package input

// Kind identifies a raw pointer event before it is mapped onto a Handler.
type Kind int

const (
	MouseDown Kind = iota + 1
	MouseMove
	MouseUp
	// Leave fires when the pointer exits the container.
	Leave
	Wheel
	TouchStart
	TouchMove
	TouchEnd
)

func (k Kind) String() string {
	switch k {
	case MouseDown:
		return "mousedown"
	case MouseMove:
		return "mousemove"
	case MouseUp:
		return "mouseup"
	case Leave:
		return "leave"
	case Wheel:
		return "wheel"
	case TouchStart:
		return "touchstart"
	case TouchMove:
		return "touchmove"
	case TouchEnd:
		return "touchend"
	default:
		return "unknown"
	}
}

// Event is a pointer event in container coordinates. Touch carries the
// touch id for touch kinds; DX/DY carry the scroll delta for Wheel.
type Event struct {
	Kind   Kind
	X, Y   float64
	DX, DY float64
	Touch  int
}

// Queue is a simple FIFO queue.
type Queue struct {
	items []Event
}

// Push adds an event.
func (q *Queue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *Queue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
