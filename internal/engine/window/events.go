package window

import "github.com/veandco/go-sdl2/sdl"

// EventType is the kind of a viewer event.
type EventType int

const (
	EventQuit EventType = iota
	EventResize
	// EventDrag reports pointer motion with the left button held.
	EventDrag
	EventWheel
	// EventClick reports a left button release without a drag.
	EventClick
	EventKeyDown
)

// Event is one translated SDL event. Pointer positions use the window's
// top-left origin.
type Event struct {
	Type   EventType
	X, Y   int32
	DX, DY int32
	Wheel  float32
	Width  int32
	Height int32
	Key    sdl.Keycode
}

// PollEvents drains the SDL queue and returns the events of interest. The
// returned slice is reused by the next call.
func (w *Window) PollEvents() []Event {
	w.events = w.events[:0]
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch e := ev.(type) {
		case *sdl.QuitEvent:
			w.events = append(w.events, Event{Type: EventQuit})
		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				w.events = append(w.events, Event{Type: EventResize, Width: e.Data1, Height: e.Data2})
			}
		case *sdl.MouseMotionEvent:
			if e.State&sdl.ButtonLMask() != 0 {
				w.dragging = w.dragging || e.XRel != 0 || e.YRel != 0
				w.events = append(w.events, Event{Type: EventDrag, X: e.X, Y: e.Y, DX: e.XRel, DY: e.YRel})
			}
		case *sdl.MouseButtonEvent:
			if e.Button != sdl.BUTTON_LEFT {
				continue
			}
			if e.Type == sdl.MOUSEBUTTONDOWN {
				w.dragging = false
			} else if !w.dragging {
				w.events = append(w.events, Event{Type: EventClick, X: e.X, Y: e.Y})
			}
		case *sdl.MouseWheelEvent:
			w.events = append(w.events, Event{Type: EventWheel, Wheel: float32(e.Y)})
		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				w.events = append(w.events, Event{Type: EventKeyDown, Key: e.Keysym.Sym})
			}
		}
	}
	return w.events
}
