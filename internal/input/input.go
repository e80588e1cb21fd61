// Package input converts SDL2 events into viewer events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType identifies a viewer event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventExpose
	EventKeyDown
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
	EventDropFile
)

// Event is one processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Keycode
	Width  int
	Height int
	MouseX int
	MouseY int
	Button uint8
	WheelY int
	Path   string
}

// Input collects the events of one loop iteration.
type Input struct {
	events []Event
}

// New creates an input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Wait blocks up to timeoutMS for an event, then drains the queue.
// Returns true if the viewer should quit.
func (i *Input) Wait(timeoutMS int) bool {
	i.events = i.events[:0]

	if ev := sdl.WaitEventTimeout(timeoutMS); ev != nil {
		if i.handle(ev) {
			return true
		}
	}
	return i.drain()
}

func (i *Input) drain() bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if i.handle(event) {
			return true
		}
	}
	return false
}

func (i *Input) handle(event sdl.Event) bool {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		i.events = append(i.events, Event{Type: EventQuit})
		return true

	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_SIZE_CHANGED:
			i.events = append(i.events, Event{
				Type:   EventWindowResize,
				Width:  int(e.Data1),
				Height: int(e.Data2),
			})
		case sdl.WINDOWEVENT_EXPOSED:
			i.events = append(i.events, Event{Type: EventExpose})
		}

	case *sdl.KeyboardEvent:
		// key repeat arrives as further KEYDOWN events
		if e.Type == sdl.KEYDOWN {
			i.events = append(i.events, Event{
				Type: EventKeyDown,
				Key:  e.Keysym.Sym,
			})
		}

	case *sdl.MouseMotionEvent:
		i.events = append(i.events, Event{
			Type:   EventMouseMove,
			MouseX: int(e.X),
			MouseY: int(e.Y),
		})

	case *sdl.MouseButtonEvent:
		if e.Type == sdl.MOUSEBUTTONDOWN {
			i.events = append(i.events, Event{
				Type:   EventMouseDown,
				MouseX: int(e.X),
				MouseY: int(e.Y),
				Button: e.Button,
			})
		} else if e.Type == sdl.MOUSEBUTTONUP {
			i.events = append(i.events, Event{
				Type:   EventMouseUp,
				MouseX: int(e.X),
				MouseY: int(e.Y),
				Button: e.Button,
			})
		}

	case *sdl.MouseWheelEvent:
		y := int(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			y = -y
		}
		if y != 0 {
			i.events = append(i.events, Event{Type: EventMouseWheel, WheelY: y})
		}

	case *sdl.DropEvent:
		if e.Type == sdl.DROPFILE {
			i.events = append(i.events, Event{Type: EventDropFile, Path: e.File})
		}
	}
	return false
}

// Events returns the events from the last Wait.
func (i *Input) Events() []Event {
	return i.events
}
