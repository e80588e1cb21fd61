// Package gesture turns raw pointer button and motion input into
// panorama navigation events.
package gesture

import (
	"github.com/Faultbox/panoview/pkg/math"
	"github.com/Faultbox/panoview/pkg/panorama"
)

// DefaultSlop is how far, in pixels, the pointer may move between press
// and release and still count as a click.
const DefaultSlop = 4.0

// Recognizer tracks one pointer. It is not safe for concurrent use.
type Recognizer struct {
	Slop float64

	pressed  bool
	dragging bool
	press    math.Vec2
	last     math.Vec2
}

// New returns a recognizer with the given click slop. Negative slop is
// treated as zero.
func New(slop float64) *Recognizer {
	if slop < 0 {
		slop = 0
	}
	return &Recognizer{Slop: slop}
}

// Pressed reports whether the button is currently held.
func (r *Recognizer) Pressed() bool { return r.pressed }

// Dragging reports whether the held pointer has left the click slop.
func (r *Recognizer) Dragging() bool { return r.dragging }

// Press records a button press at (x, y). It produces no event.
func (r *Recognizer) Press(x, y float64) {
	p := math.Vec2{X: x, Y: y}
	r.pressed = true
	r.dragging = false
	r.press = p
	r.last = p
}

// Move reports pointer motion to (x, y). With the button up it yields a
// PointerMoved event. With the button down it yields a DragDelta from the
// previous position once the pointer has left the slop.
func (r *Recognizer) Move(x, y float64) (panorama.Event, bool) {
	p := math.Vec2{X: x, Y: y}
	if !r.pressed {
		return panorama.PointerMoved(x, y), true
	}
	if !r.dragging {
		if p.Distance(r.press) <= r.Slop {
			return panorama.Event{}, false
		}
		r.dragging = true
	}
	if p == r.last {
		return panorama.Event{}, false
	}
	ev := panorama.DragDelta(r.last.X, r.last.Y, x, y)
	r.last = p
	return ev, true
}

// Release ends the gesture at (x, y). A release within the slop of the
// press yields LookAt at the press position; a release after dragging
// yields any remaining DragDelta.
func (r *Recognizer) Release(x, y float64) (panorama.Event, bool) {
	if !r.pressed {
		return panorama.Event{}, false
	}
	p := math.Vec2{X: x, Y: y}
	r.pressed = false

	if !r.dragging {
		if p.Distance(r.press) <= r.Slop {
			return panorama.LookAt(r.press.X, r.press.Y), true
		}
		r.dragging = true
	}
	r.dragging = false
	if p == r.last {
		return panorama.Event{}, false
	}
	ev := panorama.DragDelta(r.last.X, r.last.Y, x, y)
	r.last = p
	return ev, true
}

// Cancel drops any gesture in progress without producing an event.
func (r *Recognizer) Cancel() {
	r.pressed = false
	r.dragging = false
}
