package panorama

import (
	"fmt"
	"strings"

	"github.com/Faultbox/panoview/pkg/math"
)

// DefaultPointerGain converts pointer offset from the view center into a
// target angle in Smoothed mode, in radians per pixel.
const DefaultPointerGain = 0.025

// NavigationMode selects how pointer input changes the orientation.
type NavigationMode int

const (
	// Smoothed eases the view toward the pointer position.
	Smoothed NavigationMode = iota
	// DeltaDrag grabs the sphere and drags it with the pointer.
	DeltaDrag
	// Absolute changes orientation only on explicit SetOrientation or LookAt.
	Absolute
)

var modeNames = [...]string{"smoothed", "drag", "absolute"}

func (m NavigationMode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("NavigationMode(%d)", int(m))
	}
	return modeNames[m]
}

// Next returns the mode after m, wrapping around.
func (m NavigationMode) Next() NavigationMode {
	return (m + 1) % NavigationMode(len(modeNames))
}

// ParseNavigationMode parses a mode name.
func ParseNavigationMode(s string) (NavigationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "smoothed", "smooth", "follow":
		return Smoothed, nil
	case "drag", "deltadrag", "delta":
		return DeltaDrag, nil
	case "absolute", "click":
		return Absolute, nil
	}
	return Smoothed, fmt.Errorf("%w: unknown navigation mode %q", ErrInvalidConfiguration, s)
}

// EventKind identifies a navigation event.
type EventKind int

const (
	EventPointerMoved EventKind = iota
	EventDragDelta
	EventSetOrientation
	EventLookAt
)

func (k EventKind) String() string {
	switch k {
	case EventPointerMoved:
		return "PointerMoved"
	case EventDragDelta:
		return "DragDelta"
	case EventSetOrientation:
		return "SetOrientation"
	case EventLookAt:
		return "LookAt"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is one navigation input. Pointer coordinates are view pixels.
type Event struct {
	Kind       EventKind
	X, Y       float64 // pointer, or drag start
	ToX, ToY   float64 // drag end
	Theta, Phi float64 // SetOrientation
}

// PointerMoved returns a pointer motion event.
func PointerMoved(x, y float64) Event {
	return Event{Kind: EventPointerMoved, X: x, Y: y}
}

// DragDelta returns a drag from (fromX, fromY) to (toX, toY).
func DragDelta(fromX, fromY, toX, toY float64) Event {
	return Event{Kind: EventDragDelta, X: fromX, Y: fromY, ToX: toX, ToY: toY}
}

// SetOrientationTo returns an event replacing the orientation.
func SetOrientationTo(theta, phi float64) Event {
	return Event{Kind: EventSetOrientation, Theta: theta, Phi: phi}
}

// LookAt returns an event centering the view on pixel (x, y).
func LookAt(x, y float64) Event {
	return Event{Kind: EventLookAt, X: x, Y: y}
}

// Navigator feeds navigation events into one OrientationState according
// to its mode. A Navigator is driven from one goroutine; the state it
// drives may be read and set from others.
//
// In Smoothed mode the pointer target is measured from an anchor
// orientation. The anchor starts at (0, 0) and moves whenever the view is
// set explicitly, so a LookAt or SetOrientation is kept rather than eased
// back to where the pointer points.
type Navigator struct {
	Mode        NavigationMode
	Smoothing   float64
	PointerGain float64

	state *OrientationState

	anchorTheta float64
	anchorPhi   float64
	pointer     math.Vec2
	hasPointer  bool
}

// NewNavigator returns a navigator over state with default tuning.
func NewNavigator(state *OrientationState, mode NavigationMode) *Navigator {
	return &Navigator{
		Mode:        mode,
		Smoothing:   DefaultSmoothing,
		PointerGain: DefaultPointerGain,
		state:       state,
	}
}

// State returns the orientation state being driven.
func (n *Navigator) State() *OrientationState {
	return n.state
}

// Apply handles ev against the view described by rf. It reports whether
// the orientation changed, so the caller knows to request a frame. Events
// the current mode does not use are ignored. On error the orientation is
// unchanged.
func (n *Navigator) Apply(ev Event, rf *RayField) (bool, error) {
	switch ev.Kind {
	case EventSetOrientation:
		if err := n.state.SetOrientation(ev.Theta, ev.Phi); err != nil {
			return false, err
		}
		n.Anchor(rf)
		return true, nil

	case EventLookAt:
		ray, err := rf.RayAt(ev.X, ev.Y)
		if err != nil {
			return false, err
		}
		if err := n.state.TurnToward(ray); err != nil {
			return false, err
		}
		n.pointer, n.hasPointer = math.Vec2{X: ev.X, Y: ev.Y}, true
		n.Anchor(rf)
		return true, nil

	case EventPointerMoved:
		if !finite(ev.X, ev.Y) {
			if n.Mode != Smoothed {
				return false, nil
			}
			return false, fmt.Errorf("%w: pointer (%v, %v)", ErrNonFinite, ev.X, ev.Y)
		}
		n.pointer, n.hasPointer = math.Vec2{X: ev.X, Y: ev.Y}, true
		if n.Mode != Smoothed {
			return false, nil
		}
		targetTheta := n.anchorTheta + (ev.X-float64(rf.Width())/2)*n.PointerGain
		targetPhi := n.anchorPhi + (ev.Y-float64(rf.Height())/2)*n.PointerGain
		if err := n.state.FollowTarget(targetTheta, targetPhi, n.Smoothing); err != nil {
			return false, err
		}
		return true, nil

	case EventDragDelta:
		if n.Mode != DeltaDrag {
			return false, nil
		}
		from, err := rf.RayAt(ev.X, ev.Y)
		if err != nil {
			return false, err
		}
		to, err := rf.RayAt(ev.ToX, ev.ToY)
		if err != nil {
			return false, err
		}
		if err := n.state.ApplyDelta(from, to); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, fmt.Errorf("unknown navigation event %v", ev.Kind)
}

// Anchor moves the Smoothed-mode anchor so the last known pointer position
// targets the current orientation. Without a pointer position the view
// center is used.
func (n *Navigator) Anchor(rf *RayField) {
	o := n.state.Snapshot()
	dx, dy := 0.0, 0.0
	if n.hasPointer {
		dx = n.pointer.X - float64(rf.Width())/2
		dy = n.pointer.Y - float64(rf.Height())/2
	}
	n.anchorTheta = o.Theta - dx*n.PointerGain
	n.anchorPhi = o.Phi - dy*n.PointerGain
}
