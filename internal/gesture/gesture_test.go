package gesture

import (
	"testing"

	"github.com/Faultbox/panoview/pkg/panorama"
)

func TestMoveWithoutButton(t *testing.T) {
	r := New(DefaultSlop)
	ev, ok := r.Move(10, 20)
	if !ok {
		t.Fatal("expected an event")
	}
	if ev != panorama.PointerMoved(10, 20) {
		t.Errorf("event = %+v", ev)
	}
}

func TestClick(t *testing.T) {
	r := New(DefaultSlop)
	r.Press(100, 50)

	if _, ok := r.Move(102, 51); ok {
		t.Error("motion within slop should not drag")
	}
	ev, ok := r.Release(101, 52)
	if !ok {
		t.Fatal("expected LookAt on release")
	}
	if ev != panorama.LookAt(100, 50) {
		t.Errorf("event = %+v, want LookAt at press position", ev)
	}
	if r.Pressed() {
		t.Error("still pressed after release")
	}
}

func TestDragChain(t *testing.T) {
	r := New(DefaultSlop)
	r.Press(0, 0)

	steps := []struct {
		x, y float64
		want panorama.Event
		ok   bool
	}{
		{2, 0, panorama.Event{}, false},
		{10, 0, panorama.DragDelta(0, 0, 10, 0), true},
		{10, 0, panorama.Event{}, false},
		{15, 5, panorama.DragDelta(10, 0, 15, 5), true},
		// Back inside the original slop is still a drag.
		{1, 1, panorama.DragDelta(15, 5, 1, 1), true},
	}
	for i, s := range steps {
		ev, ok := r.Move(s.x, s.y)
		if ok != s.ok || ev != s.want {
			t.Errorf("step %d: Move(%v, %v) = %+v, %v; want %+v, %v", i, s.x, s.y, ev, ok, s.want, s.ok)
		}
	}
	if !r.Dragging() {
		t.Error("expected dragging")
	}

	ev, ok := r.Release(3, 1)
	if !ok || ev != panorama.DragDelta(1, 1, 3, 1) {
		t.Errorf("Release = %+v, %v", ev, ok)
	}
	if r.Dragging() || r.Pressed() {
		t.Error("gesture not finished after release")
	}
}

func TestReleaseWithoutMotionEvents(t *testing.T) {
	r := New(DefaultSlop)
	r.Press(0, 0)
	ev, ok := r.Release(20, 0)
	if !ok || ev != panorama.DragDelta(0, 0, 20, 0) {
		t.Errorf("Release = %+v, %v", ev, ok)
	}
}

func TestReleaseWithoutPress(t *testing.T) {
	r := New(DefaultSlop)
	if _, ok := r.Release(1, 1); ok {
		t.Error("release without press produced an event")
	}
}

func TestCancel(t *testing.T) {
	r := New(0)
	r.Press(0, 0)
	r.Move(5, 5)
	r.Cancel()
	if _, ok := r.Release(5, 5); ok {
		t.Error("release after cancel produced an event")
	}
	if New(-3).Slop != 0 {
		t.Error("negative slop not clamped")
	}
}
