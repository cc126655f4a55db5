package mutate

import (
	"errors"
	"math/rand"
	"testing"

	"lightline-cli/internal/model"
)

func pos(x float64) model.TransformLight {
	tr := model.IdentityTransform()
	tr.Translation = model.V2(model.Coord(x), 0)
	return tr
}

// levelWith builds a level holding one light that starts at start and whose
// frames are spaced by lerps (initial first). Frame k sits at x = k.
func levelWith(start model.Time, lerps ...model.Time) *model.Level {
	m := model.Movement{
		Initial: model.WaypointInitial{LerpTime: lerps[0], Transform: pos(0)},
	}
	for i, l := range lerps[1:] {
		m.Waypoints = append(m.Waypoints, model.NewWaypoint(l, pos(float64(i+1))))
	}
	m.Last = pos(float64(len(lerps)))
	lvl := model.NewLevel(120)
	lvl.Events = append(lvl.Events, model.TimedEvent{
		Time:  start,
		Event: model.Event{Light: &model.LightEvent{Shape: model.Circle(1), Movement: m}},
	})
	return &lvl
}

var first = model.LightID{Event: 0}

type frameMark struct {
	x    model.Coord
	time model.Time
}

// layout returns each frame's x marker and absolute time, in order.
func layout(lvl *model.Level, id model.LightID) []frameMark {
	ev, lt := lvl.Light(id)
	var out []frameMark
	for f := range lt.Movement.TimedTransforms() {
		out = append(out, frameMark{x: f.Transform.Translation.X, time: ev.Time + f.Time})
	}
	return out
}

func sameLayout(a, b []frameMark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMoveWaypointTimeZeroDelta(t *testing.T) {
	lvl := levelWith(1000, 500, 300, 500)
	before := lvl.Clone()
	for _, id := range []model.WaypointID{model.InitialID, model.FrameID(0), model.FrameID(1), model.LastID} {
		res, err := MoveWaypointTime(lvl, first, id, model.ChangeBy(model.Time(0)), Handles{}, Options{})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", id, err)
		}
		if res.Changed {
			t.Fatalf("%s: expected changed=false", id)
		}
		if !lvl.Equal(&before) {
			t.Fatalf("%s: level changed on zero delta", id)
		}
	}
}

func TestMoveSoleMiddleFrameCarriesEdges(t *testing.T) {
	lvl := levelWith(0, 500, 500)
	res, err := MoveWaypointTime(lvl, first, model.FrameID(0), model.ChangeBy(model.Time(1000)), Handles{}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Changed {
		t.Fatalf("expected changed=true")
	}
	want := []frameMark{{0, 1000}, {1, 1500}, {2, 2000}}
	if got := layout(lvl, first); !sameLayout(got, want) {
		t.Fatalf("layout = %v, want %v", got, want)
	}
}

func TestMoveMiddleFrameOntoNeighbourIsRejected(t *testing.T) {
	lvl := levelWith(0, 500, 500, 500)
	before := lvl.Clone()
	_, err := MoveWaypointTime(lvl, first, model.FrameID(0), model.ChangeBy(model.Time(500)), Handles{}, Options{})
	if !errors.Is(err, ErrTimeCollision) {
		t.Fatalf("err = %v, want ErrTimeCollision", err)
	}
	if !lvl.Equal(&before) {
		t.Fatalf("rejected reorder modified the level")
	}
}

func TestMoveMiddleFramePastNeighbourSwaps(t *testing.T) {
	lvl := levelWith(0, 500, 500, 500)
	selected := model.FrameID(0)
	drag := model.FrameID(1)
	res, err := MoveWaypointTime(lvl, first, model.FrameID(0), model.ChangeBy(model.Time(600)),
		Handles{Selected: &selected, Drag: &drag}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The initial frame follows the moved frame at its fade distance.
	want := []frameMark{{0, 600}, {2, 1000}, {1, 1100}, {3, 1500}}
	if got := layout(lvl, first); !sameLayout(got, want) {
		t.Fatalf("layout = %v, want %v", got, want)
	}
	if lvl.Events[0].Time != 600 {
		t.Fatalf("event time = %d, want 600", lvl.Events[0].Time)
	}
	if selected != model.FrameID(1) {
		t.Fatalf("selected = %s, want 1", selected)
	}
	if drag != model.FrameID(0) {
		t.Fatalf("drag = %s, want 0", drag)
	}
	if res.Remap[model.FrameID(0)] != model.FrameID(1) || res.Remap[model.LastID] != model.LastID {
		t.Fatalf("unexpected remap: %v", res.Remap)
	}
}

func TestMoveLastOntoMiddleFrame(t *testing.T) {
	lvl := levelWith(0, 500, 500, 500)
	before := lvl.Clone()
	_, err := MoveWaypointTime(lvl, first, model.LastID, model.ChangeBy(model.Time(-500)), Handles{}, Options{})
	if !errors.Is(err, ErrTimeCollision) {
		t.Fatalf("err = %v, want ErrTimeCollision", err)
	}
	if !lvl.Equal(&before) {
		t.Fatalf("rejected reorder modified the level")
	}

	selected := model.LastID
	if _, err := MoveWaypointTime(lvl, first, model.LastID, model.ChangeBy(model.Time(-600)), Handles{Selected: &selected}, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []frameMark{{0, 0}, {1, 500}, {3, 900}, {2, 1000}}
	if got := layout(lvl, first); !sameLayout(got, want) {
		t.Fatalf("layout = %v, want %v", got, want)
	}
	if selected != model.FrameID(1) {
		t.Fatalf("selected = %s, want 1", selected)
	}
}

func TestMoveLastAbsolute(t *testing.T) {
	lvl := levelWith(200, 500, 500)
	if _, err := MoveWaypointTime(lvl, first, model.LastID, model.ChangeTo(model.Time(2000)), Handles{}, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []frameMark{{0, 200}, {1, 700}, {2, 2000}}
	if got := layout(lvl, first); !sameLayout(got, want) {
		t.Fatalf("layout = %v, want %v", got, want)
	}
}

func TestMoveInitialPastFirstFramePromotes(t *testing.T) {
	lvl := levelWith(0, 500, 500)
	_, lt := lvl.Light(first)
	lt.Movement.Initial.Interpolation = model.MoveLinear
	lt.Movement.Initial.Curve = model.Bezier()
	lt.Movement.Waypoints[0].Interpolation = model.MoveEaseIn

	if _, err := MoveWaypointTime(lvl, first, model.InitialID, model.ChangeBy(model.Time(600)), Handles{}, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []frameMark{{1, 500}, {0, 600}, {2, 1000}}
	if got := layout(lvl, first); !sameLayout(got, want) {
		t.Fatalf("layout = %v, want %v", got, want)
	}
	_, lt = lvl.Light(first)
	m := lt.Movement
	// Interpolation and curves stay with positions by default.
	if m.Initial.Interpolation != model.MoveLinear || m.Initial.Curve != model.Bezier() {
		t.Fatalf("initial easing moved: %v %v", m.Initial.Interpolation, m.Initial.Curve)
	}
	if m.Waypoints[0].Interpolation != model.MoveEaseIn || m.Waypoints[0].ChangeCurve != nil {
		t.Fatalf("middle easing moved: %v %v", m.Waypoints[0].Interpolation, m.Waypoints[0].ChangeCurve)
	}
}

func TestMoveInitialKeepCurves(t *testing.T) {
	lvl := levelWith(0, 500, 500)
	_, lt := lvl.Light(first)
	lt.Movement.Initial.Interpolation = model.MoveLinear
	lt.Movement.Initial.Curve = model.Bezier()
	lt.Movement.Waypoints[0].Interpolation = model.MoveEaseIn

	if _, err := MoveWaypointTime(lvl, first, model.InitialID, model.ChangeBy(model.Time(600)), Handles{}, Options{KeepCurves: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, lt = lvl.Light(first)
	m := lt.Movement
	// The promoted frame continued the bezier curve, so it keeps drawing one.
	if m.Initial.Interpolation != model.MoveEaseIn || m.Initial.Curve != model.Bezier() {
		t.Fatalf("initial = %v %v", m.Initial.Interpolation, m.Initial.Curve)
	}
	w := m.Waypoints[0]
	if w.Interpolation != model.MoveLinear || w.ChangeCurve == nil || *w.ChangeCurve != model.Bezier() {
		t.Fatalf("demoted initial = %v %v", w.Interpolation, w.ChangeCurve)
	}
}

func TestMoveBeforeZeroIsRejected(t *testing.T) {
	lvl := levelWith(200, 500, 500)
	before := lvl.Clone()
	moves := []struct {
		id     model.WaypointID
		change model.Change[model.Time]
	}{
		{model.InitialID, model.ChangeTo(model.Time(-300))},
		{model.InitialID, model.ChangeBy(model.Time(-201))},
		{model.FrameID(0), model.ChangeBy(model.Time(-201))},
	}
	for _, mv := range moves {
		_, err := MoveWaypointTime(lvl, first, mv.id, mv.change, Handles{}, Options{})
		if !errors.Is(err, ErrNegativeTime) {
			t.Fatalf("%s: err = %v, want ErrNegativeTime", mv.id, err)
		}
		if !lvl.Equal(&before) {
			t.Fatalf("%s: rejected move modified the level", mv.id)
		}
	}

	if _, err := MoveWaypointTime(lvl, first, model.InitialID, model.ChangeTo(model.Time(0)), Handles{}, Options{}); err != nil {
		t.Fatalf("move to zero: %v", err)
	}
	want := []frameMark{{0, 0}, {1, 700}, {2, 1200}}
	if got := layout(lvl, first); !sameLayout(got, want) {
		t.Fatalf("layout = %v, want %v", got, want)
	}
}

func TestMoveWaypointTimeStale(t *testing.T) {
	lvl := levelWith(0, 500, 500)
	if _, err := MoveWaypointTime(lvl, model.LightID{Event: 3}, model.FrameID(0), model.ChangeBy(model.Time(10)), Handles{}, Options{}); !IsStale(err) {
		t.Fatalf("stale light: err = %v", err)
	}
	if _, err := MoveWaypointTime(lvl, first, model.FrameID(4), model.ChangeBy(model.Time(10)), Handles{}, Options{}); !IsStale(err) {
		t.Fatalf("stale waypoint: err = %v", err)
	}
	NewEffect(lvl, 0, model.EffectRgbSplit, 100)
	if _, err := MoveWaypointTime(lvl, model.LightID{Event: 1}, model.FrameID(0), model.ChangeBy(model.Time(10)), Handles{}, Options{}); !errors.Is(err, ErrNotLight) {
		t.Fatalf("effect: err = %v", err)
	}
}

func TestHandlesForOtherFramesStay(t *testing.T) {
	lvl := levelWith(0, 500, 500, 500)
	selected := model.FrameID(1)
	if _, err := MoveWaypointTime(lvl, first, model.FrameID(0), model.ChangeBy(model.Time(100)), Handles{Selected: &selected}, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if selected != model.FrameID(1) {
		t.Fatalf("selected = %s, want 1", selected)
	}
}

func TestReorderKeepsFramesOrdered(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, keep := range []bool{false, true} {
		lvl := levelWith(1000, 400, 300, 200, 500, 600)
		for step := 0; step < 500; step++ {
			_, lt := lvl.Light(first)
			n := lt.Movement.Len()
			var id model.WaypointID
			switch k := rng.Intn(n); k {
			case 0:
				id = model.InitialID
			case n - 1:
				id = model.LastID
			default:
				id = model.FrameID(k - 1)
			}
			delta := model.Time(rng.Intn(1201) - 600)
			before := lvl.Clone()
			markers := map[model.Coord]bool{}
			for _, f := range layout(lvl, first) {
				markers[f.x] = true
			}

			_, err := MoveWaypointTime(lvl, first, id, model.ChangeBy(delta), Handles{}, Options{KeepCurves: keep})
			if errors.Is(err, ErrTimeCollision) || errors.Is(err, ErrNegativeTime) {
				if !lvl.Equal(&before) {
					t.Fatalf("step %d: rejected reorder changed the level", step)
				}
				continue
			}
			if err != nil {
				t.Fatalf("step %d: unexpected error: %v", step, err)
			}

			got := layout(lvl, first)
			if got[0].time < 0 {
				t.Fatalf("step %d: light starts at %d", step, got[0].time)
			}
			if len(got) != n {
				t.Fatalf("step %d: frame count %d, want %d", step, len(got), n)
			}
			for i, f := range got {
				if !markers[f.x] {
					t.Fatalf("step %d: unknown frame %v", step, f.x)
				}
				delete(markers, f.x)
				if i > 0 && f.time <= got[i-1].time {
					t.Fatalf("step %d: frames out of order: %v", step, got)
				}
			}
		}
	}
}
