package mutate

import (
	"errors"
	"math"
	"testing"

	"lightline-cli/internal/model"
)

func TestPlaceLight_CentersFirstFrameOnCursor(t *testing.T) {
	lvl := model.NewLevel(120)
	id := PlaceLight(&lvl, 2000, model.Circle(2), true, pos(4))
	if id.Event != 0 {
		t.Fatalf("expected event 0; got %d", id.Event)
	}
	ev, lt := lvl.Light(id)
	if ev.Time != 1500 {
		t.Fatalf("expected event time 1500 (one beat before); got %d", ev.Time)
	}
	if !lt.Danger || lt.Shape != model.Circle(2) {
		t.Fatalf("unexpected light: %+v", lt)
	}
	want := []frameMark{{4, 1500}, {4, 2000}, {4, 2500}}
	if got := layout(&lvl, id); !sameLayout(got, want) {
		t.Fatalf("layout = %v, want %v", got, want)
	}
	if lt.Movement.Initial.Transform.Scale != 0 || lt.Movement.Last.Scale != 0 {
		t.Fatalf("expected light to fade from and to scale 0")
	}
}

func TestChangeFadeIn_KeepsFirstFrame(t *testing.T) {
	lvl := levelWith(1000, 500, 500)
	if err := ChangeFadeIn(lvl, first, model.ChangeBy(model.Time(200))); err != nil {
		t.Fatalf("ChangeFadeIn error: %v", err)
	}
	want := []frameMark{{0, 800}, {1, 1500}, {2, 2000}}
	if got := layout(lvl, first); !sameLayout(got, want) {
		t.Fatalf("layout = %v, want %v", got, want)
	}

	if err := ChangeFadeIn(lvl, first, model.ChangeTo(model.Time(-100))); err != nil {
		t.Fatalf("ChangeFadeIn error: %v", err)
	}
	if lvl.Events[0].Time != 1500 {
		t.Fatalf("expected fade clamped to 0 with event at 1500; got %d", lvl.Events[0].Time)
	}
}

func TestPlaceLight_NearZeroStartsAtZero(t *testing.T) {
	lvl := model.NewLevel(120)
	id := PlaceLight(&lvl, 200, model.Circle(1), false, pos(1))
	want := []frameMark{{1, 0}, {1, 500}, {1, 1000}}
	if got := layout(&lvl, id); !sameLayout(got, want) {
		t.Fatalf("layout = %v, want %v", got, want)
	}

	id = PlaceLight(&lvl, 0, model.Circle(1), false, pos(1))
	if ev, _ := lvl.Light(id); ev.Time != 0 {
		t.Fatalf("expected light at cursor 0 to start at 0; got %d", ev.Time)
	}
}

func TestEditsBeforeZeroAreRejected(t *testing.T) {
	lvl := levelWith(300, 500, 500)
	before := lvl.Clone()
	if err := MoveLight(lvl, first, model.ChangeBy(model.Time(-301)), model.ChangeBy(model.V2(0, 0))); !errors.Is(err, ErrNegativeTime) {
		t.Fatalf("MoveLight: expected ErrNegativeTime; got %v", err)
	}
	if err := ChangeFadeIn(lvl, first, model.ChangeBy(model.Time(301))); !errors.Is(err, ErrNegativeTime) {
		t.Fatalf("ChangeFadeIn: expected ErrNegativeTime; got %v", err)
	}
	if _, err := InsertWaypoint(lvl, first, -1, pos(9)); !errors.Is(err, ErrNegativeTime) {
		t.Fatalf("InsertWaypoint: expected ErrNegativeTime; got %v", err)
	}
	if !lvl.Equal(&before) {
		t.Fatalf("rejected edits modified the level")
	}

	if err := ChangeFadeIn(lvl, first, model.ChangeBy(model.Time(300))); err != nil {
		t.Fatalf("ChangeFadeIn to zero: %v", err)
	}
	if lvl.Events[0].Time != 0 {
		t.Fatalf("expected light to start at 0; got %d", lvl.Events[0].Time)
	}
}

func TestChangeFadeOut_Clamped(t *testing.T) {
	lvl := levelWith(0, 500, 300)
	if err := ChangeFadeOut(lvl, first, model.ChangeTo(2*model.MaxFadeTime)); err != nil {
		t.Fatalf("ChangeFadeOut error: %v", err)
	}
	_, lt := lvl.Light(first)
	if got := lt.Movement.FadeOut(); got != model.MaxFadeTime {
		t.Fatalf("expected fade out %d; got %d", model.MaxFadeTime, got)
	}
	if lt.Movement.FadeIn() != 500 {
		t.Fatalf("expected fade in untouched; got %d", lt.Movement.FadeIn())
	}
}

func TestMoveLight_TranslatesEveryFrame(t *testing.T) {
	lvl := levelWith(1000, 500, 500)
	if err := MoveLight(lvl, first, model.ChangeBy(model.Time(100)), model.ChangeTo(model.V2(10, 5))); err != nil {
		t.Fatalf("MoveLight error: %v", err)
	}
	ev, lt := lvl.Light(first)
	if ev.Time != 1100 {
		t.Fatalf("expected time 1100; got %d", ev.Time)
	}
	got := []model.Vec2{
		lt.Movement.Initial.Transform.Translation,
		lt.Movement.Waypoints[0].Transform.Translation,
		lt.Movement.Last.Translation,
	}
	want := []model.Vec2{model.V2(10, 5), model.V2(11, 5), model.V2(12, 5)}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("frame %d: expected %v; got %v", i, want[i], got[i])
		}
	}
}

func TestDeleteEvent_SwapsLast(t *testing.T) {
	lvl := levelWith(0, 500, 500)
	NewEffect(lvl, 10, model.EffectPaletteSwap, 100)
	NewEffect(lvl, 20, model.EffectRgbSplit, 100)
	if err := DeleteEvent(lvl, 0); err != nil {
		t.Fatalf("DeleteEvent error: %v", err)
	}
	if len(lvl.Events) != 2 {
		t.Fatalf("expected 2 events; got %d", len(lvl.Events))
	}
	if fx := lvl.Events[0].Event.Effect; fx == nil || fx.Kind != model.EffectRgbSplit {
		t.Fatalf("expected the last event to take index 0; got %+v", lvl.Events[0])
	}
	if err := DeleteEvent(lvl, 2); !IsStale(err) {
		t.Fatalf("expected stale error; got %v", err)
	}
}

func TestLightEditsRejectEffects(t *testing.T) {
	lvl := model.NewLevel(120)
	i := NewEffect(&lvl, 0, model.EffectCameraShake, 500)
	id := model.LightID{Event: i}
	if err := ToggleDanger(&lvl, id); !errors.Is(err, ErrNotLight) {
		t.Fatalf("expected ErrNotLight; got %v", err)
	}
	if err := ChangeShape(&lvl, id, model.Line(1)); !errors.Is(err, ErrNotLight) {
		t.Fatalf("expected ErrNotLight; got %v", err)
	}
}

func TestToggleDangerAndShape(t *testing.T) {
	lvl := levelWith(0, 500, 500)
	if err := ToggleDanger(lvl, first); err != nil {
		t.Fatalf("ToggleDanger error: %v", err)
	}
	if err := ChangeShape(lvl, first, model.Rectangle(2, 3)); err != nil {
		t.Fatalf("ChangeShape error: %v", err)
	}
	_, lt := lvl.Light(first)
	if !lt.Danger || lt.Shape != model.Rectangle(2, 3) {
		t.Fatalf("unexpected light: %+v", lt)
	}
}

func TestRotateAndFlip(t *testing.T) {
	lvl := levelWith(0, 500, 500)
	if err := RotateLightAround(lvl, first, model.V2(0, 0), model.Degrees(90)); err != nil {
		t.Fatalf("RotateLightAround error: %v", err)
	}
	_, lt := lvl.Light(first)
	p := lt.Movement.Waypoints[0].Transform
	if math.Abs(float64(p.Translation.X)) > 1e-9 || math.Abs(float64(p.Translation.Y)-1) > 1e-9 {
		t.Fatalf("expected (0, 1); got %v", p.Translation)
	}
	if math.Abs(p.Rotation.Degrees()-90) > 1e-9 {
		t.Fatalf("expected rotation 90; got %v", p.Rotation.Degrees())
	}

	lvl = levelWith(0, 500, 500)
	if err := FlipHorizontal(lvl, first, model.V2(1, 0)); err != nil {
		t.Fatalf("FlipHorizontal error: %v", err)
	}
	if err := FlipVertical(lvl, first, model.V2(0, 2)); err != nil {
		t.Fatalf("FlipVertical error: %v", err)
	}
	_, lt = lvl.Light(first)
	if got := lt.Movement.Last.Translation; got != model.V2(0, 4) {
		t.Fatalf("expected (0, 4); got %v", got)
	}
}
