package mutate

import (
	"lightline-cli/internal/model"
)

// PlaceLight adds a light whose first middle frame lands on at. The fade in and
// out last one beat at that time. Closer to zero than one beat, the light is
// pushed later so it starts at zero.
func PlaceLight(lvl *model.Level, at model.Time, shape model.Shape, danger bool, tr model.TransformLight) model.LightID {
	fade := lvl.Timing.BeatDuration(at)
	m := model.NewMovement(fade, tr)
	lvl.Events = append(lvl.Events, model.TimedEvent{
		Time: max(0, at-m.FadeIn()),
		Event: model.Event{Light: &model.LightEvent{
			Danger:   danger,
			Shape:    shape,
			Movement: m,
		}},
	})
	return model.LightID{Event: len(lvl.Events) - 1}
}

// DeleteEvent swap-removes an event: the last event takes index i.
func DeleteEvent(lvl *model.Level, i int) error {
	if !lvl.SwapRemove(i) {
		return eventNotFound(i)
	}
	return nil
}

// MoveLight shifts a light in time and translates every frame by the same offset.
// An absolute position targets the initial frame.
func MoveLight(lvl *model.Level, light model.LightID, time model.Change[model.Time], pos model.Change[model.Vec2]) error {
	ev, lt, err := lightAt(lvl, light)
	if err != nil {
		return err
	}
	start := time.Apply(ev.Time)
	if start < 0 {
		return ErrNegativeTime
	}
	ev.Time = start
	delta := pos.Delta(lt.Movement.Initial.Transform.Translation)
	lt.Movement.ModifyTransforms(func(tr *model.TransformLight) {
		tr.Translation = tr.Translation.Add(delta)
	})
	return nil
}

// ChangeFadeIn resizes the fade in while keeping the first middle frame in place.
func ChangeFadeIn(lvl *model.Level, light model.LightID, change model.Change[model.Time]) error {
	ev, lt, err := lightAt(lvl, light)
	if err != nil {
		return err
	}
	m := &lt.Movement
	from := m.FadeIn()
	to := min(max(0, from+change.Delta(from)), model.MaxFadeTime)
	if ev.Time-(to-from) < 0 {
		return ErrNegativeTime
	}
	m.SetFadeIn(to)
	ev.Time -= to - from
	return nil
}

func ChangeFadeOut(lvl *model.Level, light model.LightID, change model.Change[model.Time]) error {
	_, lt, err := lightAt(lvl, light)
	if err != nil {
		return err
	}
	m := &lt.Movement
	m.SetFadeOut(change.Apply(m.FadeOut()))
	return nil
}

func ToggleDanger(lvl *model.Level, light model.LightID) error {
	_, lt, err := lightAt(lvl, light)
	if err != nil {
		return err
	}
	lt.Danger = !lt.Danger
	return nil
}

func ChangeShape(lvl *model.Level, light model.LightID, shape model.Shape) error {
	_, lt, err := lightAt(lvl, light)
	if err != nil {
		return err
	}
	lt.Shape = shape
	return nil
}

// ModifyMovement applies f to the light's movement as a whole.
func ModifyMovement(lvl *model.Level, light model.LightID, f func(*model.Movement)) error {
	_, lt, err := lightAt(lvl, light)
	if err != nil {
		return err
	}
	f(&lt.Movement)
	return nil
}

func RotateLightAround(lvl *model.Level, light model.LightID, anchor model.Vec2, delta model.Angle) error {
	return ModifyMovement(lvl, light, func(m *model.Movement) { m.RotateAround(anchor, delta) })
}

func FlipHorizontal(lvl *model.Level, light model.LightID, anchor model.Vec2) error {
	return ModifyMovement(lvl, light, func(m *model.Movement) { m.FlipHorizontal(anchor) })
}

func FlipVertical(lvl *model.Level, light model.LightID, anchor model.Vec2) error {
	return ModifyMovement(lvl, light, func(m *model.Movement) { m.FlipVertical(anchor) })
}
