package cli

import (
	"lightline-cli/internal/model"
)

type eventView struct {
	Index    int                `json:"index"`
	Kind     string             `json:"kind"`
	Time     model.Time         `json:"time"`
	Duration model.Time         `json:"duration"`
	Light    *lightView         `json:"light,omitempty"`
	Effect   *model.EffectEvent `json:"effect,omitempty"`
}

type lightView struct {
	Event     int            `json:"event"`
	Time      model.Time     `json:"time"`
	Duration  model.Time     `json:"duration"`
	Danger    bool           `json:"danger"`
	Shape     model.Shape    `json:"shape"`
	FadeIn    model.Time     `json:"fadeIn"`
	FadeOut   model.Time     `json:"fadeOut"`
	Frames    int            `json:"frames"`
	Waypoints []waypointView `json:"waypoints,omitempty"`
}

type waypointView struct {
	ID model.WaypointID `json:"id"`
	// Time is absolute; Offset is relative to the light's start.
	Time          model.Time                     `json:"time"`
	Offset        model.Time                     `json:"offset"`
	Transform     model.TransformLight           `json:"transform"`
	Rotation      float64                        `json:"rotationDeg"`
	Interpolation *model.MoveInterpolation       `json:"interpolation,omitempty"`
	Curve         *model.TrajectoryInterpolation `json:"curve,omitempty"`
}

func newEventView(i int, ev *model.TimedEvent) eventView {
	out := eventView{Index: i, Time: ev.Time, Duration: ev.Duration()}
	switch {
	case ev.Event.Light != nil:
		lv := newLightView(i, ev, ev.Event.Light, false)
		out.Kind = "light"
		out.Light = &lv
	case ev.Event.Effect != nil:
		eff := *ev.Event.Effect
		out.Kind = string(eff.Kind)
		out.Effect = &eff
	}
	return out
}

func newLightView(i int, ev *model.TimedEvent, lt *model.LightEvent, withWaypoints bool) lightView {
	m := &lt.Movement
	out := lightView{
		Event:    i,
		Time:     ev.Time,
		Duration: m.TotalDuration(),
		Danger:   lt.Danger,
		Shape:    lt.Shape,
		FadeIn:   m.FadeIn(),
		FadeOut:  m.FadeOut(),
		Frames:   m.Len(),
	}
	if withWaypoints {
		out.Waypoints = waypointViews(ev, lt)
	}
	return out
}

func waypointViews(ev *model.TimedEvent, lt *model.LightEvent) []waypointView {
	frames := lt.Movement.TimedFrames()
	out := make([]waypointView, 0, len(frames))
	for _, f := range frames {
		wv := waypointView{
			ID:        f.ID,
			Time:      ev.Time + f.Time,
			Offset:    f.Time,
			Transform: f.Transform,
			Rotation:  f.Transform.Rotation.Degrees(),
		}
		if ease, curve, ok := lt.Movement.Interpolation(f.ID); ok {
			wv.Interpolation = &ease
			wv.Curve = curve
		}
		out = append(out, wv)
	}
	return out
}

func eventViews(lvl *model.Level) []eventView {
	out := make([]eventView, 0, len(lvl.Events))
	for i := range lvl.Events {
		out = append(out, newEventView(i, &lvl.Events[i]))
	}
	return out
}

func lightViews(lvl *model.Level) []lightView {
	out := []lightView{}
	for i := range lvl.Events {
		ev := &lvl.Events[i]
		if ev.Event.Light != nil {
			out = append(out, newLightView(i, ev, ev.Event.Light, false))
		}
	}
	return out
}

// lightOrGone renders a light after an edit; deletions leave nothing to show.
func lightOrGone(id model.LightID) func(*model.Level) any {
	return func(lvl *model.Level) any {
		ev, lt := lvl.Light(id)
		if lt == nil {
			return nil
		}
		return newLightView(id.Event, ev, lt, true)
	}
}
