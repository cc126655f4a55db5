package mutate

import (
	"sort"

	"lightline-cli/internal/model"
)

// Handles are outside references to waypoints of the light being reordered.
// Each non-nil handle is re-pointed at its frame's new id.
type Handles struct {
	Selected *model.WaypointID
	Drag     *model.WaypointID
}

type Options struct {
	// KeepCurves moves each frame's interpolation and curve together with the
	// frame. Otherwise they stay attached to positions in the movement.
	KeepCurves bool
}

type ReorderResult struct {
	Changed bool
	// Remap maps every old waypoint id to its id after the reorder.
	Remap map[model.WaypointID]model.WaypointID
}

type timedFrame struct {
	id    model.WaypointID
	tr    model.TransformLight
	time  model.Time
	ease  model.MoveInterpolation
	curve *model.TrajectoryInterpolation
	// effective is the curve the frame's outgoing segment is drawn with.
	effective model.TrajectoryInterpolation
}

func absoluteFrames(ev *model.TimedEvent, m *model.Movement) []timedFrame {
	frames := make([]timedFrame, 0, m.Len())
	effective := m.Initial.Curve
	for f := range m.TimedTransforms() {
		tf := timedFrame{id: f.ID, tr: f.Transform, time: ev.Time + f.Time}
		switch f.ID.Kind {
		case model.WaypointInitialKind:
			tf.ease = m.Initial.Interpolation
			tf.curve = model.CurvePtr(m.Initial.Curve)
		case model.WaypointFrameKind:
			w := m.Waypoints[f.ID.Index]
			tf.ease = w.Interpolation
			if w.ChangeCurve != nil {
				tf.curve = model.CurvePtr(*w.ChangeCurve)
				effective = *w.ChangeCurve
			}
		}
		tf.effective = effective
		frames = append(frames, tf)
	}
	return frames
}

// MoveWaypointTime changes the absolute time of one frame and rebuilds the
// movement so frames stay strictly ordered in time. Moving a middle frame
// carries the initial and last frames along at their fade distances.
//
// The reorder is rejected with ErrTimeCollision when two frames would share a
// time, and with ErrNegativeTime when the light would start before zero. The
// level is left untouched in both cases.
func MoveWaypointTime(lvl *model.Level, light model.LightID, wp model.WaypointID, change model.Change[model.Time], handles Handles, opts Options) (ReorderResult, error) {
	ev, lt, err := lightAt(lvl, light)
	if err != nil {
		return ReorderResult{}, err
	}
	m := &lt.Movement
	if m.FrameMut(wp) == nil {
		return ReorderResult{}, waypointNotFound(wp)
	}

	fadeIn, fadeOut := m.FadeIn(), m.FadeOut()
	frames := absoluteFrames(ev, m)
	for i := range frames {
		if frames[i].id == wp {
			frames[i].time = change.Apply(frames[i].time)
		}
	}
	if wp.IsFrame() {
		n := len(frames)
		frames[0].time = frames[1].time - fadeIn
		frames[n-1].time = frames[n-2].time + fadeOut
	}

	sort.SliceStable(frames, func(i, j int) bool { return frames[i].time < frames[j].time })
	for i := 1; i < len(frames); i++ {
		if frames[i].time == frames[i-1].time {
			return ReorderResult{}, ErrTimeCollision
		}
	}
	if frames[0].time < 0 {
		return ReorderResult{}, ErrNegativeTime
	}

	fixed := m.Clone()
	remap := make(map[model.WaypointID]model.WaypointID, len(frames))
	last := len(frames) - 1
	future := frames[last].time
	fixed.Last = frames[last].tr
	remap[frames[last].id] = model.LastID
	startTime := ev.Time

	for k := last - 1; k >= 0; k-- {
		f := frames[k]
		lerp := future - f.time
		if k == 0 {
			fixed.Initial.Transform = f.tr
			fixed.Initial.LerpTime = lerp
			if opts.KeepCurves {
				fixed.Initial.Interpolation = f.ease
				fixed.Initial.Curve = f.effective
			}
			startTime = f.time
			remap[f.id] = model.InitialID
		} else {
			w := &fixed.Waypoints[k-1]
			w.Transform = f.tr
			w.LerpTime = lerp
			if opts.KeepCurves {
				w.Interpolation = f.ease
				w.ChangeCurve = f.curve
			}
			remap[f.id] = model.FrameID(k - 1)
		}
		future = f.time
	}

	changed := startTime != ev.Time || !fixed.Equal(m)
	ev.Time = startTime
	lt.Movement = fixed

	for _, h := range []*model.WaypointID{handles.Selected, handles.Drag} {
		if h == nil {
			continue
		}
		if id, ok := remap[*h]; ok {
			*h = id
		}
	}
	return ReorderResult{Changed: changed, Remap: remap}, nil
}
