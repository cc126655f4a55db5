package mutate

import (
	"slices"

	"lightline-cli/internal/model"
)

type InsertResult struct {
	ID model.WaypointID
}

// InsertWaypoint adds a frame at absolute time at. A frame before the initial
// one becomes the new initial frame and one after the last becomes the new last
// frame; the displaced sentinel turns into a middle frame. Every other frame
// keeps its absolute time.
func InsertWaypoint(lvl *model.Level, light model.LightID, at model.Time, tr model.TransformLight) (InsertResult, error) {
	ev, lt, err := lightAt(lvl, light)
	if err != nil {
		return InsertResult{}, err
	}
	if at < 0 {
		return InsertResult{}, ErrNegativeTime
	}
	m := &lt.Movement
	frames := m.TimedFrames()
	for _, f := range frames {
		if ev.Time+f.Time == at {
			return InsertResult{}, ErrTimeCollision
		}
	}

	first := ev.Time
	end := ev.Time + frames[len(frames)-1].Time
	switch {
	case at < first:
		old := m.Initial
		m.Initial = model.WaypointInitial{
			LerpTime:  first - at,
			Transform: tr,
		}
		m.Waypoints = slices.Insert(m.Waypoints, 0, model.Waypoint{
			LerpTime:      old.LerpTime,
			Interpolation: old.Interpolation,
			ChangeCurve:   model.CurvePtr(old.Curve),
			Transform:     old.Transform,
		})
		ev.Time = at
		return InsertResult{ID: model.InitialID}, nil

	case at > end:
		m.Waypoints = append(m.Waypoints, model.NewWaypoint(at-end, m.Last))
		m.Last = tr
		return InsertResult{ID: model.LastID}, nil
	}

	// frames[k] is the last frame before at.
	k := 0
	for k+1 < len(frames) && ev.Time+frames[k+1].Time < at {
		k++
	}
	next := ev.Time + frames[k+1].Time
	w := model.NewWaypoint(next-at, tr)
	m.Waypoints = slices.Insert(m.Waypoints, k, w)
	if k == 0 {
		m.Initial.LerpTime -= w.LerpTime
	} else {
		m.Waypoints[k-1].LerpTime -= w.LerpTime
	}
	return InsertResult{ID: model.FrameID(k)}, nil
}

type DeleteResult struct {
	// EventRemoved is set when the light had no middle frame left and the
	// whole event was deleted. Event indices may have shifted.
	EventRemoved bool
}

// DeleteWaypoint removes one frame. Removing a sentinel promotes its neighbour;
// removing a middle frame hands its duration to the frame before it so that no
// other frame moves in time.
func DeleteWaypoint(lvl *model.Level, light model.LightID, wp model.WaypointID) (DeleteResult, error) {
	ev, lt, err := lightAt(lvl, light)
	if err != nil {
		return DeleteResult{}, err
	}
	m := &lt.Movement
	switch wp.Kind {
	case model.WaypointInitialKind:
		if len(m.Waypoints) == 0 {
			lvl.SwapRemove(light.Event)
			return DeleteResult{EventRemoved: true}, nil
		}
		frame := m.Waypoints[0]
		m.Waypoints = slices.Delete(m.Waypoints, 0, 1)
		ev.Time += m.Initial.LerpTime
		curve := model.TrajectoryInterpolation{}
		if frame.ChangeCurve != nil {
			curve = *frame.ChangeCurve
		}
		m.Initial = model.WaypointInitial{
			LerpTime:      frame.LerpTime,
			Interpolation: frame.Interpolation,
			Curve:         curve,
			Transform:     frame.Transform,
		}

	case model.WaypointLastKind:
		n := len(m.Waypoints)
		if n == 0 {
			lvl.SwapRemove(light.Event)
			return DeleteResult{EventRemoved: true}, nil
		}
		m.Last = m.Waypoints[n-1].Transform
		m.Waypoints = m.Waypoints[:n-1]

	default:
		i := wp.Index
		if i < 0 || i >= len(m.Waypoints) {
			return DeleteResult{}, waypointNotFound(wp)
		}
		lerp := m.Waypoints[i].LerpTime
		m.Waypoints = slices.Delete(m.Waypoints, i, i+1)
		if i == 0 {
			m.Initial.LerpTime += lerp
		} else {
			m.Waypoints[i-1].LerpTime += lerp
		}
	}
	return DeleteResult{}, nil
}

func frameAt(lvl *model.Level, light model.LightID, wp model.WaypointID) (*model.TransformLight, error) {
	_, lt, err := lightAt(lvl, light)
	if err != nil {
		return nil, err
	}
	frame := lt.Movement.FrameMut(wp)
	if frame == nil {
		return nil, waypointNotFound(wp)
	}
	return frame, nil
}

// MoveWaypoint changes the position of one frame.
func MoveWaypoint(lvl *model.Level, light model.LightID, wp model.WaypointID, change model.Change[model.Vec2]) error {
	frame, err := frameAt(lvl, light, wp)
	if err != nil {
		return err
	}
	frame.Translation = change.Apply(frame.Translation)
	return nil
}

func RotateWaypoint(lvl *model.Level, light model.LightID, wp model.WaypointID, change model.Change[model.Angle]) error {
	frame, err := frameAt(lvl, light, wp)
	if err != nil {
		return err
	}
	frame.Rotation = change.Apply(frame.Rotation)
	return nil
}

const MaxWaypointScale model.Coord = 10

// ScaleWaypoint clamps the result to [0, MaxWaypointScale].
func ScaleWaypoint(lvl *model.Level, light model.LightID, wp model.WaypointID, change model.Change[model.Coord]) error {
	frame, err := frameAt(lvl, light, wp)
	if err != nil {
		return err
	}
	frame.Scale = change.Apply(frame.Scale).Clamp(0, MaxWaypointScale)
	return nil
}

// ChangeHollow clamps the result to [-1, 1].
func ChangeHollow(lvl *model.Level, light model.LightID, wp model.WaypointID, change model.Change[model.Coord]) error {
	frame, err := frameAt(lvl, light, wp)
	if err != nil {
		return err
	}
	frame.Hollow = change.Apply(frame.Hollow).Clamp(-1, 1)
	return nil
}

// SetWaypointInterpolation sets the easing of a frame's outgoing segment.
// The last frame has none, so it is left alone.
func SetWaypointInterpolation(lvl *model.Level, light model.LightID, wp model.WaypointID, ease model.MoveInterpolation) error {
	_, lt, err := lightAt(lvl, light)
	if err != nil {
		return err
	}
	m := &lt.Movement
	switch wp.Kind {
	case model.WaypointInitialKind:
		m.Initial.Interpolation = ease
	case model.WaypointFrameKind:
		if wp.Index < 0 || wp.Index >= len(m.Waypoints) {
			return waypointNotFound(wp)
		}
		m.Waypoints[wp.Index].Interpolation = ease
	}
	return nil
}

// SetWaypointCurve sets the trajectory starting at a frame. A nil curve on a
// middle frame continues the previous curve; on the initial frame it resets to
// a straight line.
func SetWaypointCurve(lvl *model.Level, light model.LightID, wp model.WaypointID, curve *model.TrajectoryInterpolation) error {
	_, lt, err := lightAt(lvl, light)
	if err != nil {
		return err
	}
	m := &lt.Movement
	switch wp.Kind {
	case model.WaypointInitialKind:
		m.Initial.Curve = model.TrajectoryInterpolation{}
		if curve != nil {
			m.Initial.Curve = *curve
		}
	case model.WaypointFrameKind:
		if wp.Index < 0 || wp.Index >= len(m.Waypoints) {
			return waypointNotFound(wp)
		}
		if curve != nil {
			curve = model.CurvePtr(*curve)
		}
		m.Waypoints[wp.Index].ChangeCurve = curve
	}
	return nil
}
