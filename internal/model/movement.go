package model

import (
	"iter"
	"math"
	"slices"
)

// MaxFadeTime bounds fade-in and fade-out durations.
const MaxFadeTime = TimeInFloatTime * 50

// Movement is the keyframe timeline of one light. LerpTime values are relative to
// the next frame in time; absolute times are derived by walking the chain.
type Movement struct {
	Initial   WaypointInitial `json:"initial"`
	Waypoints []Waypoint      `json:"waypoints"`
	Last      TransformLight  `json:"last"`
}

// TimedFrame is a keyframe together with its start time relative to the movement.
type TimedFrame struct {
	ID        WaypointID     `json:"id"`
	Transform TransformLight `json:"transform"`
	Time      Time           `json:"time"`
}

// NewMovement fades in from scale zero to transform, and back out to zero.
func NewMovement(fadeTime Time, transform TransformLight) Movement {
	faded := transform
	faded.Scale = 0
	return Movement{
		Initial: WaypointInitial{
			LerpTime:  fadeTime,
			Transform: faded,
		},
		Waypoints: []Waypoint{NewWaypoint(fadeTime, transform)},
		Last:      faded,
	}
}

func DefaultMovement() Movement {
	return NewMovement(TimeInFloatTime/2, IdentityTransform())
}

// Len is the number of keyframes including initial and last.
func (m *Movement) Len() int { return len(m.Waypoints) + 2 }

func (m *Movement) Frame(id WaypointID) (TransformLight, bool) {
	p := m.FrameMut(id)
	if p == nil {
		return TransformLight{}, false
	}
	return *p, true
}

// FrameMut returns nil for a frame index that does not resolve.
func (m *Movement) FrameMut(id WaypointID) *TransformLight {
	switch id.Kind {
	case WaypointInitialKind:
		return &m.Initial.Transform
	case WaypointLastKind:
		return &m.Last
	default:
		if id.Index < 0 || id.Index >= len(m.Waypoints) {
			return nil
		}
		return &m.Waypoints[id.Index].Transform
	}
}

// Interpolation returns the outgoing interpolation and curve of a frame.
// The curve is nil for a middle frame that continues the previous curve.
// The last frame has no outgoing segment.
func (m *Movement) Interpolation(id WaypointID) (MoveInterpolation, *TrajectoryInterpolation, bool) {
	switch id.Kind {
	case WaypointInitialKind:
		c := m.Initial.Curve
		return m.Initial.Interpolation, &c, true
	case WaypointFrameKind:
		if id.Index < 0 || id.Index >= len(m.Waypoints) {
			return 0, nil, false
		}
		w := m.Waypoints[id.Index]
		return w.Interpolation, w.ChangeCurve, true
	}
	return 0, nil, false
}

// Transforms yields every keyframe transform in order.
func (m *Movement) Transforms() iter.Seq[TransformLight] {
	return func(yield func(TransformLight) bool) {
		if !yield(m.Initial.Transform) {
			return
		}
		for _, w := range m.Waypoints {
			if !yield(w.Transform) {
				return
			}
		}
		yield(m.Last)
	}
}

// TimedTransforms yields every keyframe with its start time, in time order.
func (m *Movement) TimedTransforms() iter.Seq[TimedFrame] {
	return func(yield func(TimedFrame) bool) {
		t := Time(0)
		if !yield(TimedFrame{ID: InitialID, Transform: m.Initial.Transform, Time: t}) {
			return
		}
		t += m.Initial.LerpTime
		for i, w := range m.Waypoints {
			if !yield(TimedFrame{ID: FrameID(i), Transform: w.Transform, Time: t}) {
				return
			}
			t += w.LerpTime
		}
		yield(TimedFrame{ID: LastID, Transform: m.Last, Time: t})
	}
}

func (m *Movement) TimedFrames() []TimedFrame {
	return slices.Collect(m.TimedTransforms())
}

// Time returns the start time of a frame relative to the movement start.
func (m *Movement) Time(id WaypointID) (Time, bool) {
	n := 0
	switch id.Kind {
	case WaypointFrameKind:
		if id.Index < 0 || id.Index >= len(m.Waypoints) {
			return 0, false
		}
		n = id.Index + 1
	case WaypointLastKind:
		n = len(m.Waypoints) + 1
	}
	i := 0
	for f := range m.TimedTransforms() {
		if i == n {
			return f.Time, true
		}
		i++
	}
	return 0, false
}

// ClosestWaypoint finds the frame temporally closest to t, in the past or future.
func (m *Movement) ClosestWaypoint(t Time) TimedFrame {
	var best TimedFrame
	bestDist := Time(math.MaxInt64)
	for f := range m.TimedTransforms() {
		if d := (f.Time - t).Abs(); d < bestDist {
			best, bestDist = f, d
		}
	}
	return best
}

// Duration is the span between the first and the last middle frame.
func (m *Movement) Duration() Time {
	var d Time
	for i := 0; i+1 < len(m.Waypoints); i++ {
		d += m.Waypoints[i].LerpTime
	}
	return d
}

// TotalDuration is the span from initial to last.
func (m *Movement) TotalDuration() Time {
	d := m.Initial.LerpTime
	for _, w := range m.Waypoints {
		d += w.LerpTime
	}
	return d
}

// FadeIn is the transition from the initial frame to the first middle frame.
func (m *Movement) FadeIn() Time { return m.Initial.LerpTime }

// FadeOut is the transition into the last frame.
func (m *Movement) FadeOut() Time {
	if n := len(m.Waypoints); n > 0 {
		return m.Waypoints[n-1].LerpTime
	}
	return m.Initial.LerpTime
}

func (m *Movement) SetFadeIn(target Time) {
	m.Initial.LerpTime = clampTime(target, 0, MaxFadeTime)
}

func (m *Movement) SetFadeOut(target Time) {
	target = clampTime(target, 0, MaxFadeTime)
	if n := len(m.Waypoints); n > 0 {
		m.Waypoints[n-1].LerpTime = target
		return
	}
	m.Initial.LerpTime = target
}

func (m *Movement) ModifyTransforms(f func(*TransformLight)) {
	f(&m.Initial.Transform)
	for i := range m.Waypoints {
		f(&m.Waypoints[i].Transform)
	}
	f(&m.Last)
}

func (m *Movement) RotateAround(anchor Vec2, delta Angle) {
	m.ModifyTransforms(func(tr *TransformLight) {
		tr.Translation = anchor.Add(tr.Translation.Sub(anchor).Rotate(delta))
		tr.Rotation += delta
	})
}

func (m *Movement) FlipHorizontal(anchor Vec2) {
	m.ModifyTransforms(func(tr *TransformLight) {
		tr.Translation = anchor.Add(tr.Translation.Sub(anchor).Mul(V2(-1, 1)))
		tr.Rotation = Degrees(180) - tr.Rotation
	})
}

func (m *Movement) FlipVertical(anchor Vec2) {
	m.ModifyTransforms(func(tr *TransformLight) {
		tr.Translation = anchor.Add(tr.Translation.Sub(anchor).Mul(V2(1, -1)))
		tr.Rotation = -tr.Rotation
	})
}

func (m Movement) Clone() Movement {
	out := m
	if m.Waypoints != nil {
		out.Waypoints = make([]Waypoint, len(m.Waypoints))
		for i, w := range m.Waypoints {
			if w.ChangeCurve != nil {
				c := *w.ChangeCurve
				w.ChangeCurve = &c
			}
			out.Waypoints[i] = w
		}
	}
	return out
}
