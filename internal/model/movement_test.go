package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeFrames() Movement {
	return Movement{
		Initial: WaypointInitial{LerpTime: 500, Transform: ScaleTransform(0)},
		Waypoints: []Waypoint{
			NewWaypoint(300, TransformLight{Translation: V2(1, 0), Scale: 1, Hollow: -1}),
			NewWaypoint(200, TransformLight{Translation: V2(2, 0), Scale: 1, Hollow: -1}),
			NewWaypoint(400, TransformLight{Translation: V2(3, 0), Scale: 1, Hollow: -1}),
		},
		Last: ScaleTransform(0),
	}
}

func TestDefaultMovement(t *testing.T) {
	m := DefaultMovement()
	require.Len(t, m.Waypoints, 1)
	assert.Equal(t, Time(500), m.FadeIn())
	assert.Equal(t, Time(500), m.FadeOut())
	assert.Equal(t, Coord(0), m.Initial.Transform.Scale)
	assert.Equal(t, Coord(1), m.Waypoints[0].Transform.Scale)
	assert.Equal(t, Coord(0), m.Last.Scale)
	assert.Equal(t, Time(1000), m.TotalDuration())
}

func TestTimedTransforms(t *testing.T) {
	m := threeFrames()
	var ids []WaypointID
	var times []Time
	for f := range m.TimedTransforms() {
		ids = append(ids, f.ID)
		times = append(times, f.Time)
	}
	assert.Equal(t, []WaypointID{InitialID, FrameID(0), FrameID(1), FrameID(2), LastID}, ids)
	assert.Equal(t, []Time{0, 500, 800, 1000, 1400}, times)

	// The sequence is restartable and can be abandoned early.
	n := 0
	for range m.TimedTransforms() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
	assert.Len(t, m.TimedFrames(), 5)
}

func TestTimeOfFrame(t *testing.T) {
	m := threeFrames()
	for id, want := range map[WaypointID]Time{InitialID: 0, FrameID(1): 800, LastID: 1400} {
		got, ok := m.Time(id)
		assert.True(t, ok)
		assert.Equal(t, want, got, id.String())
	}
	_, ok := m.Time(FrameID(3))
	assert.False(t, ok)
}

func TestDurations(t *testing.T) {
	m := threeFrames()
	assert.Equal(t, Time(500), m.Duration())
	assert.Equal(t, Time(1400), m.TotalDuration())
	assert.Equal(t, Time(500), m.FadeIn())
	assert.Equal(t, Time(400), m.FadeOut())
}

func TestSetFadeClamps(t *testing.T) {
	m := threeFrames()
	m.SetFadeIn(-5)
	assert.Equal(t, Time(0), m.Initial.LerpTime)
	m.SetFadeOut(MaxFadeTime + 1)
	assert.Equal(t, MaxFadeTime, m.Waypoints[2].LerpTime)

	empty := Movement{Initial: WaypointInitial{LerpTime: 100}}
	empty.SetFadeOut(700)
	assert.Equal(t, Time(700), empty.Initial.LerpTime)
	assert.Equal(t, Time(700), empty.FadeIn())
}

func TestClosestWaypoint(t *testing.T) {
	m := threeFrames()
	assert.Equal(t, FrameID(1), m.ClosestWaypoint(850).ID)
	assert.Equal(t, InitialID, m.ClosestWaypoint(-100).ID)
	assert.Equal(t, LastID, m.ClosestWaypoint(5000).ID)
}

func TestFrameMutStale(t *testing.T) {
	m := threeFrames()
	assert.Nil(t, m.FrameMut(FrameID(3)))
	assert.Nil(t, m.FrameMut(FrameID(-1)))
	p := m.FrameMut(FrameID(2))
	require.NotNil(t, p)
	p.Scale = 5
	assert.Equal(t, Coord(5), m.Waypoints[2].Transform.Scale)
}

func TestInterpolationLookup(t *testing.T) {
	m := threeFrames()
	m.Initial.Curve = Spline(0.3)
	m.Waypoints[1].ChangeCurve = CurvePtr(Bezier())
	m.Waypoints[1].Interpolation = MoveEaseOut

	ease, cv, ok := m.Interpolation(InitialID)
	require.True(t, ok)
	assert.Equal(t, MoveSmoothstep, ease)
	assert.Equal(t, Spline(0.3), *cv)

	ease, cv, ok = m.Interpolation(FrameID(1))
	require.True(t, ok)
	assert.Equal(t, MoveEaseOut, ease)
	assert.Equal(t, Bezier(), *cv)

	_, cv, ok = m.Interpolation(FrameID(0))
	assert.True(t, ok)
	assert.Nil(t, cv)

	_, _, ok = m.Interpolation(LastID)
	assert.False(t, ok)
}

func TestRotateAround(t *testing.T) {
	m := threeFrames()
	m.RotateAround(V2(0, 0), Degrees(90))
	tr := m.Waypoints[0].Transform
	assert.InDelta(t, 0, float64(tr.Translation.X), 1e-9)
	assert.InDelta(t, 1, float64(tr.Translation.Y), 1e-9)
	assert.InDelta(t, math.Pi/2, float64(tr.Rotation), 1e-9)
}

func TestFlips(t *testing.T) {
	m := threeFrames()
	m.Waypoints[0].Transform.Rotation = Degrees(30)
	m.FlipHorizontal(V2(2, 0))
	tr := m.Waypoints[0].Transform
	assert.InDelta(t, 3, float64(tr.Translation.X), 1e-9)
	assert.InDelta(t, 150, tr.Rotation.Degrees(), 1e-9)

	m.FlipVertical(V2(0, 1))
	tr = m.Waypoints[0].Transform
	assert.InDelta(t, 2, float64(tr.Translation.Y), 1e-9)
	assert.InDelta(t, -150, tr.Rotation.Degrees(), 1e-9)
}

func TestCloneIsDeep(t *testing.T) {
	m := threeFrames()
	m.Waypoints[0].ChangeCurve = CurvePtr(Spline(0.2))
	c := m.Clone()
	require.True(t, m.Equal(&c))

	c.Waypoints[0].ChangeCurve.Tension = 0.9
	c.Waypoints[1].LerpTime = 1
	assert.Equal(t, 0.2, m.Waypoints[0].ChangeCurve.Tension)
	assert.Equal(t, Time(200), m.Waypoints[1].LerpTime)
	assert.False(t, m.Equal(&c))
}

func TestLerpShortestArc(t *testing.T) {
	a := TransformLight{Rotation: Degrees(350), Scale: 0}
	b := TransformLight{Rotation: Degrees(10), Scale: 2}
	mid := a.Lerp(b, 0.5)
	assert.InDelta(t, 360, mid.Rotation.Degrees(), 1e-9)
	assert.InDelta(t, 1, float64(mid.Scale), 1e-9)
}

func TestAngleTo(t *testing.T) {
	assert.InDelta(t, 20, Degrees(350).AngleTo(Degrees(10)).Degrees(), 1e-9)
	assert.InDelta(t, -20, Degrees(10).AngleTo(Degrees(350)).Degrees(), 1e-9)
	assert.InDelta(t, 180, Degrees(0).AngleTo(Degrees(180)).Degrees(), 1e-9)
	assert.InDelta(t, 270, Degrees(-90).Normalized2Pi().Degrees(), 1e-9)
}
