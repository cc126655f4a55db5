// Package curve turns a Movement's sparse keyframes into a continuous path.
//
// Position and rotation follow the segment's trajectory (linear, cardinal spline
// or Bezier); scale and hollow are always interpolated linearly. Progress within
// a segment is eased by the outgoing frame's MoveInterpolation before use.
package curve

import (
	"lightline-cli/internal/model"
)

// Curve is a baked Movement. It is immutable and safe to sample repeatedly.
type Curve struct {
	frames []model.TransformLight
	eases  []model.MoveInterpolation
	runs   []run
}

// Bake builds the curve for m.
func Bake(m *model.Movement) *Curve {
	n := m.Len()
	c := &Curve{
		frames: make([]model.TransformLight, 0, n),
		eases:  make([]model.MoveInterpolation, 0, n-1),
	}
	changes := make([]*model.TrajectoryInterpolation, 0, n)

	c.frames = append(c.frames, m.Initial.Transform)
	c.eases = append(c.eases, m.Initial.Interpolation)
	changes = append(changes, nil)
	for _, w := range m.Waypoints {
		c.frames = append(c.frames, w.Transform)
		c.eases = append(c.eases, w.Interpolation)
		changes = append(changes, w.ChangeCurve)
	}
	c.frames = append(c.frames, m.Last)
	changes = append(changes, nil)

	points := controlPoints(c.frames)

	current := m.Initial.Curve
	var idx []int
	for i, change := range changes {
		if change == nil {
			idx = append(idx, i)
			continue
		}
		if len(idx) > 0 {
			idx = append(idx, i)
			c.runs = append(c.runs, newRun(current, idx, points))
		}
		idx = []int{i}
		current = *change
	}
	if len(idx) > 0 {
		c.runs = append(c.runs, newRun(current, idx, points))
	}
	return c
}

// controlPoints unwraps rotations so consecutive frames differ by the shortest arc.
func controlPoints(frames []model.TransformLight) []vec3 {
	out := make([]vec3, len(frames))
	var rot model.Angle
	for i, f := range frames {
		if i == 0 {
			rot = f.Rotation
		} else {
			rot += rot.AngleTo(f.Rotation)
		}
		out[i] = vec3{float64(f.Translation.X), float64(f.Translation.Y), float64(rot)}
	}
	return out
}

// Segments is the number of spans between consecutive keyframes.
func (c *Curve) Segments() int { return len(c.frames) - 1 }

// Get samples segment i (frame i to frame i+1) at raw progress t in [0, 1].
// An out-of-range segment yields no sample.
func (c *Curve) Get(segment int, t model.FloatTime) (model.TransformLight, bool) {
	if segment < 0 || segment >= c.Segments() {
		return model.TransformLight{}, false
	}
	t = max(0, min(1, t))
	te := c.eases[segment].Apply(t)
	from, to := c.frames[segment], c.frames[segment+1]
	if te <= 0 {
		return from, true
	}
	if te >= 1 {
		return to, true
	}

	r := c.runFor(segment)
	if r == nil {
		return from.Lerp(to, te), true
	}
	p := r.eval(segment-r.start, float64(te))
	k := model.Coord(te)
	return model.TransformLight{
		Translation: model.V2(model.Coord(p[0]), model.Coord(p[1])),
		Rotation:    model.Angle(p[2]),
		Scale:       from.Scale + (to.Scale-from.Scale)*k,
		Hollow:      from.Hollow + (to.Hollow-from.Hollow)*k,
	}, true
}

func (c *Curve) runFor(segment int) *run {
	for i := range c.runs {
		r := &c.runs[i]
		if segment >= r.start && segment < r.start+r.intervals() {
			return r
		}
	}
	return nil
}

// Path samples every segment at the given resolution, ending on the last frame.
func (c *Curve) Path(resolution int) []model.TransformLight {
	resolution = max(1, resolution)
	out := make([]model.TransformLight, 0, c.Segments()*resolution+1)
	for s := 0; s < c.Segments(); s++ {
		for j := 0; j < resolution; j++ {
			tr, _ := c.Get(s, model.FloatTime(j)/model.FloatTime(resolution))
			out = append(out, tr)
		}
	}
	if len(c.frames) > 0 {
		out = append(out, c.frames[len(c.frames)-1])
	}
	return out
}

// Sample evaluates m at a time relative to the movement start. Times before the
// start clamp to the initial frame and times past the end return the last frame.
func Sample(m *model.Movement, t model.Time) model.TransformLight {
	return Bake(m).At(m, t)
}

// At evaluates a curve previously baked from m.
func (c *Curve) At(m *model.Movement, t model.Time) model.TransformLight {
	from := m.Initial.Transform
	lerps := make([]model.Time, 0, len(m.Waypoints)+1)
	lerps = append(lerps, m.Initial.LerpTime)
	for _, w := range m.Waypoints {
		lerps = append(lerps, w.LerpTime)
	}
	for i, lerp := range lerps {
		if t <= lerp {
			local := model.FloatTime(1)
			if lerp > 0 {
				local = model.FloatTime(t) / model.FloatTime(lerp)
			}
			if tr, ok := c.Get(i, local); ok {
				return tr
			}
			return from
		}
		t -= lerp
		if i < len(m.Waypoints) {
			from = m.Waypoints[i].Transform
		}
	}
	return m.Last
}

// TotalDistance is the length of the path travelled by the light's center.
func TotalDistance(m *model.Movement) model.Coord {
	path := Bake(m).Path(5)
	var d model.Coord
	for i := 1; i < len(path); i++ {
		d += path[i].Translation.Sub(path[i-1].Translation).Len()
	}
	return d
}
