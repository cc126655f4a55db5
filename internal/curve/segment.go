package curve

import (
	"math"
	"sort"

	"lightline-cli/internal/model"
)

// vec3 is (x, y, rotation) of a control point.
type vec3 [3]float64

func (a vec3) add(b vec3) vec3      { return vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func (a vec3) sub(b vec3) vec3      { return vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func (a vec3) scale(k float64) vec3 { return vec3{a[0] * k, a[1] * k, a[2] * k} }
func (a vec3) len() float64         { return math.Sqrt(a[0]*a[0] + a[1]*a[1] + a[2]*a[2]) }

// run is a maximal stretch of frames sharing one trajectory.
type run struct {
	kind  model.TrajectoryKind
	start int
	pts   []vec3
	spans []span
}

// span is one interval of a run with an optional uniform-speed reparameterization.
type span struct {
	sample  func(t float64) vec3
	uniform func(t float64) float64
}

func (r *run) intervals() int { return max(0, len(r.pts)-1) }

func (r *run) eval(i int, t float64) vec3 {
	if i < 0 || i >= len(r.spans) {
		return r.pts[len(r.pts)-1]
	}
	s := r.spans[i]
	if s.uniform != nil {
		t = s.uniform(t)
	}
	return s.sample(t)
}

func newRun(curve model.TrajectoryInterpolation, idx []int, all []vec3) run {
	pts := make([]vec3, len(idx))
	for i, j := range idx {
		pts[i] = all[j]
	}
	r := run{kind: curve.Kind, start: idx[0], pts: pts}
	switch curve.Kind {
	case model.TrajectorySpline:
		r.spans = splineSpans(pts, curve.Tension)
	case model.TrajectoryBezier:
		r.spans = bezierSpans(pts)
	default:
		r.spans = linearSpans(pts)
	}
	return r
}

func linearSpans(pts []vec3) []span {
	out := make([]span, 0, len(pts))
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		out = append(out, span{sample: func(t float64) vec3 { return a.add(b.sub(a).scale(t)) }})
	}
	return out
}

// splineSpans builds a cardinal spline through pts. Tension 0.5 is Catmull-Rom.
func splineSpans(pts []vec3, tension float64) []span {
	n := len(pts)
	if n < 2 {
		return nil
	}
	k := 1 - tension
	tangents := make([]vec3, n)
	if n == 2 {
		m := pts[1].sub(pts[0]).scale(k)
		tangents[0], tangents[1] = m, m
	} else {
		tangents[0] = pts[1].sub(pts[0]).scale(k)
		for i := 1; i < n-1; i++ {
			tangents[i] = pts[i+1].sub(pts[i-1]).scale(k)
		}
		tangents[n-1] = pts[n-1].sub(pts[n-2]).scale(k)
	}

	out := make([]span, 0, n-1)
	for i := 0; i+1 < n; i++ {
		p0, p1, m0, m1 := pts[i], pts[i+1], tangents[i], tangents[i+1]
		sample := func(t float64) vec3 { return hermite(t, p0, p1, m0, m1) }
		s := span{sample: sample}
		if n > 2 {
			s.uniform = uniformTransform(sample)
		}
		out = append(out, s)
	}
	return out
}

func hermite(t float64, p0, p1, m0, m1 vec3) vec3 {
	t2 := t * t
	t3 := t2 * t
	return p0.scale(2*t3 - 3*t2 + 1).
		add(m0.scale(t3 - 2*t2 + t)).
		add(p1.scale(-2*t3 + 3*t2)).
		add(m1.scale(t3 - t2))
}

// bezierSpans builds one cubic per interval. The handles are derived from the
// neighbouring control points; the sequence ends are clamped by duplication.
func bezierSpans(pts []vec3) []span {
	n := len(pts)
	at := func(i int) vec3 { return pts[max(0, min(n-1, i))] }
	out := make([]span, 0, n)
	for i := 0; i+1 < n; i++ {
		p0, p3 := pts[i], pts[i+1]
		h1 := p0.add(at(i + 1).sub(at(i - 1)).scale(1.0 / 6))
		h2 := p3.sub(at(i + 2).sub(at(i)).scale(1.0 / 6))
		sample := func(t float64) vec3 { return cubicBezier(t, p0, h1, h2, p3) }
		out = append(out, span{sample: sample, uniform: uniformTransform(sample)})
	}
	return out
}

func cubicBezier(t float64, p0, p1, p2, p3 vec3) vec3 {
	u := 1 - t
	return p0.scale(u * u * u).
		add(p1.scale(3 * u * u * t)).
		add(p2.scale(3 * u * t * t)).
		add(p3.scale(t * t * t))
}

const uniformSamples = 100

// uniformTransform maps progress to curve parameter so the sample moves at
// constant speed along the span. It fixes 0 and 1.
func uniformTransform(sample func(float64) vec3) func(float64) float64 {
	lengths := make([]float64, uniformSamples+1)
	prev := sample(0)
	total := 0.0
	for i := 1; i <= uniformSamples; i++ {
		p := sample(float64(i) / uniformSamples)
		total += p.sub(prev).len()
		lengths[i] = total
		prev = p
	}
	if total <= 0 {
		return nil
	}
	for i := range lengths {
		lengths[i] /= total
	}
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		i := sort.SearchFloat64s(lengths, t)
		if i == 0 {
			return 0
		}
		lo, hi := lengths[i-1], lengths[i]
		frac := 0.0
		if hi > lo {
			frac = (t - lo) / (hi - lo)
		}
		return (float64(i-1) + frac) / uniformSamples
	}
}
