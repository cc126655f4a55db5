package model

import "math"

// Coord is a scalar in level space.
type Coord float64

func (c Coord) Add(o Coord) Coord { return c + o }
func (c Coord) Sub(o Coord) Coord { return c - o }

func (c Coord) Clamp(lo, hi Coord) Coord { return max(lo, min(hi, c)) }

// Angle is measured in radians.
type Angle float64

func Degrees(d float64) Angle { return Angle(d * math.Pi / 180) }

func (a Angle) Add(o Angle) Angle { return a + o }
func (a Angle) Sub(o Angle) Angle { return a - o }

func (a Angle) Degrees() float64 { return float64(a) * 180 / math.Pi }

// Normalized2Pi maps the angle into [0, 2π).
func (a Angle) Normalized2Pi() Angle {
	r := math.Mod(float64(a), 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	return Angle(r)
}

// AngleTo returns the shortest signed rotation from a to target, in (-π, π].
func (a Angle) AngleTo(target Angle) Angle {
	d := math.Mod(float64(target-a), 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return Angle(d)
}

type Vec2 struct {
	X Coord `json:"x"`
	Y Coord `json:"y"`
}

func V2(x, y Coord) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(k Coord) Vec2 { return Vec2{v.X * k, v.Y * k} }
func (v Vec2) Mul(o Vec2) Vec2 { return Vec2{v.X * o.X, v.Y * o.Y} }
func (v Vec2) Len() Coord { return Coord(math.Hypot(float64(v.X), float64(v.Y))) }
func (v Vec2) Dot(o Vec2) Coord { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Lerp(o Vec2, t Coord) Vec2 { return v.Add(o.Sub(v).Scale(t)) }

func (v Vec2) Rotate(a Angle) Vec2 {
	sin, cos := math.Sincos(float64(a))
	x, y := float64(v.X), float64(v.Y)
	return Vec2{X: Coord(x*cos - y*sin), Y: Coord(x*sin + y*cos)}
}

// TransformLight is the placement of a light at one keyframe.
type TransformLight struct {
	Translation Vec2  `json:"translation"`
	Rotation    Angle `json:"rotation"`
	Scale       Coord `json:"scale"`
	// Hollow is in [-1, 1]; -1 is a fully solid shape.
	Hollow Coord `json:"hollow"`
}

func IdentityTransform() TransformLight {
	return TransformLight{Scale: 1, Hollow: -1}
}

func ScaleTransform(scale Coord) TransformLight {
	t := IdentityTransform()
	t.Scale = scale
	return t
}

// Lerp interpolates every component linearly, rotating along the shortest arc.
func (tr TransformLight) Lerp(target TransformLight, t FloatTime) TransformLight {
	k := Coord(t)
	return TransformLight{
		Translation: tr.Translation.Lerp(target.Translation, k),
		Rotation:    tr.Rotation + tr.Rotation.AngleTo(target.Rotation)*Angle(t),
		Scale:       tr.Scale + (target.Scale-tr.Scale)*k,
		Hollow:      tr.Hollow + (target.Hollow-tr.Hollow)*k,
	}
}
