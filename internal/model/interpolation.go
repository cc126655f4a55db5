package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MoveInterpolation controls the speed of a light between two keyframes.
type MoveInterpolation int

const (
	MoveSmoothstep MoveInterpolation = iota
	MoveLinear
	MoveEaseIn
	MoveEaseOut
)

var moveInterpolationNames = map[MoveInterpolation]string{
	MoveSmoothstep: "smoothstep",
	MoveLinear:     "linear",
	MoveEaseIn:     "easeIn",
	MoveEaseOut:    "easeOut",
}

// Apply remaps normalized progress t in [0, 1].
func (m MoveInterpolation) Apply(t FloatTime) FloatTime {
	switch m {
	case MoveLinear:
		return t
	case MoveEaseIn:
		return t * t
	case MoveEaseOut:
		u := 1 - t
		return 1 - u*u
	default:
		return 3*t*t - 2*t*t*t
	}
}

func (m MoveInterpolation) String() string {
	if s, ok := moveInterpolationNames[m]; ok {
		return s
	}
	return fmt.Sprintf("MoveInterpolation(%d)", int(m))
}

func ParseMoveInterpolation(s string) (MoveInterpolation, error) {
	s = strings.TrimSpace(s)
	for k, v := range moveInterpolationNames {
		if strings.EqualFold(v, s) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown interpolation: %q", s)
}

func (m MoveInterpolation) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *MoveInterpolation) UnmarshalText(b []byte) error {
	v, err := ParseMoveInterpolation(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

type TrajectoryKind int

const (
	TrajectoryLinear TrajectoryKind = iota
	TrajectorySpline
	TrajectoryBezier
)

var trajectoryNames = map[TrajectoryKind]string{
	TrajectoryLinear: "linear",
	TrajectorySpline: "spline",
	TrajectoryBezier: "bezier",
}

func (k TrajectoryKind) String() string {
	if s, ok := trajectoryNames[k]; ok {
		return s
	}
	return fmt.Sprintf("TrajectoryKind(%d)", int(k))
}

func (k TrajectoryKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *TrajectoryKind) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	for kind, name := range trajectoryNames {
		if strings.EqualFold(name, s) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown trajectory: %q", s)
}

// TrajectoryInterpolation is the spatial shape of the path between keyframes.
// The zero value is a straight line.
type TrajectoryInterpolation struct {
	Kind TrajectoryKind `json:"kind"`
	// Tension is only used by splines; 0.5 gives a Catmull-Rom curve.
	Tension float64 `json:"tension,omitempty"`
}

func Spline(tension float64) TrajectoryInterpolation {
	return TrajectoryInterpolation{Kind: TrajectorySpline, Tension: tension}
}

func Bezier() TrajectoryInterpolation { return TrajectoryInterpolation{Kind: TrajectoryBezier} }

func (c TrajectoryInterpolation) String() string {
	if c.Kind == TrajectorySpline {
		return fmt.Sprintf("spline(%g)", c.Tension)
	}
	return c.Kind.String()
}

// ParseTrajectory accepts "linear", "bezier", "spline" and "spline:<tension>".
func ParseTrajectory(s string) (TrajectoryInterpolation, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	name, arg, hasArg := strings.Cut(s, ":")
	switch name {
	case "linear":
		return TrajectoryInterpolation{}, nil
	case "bezier":
		return Bezier(), nil
	case "spline":
		tension := 0.1
		if hasArg {
			if err := json.Unmarshal([]byte(arg), &tension); err != nil {
				return TrajectoryInterpolation{}, fmt.Errorf("invalid spline tension: %q", arg)
			}
		}
		return Spline(tension), nil
	}
	return TrajectoryInterpolation{}, fmt.Errorf("unknown trajectory: %q", s)
}
