package model

import (
	"fmt"
	"strconv"
	"strings"
)

type WaypointKind int

const (
	WaypointInitialKind WaypointKind = iota
	WaypointFrameKind
	WaypointLastKind
)

// WaypointID is a positional key into one Movement. Frame indices shift on every
// insert, delete and reorder, so ids must be re-derived after each edit.
type WaypointID struct {
	Kind  WaypointKind `json:"kind"`
	Index int          `json:"index,omitempty"`
}

var (
	InitialID = WaypointID{Kind: WaypointInitialKind}
	LastID    = WaypointID{Kind: WaypointLastKind}
)

func FrameID(i int) WaypointID { return WaypointID{Kind: WaypointFrameKind, Index: i} }

func (id WaypointID) IsFrame() bool { return id.Kind == WaypointFrameKind }

// Less orders Initial < Frame(0) < Frame(1) < ... < Last.
func (id WaypointID) Less(o WaypointID) bool {
	if id.Kind != o.Kind {
		return id.Kind < o.Kind
	}
	return id.Kind == WaypointFrameKind && id.Index < o.Index
}

// Prev returns the preceding id in a movement with n middle frames.
func (id WaypointID) Prev(n int) (WaypointID, bool) {
	switch id.Kind {
	case WaypointInitialKind:
		return WaypointID{}, false
	case WaypointFrameKind:
		if id.Index == 0 {
			return InitialID, true
		}
		return FrameID(id.Index - 1), true
	default:
		if n > 0 {
			return FrameID(n - 1), true
		}
		return InitialID, true
	}
}

// Next returns the following id in a movement with n middle frames.
func (id WaypointID) Next(n int) (WaypointID, bool) {
	switch id.Kind {
	case WaypointInitialKind:
		if n > 0 {
			return FrameID(0), true
		}
		return LastID, true
	case WaypointFrameKind:
		if id.Index+1 < n {
			return FrameID(id.Index + 1), true
		}
		return LastID, true
	default:
		return WaypointID{}, false
	}
}

func (id WaypointID) String() string {
	switch id.Kind {
	case WaypointInitialKind:
		return "initial"
	case WaypointLastKind:
		return "last"
	default:
		return strconv.Itoa(id.Index)
	}
}

func ParseWaypointID(s string) (WaypointID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "initial", "i":
		return InitialID, nil
	case "last", "l":
		return LastID, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return WaypointID{}, fmt.Errorf("invalid waypoint id: %q (want initial, last or a frame index)", s)
	}
	return FrameID(n), nil
}

// WaypointInitial is the spawn keyframe.
type WaypointInitial struct {
	// LerpTime is the duration of the transition to the next frame.
	LerpTime      Time                    `json:"lerpTime"`
	Interpolation MoveInterpolation       `json:"interpolation"`
	Curve         TrajectoryInterpolation `json:"curve"`
	Transform     TransformLight          `json:"transform"`
}

// Waypoint is a middle keyframe.
type Waypoint struct {
	LerpTime      Time              `json:"lerpTime"`
	Interpolation MoveInterpolation `json:"interpolation"`
	// ChangeCurve starts a new curve at this frame; nil continues the previous one.
	ChangeCurve *TrajectoryInterpolation `json:"changeCurve,omitempty"`
	Transform   TransformLight           `json:"transform"`
}

func NewWaypoint(lerp Time, transform TransformLight) Waypoint {
	return Waypoint{LerpTime: lerp, Transform: transform}
}

func CurvePtr(c TrajectoryInterpolation) *TrajectoryInterpolation { return &c }

func (id WaypointID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *WaypointID) UnmarshalText(b []byte) error {
	v, err := ParseWaypointID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}
