package history

import (
	"fmt"
	"strings"

	"lightline-cli/internal/model"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindMerge

	KindMoveEvent
	KindEventDuration
	KindCameraShakeIntensity

	KindFadeIn
	KindFadeOut
	KindRotate
	KindScale
	KindMoveLight

	KindMoveWaypoint
	KindMoveWaypointTime
	KindHollow

	KindDrag
)

var kindNames = map[Kind]string{
	KindUnknown:              "unknown",
	KindMerge:                "merge",
	KindMoveEvent:            "moveEvent",
	KindEventDuration:        "eventDuration",
	KindCameraShakeIntensity: "cameraShakeIntensity",
	KindFadeIn:               "fadeIn",
	KindFadeOut:              "fadeOut",
	KindRotate:               "rotate",
	KindScale:                "scale",
	KindMoveLight:            "moveLight",
	KindMoveWaypoint:         "moveWaypoint",
	KindMoveWaypointTime:     "moveWaypointTime",
	KindHollow:               "hollow",
	KindDrag:                 "drag",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	for kind, name := range kindNames {
		if name == s {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown history label: %q", s)
}

// Label tags a saved state so consecutive edits of the same thing collapse
// into one undo step. Labels are compared by value.
type Label struct {
	Kind Kind `json:"kind"`
	// Event is the event index the edit applies to, when the kind has one.
	Event    int              `json:"event,omitempty"`
	Waypoint model.WaypointID `json:"waypoint"`
}

var (
	Unknown = Label{}
	Merge   = Label{Kind: KindMerge}
	Drag    = Label{Kind: KindDrag}
)

func MoveEvent(event int) Label     { return Label{Kind: KindMoveEvent, Event: event} }
func EventDuration(event int) Label { return Label{Kind: KindEventDuration, Event: event} }

func CameraShakeIntensity(event int) Label {
	return Label{Kind: KindCameraShakeIntensity, Event: event}
}

func FadeIn(light model.LightID) Label    { return Label{Kind: KindFadeIn, Event: light.Event} }
func FadeOut(light model.LightID) Label   { return Label{Kind: KindFadeOut, Event: light.Event} }
func MoveLight(light model.LightID) Label { return Label{Kind: KindMoveLight, Event: light.Event} }

func Rotate(light model.LightID, wp model.WaypointID) Label {
	return Label{Kind: KindRotate, Event: light.Event, Waypoint: wp}
}

func Scale(light model.LightID, wp model.WaypointID) Label {
	return Label{Kind: KindScale, Event: light.Event, Waypoint: wp}
}

func MoveWaypoint(light model.LightID, wp model.WaypointID) Label {
	return Label{Kind: KindMoveWaypoint, Event: light.Event, Waypoint: wp}
}

func MoveWaypointTime(light model.LightID, wp model.WaypointID) Label {
	return Label{Kind: KindMoveWaypointTime, Event: light.Event, Waypoint: wp}
}

func Hollow(light model.LightID, wp model.WaypointID) Label {
	return Label{Kind: KindHollow, Event: light.Event, Waypoint: wp}
}

// ShouldMerge reports whether a save under next continues the step buffered
// under l. Unknown never merges and Merge absorbs everything.
func (l Label) ShouldMerge(next Label) bool {
	switch l.Kind {
	case KindUnknown:
		return false
	case KindMerge:
		return true
	}
	return l == next
}

func (l Label) hasWaypoint() bool {
	switch l.Kind {
	case KindRotate, KindScale, KindMoveWaypoint, KindMoveWaypointTime, KindHollow:
		return true
	}
	return false
}

func (l Label) hasEvent() bool {
	switch l.Kind {
	case KindUnknown, KindMerge, KindDrag:
		return false
	}
	return true
}

func (l Label) String() string {
	switch {
	case l.hasWaypoint():
		return fmt.Sprintf("%s(%d, %s)", l.Kind, l.Event, l.Waypoint)
	case l.hasEvent():
		return fmt.Sprintf("%s(%d)", l.Kind, l.Event)
	}
	return l.Kind.String()
}
