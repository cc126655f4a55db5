package editor

import (
	"lightline-cli/internal/model"
)

type StateKind string

const (
	StateIdle StateKind = "idle"
	// StatePlace is placing a new light.
	StatePlace StateKind = "place"
	// StatePlaying is playing the level back from the cursor.
	StatePlaying StateKind = "playing"
	// StateWaypoints is editing the keyframes of one light.
	StateWaypoints StateKind = "waypoints"
)

type WaypointsMode string

const (
	WaypointsIdle WaypointsMode = "idle"
	// WaypointsNew is placing a new keyframe at the cursor.
	WaypointsNew WaypointsMode = "new"
)

// EditingState is what the pointer currently does. Only the fields of the
// active kind are meaningful.
type EditingState struct {
	Kind StateKind `json:"kind"`

	// Place
	Shape  model.Shape `json:"shape,omitzero"`
	Danger bool        `json:"danger,omitempty"`

	// Waypoints
	Light model.LightID `json:"light,omitzero"`
	Mode  WaypointsMode `json:"mode,omitempty"`
	// Selected is the keyframe under edit; reorders re-home it.
	Selected *model.WaypointID `json:"selected,omitempty"`

	// Playing
	Playback *Playback `json:"playback,omitempty"`
}

type Playback struct {
	// StartTime is the cursor time playback started from.
	StartTime model.Time `json:"startTime"`
	// Elapsed is how long playback has run.
	Elapsed model.Time `json:"elapsed"`
	// Previous is restored when playback stops.
	Previous EditingState `json:"previous"`
}

func Idle() EditingState { return EditingState{Kind: StateIdle} }

func Placing(shape model.Shape, danger bool) EditingState {
	return EditingState{Kind: StatePlace, Shape: shape, Danger: danger}
}

func EditingWaypoints(light model.LightID, mode WaypointsMode, selected *model.WaypointID) EditingState {
	return EditingState{Kind: StateWaypoints, Light: light, Mode: mode, Selected: selected}
}

func (s EditingState) Is(kind StateKind) bool { return s.Kind == kind }

// SelectedWaypoint returns the keyframe under edit and its light.
func (s EditingState) SelectedWaypoint() (model.LightID, model.WaypointID, bool) {
	if s.Kind != StateWaypoints || s.Selected == nil {
		return model.LightID{}, model.WaypointID{}, false
	}
	return s.Light, *s.Selected, true
}

// Drag is an in-progress pointer drag of one keyframe in time. Reorders
// re-home Waypoint so the drag keeps following the same frame.
type Drag struct {
	Light    model.LightID    `json:"light"`
	Waypoint model.WaypointID `json:"waypoint"`
	// From is the absolute time the drag started at.
	From model.Time `json:"from"`
}
