package editor

import (
	"lightline-cli/internal/history"
	"lightline-cli/internal/model"
)

// Action is one edit intent. Intents that would change nothing report IsNoop
// and are dropped before they reach the level or the history.
type Action interface {
	Name() string
	IsNoop() bool
}

type SelectMode string

const (
	SelectAdd    SelectMode = "add"
	SelectRemove SelectMode = "remove"
	SelectSet    SelectMode = "set"
)

// List runs its actions as a single undo step. A nil Label merges under
// history.Merge and is sealed with history.Unknown.
type List struct {
	Label   *history.Label `json:"label,omitempty"`
	Actions []Action       `json:"actions"`
}

func ListOf(actions ...Action) List { return List{Actions: actions} }

func ListWith(label history.Label, actions ...Action) List {
	return List{Label: &label, Actions: actions}
}

type (
	Undo          struct{}
	Redo          struct{}
	Copy          struct{}
	CopySelection struct {
		Selection Selection `json:"selection"`
	}
	SetSelection struct {
		Selection Selection `json:"selection"`
	}
	Paste struct{}
	// FlushChanges seals the buffered step, but only when Label is nil or
	// matches the buffered label.
	FlushChanges struct {
		Label *history.Label `json:"label,omitempty"`
	}
	Cancel  struct{}
	SetName struct {
		Value string `json:"name"`
	}
	ToggleWaypointsView struct{}
	ScalePlacement      struct {
		Change model.Change[model.Coord] `json:"change"`
	}
	RotatePlacement struct {
		Delta model.Angle `json:"delta"`
	}
	ScrollTime struct {
		Delta model.Time `json:"delta"`
	}
	// TimelineZoom adds in powers of two.
	TimelineZoom struct {
		Change model.Change[model.Coord] `json:"change"`
	}
	CameraPan struct {
		Change model.Change[model.Vec2] `json:"change"`
	}
	TimingUpdate struct {
		Point    int             `json:"point"`
		BeatTime model.FloatTime `json:"beatTime"`
	}
	// AddTimingPoint starts a new tempo at Time, replacing a point already there.
	AddTimingPoint struct {
		Time     model.Time      `json:"time"`
		BeatTime model.FloatTime `json:"beatTime"`
	}
	// SelectShape changes the shape of the selected lights, or starts placing a
	// new light when nothing is selected.
	SelectShape struct {
		Shape model.Shape `json:"shape"`
	}
	Deselect struct{}
)

type (
	SelectEvent struct {
		Event int `json:"event"`
	}
	DeleteEvent struct {
		Event int `json:"event"`
	}
	MoveEvent struct {
		Event  int                      `json:"event"`
		Change model.Change[model.Time] `json:"change"`
	}
	NewRgbSplit struct {
		Duration model.Time `json:"duration"`
	}
	NewPaletteSwap struct {
		Duration model.Time `json:"duration"`
	}
	NewCameraShake struct {
		Duration model.Time `json:"duration"`
	}
	ChangeEffectDuration struct {
		Event  int                      `json:"event"`
		Change model.Change[model.Time] `json:"change"`
	}
	ChangeCameraShakeIntensity struct {
		Event  int                       `json:"event"`
		Change model.Change[model.Coord] `json:"change"`
	}
)

type (
	NewLight struct {
		Shape model.Shape `json:"shape"`
	}
	ToggleDangerPlacement struct{}
	PlaceLight            struct {
		Position model.Vec2 `json:"position"`
	}
	DeleteLight struct {
		Light model.LightID `json:"light"`
	}
	SelectLight struct {
		Mode   SelectMode      `json:"mode"`
		Lights []model.LightID `json:"lights"`
	}
	ChangeShape struct {
		Light model.LightID `json:"light"`
		Shape model.Shape   `json:"shape"`
	}
	RotateLightAround struct {
		Light  model.LightID `json:"light"`
		Anchor model.Vec2    `json:"anchor"`
		Delta  model.Angle   `json:"delta"`
	}
	FlipHorizontal struct {
		Light  model.LightID `json:"light"`
		Anchor model.Vec2    `json:"anchor"`
	}
	FlipVertical struct {
		Light  model.LightID `json:"light"`
		Anchor model.Vec2    `json:"anchor"`
	}
	ToggleDanger struct {
		Light model.LightID `json:"light"`
	}
	ChangeFadeOut struct {
		Light  model.LightID            `json:"light"`
		Change model.Change[model.Time] `json:"change"`
	}
	ChangeFadeIn struct {
		Light  model.LightID            `json:"light"`
		Change model.Change[model.Time] `json:"change"`
	}
	MoveLight struct {
		Light    model.LightID            `json:"light"`
		Time     model.Change[model.Time] `json:"time"`
		Position model.Change[model.Vec2] `json:"position"`
	}
	HoverLight struct {
		Light model.LightID `json:"light"`
	}
)

type (
	NewWaypoint   struct{}
	PlaceWaypoint struct {
		Position model.Vec2 `json:"position"`
	}
	DeleteWaypoint struct {
		Light    model.LightID    `json:"light"`
		Waypoint model.WaypointID `json:"waypoint"`
	}
	// SelectWaypoint selects a keyframe of the single selected light and,
	// with MoveTime, scrolls the cursor to it.
	SelectWaypoint struct {
		Waypoint model.WaypointID `json:"waypoint"`
		MoveTime bool             `json:"moveTime"`
	}
	DeselectWaypoint struct{}
	RotateWaypoint   struct {
		Light    model.LightID             `json:"light"`
		Waypoint model.WaypointID          `json:"waypoint"`
		Change   model.Change[model.Angle] `json:"change"`
	}
	ScaleWaypoint struct {
		Light    model.LightID             `json:"light"`
		Waypoint model.WaypointID          `json:"waypoint"`
		Change   model.Change[model.Coord] `json:"change"`
	}
	SetWaypointInterpolation struct {
		Light         model.LightID           `json:"light"`
		Waypoint      model.WaypointID        `json:"waypoint"`
		Interpolation model.MoveInterpolation `json:"interpolation"`
	}
	SetWaypointCurve struct {
		Light    model.LightID                  `json:"light"`
		Waypoint model.WaypointID               `json:"waypoint"`
		Curve    *model.TrajectoryInterpolation `json:"curve"`
	}
	// MoveWaypoint moves a keyframe in space, then in time.
	MoveWaypoint struct {
		Light    model.LightID            `json:"light"`
		Waypoint model.WaypointID         `json:"waypoint"`
		Time     model.Change[model.Time] `json:"time"`
		Position model.Change[model.Vec2] `json:"position"`
	}
	ChangeHollow struct {
		Light    model.LightID             `json:"light"`
		Waypoint model.WaypointID          `json:"waypoint"`
		Change   model.Change[model.Coord] `json:"change"`
	}
)

type (
	StartPlaying struct{}
	StopPlaying  struct{}
	// StartDrag begins dragging a keyframe in time.
	StartDrag struct {
		Light    model.LightID    `json:"light"`
		Waypoint model.WaypointID `json:"waypoint"`
	}
	// EndDrag releases the pointer and seals the dragged changes into one step.
	EndDrag struct{}
)

func (a List) IsNoop() bool {
	for _, child := range a.Actions {
		if !child.IsNoop() {
			return false
		}
	}
	return true
}

func (Undo) IsNoop() bool                 { return false }
func (Redo) IsNoop() bool                 { return false }
func (Copy) IsNoop() bool                 { return false }
func (CopySelection) IsNoop() bool        { return false }
func (SetSelection) IsNoop() bool         { return false }
func (Paste) IsNoop() bool                { return false }
func (FlushChanges) IsNoop() bool         { return false }
func (Cancel) IsNoop() bool               { return false }
func (SetName) IsNoop() bool              { return false }
func (ToggleWaypointsView) IsNoop() bool  { return false }
func (a ScalePlacement) IsNoop() bool     { return a.Change.IsNoop() }
func (a RotatePlacement) IsNoop() bool    { return a.Delta == 0 }
func (a ScrollTime) IsNoop() bool         { return a.Delta == 0 }
func (a TimelineZoom) IsNoop() bool       { return a.Change.IsNoop() }
func (a CameraPan) IsNoop() bool          { return a.Change.IsNoop() }
func (TimingUpdate) IsNoop() bool         { return false }
func (a AddTimingPoint) IsNoop() bool     { return a.BeatTime <= 0 }
func (SelectShape) IsNoop() bool          { return false }
func (Deselect) IsNoop() bool             { return false }
func (SelectEvent) IsNoop() bool          { return false }
func (DeleteEvent) IsNoop() bool          { return false }
func (a MoveEvent) IsNoop() bool          { return a.Change.IsNoop() }
func (NewRgbSplit) IsNoop() bool          { return false }
func (NewPaletteSwap) IsNoop() bool       { return false }
func (NewCameraShake) IsNoop() bool       { return false }

func (a ChangeEffectDuration) IsNoop() bool { return a.Change.IsNoop() }

func (a ChangeCameraShakeIntensity) IsNoop() bool { return a.Change.IsNoop() }

func (NewLight) IsNoop() bool              { return false }
func (ToggleDangerPlacement) IsNoop() bool { return false }
func (PlaceLight) IsNoop() bool            { return false }
func (DeleteLight) IsNoop() bool           { return false }

func (a SelectLight) IsNoop() bool {
	return a.Mode != SelectSet && len(a.Lights) == 0
}

func (ChangeShape) IsNoop() bool         { return false }
func (a RotateLightAround) IsNoop() bool { return a.Delta == 0 }
func (FlipHorizontal) IsNoop() bool      { return false }
func (FlipVertical) IsNoop() bool        { return false }
func (ToggleDanger) IsNoop() bool        { return false }
func (a ChangeFadeOut) IsNoop() bool     { return a.Change.IsNoop() }
func (a ChangeFadeIn) IsNoop() bool      { return a.Change.IsNoop() }
func (a MoveLight) IsNoop() bool         { return a.Time.IsNoop() && a.Position.IsNoop() }
func (HoverLight) IsNoop() bool          { return false }

func (NewWaypoint) IsNoop() bool              { return false }
func (PlaceWaypoint) IsNoop() bool            { return false }
func (DeleteWaypoint) IsNoop() bool           { return false }
func (SelectWaypoint) IsNoop() bool           { return false }
func (DeselectWaypoint) IsNoop() bool         { return false }
func (a RotateWaypoint) IsNoop() bool         { return a.Change.IsNoop() }
func (a ScaleWaypoint) IsNoop() bool          { return a.Change.IsNoop() }
func (SetWaypointInterpolation) IsNoop() bool { return false }
func (SetWaypointCurve) IsNoop() bool         { return false }
func (a MoveWaypoint) IsNoop() bool           { return a.Time.IsNoop() && a.Position.IsNoop() }
func (a ChangeHollow) IsNoop() bool           { return a.Change.IsNoop() }

func (StartPlaying) IsNoop() bool { return false }
func (StopPlaying) IsNoop() bool  { return false }
func (StartDrag) IsNoop() bool    { return false }
func (EndDrag) IsNoop() bool      { return false }

func (List) Name() string                       { return "list" }
func (Undo) Name() string                       { return "undo" }
func (Redo) Name() string                       { return "redo" }
func (Copy) Name() string                       { return "copy" }
func (CopySelection) Name() string              { return "copySelection" }
func (SetSelection) Name() string               { return "setSelection" }
func (Paste) Name() string                      { return "paste" }
func (FlushChanges) Name() string               { return "flushChanges" }
func (Cancel) Name() string                     { return "cancel" }
func (SetName) Name() string                    { return "setName" }
func (ToggleWaypointsView) Name() string        { return "toggleWaypointsView" }
func (ScalePlacement) Name() string             { return "scalePlacement" }
func (RotatePlacement) Name() string            { return "rotatePlacement" }
func (ScrollTime) Name() string                 { return "scrollTime" }
func (TimelineZoom) Name() string               { return "timelineZoom" }
func (CameraPan) Name() string                  { return "cameraPan" }
func (TimingUpdate) Name() string               { return "timingUpdate" }
func (AddTimingPoint) Name() string             { return "addTimingPoint" }
func (SelectShape) Name() string                { return "shape" }
func (Deselect) Name() string                   { return "deselect" }
func (SelectEvent) Name() string                { return "selectEvent" }
func (DeleteEvent) Name() string                { return "deleteEvent" }
func (MoveEvent) Name() string                  { return "moveEvent" }
func (NewRgbSplit) Name() string                { return "newRgbSplit" }
func (NewPaletteSwap) Name() string             { return "newPaletteSwap" }
func (NewCameraShake) Name() string             { return "newCameraShake" }
func (ChangeEffectDuration) Name() string       { return "changeEffectDuration" }
func (ChangeCameraShakeIntensity) Name() string { return "changeCameraShakeIntensity" }
func (NewLight) Name() string                   { return "newLight" }
func (ToggleDangerPlacement) Name() string      { return "toggleDangerPlacement" }
func (PlaceLight) Name() string                 { return "placeLight" }
func (DeleteLight) Name() string                { return "deleteLight" }
func (SelectLight) Name() string                { return "selectLight" }
func (ChangeShape) Name() string                { return "changeShape" }
func (RotateLightAround) Name() string          { return "rotateLightAround" }
func (FlipHorizontal) Name() string             { return "flipHorizontal" }
func (FlipVertical) Name() string               { return "flipVertical" }
func (ToggleDanger) Name() string               { return "toggleDanger" }
func (ChangeFadeOut) Name() string              { return "changeFadeOut" }
func (ChangeFadeIn) Name() string               { return "changeFadeIn" }
func (MoveLight) Name() string                  { return "moveLight" }
func (HoverLight) Name() string                 { return "hoverLight" }
func (NewWaypoint) Name() string                { return "newWaypoint" }
func (PlaceWaypoint) Name() string              { return "placeWaypoint" }
func (DeleteWaypoint) Name() string             { return "deleteWaypoint" }
func (SelectWaypoint) Name() string             { return "selectWaypoint" }
func (DeselectWaypoint) Name() string           { return "deselectWaypoint" }
func (RotateWaypoint) Name() string             { return "rotateWaypoint" }
func (ScaleWaypoint) Name() string              { return "scaleWaypoint" }
func (SetWaypointInterpolation) Name() string   { return "setWaypointInterpolation" }
func (SetWaypointCurve) Name() string           { return "setWaypointCurve" }
func (MoveWaypoint) Name() string               { return "moveWaypoint" }
func (ChangeHollow) Name() string               { return "changeHollow" }
func (StartPlaying) Name() string               { return "startPlaying" }
func (StopPlaying) Name() string                { return "stopPlaying" }
func (StartDrag) Name() string                  { return "startDrag" }
func (EndDrag) Name() string                    { return "endDrag" }
