// Package editor is an editing session over one level. Every user intent is an
// Action; Execute filters out no-ops, applies the edit and records it in the
// session history so that each gesture becomes one undo step.
package editor

import (
	"errors"
	"math"

	"github.com/rs/zerolog/log"

	"lightline-cli/internal/history"
	"lightline-cli/internal/model"
	"lightline-cli/internal/mutate"
)

type Config struct {
	// KeepCurves moves interpolation and curves together with reordered keyframes.
	KeepCurves bool `json:"keepCurves"`
	// Snap is the beat fraction the cursor snaps to when scrolling.
	Snap model.BeatTime `json:"snap"`
	// ScrollMargin is how far past the end of the level the cursor may go.
	ScrollMargin model.Time `json:"scrollMargin"`
	// HistoryLimit caps the undo stack; zero keeps everything.
	HistoryLimit int `json:"historyLimit"`
}

func DefaultConfig() Config {
	return Config{
		Snap:         model.BeatQuarter,
		ScrollMargin: 100 * model.TimeInFloatTime,
	}
}

const (
	MinPlaceScale model.Coord = 0.25
	MaxPlaceScale model.Coord = 2
	MinZoom       model.Coord = 1.0 / 16
	MaxZoom       model.Coord = 2
)

type Editor struct {
	Level   model.Level
	Name    string
	History *history.History

	Clipboard Clipboard
	Selection Selection
	State     EditingState
	Drag      *Drag

	// CurrentTime is the timeline cursor.
	CurrentTime  model.Time
	Zoom         model.Coord
	Camera       model.Vec2
	HoveredLight *model.LightID

	PlaceRotation model.Angle
	PlaceScale    model.Coord

	Config Config
}

func New(level model.Level, name string, cfg Config) *Editor {
	e := &Editor{
		Level:      level,
		Name:       name,
		Selection:  Selection{Kind: SelectionEmpty},
		State:      Idle(),
		Zoom:       1,
		PlaceScale: 1,
		Config:     cfg,
	}
	e.History = history.New(&e.Level)
	e.History.SetLimit(cfg.HistoryLimit)
	return e
}

// Dirty reports whether the live level differs from the last saved one.
func (e *Editor) Dirty(saved *model.Level) bool {
	return !e.Level.Equal(saved)
}

// Execute applies one action. Every path that edits the level ends in a
// history save.
func (e *Editor) Execute(action Action) {
	if action.IsNoop() {
		return
	}
	log.Trace().Str("action", action.Name()).Msg("execute")

	switch a := action.(type) {
	case List:
		merge, flush := history.Merge, history.Unknown
		if a.Label != nil {
			merge, flush = *a.Label, *a.Label
		}
		e.History.StartMerge(&e.Level, merge)
		for _, child := range a.Actions {
			e.Execute(child)
		}
		e.History.Flush(&e.Level, flush)
		return
	case Undo:
		if e.historyLocked() {
			return
		}
		e.History.Undo(&e.Level)
		return
	case Redo:
		if e.historyLocked() {
			return
		}
		e.History.Redo(&e.Level)
		return
	case Copy:
		e.Execute(CopySelection{Selection: e.Selection.Clone()})
	case CopySelection:
		e.copySelection(a.Selection)
	case SetSelection:
		e.Selection = a.Selection.Clone()
	case Paste:
		e.paste()
	case FlushChanges:
		if a.Label == nil || *a.Label == e.History.BufferLabel() {
			e.History.Flush(&e.Level, history.Unknown)
		}
	case Cancel:
		e.cancel()
	case SetName:
		e.Name = a.Value
	case ToggleWaypointsView:
		e.toggleWaypointsView()
	case ScalePlacement:
		e.PlaceScale = a.Change.Apply(e.PlaceScale).Clamp(MinPlaceScale, MaxPlaceScale)
	case RotatePlacement:
		e.PlaceRotation += a.Delta
	case ScrollTime:
		e.scrollTime(a.Delta)
	case TimelineZoom:
		zoom := a.Change.Value
		if a.Change.Kind == model.ChangeKindAdd {
			zoom = e.Zoom * model.Coord(math.Pow(2, float64(a.Change.Value)))
		}
		e.Zoom = zoom.Clamp(MinZoom, MaxZoom)
	case CameraPan:
		e.Camera = a.Change.Apply(e.Camera)
	case TimingUpdate:
		e.applied(a, mutate.SetBeatTime(&e.Level, a.Point, a.BeatTime))
	case AddTimingPoint:
		e.Level.Timing.Insert(model.TimingPoint{Time: max(0, a.Time), BeatTime: a.BeatTime})
	case SelectShape:
		switch {
		case e.Selection.IsEmpty():
			e.Execute(NewLight{Shape: a.Shape})
		case e.Selection.Kind == SelectionLights:
			changes := make([]Action, 0, len(e.Selection.Lights))
			for _, id := range e.Selection.Lights {
				changes = append(changes, ChangeShape{Light: id, Shape: a.Shape})
			}
			e.Execute(ListOf(changes...))
		}
	case Deselect:
		e.Execute(DeselectWaypoint{})
		e.Selection.Clear()

	case SelectEvent:
		if a.Event >= 0 && a.Event < len(e.Level.Events) {
			e.Selection = SelectEventAt(a.Event)
		}
	case DeleteEvent:
		if a.Event >= 0 && a.Event < len(e.Level.Events) {
			e.Execute(Deselect{})
			if e.applied(a, mutate.DeleteEvent(&e.Level, a.Event)) {
				e.forgetEvents()
			}
		}
	case MoveEvent:
		if e.applied(a, mutate.MoveEvent(&e.Level, a.Event, a.Change)) {
			e.saveState(history.MoveEvent(a.Event))
		}
	case NewRgbSplit:
		e.newEffect(model.EffectRgbSplit, a.Duration)
	case NewPaletteSwap:
		e.newEffect(model.EffectPaletteSwap, a.Duration)
	case NewCameraShake:
		e.newEffect(model.EffectCameraShake, a.Duration)
	case ChangeEffectDuration:
		if e.applied(a, mutate.ChangeEffectDuration(&e.Level, a.Event, a.Change)) {
			e.saveState(history.EventDuration(a.Event))
		}
	case ChangeCameraShakeIntensity:
		if e.applied(a, mutate.ChangeCameraShakeIntensity(&e.Level, a.Event, a.Change)) {
			e.saveState(history.CameraShakeIntensity(a.Event))
		}

	case NewLight:
		e.Execute(Deselect{})
		e.State = Placing(a.Shape, false)
	case ToggleDangerPlacement:
		if e.State.Is(StatePlace) {
			e.State.Danger = !e.State.Danger
		}
	case PlaceLight:
		e.placeLight(a.Position)
	case DeleteLight:
		if e.applied(a, mutate.DeleteEvent(&e.Level, a.Light.Event)) {
			e.Selection.Clear()
			e.forgetEvents()
			e.saveState(history.Unknown)
		}
	case SelectLight:
		e.selectLight(a.Mode, a.Lights)
	case ChangeShape:
		if e.applied(a, mutate.ChangeShape(&e.Level, a.Light, a.Shape)) {
			e.saveState(history.Unknown)
		}
	case RotateLightAround:
		e.applied(a, mutate.RotateLightAround(&e.Level, a.Light, a.Anchor, a.Delta))
	case FlipHorizontal:
		e.applied(a, mutate.FlipHorizontal(&e.Level, a.Light, a.Anchor))
	case FlipVertical:
		e.applied(a, mutate.FlipVertical(&e.Level, a.Light, a.Anchor))
	case ToggleDanger:
		e.applied(a, mutate.ToggleDanger(&e.Level, a.Light))
	case ChangeFadeOut:
		if e.applied(a, mutate.ChangeFadeOut(&e.Level, a.Light, a.Change)) {
			e.saveState(history.FadeOut(a.Light))
		}
	case ChangeFadeIn:
		if e.applied(a, mutate.ChangeFadeIn(&e.Level, a.Light, a.Change)) {
			e.saveState(history.FadeIn(a.Light))
		}
	case MoveLight:
		if e.applied(a, mutate.MoveLight(&e.Level, a.Light, a.Time, a.Position)) {
			e.saveState(history.MoveLight(a.Light))
		}
	case HoverLight:
		id := a.Light
		e.HoveredLight = &id

	case NewWaypoint:
		e.Execute(DeselectWaypoint{})
		if e.State.Is(StateWaypoints) {
			e.State.Mode = WaypointsNew
		}
	case PlaceWaypoint:
		e.placeWaypoint(a)
	case DeleteWaypoint:
		e.deleteWaypoint(a)
	case SelectWaypoint:
		e.selectWaypoint(a.Waypoint, a.MoveTime)
	case DeselectWaypoint:
		if e.State.Is(StateWaypoints) {
			e.State.Selected = nil
		}
	case RotateWaypoint:
		e.PlaceRotation = a.Change.Apply(e.PlaceRotation)
		if e.applied(a, mutate.RotateWaypoint(&e.Level, a.Light, a.Waypoint, a.Change)) {
			e.saveState(history.Rotate(a.Light, a.Waypoint))
		}
	case ScaleWaypoint:
		if e.applied(a, mutate.ScaleWaypoint(&e.Level, a.Light, a.Waypoint, a.Change)) {
			e.saveState(history.Scale(a.Light, a.Waypoint))
		}
	case SetWaypointInterpolation:
		e.applied(a, mutate.SetWaypointInterpolation(&e.Level, a.Light, a.Waypoint, a.Interpolation))
	case SetWaypointCurve:
		e.applied(a, mutate.SetWaypointCurve(&e.Level, a.Light, a.Waypoint, a.Curve))
	case MoveWaypoint:
		e.moveWaypoint(a)
	case ChangeHollow:
		if e.applied(a, mutate.ChangeHollow(&e.Level, a.Light, a.Waypoint, a.Change)) {
			e.saveState(history.Hollow(a.Light, a.Waypoint))
		}

	case StartPlaying:
		if !e.State.Is(StatePlaying) {
			e.State = EditingState{
				Kind:     StatePlaying,
				Playback: &Playback{StartTime: e.CurrentTime, Previous: e.State},
			}
		}
	case StopPlaying:
		if e.State.Is(StatePlaying) && e.State.Playback != nil {
			e.CurrentTime = e.State.Playback.StartTime
			e.State = e.State.Playback.Previous
		}
	case StartDrag:
		e.startDrag(a)
	case EndDrag:
		if e.Drag != nil {
			e.Drag = nil
			e.History.Flush(&e.Level, history.Unknown)
		}

	default:
		log.Warn().Str("action", action.Name()).Msg("unhandled action")
	}

	// Catch edits that did not save under their own label.
	e.saveState(history.Unknown)
}

// ExecuteAll runs actions in order, each as its own step.
func (e *Editor) ExecuteAll(actions ...Action) {
	for _, a := range actions {
		e.Execute(a)
	}
}

func (e *Editor) saveState(label history.Label) {
	e.History.SaveState(&e.Level, label)
}

// historyLocked reports states in which undo and redo are ignored.
func (e *Editor) historyLocked() bool {
	return e.State.Is(StatePlace) || e.State.Is(StatePlaying)
}

// applied reports whether err is nil. Stale references and rejected reorders
// are expected while ids lag one step behind the level and are only logged.
func (e *Editor) applied(action Action, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, mutate.ErrTimeCollision):
		log.Debug().Str("action", action.Name()).Msg("reorder rejected: two waypoints would share a time")
	case errors.Is(err, mutate.ErrNegativeTime):
		log.Debug().Str("action", action.Name()).Msg("edit rejected: event would start before zero")
	case mutate.IsStale(err):
		log.Debug().Err(err).Str("action", action.Name()).Msg("ignoring stale reference")
	default:
		log.Warn().Err(err).Str("action", action.Name()).Msg("action failed")
	}
	return false
}

// forgetEvents drops every index-based handle after an event was removed:
// swap-removal hands the removed index to another event.
func (e *Editor) forgetEvents() {
	e.HoveredLight = nil
	e.Drag = nil
	if e.State.Is(StateWaypoints) {
		e.State = Idle()
	}
	if p := e.State.Playback; p != nil && p.Previous.Is(StateWaypoints) {
		p.Previous = Idle()
	}
}

func (e *Editor) copySelection(sel Selection) {
	var events []model.TimedEvent
	switch sel.Kind {
	case SelectionLights:
		for _, id := range sel.Lights {
			if id.Event >= 0 && id.Event < len(e.Level.Events) {
				events = append(events, e.Level.Events[id.Event])
			}
		}
	case SelectionEvent:
		if sel.Event >= 0 && sel.Event < len(e.Level.Events) {
			events = append(events, e.Level.Events[sel.Event])
		}
	default:
		e.Clipboard.Clear()
		return
	}
	e.Clipboard.Copy(ClipboardItem{CopyTime: e.CurrentTime, Events: events})
}

// paste appends the clipboard events shifted by the cursor movement since the
// copy, and selects the pasted lights. The shift stops at zero for the earliest
// event so the pasted group keeps its spacing.
func (e *Editor) paste() {
	item, ok := e.Clipboard.Paste()
	if !ok {
		return
	}
	shift := e.CurrentTime - item.CopyTime
	for _, ev := range item.Events {
		shift = max(shift, -ev.Time)
	}
	var lights []model.LightID
	for _, ev := range item.Events {
		ev.Time += shift
		e.Level.Events = append(e.Level.Events, ev)
		if ev.Event.Light != nil {
			lights = append(lights, model.LightID{Event: len(e.Level.Events) - 1})
		}
	}
	e.Selection = SelectLights(lights...)
}

func (e *Editor) cancel() {
	switch e.State.Kind {
	case StateIdle:
		e.Execute(Deselect{})
	case StatePlace:
		e.State = Idle()
	case StateWaypoints:
		if e.State.Mode == WaypointsNew {
			e.State.Mode = WaypointsIdle
			return
		}
		if e.State.Selected != nil {
			e.State.Selected = nil
			return
		}
		e.State = Idle()
	}
}

func (e *Editor) toggleWaypointsView() {
	switch e.State.Kind {
	case StateIdle:
		if light, ok := e.Selection.LightSingle(); ok {
			e.State = EditingWaypoints(light, WaypointsIdle, nil)
		}
	case StateWaypoints:
		e.State = Idle()
	}
}

// scrollTime moves the cursor, snapped to the configured beat fraction and kept
// between zero and a margin past the end of the level.
func (e *Editor) scrollTime(delta model.Time) {
	if e.State.Is(StatePlaying) {
		return
	}
	limit := e.Level.LastTime() + e.Config.ScrollMargin
	target := max(0, min(limit, e.CurrentTime+delta))
	e.CurrentTime = e.Level.Timing.SnapToBeat(target, e.Config.Snap)
}

// Advance moves the playback clock by dt. It does nothing unless playing.
func (e *Editor) Advance(dt model.Time) {
	p := e.State.Playback
	if !e.State.Is(StatePlaying) || p == nil {
		return
	}
	p.Elapsed += dt
	e.CurrentTime = p.StartTime + p.Elapsed
}

func (e *Editor) newEffect(kind model.EffectKind, duration model.Time) {
	e.Execute(Deselect{})
	mutate.NewEffect(&e.Level, e.CurrentTime, kind, duration)
}

func (e *Editor) placeTransform(position model.Vec2) model.TransformLight {
	return model.TransformLight{
		Translation: position,
		Rotation:    e.PlaceRotation,
		Scale:       e.PlaceScale,
		Hollow:      -1,
	}
}

// placeLight drops the light being placed so that its first keyframe lands on
// the cursor, then starts placing its next keyframe.
func (e *Editor) placeLight(position model.Vec2) {
	if !e.State.Is(StatePlace) {
		return
	}
	e.PlaceRotation = e.PlaceRotation.Normalized2Pi()
	id := mutate.PlaceLight(&e.Level, e.CurrentTime, e.State.Shape, e.State.Danger, e.placeTransform(position))
	e.Selection = SelectLights(id)
	e.State = EditingWaypoints(id, WaypointsNew, nil)
}

func (e *Editor) placeWaypoint(a PlaceWaypoint) {
	if !e.State.Is(StateWaypoints) || e.State.Mode != WaypointsNew {
		return
	}
	res, err := mutate.InsertWaypoint(&e.Level, e.State.Light, e.CurrentTime, e.placeTransform(a.Position))
	if !e.applied(a, err) {
		return
	}
	id := res.ID
	e.State.Selected = &id
}

func (e *Editor) deleteWaypoint(a DeleteWaypoint) {
	res, err := mutate.DeleteWaypoint(&e.Level, a.Light, a.Waypoint)
	if !e.applied(a, err) {
		return
	}
	if res.EventRemoved {
		e.Selection.Clear()
		e.forgetEvents()
	}
	if e.State.Is(StateWaypoints) {
		e.State.Selected = nil
	}
	e.saveState(history.Unknown)
}

func (e *Editor) selectLight(mode SelectMode, ids []model.LightID) {
	e.State = Idle()
	switch mode {
	case SelectAdd:
		for _, id := range ids {
			e.Selection.AddLight(id)
		}
	case SelectRemove:
		for _, id := range ids {
			e.Selection.RemoveLight(id)
		}
	case SelectSet:
		e.Selection.Clear()
		for _, id := range ids {
			e.Selection.AddLight(id)
		}
	}
}

func (e *Editor) selectWaypoint(wp model.WaypointID, moveTime bool) {
	light, ok := e.Selection.LightSingle()
	if !ok {
		return
	}
	ev, lt := e.Level.Light(light)
	if lt == nil {
		return
	}
	rel, ok := lt.Movement.Time(wp)
	if !ok {
		return
	}

	mode := WaypointsIdle
	if e.State.Is(StateWaypoints) {
		mode = e.State.Mode
	}
	e.State = EditingWaypoints(light, mode, &wp)

	if moveTime {
		e.Execute(ScrollTime{Delta: ev.Time + rel - e.CurrentTime})
	}
}

// moveWaypoint moves a keyframe in space, then in time. The time move reorders
// the movement; the selected and dragged keyframes follow their frames.
func (e *Editor) moveWaypoint(a MoveWaypoint) {
	if !a.Position.IsNoop() && e.applied(a, mutate.MoveWaypoint(&e.Level, a.Light, a.Waypoint, a.Position)) {
		e.saveState(history.MoveWaypoint(a.Light, a.Waypoint))
	}
	if a.Time.IsNoop() {
		return
	}

	var handles mutate.Handles
	if e.State.Is(StateWaypoints) && e.State.Light == a.Light {
		handles.Selected = e.State.Selected
	}
	if e.Drag != nil && e.Drag.Light == a.Light {
		handles.Drag = &e.Drag.Waypoint
	}
	res, err := mutate.MoveWaypointTime(&e.Level, a.Light, a.Waypoint, a.Time, handles, mutate.Options{KeepCurves: e.Config.KeepCurves})
	if !e.applied(a, err) {
		return
	}
	if res.Changed {
		e.saveState(history.MoveWaypointTime(a.Light, a.Waypoint))
	}
}

func (e *Editor) startDrag(a StartDrag) {
	ev, lt := e.Level.Light(a.Light)
	if lt == nil {
		return
	}
	rel, ok := lt.Movement.Time(a.Waypoint)
	if !ok {
		return
	}
	e.Drag = &Drag{Light: a.Light, Waypoint: a.Waypoint, From: ev.Time + rel}
}
