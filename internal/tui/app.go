package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"lightline-cli/internal/curve"
	"lightline-cli/internal/docs"
	"lightline-cli/internal/editor"
	"lightline-cli/internal/history"
	"lightline-cli/internal/model"
	"lightline-cli/internal/store"
)

const (
	frameInterval = time.Second / 30
	rotateStep    = 15.0
	scaleStep     = model.Coord(0.25)
	hollowStep    = model.Coord(0.1)
)

type playTickMsg time.Time

type Options struct {
	Store   store.Store
	Name    string
	Session editor.Session
	Saved   model.Level
	Config  editor.Config
	// GridCell is the nudge distance for alt+arrows.
	GridCell model.Coord
	// PlaceScale is the scale new lights start with.
	PlaceScale model.Coord
}

type appModel struct {
	ctx   context.Context
	store store.Store
	name  string

	ed    *editor.Editor
	saved model.Level
	grid  model.Coord

	keys     keyMap
	help     help.Model
	helpView viewport.Model
	showHelp bool
	dragging bool

	width  int
	height int

	status    string
	statusErr bool
}

func newAppModel(ctx context.Context, opts Options) appModel {
	ed := editor.Resume(opts.Session, opts.Config)
	if opts.PlaceScale > 0 && opts.Session.PlaceScale == 0 {
		ed.PlaceScale = opts.PlaceScale.Clamp(editor.MinPlaceScale, editor.MaxPlaceScale)
	}
	grid := opts.GridCell
	if grid <= 0 {
		grid = 0.5
	}
	return appModel{
		ctx:      ctx,
		store:    opts.Store,
		name:     opts.Name,
		ed:       ed,
		saved:    opts.Saved.Clone(),
		grid:     grid,
		keys:     defaultKeyMap(),
		help:     help.New(),
		helpView: viewport.New(80, 20),
		width:    80,
		height:   24,
	}
}

func (m appModel) Init() tea.Cmd { return nil }

func playTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return playTickMsg(t) })
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.helpView.Width = msg.Width
		m.helpView.Height = max(1, msg.Height-2)
		if m.showHelp {
			m.helpView.SetContent(m.helpContent())
		}
		return m, nil

	case playTickMsg:
		if !m.ed.State.Is(editor.StatePlaying) {
			return m, nil
		}
		m.ed.Advance(model.Time(frameInterval / time.Millisecond))
		if m.ed.CurrentTime > m.ed.Level.LastTime() {
			m.ed.Execute(editor.StopPlaying{})
			return m, nil
		}
		return m, playTick()

	case tea.KeyMsg:
		if m.showHelp {
			switch {
			case key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
				m.showHelp = false
				return m, nil
			}
			var cmd tea.Cmd
			m.helpView, cmd = m.helpView.Update(msg)
			return m, cmd
		}
		m.status, m.statusErr = "", false
		return m.handleKey(msg)
	}
	return m, nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ed := m.ed
	k := m.keys

	if m.dragging {
		return m.handleDragKey(msg)
	}

	switch {
	case key.Matches(msg, k.Quit):
		m.persist(false)
		return m, tea.Quit
	case key.Matches(msg, k.Save):
		m.persist(true)
		return m, nil
	case key.Matches(msg, k.Help):
		m.showHelp = true
		m.helpView.SetContent(m.helpContent())
		m.helpView.GotoTop()
		return m, nil
	case key.Matches(msg, k.Play):
		if ed.State.Is(editor.StatePlaying) {
			ed.Execute(editor.StopPlaying{})
			return m, nil
		}
		ed.Execute(editor.StartPlaying{})
		return m, playTick()
	}

	if ed.State.Is(editor.StatePlaying) {
		if key.Matches(msg, k.Cancel) {
			ed.Execute(editor.StopPlaying{})
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, k.Cancel):
		ed.Execute(editor.Cancel{})

	case key.Matches(msg, k.Left):
		ed.Execute(editor.ScrollTime{Delta: -m.snapStep()})
	case key.Matches(msg, k.Right):
		ed.Execute(editor.ScrollTime{Delta: m.snapStep()})
	case key.Matches(msg, k.BeatLeft):
		ed.Execute(editor.ScrollTime{Delta: -ed.Level.Timing.BeatDuration(ed.CurrentTime)})
	case key.Matches(msg, k.BeatRight):
		ed.Execute(editor.ScrollTime{Delta: ed.Level.Timing.BeatDuration(ed.CurrentTime)})
	case key.Matches(msg, k.PrevEvent):
		m.cycleEvent(-1)
	case key.Matches(msg, k.NextEvent):
		m.cycleEvent(1)
	case key.Matches(msg, k.NextFrame):
		m.cycleWaypoint(1)
	case key.Matches(msg, k.PrevFrame):
		m.cycleWaypoint(-1)

	case key.Matches(msg, k.Waypoints):
		switch {
		case ed.State.Is(editor.StatePlace):
			ed.Execute(editor.PlaceLight{Position: ed.Camera})
		case ed.State.Is(editor.StateWaypoints) && ed.State.Mode == editor.WaypointsNew:
			ed.Execute(editor.PlaceWaypoint{Position: m.positionAtCursor(ed.State.Light)})
		default:
			ed.Execute(editor.ToggleWaypointsView{})
		}

	case key.Matches(msg, k.NudgeUp):
		m.nudge(model.V2(0, m.grid))
	case key.Matches(msg, k.NudgeDown):
		m.nudge(model.V2(0, -m.grid))
	case key.Matches(msg, k.NudgeLeft):
		m.nudge(model.V2(-m.grid, 0))
	case key.Matches(msg, k.NudgeRight):
		m.nudge(model.V2(m.grid, 0))
	case key.Matches(msg, k.RotateCW):
		m.rotate(model.Degrees(rotateStep))
	case key.Matches(msg, k.RotateCCW):
		m.rotate(model.Degrees(-rotateStep))
	case key.Matches(msg, k.ScaleUp):
		m.scale(scaleStep)
	case key.Matches(msg, k.ScaleDown):
		m.scale(-scaleStep)
	case key.Matches(msg, k.HollowUp):
		m.hollow(hollowStep)
	case key.Matches(msg, k.HollowDown):
		m.hollow(-hollowStep)
	case key.Matches(msg, k.Earlier):
		m.shiftTime(-m.snapStep())
	case key.Matches(msg, k.Later):
		m.shiftTime(m.snapStep())

	case key.Matches(msg, k.Drag):
		if light, wp, ok := ed.State.SelectedWaypoint(); ok {
			ed.Execute(editor.StartDrag{Light: light, Waypoint: wp})
			m.dragging = ed.Drag != nil
		}
	case key.Matches(msg, k.Insert):
		if ed.State.Is(editor.StateWaypoints) {
			light := ed.State.Light
			ed.Execute(editor.NewWaypoint{})
			ed.Execute(editor.PlaceWaypoint{Position: m.positionAtCursor(light)})
		}
	case key.Matches(msg, k.Delete):
		m.delete()
	case key.Matches(msg, k.Danger):
		m.toggleDanger()
	case key.Matches(msg, k.New):
		ed.Execute(editor.NewLight{Shape: model.Circle(1)})
	case key.Matches(msg, k.Circle):
		ed.Execute(editor.SelectShape{Shape: model.Circle(1)})
	case key.Matches(msg, k.Line):
		ed.Execute(editor.SelectShape{Shape: model.Line(0.5)})
	case key.Matches(msg, k.Rectangle):
		ed.Execute(editor.SelectShape{Shape: model.Rectangle(1, 1)})
	case key.Matches(msg, k.CameraShake):
		ed.Execute(editor.NewCameraShake{Duration: ed.Level.Timing.BeatDuration(ed.CurrentTime)})
	case key.Matches(msg, k.Copy):
		ed.Execute(editor.Copy{})
	case key.Matches(msg, k.Paste):
		ed.Execute(editor.Paste{})
	case key.Matches(msg, k.Undo):
		ed.Execute(editor.Undo{})
	case key.Matches(msg, k.Redo):
		ed.Execute(editor.Redo{})
	case key.Matches(msg, k.ZoomIn):
		ed.Execute(editor.TimelineZoom{Change: model.ChangeBy(model.Coord(1))})
	case key.Matches(msg, k.ZoomOut):
		ed.Execute(editor.TimelineZoom{Change: model.ChangeBy(model.Coord(-1))})
	}
	return m, nil
}

// handleDragKey moves the dragged keyframe in time. Every tick joins one
// history step that EndDrag seals.
func (m appModel) handleDragKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ed := m.ed
	k := m.keys
	var delta model.Time
	switch {
	case key.Matches(msg, k.Left):
		delta = -m.snapStep()
	case key.Matches(msg, k.Right):
		delta = m.snapStep()
	case key.Matches(msg, k.BeatLeft):
		delta = -ed.Level.Timing.BeatDuration(ed.CurrentTime)
	case key.Matches(msg, k.BeatRight):
		delta = ed.Level.Timing.BeatDuration(ed.CurrentTime)
	case key.Matches(msg, k.Drag), key.Matches(msg, k.Waypoints), key.Matches(msg, k.Cancel):
		ed.Execute(editor.EndDrag{})
		m.dragging = false
		return m, nil
	case key.Matches(msg, k.Quit):
		ed.Execute(editor.EndDrag{})
		m.dragging = false
		m.persist(false)
		return m, tea.Quit
	default:
		return m, nil
	}
	if ed.Drag == nil {
		m.dragging = false
		return m, nil
	}
	ed.Execute(editor.ListWith(history.Drag, editor.MoveWaypoint{
		Light:    ed.Drag.Light,
		Waypoint: ed.Drag.Waypoint,
		Time:     model.ChangeBy(delta),
	}))
	if _, wp, ok := ed.State.SelectedWaypoint(); ok {
		ed.Execute(editor.SelectWaypoint{Waypoint: wp, MoveTime: true})
	}
	return m, nil
}

func (m appModel) snapStep() model.Time {
	ed := m.ed
	step := ed.Config.Snap.AsTime(ed.Level.Timing.Get(ed.CurrentTime).BeatTime)
	return max(step, 1)
}

// cycleEvent selects the previous or next event and moves the cursor to it.
func (m appModel) cycleEvent(dir int) {
	ed := m.ed
	n := len(ed.Level.Events)
	if n == 0 {
		return
	}
	cur := -1
	if i, ok := ed.Selection.EventSingle(); ok {
		cur = i
	} else if id, ok := ed.Selection.LightSingle(); ok {
		cur = id.Event
	}
	next := 0
	switch {
	case cur < 0 && dir < 0:
		next = n - 1
	case cur >= 0:
		next = ((cur+dir)%n + n) % n
	}

	if ed.Level.Events[next].Event.Light != nil {
		ed.Execute(editor.SelectLight{Mode: editor.SelectSet, Lights: []model.LightID{{Event: next}}})
	} else {
		ed.Execute(editor.SelectEvent{Event: next})
	}
	ed.Execute(editor.ScrollTime{Delta: ed.Level.Events[next].Time - ed.CurrentTime})
}

func (m appModel) cycleWaypoint(dir int) {
	ed := m.ed
	if !ed.State.Is(editor.StateWaypoints) {
		return
	}
	_, lt := ed.Level.Light(ed.State.Light)
	if lt == nil {
		return
	}
	n := len(lt.Movement.Waypoints)
	var (
		next model.WaypointID
		ok   bool
	)
	switch {
	case ed.State.Selected == nil && dir > 0:
		next, ok = model.InitialID, true
	case ed.State.Selected == nil:
		next, ok = model.LastID, true
	case dir > 0:
		next, ok = ed.State.Selected.Next(n)
	default:
		next, ok = ed.State.Selected.Prev(n)
	}
	if ok {
		ed.Execute(editor.SelectWaypoint{Waypoint: next, MoveTime: true})
	}
}

// positionAtCursor is where the light sits at the cursor, so an inserted
// keyframe does not jump.
func (m appModel) positionAtCursor(light model.LightID) model.Vec2 {
	ev, lt := m.ed.Level.Light(light)
	if lt == nil {
		return m.ed.Camera
	}
	return curve.Sample(&lt.Movement, m.ed.CurrentTime-ev.Time).Translation
}

func (m appModel) nudge(delta model.Vec2) {
	ed := m.ed
	if light, wp, ok := ed.State.SelectedWaypoint(); ok {
		ed.Execute(editor.MoveWaypoint{Light: light, Waypoint: wp, Position: model.ChangeBy(delta)})
		return
	}
	if ed.State.Is(editor.StatePlace) {
		ed.Execute(editor.CameraPan{Change: model.ChangeBy(delta)})
		return
	}
	if ed.Selection.Kind != editor.SelectionLights {
		return
	}
	moves := make([]editor.Action, 0, len(ed.Selection.Lights))
	for _, id := range ed.Selection.Lights {
		moves = append(moves, editor.MoveLight{Light: id, Position: model.ChangeBy(delta)})
	}
	ed.Execute(editor.ListOf(moves...))
}

func (m appModel) rotate(delta model.Angle) {
	ed := m.ed
	if light, wp, ok := ed.State.SelectedWaypoint(); ok {
		ed.Execute(editor.RotateWaypoint{Light: light, Waypoint: wp, Change: model.ChangeBy(delta)})
		return
	}
	if ed.State.Is(editor.StatePlace) {
		ed.Execute(editor.RotatePlacement{Delta: delta})
		return
	}
	if light, ok := ed.Selection.LightSingle(); ok {
		ed.Execute(editor.RotateLightAround{Light: light, Anchor: m.positionAtCursor(light), Delta: delta})
	}
}

func (m appModel) scale(delta model.Coord) {
	ed := m.ed
	if light, wp, ok := ed.State.SelectedWaypoint(); ok {
		ed.Execute(editor.ScaleWaypoint{Light: light, Waypoint: wp, Change: model.ChangeBy(delta)})
		return
	}
	if ed.State.Is(editor.StatePlace) {
		ed.Execute(editor.ScalePlacement{Change: model.ChangeBy(delta)})
	}
}

func (m appModel) hollow(delta model.Coord) {
	if light, wp, ok := m.ed.State.SelectedWaypoint(); ok {
		m.ed.Execute(editor.ChangeHollow{Light: light, Waypoint: wp, Change: model.ChangeBy(delta)})
	}
}

// shiftTime moves the selected lights, or the selected effect, in time.
func (m appModel) shiftTime(delta model.Time) {
	ed := m.ed
	if i, ok := ed.Selection.EventSingle(); ok {
		ed.Execute(editor.MoveEvent{Event: i, Change: model.ChangeBy(delta)})
		return
	}
	if ed.Selection.Kind != editor.SelectionLights {
		return
	}
	moves := make([]editor.Action, 0, len(ed.Selection.Lights))
	for _, id := range ed.Selection.Lights {
		moves = append(moves, editor.MoveLight{Light: id, Time: model.ChangeBy(delta)})
	}
	ed.Execute(editor.ListOf(moves...))
}

func (m appModel) delete() {
	ed := m.ed
	if light, wp, ok := ed.State.SelectedWaypoint(); ok {
		ed.Execute(editor.DeleteWaypoint{Light: light, Waypoint: wp})
		return
	}
	if light, ok := ed.Selection.LightSingle(); ok {
		ed.Execute(editor.DeleteLight{Light: light})
		return
	}
	if i, ok := ed.Selection.EventSingle(); ok {
		ed.Execute(editor.DeleteEvent{Event: i})
	}
}

func (m appModel) toggleDanger() {
	ed := m.ed
	if ed.State.Is(editor.StatePlace) {
		ed.Execute(editor.ToggleDangerPlacement{})
		return
	}
	if ed.Selection.Kind != editor.SelectionLights {
		return
	}
	toggles := make([]editor.Action, 0, len(ed.Selection.Lights))
	for _, id := range ed.Selection.Lights {
		toggles = append(toggles, editor.ToggleDanger{Light: id})
	}
	ed.Execute(editor.ListOf(toggles...))
}

// persist writes the session. With saveLevel the working level also becomes
// the saved version.
func (m *appModel) persist(saveLevel bool) {
	if m.name == "" {
		return
	}
	m.ed.Execute(editor.FlushChanges{})
	if _, err := m.store.SaveSession(m.ctx, m.name, m.ed.Session(), saveLevel); err != nil {
		log.Error().Err(err).Str("levelName", m.name).Msg("save session")
		m.status, m.statusErr = fmt.Sprintf("save failed: %v", err), true
		return
	}
	if saveLevel {
		m.saved = m.ed.Level.Clone()
		m.status = "saved " + m.name
	}
}

func (m appModel) helpContent() string {
	src, ok := docs.Get("keys")
	if !ok {
		return m.help.FullHelpView(m.keys.FullHelp())
	}
	return RenderMarkdown(src, m.width-2)
}
