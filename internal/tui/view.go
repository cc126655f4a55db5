package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"lightline-cli/internal/editor"
	"lightline-cli/internal/model"
)

const (
	labelWidth = 26
	// colSpan is the time one timeline column covers at zoom 1.
	colSpan model.Time = 125
)

func (m appModel) View() string {
	if m.showHelp {
		return m.helpView.View() + "\n" + styleMuted().Render("esc/? close help")
	}

	var b strings.Builder
	b.WriteString(m.fit(m.headerView()))
	b.WriteString("\n")
	b.WriteString(m.fit(m.rulerView()))
	b.WriteString("\n")

	detail := m.detailView()
	footer := []string{m.statusView(), m.help.ShortHelpView(m.keys.ShortHelp())}
	rows := m.height - 2 - len(detail) - len(footer)
	for _, line := range m.timelineRows(max(1, rows)) {
		b.WriteString(m.fit(line))
		b.WriteString("\n")
	}
	for _, line := range detail {
		b.WriteString(m.fit(line))
		b.WriteString("\n")
	}
	for i, line := range footer {
		b.WriteString(m.fit(line))
		if i < len(footer)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m appModel) fit(line string) string {
	if m.width <= 0 {
		return line
	}
	return ansi.Truncate(line, m.width, "…")
}

func fmtTime(t model.Time) string {
	return fmt.Sprintf("%.3fs", float64(t.Float()))
}

func (m appModel) headerView() string {
	ed := m.ed
	name := m.name
	if name == "" {
		name = ed.Name
	}
	if ed.Dirty(&m.saved) {
		name += "*"
	}
	beat := ed.Level.Timing.Get(ed.CurrentTime)
	beats := 0.0
	if beat.BeatTime > 0 {
		beats = float64((ed.CurrentTime - beat.Time).Float() / beat.BeatTime)
	}
	state := string(ed.State.Kind)
	if m.dragging {
		state = "drag"
	} else if ed.State.Is(editor.StateWaypoints) && ed.State.Mode == editor.WaypointsNew {
		state = "new keyframe"
	}
	left := styleHeader().Render("lightline " + name)
	right := fmt.Sprintf(" t=%s  beat %.2f  %.0f bpm  zoom %g  %s  undo %d/%d",
		fmtTime(ed.CurrentTime), beats, 60/float64(beat.BeatTime), float64(ed.Zoom), state,
		ed.History.UndoLen(), ed.History.RedoLen())
	return left + styleMuted().Render(right)
}

func (m appModel) columns() int {
	return max(8, m.width-labelWidth-1)
}

func (m appModel) span() model.Time {
	return max(1, model.Time(float64(colSpan)/float64(m.ed.Zoom)))
}

// windowStart keeps the cursor a quarter of the way into the timeline.
func (m appModel) windowStart() model.Time {
	return m.ed.CurrentTime - model.Time(m.columns()/4)*m.span()
}

func (m appModel) cursorColumn() int {
	return int((m.ed.CurrentTime - m.windowStart()) / m.span())
}

func (m appModel) rulerView() string {
	cols := m.columns()
	start, span := m.windowStart(), m.span()
	beat := max(1, m.ed.Level.Timing.BeatDuration(m.ed.CurrentTime))
	ruler := make([]rune, cols)
	for c := range ruler {
		t0 := start + model.Time(c)*span
		ruler[c] = ' '
		if t0 >= 0 && (t0%beat) < span {
			ruler[c] = '┊'
		}
	}
	cur := m.cursorColumn()
	line := string(ruler[:cur]) + styleCursor().Render("▼") + string(ruler[cur+1:])
	return strings.Repeat(" ", labelWidth+1) + line
}

func (m appModel) selectedEvent() int {
	if i, ok := m.ed.Selection.EventSingle(); ok {
		return i
	}
	if id, ok := m.ed.Selection.LightSingle(); ok {
		return id.Event
	}
	return -1
}

func (m appModel) timelineRows(limit int) []string {
	ed := m.ed
	if len(ed.Level.Events) == 0 {
		return []string{styleMuted().Render("  no events: n places a light, e adds a camera shake")}
	}
	sel := m.selectedEvent()
	offset := 0
	if sel >= limit {
		offset = sel - limit + 1
	}
	end := min(len(ed.Level.Events), offset+limit)
	out := make([]string, 0, end-offset)
	for i := offset; i < end; i++ {
		out = append(out, m.eventRow(i))
	}
	return out
}

func (m appModel) eventLabel(i int) string {
	ev := &m.ed.Level.Events[i]
	switch {
	case ev.Event.Light != nil:
		lt := ev.Event.Light
		label := fmt.Sprintf("%3d %s", i, lt.Shape)
		if lt.Danger {
			label += " !"
		}
		return label
	case ev.Event.Effect != nil:
		return fmt.Sprintf("%3d %s", i, ev.Event.Effect.Kind)
	}
	return fmt.Sprintf("%3d ?", i)
}

func (m appModel) eventRow(i int) string {
	ed := m.ed
	ev := &ed.Level.Events[i]
	cols := m.columns()
	start, span := m.windowStart(), m.span()
	from, to := ev.Time, ev.Time+ev.Duration()

	var frames []model.Time
	bar := styleEffectBar()
	fill := '░'
	if lt := ev.Event.Light; lt != nil {
		bar = styleLightBar(lt.Danger)
		fill = '█'
		for _, f := range lt.Movement.TimedFrames() {
			frames = append(frames, ev.Time+f.Time)
		}
	}

	cur := m.cursorColumn()
	var line strings.Builder
	for c := 0; c < cols; c++ {
		t0 := start + model.Time(c)*span
		t1 := t0 + span
		switch {
		case c == cur:
			line.WriteString(styleCursor().Render("│"))
		case hasFrame(frames, t0, t1):
			line.WriteString(bar.Render("◆"))
		case t1 > from && t0 <= to:
			line.WriteString(bar.Render(string(fill)))
		default:
			line.WriteString(" ")
		}
	}

	label := ansi.Truncate(m.eventLabel(i), labelWidth, "…")
	label += strings.Repeat(" ", max(0, labelWidth-ansi.StringWidth(label)))
	if i == m.selectedEvent() || m.ed.Selection.IsLightSelected(model.LightID{Event: i}) {
		label = styleSelectedRow().Render(label)
	}
	return label + " " + line.String()
}

func hasFrame(frames []model.Time, t0, t1 model.Time) bool {
	for _, f := range frames {
		if f >= t0 && f < t1 {
			return true
		}
	}
	return false
}

// detailView lists the keyframes of the light under edit, or the placement
// settings while placing.
func (m appModel) detailView() []string {
	ed := m.ed
	switch {
	case ed.State.Is(editor.StatePlace):
		danger := ""
		if ed.State.Danger {
			danger = "  danger"
		}
		return []string{styleMuted().Render(fmt.Sprintf("placing %s at (%.2f, %.2f)  rot %.0f°  scale %.2f%s  enter places",
			ed.State.Shape, float64(ed.Camera.X), float64(ed.Camera.Y),
			ed.PlaceRotation.Degrees(), float64(ed.PlaceScale), danger))}
	case ed.State.Is(editor.StateWaypoints):
		ev, lt := ed.Level.Light(ed.State.Light)
		if lt == nil {
			return nil
		}
		out := []string{lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("keyframes of light %d", ed.State.Light.Event))}
		for _, f := range lt.Movement.TimedFrames() {
			tr := f.Transform
			line := fmt.Sprintf("  %-8s %9s  pos (%6.2f, %6.2f)  rot %5.0f°  scale %5.2f  hollow %5.2f",
				f.ID, fmtTime(ev.Time+f.Time), float64(tr.Translation.X), float64(tr.Translation.Y),
				tr.Rotation.Degrees(), float64(tr.Scale), float64(tr.Hollow))
			if interp, traj, ok := lt.Movement.Interpolation(f.ID); ok {
				line += "  " + interp.String()
				if traj != nil {
					line += "/" + traj.Kind.String()
				}
			}
			if ed.State.Selected != nil && *ed.State.Selected == f.ID {
				line = styleSelectedRow().Render(line)
			}
			out = append(out, line)
		}
		return out
	}
	return nil
}

func (m appModel) statusView() string {
	if m.status != "" {
		return styleStatus(m.statusErr).Render(m.status)
	}
	ed := m.ed
	switch {
	case ed.State.Is(editor.StatePlaying):
		return styleMuted().Render("playing: space or esc stops")
	case m.dragging:
		return styleMuted().Render("dragging keyframe: ←/→ move, m or enter drops")
	}
	return ""
}
