package tui

import (
	"context"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"

	"lightline-cli/internal/editor"
	"lightline-cli/internal/model"
	"lightline-cli/internal/mutate"
	"lightline-cli/internal/store"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	os.Exit(m.Run())
}

func newTestModel(t *testing.T) (appModel, store.Store) {
	t.Helper()
	ctx := context.Background()
	st := store.Store{Dir: t.TempDir()}

	// One light with keyframes at 500, 1000 and 1500.
	lvl := model.NewLevel(120)
	mutate.PlaceLight(&lvl, 1000, model.Circle(1), false, model.IdentityTransform())
	if _, err := st.CreateLevel(ctx, "intro", lvl); err != nil {
		t.Fatalf("CreateLevel: %v", err)
	}
	sess, _, err := st.LoadSession(ctx, "intro")
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	m := newAppModel(ctx, Options{
		Store:   st,
		Name:    "intro",
		Session: sess,
		Saved:   lvl,
		Config:  editor.DefaultConfig(),
	})
	m = update(m, tea.WindowSizeMsg{Width: 120, Height: 30})
	return m, st
}

func update(m appModel, msg tea.Msg) appModel {
	next, _ := m.Update(msg)
	return next.(appModel)
}

func press(m appModel, keys ...tea.KeyMsg) appModel {
	for _, k := range keys {
		m = update(m, k)
	}
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func absoluteFrameTimes(lvl *model.Level, event int) []model.Time {
	ev := &lvl.Events[event]
	var out []model.Time
	for _, f := range ev.Event.Light.Movement.TimedFrames() {
		out = append(out, ev.Time+f.Time)
	}
	return out
}

func TestScrollSnapsToQuarterBeats(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, keyRight, keyRight)
	if m.ed.CurrentTime != 250 {
		t.Fatalf("expected two quarter beats at 120 bpm; got %d", m.ed.CurrentTime)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyShiftRight})
	if m.ed.CurrentTime != 750 {
		t.Fatalf("expected one more beat; got %d", m.ed.CurrentTime)
	}
	m = press(m, keyLeft, keyLeft, keyLeft, keyLeft, keyLeft, keyLeft, keyLeft)
	if m.ed.CurrentTime != 0 {
		t.Fatalf("expected the cursor clamped at zero; got %d", m.ed.CurrentTime)
	}
}

func TestNextEventSelectsLightAndMovesCursor(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, runes("j"))
	if !m.ed.Selection.IsLightSingle(model.LightID{Event: 0}) {
		t.Fatalf("expected light 0 selected; got %+v", m.ed.Selection)
	}
	if m.ed.CurrentTime != 500 {
		t.Fatalf("expected the cursor on the event start; got %d", m.ed.CurrentTime)
	}
}

func TestPlaceLightAtCamera(t *testing.T) {
	m, _ := newTestModel(t)
	for range 8 {
		m = press(m, keyRight)
	}
	m = press(m, runes("n"))
	if !m.ed.State.Is(editor.StatePlace) {
		t.Fatalf("expected placing state; got %s", m.ed.State.Kind)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyRight, Alt: true}, runes("d"), keyEnter)

	if len(m.ed.Level.Events) != 2 {
		t.Fatalf("expected a second event; got %d", len(m.ed.Level.Events))
	}
	ev := m.ed.Level.Events[1]
	if ev.Time != 500 || !ev.Event.Light.Danger {
		t.Fatalf("unexpected placed light: time=%d danger=%v", ev.Time, ev.Event.Light.Danger)
	}
	if got := ev.Event.Light.Movement.Waypoints[0].Transform.Translation; got != model.V2(0.5, 0) {
		t.Fatalf("expected the light at the nudged camera; got %+v", got)
	}
	if !m.ed.State.Is(editor.StateWaypoints) || m.ed.State.Mode != editor.WaypointsNew {
		t.Fatalf("expected to continue with a new keyframe; got %+v", m.ed.State)
	}

	// Leave keyframe mode, then undo the placement.
	m = press(m, keyEsc, keyEsc, runes("u"))
	if len(m.ed.Level.Events) != 1 {
		t.Fatalf("expected placement undone; got %d events", len(m.ed.Level.Events))
	}
}

func TestDragKeyframeIsOneUndoStep(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, runes("j"), keyEnter, keyTab, keyTab)
	if _, wp, ok := m.ed.State.SelectedWaypoint(); !ok || wp != model.FrameID(0) {
		t.Fatalf("expected the middle keyframe selected; got %+v", m.ed.State)
	}
	if m.ed.CurrentTime != 1000 {
		t.Fatalf("expected the cursor on the keyframe; got %d", m.ed.CurrentTime)
	}

	m = press(m, runes("m"))
	if !m.dragging {
		t.Fatalf("expected drag mode")
	}
	m = press(m, keyRight, keyRight, keyRight, keyRight, runes("m"))
	if m.dragging || m.ed.Drag != nil {
		t.Fatalf("expected the drag to end")
	}

	got := absoluteFrameTimes(&m.ed.Level, 0)
	want := []model.Time{1000, 1500, 2000}
	if len(got) != len(want) {
		t.Fatalf("unexpected frames: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected frames %v; got %v", want, got)
		}
	}
	if m.ed.History.UndoLen() != 1 {
		t.Fatalf("expected one undo step for the drag; got %d", m.ed.History.UndoLen())
	}

	m = press(m, runes("u"))
	if got := absoluteFrameTimes(&m.ed.Level, 0); got[0] != 500 || got[2] != 1500 {
		t.Fatalf("expected the drag undone; got %v", got)
	}
}

func TestInsertKeyframeAtCursor(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, runes("j"), keyEnter)
	for range 6 {
		m = press(m, keyRight)
	}
	if m.ed.CurrentTime != 1250 {
		t.Fatalf("unexpected cursor: %d", m.ed.CurrentTime)
	}
	m = press(m, runes("i"))
	if got := absoluteFrameTimes(&m.ed.Level, 0); len(got) != 4 || got[2] != 1250 {
		t.Fatalf("expected a keyframe at 1250; got %v", got)
	}
	if _, wp, ok := m.ed.State.SelectedWaypoint(); !ok || wp != model.FrameID(1) {
		t.Fatalf("expected the new keyframe selected; got %+v", m.ed.State)
	}

	m = press(m, runes("r"), runes("+"), runes("]"))
	tr := m.ed.Level.Events[0].Event.Light.Movement.Waypoints[1].Transform
	if tr.Rotation != model.Degrees(rotateStep) {
		t.Fatalf("expected rotation; got %v", tr.Rotation)
	}
	if tr.Scale <= 1 {
		t.Fatalf("expected the keyframe to grow; got %v", tr.Scale)
	}

	m = press(m, runes("x"))
	if got := absoluteFrameTimes(&m.ed.Level, 0); len(got) != 3 {
		t.Fatalf("expected the keyframe deleted; got %v", got)
	}
}

func TestDeleteAndUndoLight(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, runes("j"), runes("x"))
	if len(m.ed.Level.Events) != 0 || !m.ed.Selection.IsEmpty() {
		t.Fatalf("expected the light deleted and deselected")
	}
	m = press(m, runes("u"))
	if len(m.ed.Level.Events) != 1 {
		t.Fatalf("expected the light restored")
	}
	m = press(m, runes("U"))
	if len(m.ed.Level.Events) != 0 {
		t.Fatalf("expected redo to delete it again")
	}
}

func TestPlaybackTicksAndStops(t *testing.T) {
	m, _ := newTestModel(t)
	next, cmd := m.Update(keySpace)
	m = next.(appModel)
	if !m.ed.State.Is(editor.StatePlaying) || cmd == nil {
		t.Fatalf("expected playback to start with a tick scheduled")
	}

	m = press(m, keyRight)
	if m.ed.CurrentTime != 0 {
		t.Fatalf("expected scrolling ignored while playing")
	}

	next, cmd = m.Update(playTickMsg{})
	m = next.(appModel)
	if m.ed.CurrentTime != 33 || cmd == nil {
		t.Fatalf("expected the clock advanced by one frame; got %d", m.ed.CurrentTime)
	}

	m = press(m, keySpace)
	if m.ed.State.Is(editor.StatePlaying) || m.ed.CurrentTime != 0 {
		t.Fatalf("expected playback stopped at its start; got %s at %d", m.ed.State.Kind, m.ed.CurrentTime)
	}
}

func TestSaveAndQuitPersist(t *testing.T) {
	m, st := newTestModel(t)
	ctx := context.Background()

	m = press(m, runes("j"), runes("d"))
	if !strings.Contains(ansi.Strip(m.View()), "intro*") {
		t.Fatalf("expected a dirty marker in the header")
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	saved, _, err := st.LoadLevel(ctx, "intro")
	if err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}
	if !saved.Events[0].Event.Light.Danger {
		t.Fatalf("expected the level saved")
	}
	if strings.Contains(ansi.Strip(m.View()), "intro*") {
		t.Fatalf("expected a clean header after saving")
	}

	m = press(m, keyRight)
	next, cmd := m.Update(runes("q"))
	m = next.(appModel)
	if cmd == nil {
		t.Fatalf("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	sess, _, err := st.LoadSession(ctx, "intro")
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if sess.CurrentTime != m.ed.CurrentTime || len(sess.History.Undo) != 1 {
		t.Fatalf("expected the session written on quit; got time=%d undo=%d", sess.CurrentTime, len(sess.History.Undo))
	}
}

func TestHelpOverlay(t *testing.T) {
	t.Setenv("LIGHTLINE_TUI_MD_STYLE", "dark")
	m, _ := newTestModel(t)
	m = press(m, runes("?"))
	if !m.showHelp {
		t.Fatalf("expected help shown")
	}
	if !strings.Contains(ansi.Strip(m.View()), "close help") {
		t.Fatalf("expected the help overlay")
	}
	// Editing keys are swallowed by the overlay.
	m = press(m, runes("x"))
	if len(m.ed.Level.Events) != 1 {
		t.Fatalf("expected no edit while help is open")
	}
	m = press(m, keyEsc)
	if m.showHelp {
		t.Fatalf("expected help closed")
	}
}

func TestViewShowsTimeline(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, runes("j"), keyEnter)
	out := ansi.Strip(m.View())
	for _, want := range []string{"lightline intro", "circle(r=1)", "keyframes of light 0", "initial", "last"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view:\n%s", want, out)
		}
	}
	for _, line := range strings.Split(out, "\n") {
		if ansi.StringWidth(line) > 120 {
			t.Fatalf("line wider than the terminal: %q", line)
		}
	}
}
