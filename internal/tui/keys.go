package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left, Right          key.Binding
	BeatLeft, BeatRight  key.Binding
	PrevEvent, NextEvent key.Binding
	Waypoints            key.Binding
	NextFrame, PrevFrame key.Binding

	NudgeUp, NudgeDown, NudgeLeft, NudgeRight key.Binding
	RotateCW, RotateCCW                       key.Binding
	ScaleUp, ScaleDown                        key.Binding
	HollowDown, HollowUp                      key.Binding
	Earlier, Later                            key.Binding

	Drag        key.Binding
	Insert      key.Binding
	Delete      key.Binding
	Danger      key.Binding
	New         key.Binding
	Circle      key.Binding
	Line        key.Binding
	Rectangle   key.Binding
	CameraShake key.Binding
	Copy, Paste key.Binding
	Undo, Redo  key.Binding

	Play    key.Binding
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Cancel  key.Binding
	Save    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "back")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "forward")),
		BeatLeft:  key.NewBinding(key.WithKeys("shift+left"), key.WithHelp("⇧←", "beat back")),
		BeatRight: key.NewBinding(key.WithKeys("shift+right"), key.WithHelp("⇧→", "beat forward")),
		PrevEvent: key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev event")),
		NextEvent: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next event")),
		Waypoints: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "keyframes")),
		NextFrame: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next keyframe")),
		PrevFrame: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("⇧tab", "prev keyframe")),

		NudgeUp:    key.NewBinding(key.WithKeys("alt+up"), key.WithHelp("alt+↑", "nudge up")),
		NudgeDown:  key.NewBinding(key.WithKeys("alt+down"), key.WithHelp("alt+↓", "nudge down")),
		NudgeLeft:  key.NewBinding(key.WithKeys("alt+left"), key.WithHelp("alt+←", "nudge left")),
		NudgeRight: key.NewBinding(key.WithKeys("alt+right"), key.WithHelp("alt+→", "nudge right")),
		RotateCW:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rotate")),
		RotateCCW:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "rotate back")),
		ScaleUp:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "grow")),
		ScaleDown:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "shrink")),
		HollowDown: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "less hollow")),
		HollowUp:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "more hollow")),
		Earlier:    key.NewBinding(key.WithKeys(","), key.WithHelp(",", "earlier")),
		Later:      key.NewBinding(key.WithKeys("."), key.WithHelp(".", "later")),

		Drag:        key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "drag keyframe")),
		Insert:      key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "insert keyframe")),
		Delete:      key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
		Danger:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "danger")),
		New:         key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new light")),
		Circle:      key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "circle")),
		Line:        key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "line")),
		Rectangle:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "rectangle")),
		CameraShake: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "camera shake")),
		Copy:        key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy")),
		Paste:       key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "paste")),
		Undo:        key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Redo:        key.NewBinding(key.WithKeys("U"), key.WithHelp("U", "redo")),

		Play:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play")),
		ZoomIn:  key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "zoom in")),
		ZoomOut: key.NewBinding(key.WithKeys("Z"), key.WithHelp("Z", "zoom out")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.NextEvent, k.Waypoints, k.New, k.Play, k.Undo, k.Save, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.BeatLeft, k.BeatRight, k.PrevEvent, k.NextEvent, k.Waypoints, k.NextFrame, k.PrevFrame},
		{k.NudgeUp, k.NudgeDown, k.NudgeLeft, k.NudgeRight, k.RotateCW, k.RotateCCW, k.ScaleUp, k.ScaleDown, k.HollowDown, k.HollowUp},
		{k.Earlier, k.Later, k.Drag, k.Insert, k.Delete, k.Danger, k.New, k.Circle, k.Line, k.Rectangle},
		{k.CameraShake, k.Copy, k.Paste, k.Undo, k.Redo, k.Play, k.ZoomIn, k.ZoomOut, k.Cancel, k.Save, k.Help, k.Quit},
	}
}
