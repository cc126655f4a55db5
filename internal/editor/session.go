package editor

import (
	"lightline-cli/internal/history"
	"lightline-cli/internal/model"
)

// Session is the persisted part of an editor: enough to resume editing, with
// undo history, from another process.
type Session struct {
	Name          string           `json:"name"`
	Level         model.Level      `json:"level"`
	History       history.Snapshot `json:"history"`
	Selection     Selection        `json:"selection"`
	State         EditingState     `json:"state"`
	CurrentTime   model.Time       `json:"currentTime"`
	Zoom          model.Coord      `json:"zoom"`
	PlaceRotation model.Angle      `json:"placeRotation"`
	PlaceScale    model.Coord      `json:"placeScale"`
}

func (e *Editor) Session() Session {
	state := e.State
	// Playback and drags do not survive the process.
	if state.Is(StatePlaying) && state.Playback != nil {
		state = state.Playback.Previous
	}
	return Session{
		Name:          e.Name,
		Level:         e.Level.Clone(),
		History:       e.History.Snapshot(),
		Selection:     e.Selection.Clone(),
		State:         state,
		CurrentTime:   e.CurrentTime,
		Zoom:          e.Zoom,
		PlaceRotation: e.PlaceRotation,
		PlaceScale:    e.PlaceScale,
	}
}

// Resume rebuilds an editor from a saved session.
func Resume(s Session, cfg Config) *Editor {
	e := New(s.Level.Clone(), s.Name, cfg)
	e.History = history.Restore(s.History, &e.Level)
	e.History.SetLimit(cfg.HistoryLimit)
	e.Selection = s.Selection.Clone()
	if e.Selection.Kind == "" {
		e.Selection.Kind = SelectionEmpty
	}
	e.State = s.State
	if e.State.Kind == "" {
		e.State = Idle()
	}
	e.CurrentTime = s.CurrentTime
	if s.Zoom > 0 {
		e.Zoom = s.Zoom
	}
	if s.PlaceScale > 0 {
		e.PlaceScale = s.PlaceScale
	}
	e.PlaceRotation = s.PlaceRotation
	return e
}
