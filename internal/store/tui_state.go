package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const tuiStateFileName = "tui_state.json"

// TUIState remembers which levels the timeline editor opened, per workspace.
// Callers tolerate missing or invalid data.
type TUIState struct {
	Version int `json:"version"`

	// Level is the level that was open last.
	Level string `json:"level,omitempty"`

	// RecentLevels are recently opened levels, newest first.
	RecentLevels []string `json:"recentLevels,omitempty"`
}

// Touch moves level to the front of RecentLevels.
func (st *TUIState) Touch(level string) {
	level = strings.TrimSpace(level)
	if level == "" {
		return
	}
	st.Level = level
	out := []string{level}
	for _, l := range st.RecentLevels {
		if l != level && len(out) < 10 {
			out = append(out, l)
		}
	}
	st.RecentLevels = out
}

func (s Store) tuiStatePath() string {
	return filepath.Join(s.Dir, tuiStateFileName)
}

func (s Store) LoadTUIState() (*TUIState, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return &TUIState{Version: 1}, nil
	}
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.tuiStatePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &TUIState{Version: 1}, nil
		}
		return nil, err
	}
	var st TUIState
	if err := json.Unmarshal(b, &st); err != nil {
		// Corrupted state is treated as missing.
		return &TUIState{Version: 1}, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return &st, nil
}

func (s Store) SaveTUIState(st *TUIState) error {
	if st == nil {
		return nil
	}
	if strings.TrimSpace(s.Dir) == "" {
		return nil
	}
	if err := s.Ensure(); err != nil {
		return err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(s.Dir, "tui_state.json.*.tmp", s.tuiStatePath(), b, 0o644)
}
