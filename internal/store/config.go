package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"lightline-cli/internal/editor"
	"lightline-cli/internal/model"
)

type GlobalConfig struct {
	// CurrentLevel is the level commands act on when --level is not given.
	CurrentLevel string `json:"currentLevel,omitempty"`

	Editor  *EditorConfig  `json:"editor,omitempty"`
	Preview *PreviewConfig `json:"preview,omitempty"`

	// TUI holds optional user preferences for the interactive TUI.
	TUI *TUIConfig `json:"tui,omitempty"`
}

type EditorConfig struct {
	// Snap is the beat fraction the cursor snaps to, e.g. "1/4".
	Snap string `json:"snap,omitempty"`
	// ScrollMargin is how far past the end of the level the cursor may go, in seconds.
	ScrollMargin *float64 `json:"scrollMargin,omitempty"`
	// KeepCurvesOnReorder moves interpolation and curves together with
	// reordered keyframes.
	KeepCurvesOnReorder bool `json:"keepCurvesOnReorder,omitempty"`
	HistoryLimit        int  `json:"historyLimit,omitempty"`
	// PlaceScale is the initial scale of newly placed lights.
	PlaceScale float64 `json:"placeScale,omitempty"`
	// GridCell is the position nudge step of the TUI.
	GridCell float64 `json:"gridCell,omitempty"`
}

type PreviewConfig struct {
	Addr string `json:"addr,omitempty"`
	FPS  int    `json:"fps,omitempty"`
}

type TUIConfig struct {
	// Profile is the appearance profile id ("default", "neon", "mono").
	Profile string `json:"profile,omitempty"`
}

// EditorSettings resolves the editor configuration, falling back to defaults
// for anything unset or invalid.
func (c *GlobalConfig) EditorSettings() editor.Config {
	cfg := editor.DefaultConfig()
	if c == nil || c.Editor == nil {
		return cfg
	}
	e := c.Editor
	if snap, ok := model.ParseBeatFraction(strings.TrimSpace(e.Snap)); ok {
		cfg.Snap = snap
	}
	if e.ScrollMargin != nil && *e.ScrollMargin >= 0 {
		cfg.ScrollMargin = model.FloatToTime(model.FloatTime(*e.ScrollMargin))
	}
	cfg.KeepCurves = e.KeepCurvesOnReorder
	if e.HistoryLimit > 0 {
		cfg.HistoryLimit = e.HistoryLimit
	}
	return cfg
}

func (c *GlobalConfig) PlaceScale() model.Coord {
	if c == nil || c.Editor == nil || c.Editor.PlaceScale <= 0 {
		return 1
	}
	return model.Coord(c.Editor.PlaceScale).Clamp(editor.MinPlaceScale, editor.MaxPlaceScale)
}

func (c *GlobalConfig) GridCell() model.Coord {
	if c == nil || c.Editor == nil || c.Editor.GridCell <= 0 {
		return 0.5
	}
	return model.Coord(c.Editor.GridCell)
}

func (c *GlobalConfig) PreviewSettings() PreviewConfig {
	out := PreviewConfig{Addr: ":8080", FPS: 30}
	if c == nil || c.Preview == nil {
		return out
	}
	if v := strings.TrimSpace(c.Preview.Addr); v != "" {
		out.Addr = v
	}
	if c.Preview.FPS > 0 {
		out.FPS = c.Preview.FPS
	}
	return out
}

func ConfigDir() (string, error) {
	// Keeps unit tests from touching ~/.lightline.
	if v := strings.TrimSpace(os.Getenv("LIGHTLINE_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".lightline"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *GlobalConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// Keep the previous config around for recovery; errors are ignored.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.json.bak.*.tmp", path+".bak", prev, 0o644)
	}

	// CLI, TUI and the preview server may write concurrently.
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}
