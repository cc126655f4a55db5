package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Run opens the full-screen editor on one level. The session is written back
// to the store when the editor quits.
func Run(ctx context.Context, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()

	m := newAppModel(ctx, opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
