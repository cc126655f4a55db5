package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"lightline-cli/internal/logging"
	"lightline-cli/internal/store"
	"lightline-cli/internal/tui"
)

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui [level]",
		Short: "Open the terminal timeline editor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runTUI(cmd, app, name)
		},
	}
}

// runTUI opens name, or the current level, or the level the editor had open
// last.
func runTUI(cmd *cobra.Command, app *App, name string) error {
	s, err := openStore(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	state, err := s.LoadTUIState()
	if err != nil {
		return writeErr(cmd, err)
	}
	if name == "" {
		name, err = currentLevel(app)
		if errors.Is(err, errNoLevel) && state.Level != "" {
			name, err = state.Level, nil
		}
		if err != nil {
			return writeErr(cmd, err)
		}
	}

	ctx := cmdContext(cmd)
	cfg, err := store.LoadConfig()
	if err != nil {
		return writeErr(cmd, err)
	}
	sess, rec, err := s.LoadSession(ctx, name)
	if err != nil {
		return writeErr(cmd, err)
	}
	saved, _, err := s.LoadLevel(ctx, rec.Name)
	if err != nil {
		return writeErr(cmd, err)
	}

	state.Touch(rec.Name)
	if err := s.SaveTUIState(state); err != nil {
		return writeErr(cmd, err)
	}

	logging.Discard()
	return tui.Run(ctx, tui.Options{
		Store:      s,
		Name:       rec.Name,
		Session:    sess,
		Saved:      saved,
		Config:     cfg.EditorSettings(),
		GridCell:   cfg.GridCell(),
		PlaceScale: cfg.PlaceScale(),
	})
}
