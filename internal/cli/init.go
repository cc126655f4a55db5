package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"lightline-cli/internal/model"
	"lightline-cli/internal/store"
)

func newInitCmd(app *App) *cobra.Command {
	var bpm float64

	cmd := &cobra.Command{
		Use:   "init [level]",
		Short: "Initialize the workspace (optionally with a first level)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out := map[string]any{"dir": app.Dir}
			if len(args) == 0 {
				return writeData(cmd, app, out)
			}

			ctx := cmdContext(cmd)
			name, err := store.NormalizeLevelName(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			// Re-running init on an existing level only selects it.
			rec, created := store.LevelRecord{}, false
			if _, r, err := s.LoadLevel(ctx, name); err == nil {
				rec = r
			} else if errors.Is(err, store.ErrNotFound) {
				if bpm <= 0 {
					return writeErr(cmd, errors.New("--bpm must be positive"))
				}
				rec, err = s.CreateLevel(ctx, name, model.NewLevel(model.FloatTime(bpm)))
				if err != nil {
					return writeErr(cmd, err)
				}
				created = true
			} else {
				return writeErr(cmd, err)
			}
			if err := setCurrentLevel(rec.Name); err != nil {
				return writeErr(cmd, err)
			}
			out["level"] = rec
			out["created"] = created
			return writeData(cmd, app, out)
		},
	}
	cmd.Flags().Float64Var(&bpm, "bpm", 120, "Tempo of a newly created level")
	return cmd
}

func setCurrentLevel(name string) error {
	cfg, err := store.LoadConfig()
	if err != nil {
		return err
	}
	cfg.CurrentLevel = name
	return store.SaveConfig(cfg)
}
