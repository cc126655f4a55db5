package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lightline-cli/internal/format"
	"lightline-cli/internal/model"
	"lightline-cli/internal/store"
)

func newLevelsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "levels",
		Aliases: []string{"level"},
		Short:   "Level commands",
	}
	cmd.AddCommand(newLevelsListCmd(app))
	cmd.AddCommand(newLevelsNewCmd(app))
	cmd.AddCommand(newLevelsShowCmd(app))
	cmd.AddCommand(newLevelsDeleteCmd(app))
	cmd.AddCommand(newLevelsUseCmd(app))
	cmd.AddCommand(newLevelsExportCmd(app))
	cmd.AddCommand(newLevelsImportCmd(app))
	cmd.AddCommand(newLevelsHashCmd(app))
	return cmd
}

type levelListEntry struct {
	store.LevelRecord
	Current bool `json:"current"`
}

func newLevelsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List levels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			recs, err := s.ListLevels(cmdContext(cmd))
			if err != nil {
				return writeErr(cmd, err)
			}
			current, _ := currentLevel(app)
			out := make([]levelListEntry, 0, len(recs))
			for _, r := range recs {
				out = append(out, levelListEntry{LevelRecord: r, Current: r.Name == current})
			}
			return writeData(cmd, app, out)
		},
	}
}

func newLevelsNewCmd(app *App) *cobra.Command {
	var (
		bpm float64
		use bool
	)
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create an empty level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if bpm <= 0 {
				return writeErr(cmd, errors.New("--bpm must be positive"))
			}
			s, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			rec, err := s.CreateLevel(cmdContext(cmd), args[0], model.NewLevel(model.FloatTime(bpm)))
			if err != nil {
				return writeErr(cmd, err)
			}
			if use {
				if err := setCurrentLevel(rec.Name); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, envelope{Data: rec, Meta: &meta{Changed: true, Level: rec.Name, Hash: rec.Hash}})
		},
	}
	cmd.Flags().Float64Var(&bpm, "bpm", 120, "Initial tempo")
	cmd.Flags().BoolVar(&use, "use", false, "Make the new level current")
	return cmd
}

type levelShow struct {
	Record store.LevelRecord `json:"record"`
	// Unsaved is set when the working session differs from the saved level.
	Unsaved bool         `json:"unsaved"`
	Timing  model.Timing `json:"timing"`
	Last    model.Time   `json:"lastTime"`
	Events  []eventView  `json:"events"`
	Undo    int          `json:"undo"`
	Redo    int          `json:"redo"`
}

func newLevelsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Show a level's working session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				app.Level = args[0]
			}
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			saved, _, err := ls.store.LoadLevel(cmdContext(cmd), ls.name)
			if err != nil {
				return writeErr(cmd, err)
			}
			lvl := ls.level()
			return writeData(cmd, app, levelShow{
				Record:  ls.rec,
				Unsaved: ls.ed.Dirty(&saved),
				Timing:  lvl.Timing,
				Last:    lvl.LastTime(),
				Events:  eventViews(lvl),
				Undo:    ls.ed.History.UndoLen(),
				Redo:    ls.ed.History.RedoLen(),
			})
		},
	}
}

func newLevelsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a level and its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			name := strings.TrimSpace(args[0])
			if err := s.DeleteLevel(cmdContext(cmd), name); err != nil {
				return writeErr(cmd, err)
			}
			cfg, err := store.LoadConfig()
			if err == nil && cfg.CurrentLevel == name {
				cfg.CurrentLevel = ""
				_ = store.SaveConfig(cfg)
			}
			return writeOut(cmd, app, envelope{Data: map[string]any{"deleted": name}, Meta: &meta{Changed: true, Level: name}})
		},
	}
}

func newLevelsUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Set the current level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			_, rec, err := s.LoadLevel(cmdContext(cmd), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := setCurrentLevel(rec.Name); err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, rec)
		},
	}
}

func newLevelsExportCmd(app *App) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export [name]",
		Short: "Write the saved level as json or yaml (no envelope)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			} else if name, err = currentLevel(app); err != nil {
				return writeErr(cmd, err)
			}
			lvl, _, err := s.LoadLevel(cmdContext(cmd), name)
			if err != nil {
				return writeErr(cmd, err)
			}

			f := app.Format
			if out != "" && !cmd.Flags().Changed("format") {
				f = formatForPath(out)
			}
			var buf bytes.Buffer
			if err := format.Write(&buf, lvl, f, true); err != nil {
				return writeErr(cmd, err)
			}
			if out == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, map[string]any{"level": name, "path": out, "events": len(lvl.Events)})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to a file instead of stdout (format from the extension)")
	return cmd
}

func newLevelsImportCmd(app *App) *cobra.Command {
	var (
		name string
		use  bool
	)
	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Create a level from a json or yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			var (
				raw []byte
				err error
			)
			if path == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(path)
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			lvl, err := decodeLevel(raw, formatForPath(path))
			if err != nil {
				return writeErr(cmd, fmt.Errorf("import %s: %w", path, err))
			}
			if name == "" {
				if path == "-" {
					return writeErr(cmd, errors.New("--name is required when reading stdin"))
				}
				name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}

			s, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			rec, err := s.CreateLevel(cmdContext(cmd), name, lvl)
			if err != nil {
				return writeErr(cmd, err)
			}
			if use {
				if err := setCurrentLevel(rec.Name); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, envelope{Data: rec, Meta: &meta{Changed: true, Level: rec.Name, Hash: rec.Hash}})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Level name (default: file name)")
	cmd.Flags().BoolVar(&use, "use", false, "Make the imported level current")
	return cmd
}

func newLevelsHashCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "hash [name]",
		Short: "Print the hash of the saved and the working level",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				app.Level = args[0]
			}
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			working := ls.ed.Level.Hash()
			return writeData(cmd, app, map[string]any{
				"level":   ls.name,
				"saved":   ls.rec.Hash,
				"working": working,
				"unsaved": working != ls.rec.Hash,
			})
		},
	}
}

func formatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return string(format.YAML)
	case ".edn":
		return string(format.EDN)
	}
	return string(format.JSON)
}

func decodeLevel(raw []byte, f string) (model.Level, error) {
	var lvl model.Level
	var err error
	if f == string(format.YAML) {
		err = format.DecodeYAML(bytes.NewReader(raw), &lvl)
	} else {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		err = dec.Decode(&lvl)
	}
	if err != nil {
		return model.Level{}, err
	}
	if lvl.Events == nil {
		lvl.Events = []model.TimedEvent{}
	}
	for i, ev := range lvl.Events {
		if (ev.Event.Light == nil) == (ev.Event.Effect == nil) {
			return model.Level{}, fmt.Errorf("event %d must be exactly one of light or effect", i)
		}
	}
	if len(lvl.Timing.Points) == 0 {
		lvl.Timing = model.NewTiming(150)
	}
	return lvl, nil
}
