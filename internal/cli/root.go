package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"lightline-cli/internal/format"
	"lightline-cli/internal/logging"
	"lightline-cli/internal/store"
)

type App struct {
	Dir        string
	Level      string
	PrettyJSON bool
	Format     string
	Verbose    bool
}

func NewRootCmd() *cobra.Command {
	loadWorkspaceEnv(envOr("LIGHTLINE_DIR", ""))
	app := &App{}

	cmd := &cobra.Command{
		Use:          "lightline",
		Short:        "Lightline level editor: scriptable CLI + terminal editor",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the terminal editor on the current level
  lightline

  # Create a level and make it current
  lightline levels new intro --bpm 128 --use

  # Place a light one beat in, then move its middle keyframe half a beat later
  lightline lights place --at 1b --pos 0,2
  lightline waypoints move 0 0 --by-time 1/2b

  # Undo the last step (history survives between invocations)
  lightline history undo
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runTUI(cmd, app, "")
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if app.Format != "" {
			if _, err := format.Parse(app.Format); err != nil {
				return writeErr(cmd, err)
			}
		}
		if app.Dir != "" {
			loadWorkspaceEnv(app.Dir)
		}
		logging.Setup(cmd.ErrOrStderr(), app.Verbose)
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("LIGHTLINE_DIR", ""), "Path to the workspace dir (default ~/.lightline/workspace)")
	cmd.PersistentFlags().StringVar(&app.Level, "level", envOr("LIGHTLINE_LEVEL", ""), "Level name (overrides currentLevel in config.json)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", envBool("LIGHTLINE_PRETTY"), "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("LIGHTLINE_FORMAT", "json"), "Output format (json|edn|yaml)")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", envBool("LIGHTLINE_VERBOSE"), "Debug logging on stderr")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newLevelsCmd(app))
	cmd.AddCommand(newTimingCmd(app))
	cmd.AddCommand(newLightsCmd(app))
	cmd.AddCommand(newWaypointsCmd(app))
	cmd.AddCommand(newEffectsCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newHistoryCmd(app))
	cmd.AddCommand(newSampleCmd(app))
	cmd.AddCommand(newJournalCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newTUICmd(app))

	return cmd
}

// loadWorkspaceEnv reads <dir>/.env without overriding variables that are
// already set.
func loadWorkspaceEnv(dir string) {
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return
		}
		dir = d
	}
	path := store.Store{Dir: dir}.EnvPath()
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

func openStore(app *App) (store.Store, error) {
	dir := app.Dir
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return store.Store{}, err
		}
		dir = d
		app.Dir = dir
	}
	s := store.Store{Dir: dir}
	if err := s.Ensure(); err != nil {
		return store.Store{}, err
	}
	return s, nil
}

var errNoLevel = errors.New("no level selected; run `lightline levels new <name> --use` or pass --level")

// currentLevel resolves the level a command works on: --level, then the
// config's currentLevel.
func currentLevel(app *App) (string, error) {
	if name := strings.TrimSpace(app.Level); name != "" {
		return name, nil
	}
	cfg, err := store.LoadConfig()
	if err != nil {
		return "", err
	}
	if cfg.CurrentLevel != "" {
		return cfg.CurrentLevel, nil
	}
	return "", errNoLevel
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv(k)))
	return b
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

type envelope struct {
	Data any   `json:"data"`
	Meta *meta `json:"meta,omitempty"`
}

type meta struct {
	Changed bool   `json:"changed"`
	Level   string `json:"level,omitempty"`
	Hash    string `json:"hash,omitempty"`
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeData(cmd *cobra.Command, app *App, data any) error {
	return writeOut(cmd, app, envelope{Data: data})
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
