package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"lightline-cli/internal/editor"
	"lightline-cli/internal/history"
	"lightline-cli/internal/model"
)

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Undo history of the current level (kept between invocations)",
	}
	cmd.AddCommand(newHistoryStatusCmd(app))
	cmd.AddCommand(newHistoryStepCmd(app, "undo"))
	cmd.AddCommand(newHistoryStepCmd(app, "redo"))
	cmd.AddCommand(newHistoryFlushCmd(app))
	cmd.AddCommand(newHistoryResetCmd(app))
	return cmd
}

type historyStatus struct {
	Undo int `json:"undo"`
	Redo int `json:"redo"`
	// Pending names the step the next edit may merge into.
	Pending string `json:"pending"`
}

func statusOf(ls *levelSession) func(*model.Level) any {
	return func(*model.Level) any {
		h := ls.ed.History
		return historyStatus{Undo: h.UndoLen(), Redo: h.RedoLen(), Pending: h.BufferLabel().String()}
	}
}

func newHistoryStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show undo and redo depth",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, statusOf(ls)(ls.level()))
		},
	}
}

func newHistoryStepCmd(app *App, use string) *cobra.Command {
	var steps int
	short := "Undo the last step"
	if use == "redo" {
		short = "Redo the last undone step"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return writeErr(cmd, errors.New("--steps must be at least 1"))
			}
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			var actions []editor.Action
			// A placement left open by the editor would lock the history.
			if ls.ed.State.Is(editor.StatePlace) {
				actions = append(actions, editor.Cancel{})
			}
			for range steps {
				if use == "redo" {
					actions = append(actions, editor.Redo{})
				} else {
					actions = append(actions, editor.Undo{})
				}
			}
			return ls.runAndRespond(cmd, app, statusOf(ls), actions...)
		},
	}
	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of steps")
	return cmd
}

func newHistoryFlushCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Seal the pending step so the next edit starts a new one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return ls.runAndRespond(cmd, app, statusOf(ls), editor.FlushChanges{})
		},
	}
}

func newHistoryResetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Drop the undo history (the saved level is kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ls.store.ResetSession(cmdContext(cmd), ls.name); err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, historyStatus{Pending: history.Unknown.String()})
		},
	}
}
