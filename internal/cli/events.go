package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"lightline-cli/internal/editor"
	"lightline-cli/internal/model"
)

func newEventsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"event"},
		Short:   "Commands over every event (lights and effects)",
	}
	cmd.AddCommand(newEventsListCmd(app))
	cmd.AddCommand(newEventsMoveCmd(app))
	cmd.AddCommand(newEventsDeleteCmd(app))
	return cmd
}

func newEventsListCmd(app *App) *cobra.Command {
	var at timeSpec
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events (optionally only those active at --at)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			all := eventViews(ls.level())
			if !at.IsSet() {
				return writeData(cmd, app, all)
			}
			t := at.Position(ls.level().Timing)
			out := []eventView{}
			for _, ev := range all {
				if t >= ev.Time && t <= ev.Time+ev.Duration {
					out = append(out, ev)
				}
			}
			return writeData(cmd, app, out)
		},
	}
	cmd.Flags().Var(&at, "at", "Only events active at this time")
	return cmd
}

func newEventsMoveCmd(app *App) *cobra.Command {
	var change timeChangeFlags
	cmd := &cobra.Command{
		Use:   "move <event>",
		Short: "Move an event in time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !change.isSet() {
				return writeErr(cmd, errors.New("pass --to or --by"))
			}
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			i, ev, err := ls.event(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := change.change(ls.level().Timing, ev.Time)
			if err != nil {
				return writeErr(cmd, err)
			}
			return ls.runAndRespond(cmd, app, eventAfter(i), editor.MoveEvent{Event: i, Change: c})
		},
	}
	change.register(cmd, "", "the start time")
	return cmd
}

func newEventsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <event>",
		Short: "Delete an event (the last event takes its index)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			i, _, err := ls.event(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return ls.runAndRespond(cmd, app, func(*model.Level) any {
				return map[string]any{"deleted": i}
			}, editor.DeleteEvent{Event: i})
		},
	}
}
