package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lightline-cli/internal/editor"
	"lightline-cli/internal/model"
)

func newLightsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "lights",
		Aliases: []string{"light"},
		Short:   "Light commands (lights are addressed by event index)",
	}
	cmd.AddCommand(newLightsListCmd(app))
	cmd.AddCommand(newLightsShowCmd(app))
	cmd.AddCommand(newLightsPlaceCmd(app))
	cmd.AddCommand(newLightsDeleteCmd(app))
	cmd.AddCommand(newLightsMoveCmd(app))
	cmd.AddCommand(newLightsRotateCmd(app))
	cmd.AddCommand(newLightsFlipCmd(app))
	cmd.AddCommand(newLightsFadeCmd(app, "fade-in"))
	cmd.AddCommand(newLightsFadeCmd(app, "fade-out"))
	cmd.AddCommand(newLightsShapeCmd(app))
	cmd.AddCommand(newLightsDangerCmd(app))
	return cmd
}

func newLightsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List lights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, lightViews(ls.level()))
		},
	}
}

func newLightsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <light>",
		Short: "Show a light with its keyframes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, ev, lt, err := ls.light(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, newLightView(id.Event, ev, lt, true))
		},
	}
}

func newLightsPlaceCmd(app *App) *cobra.Command {
	var (
		at       timeSpec
		pos      vec2Value
		shape    string
		danger   bool
		rotation float64
		scale    float64
	)
	cmd := &cobra.Command{
		Use:   "place",
		Short: "Place a new light whose keyframe lands on --at",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !at.IsSet() {
				return writeErr(cmd, errors.New("missing --at"))
			}
			sh, err := parseShape(shape)
			if err != nil {
				return writeErr(cmd, err)
			}
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ed := ls.ed
			t := at.Position(ed.Level.Timing)
			if t < 0 {
				return writeErr(cmd, errors.New("--at must not be negative"))
			}

			actions := []editor.Action{editor.NewLight{Shape: sh}}
			if danger {
				actions = append(actions, editor.ToggleDangerPlacement{})
			}
			actions = append(actions, editor.PlaceLight{Position: pos.v}, editor.Cancel{})

			// Cursor and placement settings belong to the session; restore them
			// after placing.
			before := ed.Level.Hash()
			prevTime, prevRot, prevScale := ed.CurrentTime, ed.PlaceRotation, ed.PlaceScale
			ed.CurrentTime = t
			ed.PlaceRotation = model.Degrees(rotation)
			ed.PlaceScale = ls.cfg.PlaceScale()
			if cmd.Flags().Changed("scale") {
				ed.PlaceScale = model.Coord(scale).Clamp(editor.MinPlaceScale, editor.MaxPlaceScale)
			}
			entries := ls.execute(actions...)
			id, ok := ed.Selection.LightSingle()
			ed.CurrentTime, ed.PlaceRotation, ed.PlaceScale = prevTime, prevRot, prevScale
			if !ok {
				return writeErr(cmd, errors.New("light was not placed"))
			}

			changed, err := ls.commit(cmdContext(cmd), before, entries)
			if err != nil {
				return writeErr(cmd, err)
			}
			return ls.respond(cmd, app, lightOrGone(id)(ls.level()), changed)
		},
	}
	cmd.Flags().Var(&at, "at", "Time of the light's first keyframe (seconds, or beats with a b suffix)")
	cmd.Flags().Var(&pos, "pos", "Position x,y (default 0,0)")
	cmd.Flags().StringVar(&shape, "shape", "circle:1", "circle:<r>, line:<w> or rect:<w>x<h>")
	cmd.Flags().BoolVar(&danger, "danger", false, "Place a dangerous light")
	cmd.Flags().Float64Var(&rotation, "rotation", 0, "Rotation in degrees")
	cmd.Flags().Float64Var(&scale, "scale", 1, "Scale (default: editor.placeScale from config)")
	return cmd
}

func newLightsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <light>",
		Short: "Delete a light (the last event takes its index)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, _, _, err := ls.light(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return ls.runAndRespond(cmd, app, func(*model.Level) any {
				return map[string]any{"deleted": id.Event}
			}, editor.DeleteLight{Light: id})
		},
	}
}

func newLightsMoveCmd(app *App) *cobra.Command {
	var (
		timeChange timeChangeFlags
		posChange  vecChangeFlags
	)
	cmd := &cobra.Command{
		Use:   "move <light>",
		Short: "Move a whole light in time and/or space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !timeChange.isSet() && !posChange.isSet() {
				return writeErr(cmd, errors.New("pass --to-time/--by-time and/or --to/--by"))
			}
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, ev, lt, err := ls.light(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			tc, err := timeChange.change(ls.level().Timing, ev.Time)
			if err != nil {
				return writeErr(cmd, err)
			}
			pc, err := posChange.change()
			if err != nil {
				return writeErr(cmd, err)
			}
			// --to moves the first middle keyframe onto the target.
			if pc.Kind == model.ChangeKindSet {
				if len(lt.Movement.Waypoints) > 0 {
					pc = model.ChangeBy(pc.Value.Sub(lt.Movement.Waypoints[0].Transform.Translation))
				} else {
					pc = model.ChangeBy(pc.Value.Sub(lt.Movement.Initial.Transform.Translation))
				}
			}
			return ls.runAndRespond(cmd, app, lightOrGone(id),
				editor.MoveLight{Light: id, Time: tc, Position: pc})
		},
	}
	timeChange.register(cmd, "time", "the light's start time")
	posChange.register(cmd, "", "the light's position")
	return cmd
}

func newLightsRotateCmd(app *App) *cobra.Command {
	var (
		deg    float64
		anchor vec2Value
	)
	cmd := &cobra.Command{
		Use:   "rotate <light>",
		Short: "Rotate every keyframe of a light around an anchor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, _, _, err := ls.light(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return ls.runAndRespond(cmd, app, lightOrGone(id),
				editor.RotateLightAround{Light: id, Anchor: anchor.v, Delta: model.Degrees(deg)})
		},
	}
	cmd.Flags().Float64Var(&deg, "deg", 0, "Angle in degrees (counter-clockwise)")
	cmd.Flags().Var(&anchor, "anchor", "Rotation center x,y (default 0,0)")
	_ = cmd.MarkFlagRequired("deg")
	return cmd
}

func newLightsFlipCmd(app *App) *cobra.Command {
	var (
		vertical bool
		anchor   vec2Value
	)
	cmd := &cobra.Command{
		Use:   "flip <light>",
		Short: "Mirror a light horizontally (default) or vertically",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, _, _, err := ls.light(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			var a editor.Action = editor.FlipHorizontal{Light: id, Anchor: anchor.v}
			if vertical {
				a = editor.FlipVertical{Light: id, Anchor: anchor.v}
			}
			return ls.runAndRespond(cmd, app, lightOrGone(id), a)
		},
	}
	cmd.Flags().BoolVar(&vertical, "vertical", false, "Flip across the horizontal axis")
	cmd.Flags().Var(&anchor, "anchor", "Mirror axis point x,y (default 0,0)")
	return cmd
}

func newLightsFadeCmd(app *App, use string) *cobra.Command {
	var change timeChangeFlags
	cmd := &cobra.Command{
		Use:   use + " <light>",
		Short: "Change the " + strings.ReplaceAll(use, "-", " ") + " duration of a light",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !change.isSet() {
				return writeErr(cmd, errors.New("pass --to or --by"))
			}
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, ev, _, err := ls.light(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := change.durationChange(ls.level().Timing, ev.Time)
			if err != nil {
				return writeErr(cmd, err)
			}
			var a editor.Action = editor.ChangeFadeIn{Light: id, Change: c}
			if use == "fade-out" {
				a = editor.ChangeFadeOut{Light: id, Change: c}
			}
			return ls.runAndRespond(cmd, app, lightOrGone(id), a)
		},
	}
	change.register(cmd, "", "the duration")
	return cmd
}

func newLightsShapeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "shape <light> <shape>",
		Short: "Change the shape of a light (circle:<r>, line:<w>, rect:<w>x<h>)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sh, err := parseShape(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, _, _, err := ls.light(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return ls.runAndRespond(cmd, app, lightOrGone(id), editor.ChangeShape{Light: id, Shape: sh})
		},
	}
}

func newLightsDangerCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "danger <light> [on|off|toggle]",
		Short: "Set or toggle whether a light is dangerous",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := "toggle"
			if len(args) == 2 {
				mode = strings.ToLower(strings.TrimSpace(args[1]))
			}
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, _, lt, err := ls.light(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			var actions []editor.Action
			switch mode {
			case "toggle":
				actions = append(actions, editor.ToggleDanger{Light: id})
			case "on", "true":
				if !lt.Danger {
					actions = append(actions, editor.ToggleDanger{Light: id})
				}
			case "off", "false":
				if lt.Danger {
					actions = append(actions, editor.ToggleDanger{Light: id})
				}
			default:
				return writeErr(cmd, fmt.Errorf("invalid mode: %q (want on, off or toggle)", mode))
			}
			return ls.runAndRespond(cmd, app, lightOrGone(id), actions...)
		},
	}
}
