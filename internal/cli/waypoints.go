package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lightline-cli/internal/editor"
	"lightline-cli/internal/model"
	"lightline-cli/internal/mutate"
)

func newWaypointsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "waypoints",
		Aliases: []string{"wp", "keyframes"},
		Short:   "Keyframe commands (ids: initial, 0, 1, ..., last)",
	}
	cmd.AddCommand(newWaypointsListCmd(app))
	cmd.AddCommand(newWaypointsAddCmd(app))
	cmd.AddCommand(newWaypointsDeleteCmd(app))
	cmd.AddCommand(newWaypointsMoveCmd(app))
	cmd.AddCommand(newWaypointsRotateCmd(app))
	cmd.AddCommand(newWaypointsNumberCmd(app, "scale", "Change the scale of a keyframe (clamped to [0, 10])"))
	cmd.AddCommand(newWaypointsNumberCmd(app, "hollow", "Change how hollow a keyframe is (clamped to [-1, 1])"))
	cmd.AddCommand(newWaypointsInterpolationCmd(app))
	cmd.AddCommand(newWaypointsCurveCmd(app))
	return cmd
}

func newWaypointsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <light>",
		Short: "List the keyframes of a light in time order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			_, ev, lt, err := ls.light(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, waypointViews(ev, lt))
		},
	}
}

func newWaypointsAddCmd(app *App) *cobra.Command {
	var (
		at       timeSpec
		pos      vec2Value
		rotation float64
		scale    float64
	)
	cmd := &cobra.Command{
		Use:   "add <light>",
		Short: "Insert a keyframe at an absolute time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !at.IsSet() {
				return writeErr(cmd, errors.New("missing --at"))
			}
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, _, _, err := ls.light(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			ed := ls.ed
			t := at.Position(ed.Level.Timing)
			tr := model.TransformLight{Translation: pos.v, Rotation: model.Degrees(rotation), Scale: model.Coord(scale), Hollow: -1}
			trial := ed.Level.Clone()
			if _, err := mutate.InsertWaypoint(&trial, id, t, tr); err != nil {
				return writeErr(cmd, err)
			}

			before := ed.Level.Hash()
			prevTime, prevRot, prevScale := ed.CurrentTime, ed.PlaceRotation, ed.PlaceScale
			ed.CurrentTime, ed.PlaceRotation, ed.PlaceScale = t, tr.Rotation, tr.Scale
			entries := ls.execute(
				editor.SelectLight{Mode: editor.SelectSet, Lights: []model.LightID{id}},
				editor.ToggleWaypointsView{},
				editor.NewWaypoint{},
				editor.PlaceWaypoint{Position: pos.v},
				editor.Cancel{},
			)
			ed.CurrentTime, ed.PlaceRotation, ed.PlaceScale = prevTime, prevRot, prevScale

			changed, err := ls.commit(cmdContext(cmd), before, entries)
			if err != nil {
				return writeErr(cmd, err)
			}
			return ls.respond(cmd, app, lightOrGone(id)(ls.level()), changed)
		},
	}
	cmd.Flags().Var(&at, "at", "Absolute time (seconds, or beats with a b suffix)")
	cmd.Flags().Var(&pos, "pos", "Position x,y (default 0,0)")
	cmd.Flags().Float64Var(&rotation, "rotation", 0, "Rotation in degrees")
	cmd.Flags().Float64Var(&scale, "scale", 1, "Scale")
	return cmd
}

func newWaypointsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <light> <waypoint>",
		Short: "Delete a keyframe (deleting the only one removes the light)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, wp, err := ls.waypoint(args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			events := len(ls.level().Events)
			return ls.runAndRespond(cmd, app, func(lvl *model.Level) any {
				if len(lvl.Events) < events {
					return map[string]any{"deleted": id.Event, "eventRemoved": true}
				}
				return lightOrGone(id)(lvl)
			}, editor.DeleteWaypoint{Light: id, Waypoint: wp})
		},
	}
}

func newWaypointsMoveCmd(app *App) *cobra.Command {
	var (
		timeChange timeChangeFlags
		posChange  vecChangeFlags
	)
	cmd := &cobra.Command{
		Use:   "move <light> <waypoint>",
		Short: "Move a keyframe in space and/or time (time moves reorder keyframes)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !timeChange.isSet() && !posChange.isSet() {
				return writeErr(cmd, errors.New("pass --to-time/--by-time and/or --to/--by"))
			}
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, wp, err := ls.waypoint(args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			ev, lt := ls.level().Light(id)
			rel, _ := lt.Movement.Time(wp)
			tc, err := timeChange.change(ls.level().Timing, ev.Time+rel)
			if err != nil {
				return writeErr(cmd, err)
			}
			pc, err := posChange.change()
			if err != nil {
				return writeErr(cmd, err)
			}
			if !tc.IsNoop() {
				trial := ls.level().Clone()
				opts := mutate.Options{KeepCurves: ls.ed.Config.KeepCurves}
				if _, err := mutate.MoveWaypointTime(&trial, id, wp, tc, mutate.Handles{}, opts); err != nil {
					return writeErr(cmd, err)
				}
			}
			return ls.runAndRespond(cmd, app, lightOrGone(id),
				editor.MoveWaypoint{Light: id, Waypoint: wp, Time: tc, Position: pc})
		},
	}
	timeChange.register(cmd, "time", "the keyframe's absolute time")
	posChange.register(cmd, "", "the keyframe's position")
	return cmd
}

func newWaypointsRotateCmd(app *App) *cobra.Command {
	var to, by float64
	cmd := &cobra.Command{
		Use:   "rotate <light> <waypoint>",
		Short: "Change the rotation of a keyframe (degrees)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := numberChange[model.Angle](cmd, to, by)
			if err != nil {
				return writeErr(cmd, err)
			}
			ch.Value = model.Degrees(float64(ch.Value))
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, wp, err := ls.waypoint(args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			return ls.runAndRespond(cmd, app, lightOrGone(id),
				editor.RotateWaypoint{Light: id, Waypoint: wp, Change: ch})
		},
	}
	cmd.Flags().Float64Var(&to, "to", 0, "Set the rotation")
	cmd.Flags().Float64Var(&by, "by", 0, "Rotate by this many degrees")
	return cmd
}

func newWaypointsNumberCmd(app *App, use, short string) *cobra.Command {
	var to, by float64
	cmd := &cobra.Command{
		Use:   use + " <light> <waypoint>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := numberChange[model.Coord](cmd, to, by)
			if err != nil {
				return writeErr(cmd, err)
			}
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, wp, err := ls.waypoint(args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			var a editor.Action = editor.ScaleWaypoint{Light: id, Waypoint: wp, Change: ch}
			if use == "hollow" {
				a = editor.ChangeHollow{Light: id, Waypoint: wp, Change: ch}
			}
			return ls.runAndRespond(cmd, app, lightOrGone(id), a)
		},
	}
	cmd.Flags().Float64Var(&to, "to", 0, "Set the value")
	cmd.Flags().Float64Var(&by, "by", 0, "Add to the value")
	return cmd
}

func newWaypointsInterpolationCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "interpolation <light> <waypoint> <smoothstep|linear|easeIn|easeOut>",
		Short: "Set the easing of the segment leaving a keyframe",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ease, err := model.ParseMoveInterpolation(args[2])
			if err != nil {
				return writeErr(cmd, err)
			}
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, wp, err := ls.waypoint(args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			if wp == model.LastID {
				return writeErr(cmd, errors.New("the last keyframe has no outgoing segment"))
			}
			return ls.runAndRespond(cmd, app, lightOrGone(id),
				editor.SetWaypointInterpolation{Light: id, Waypoint: wp, Interpolation: ease})
		},
	}
}

func newWaypointsCurveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "curve <light> <waypoint> <linear|bezier|spline[:tension]|none>",
		Short: "Start a new trajectory at a keyframe (none continues the previous one)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var curve *model.TrajectoryInterpolation
			if strings.ToLower(strings.TrimSpace(args[2])) != "none" {
				c, err := model.ParseTrajectory(args[2])
				if err != nil {
					return writeErr(cmd, err)
				}
				curve = &c
			}
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, wp, err := ls.waypoint(args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			if wp == model.LastID {
				return writeErr(cmd, fmt.Errorf("the last keyframe has no outgoing segment"))
			}
			return ls.runAndRespond(cmd, app, lightOrGone(id),
				editor.SetWaypointCurve{Light: id, Waypoint: wp, Curve: curve})
		},
	}
}
