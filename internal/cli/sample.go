package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"lightline-cli/internal/curve"
	"lightline-cli/internal/model"
)

func newSampleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Evaluate baked light curves",
	}
	cmd.AddCommand(newSampleAtCmd(app))
	cmd.AddCommand(newSamplePathCmd(app))
	return cmd
}

type sampleView struct {
	Time      model.Time           `json:"time"`
	Offset    model.Time           `json:"offset"`
	Transform model.TransformLight `json:"transform"`
	Rotation  float64              `json:"rotationDeg"`
}

func newSampleAtCmd(app *App) *cobra.Command {
	var relative bool
	cmd := &cobra.Command{
		Use:   "at <light> <time>...",
		Short: "Sample a light's transform at one or more times",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			specs := make([]timeSpec, len(args)-1)
			for i, a := range args[1:] {
				if err := specs[i].Set(a); err != nil {
					return writeErr(cmd, err)
				}
			}
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			_, ev, lt, err := ls.light(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			tm := ls.level().Timing
			c := curve.Bake(&lt.Movement)
			out := make([]sampleView, 0, len(specs))
			for i := range specs {
				var rel model.Time
				if relative {
					rel = specs[i].Resolve(tm, ev.Time)
				} else {
					rel = specs[i].Position(tm) - ev.Time
				}
				tr := c.At(&lt.Movement, rel)
				out = append(out, sampleView{Time: ev.Time + rel, Offset: rel, Transform: tr, Rotation: tr.Rotation.Degrees()})
			}
			return writeData(cmd, app, out)
		},
	}
	cmd.Flags().BoolVar(&relative, "relative", false, "Times are offsets from the light's start")
	return cmd
}

func newSamplePathCmd(app *App) *cobra.Command {
	var resolution int
	cmd := &cobra.Command{
		Use:   "path <light>",
		Short: "Trace a light's path and its total distance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if resolution < 1 {
				return writeErr(cmd, errors.New("--resolution must be at least 1"))
			}
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			_, _, lt, err := ls.light(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			path := curve.Bake(&lt.Movement).Path(resolution)
			points := make([]model.Vec2, 0, len(path))
			for _, tr := range path {
				points = append(points, tr.Translation)
			}
			return writeData(cmd, app, map[string]any{
				"points":   points,
				"distance": curve.TotalDistance(&lt.Movement),
			})
		},
	}
	cmd.Flags().IntVar(&resolution, "resolution", 10, "Samples per segment")
	return cmd
}
