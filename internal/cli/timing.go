package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lightline-cli/internal/editor"
	"lightline-cli/internal/model"
)

func newTimingCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timing",
		Short: "Tempo commands",
	}
	cmd.AddCommand(newTimingShowCmd(app))
	cmd.AddCommand(newTimingSetBPMCmd(app))
	cmd.AddCommand(newTimingAddPointCmd(app))
	cmd.AddCommand(newTimingSnapCmd(app))
	return cmd
}

type timingPointView struct {
	Index    int             `json:"index"`
	Time     model.Time      `json:"time"`
	BeatTime model.FloatTime `json:"beatTime"`
	BPM      float64         `json:"bpm"`
}

func timingViews(tm model.Timing) []timingPointView {
	out := make([]timingPointView, 0, len(tm.Points))
	for i, p := range tm.Points {
		v := timingPointView{Index: i, Time: p.Time, BeatTime: p.BeatTime}
		if p.BeatTime > 0 {
			v.BPM = 60 / float64(p.BeatTime)
		}
		out = append(out, v)
	}
	return out
}

func newTimingShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List timing points",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, timingViews(ls.level().Timing))
		},
	}
}

func parseBPM(s string) (model.FloatTime, error) {
	bpm, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || bpm <= 0 {
		return 0, fmt.Errorf("invalid bpm: %q", s)
	}
	return model.FloatTime(60 / bpm), nil
}

func newTimingSetBPMCmd(app *App) *cobra.Command {
	var point int
	cmd := &cobra.Command{
		Use:   "set-bpm <bpm>",
		Short: "Change the tempo of a timing point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			beat, err := parseBPM(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if point < 0 || point >= len(ls.level().Timing.Points) {
				return writeErr(cmd, errNotFound("timing point", strconv.Itoa(point)))
			}
			return ls.runAndRespond(cmd, app, func(lvl *model.Level) any { return timingViews(lvl.Timing) },
				editor.TimingUpdate{Point: point, BeatTime: beat})
		},
	}
	cmd.Flags().IntVar(&point, "point", 0, "Timing point index")
	return cmd
}

func newTimingAddPointCmd(app *App) *cobra.Command {
	var (
		at  timeSpec
		bpm string
	)
	cmd := &cobra.Command{
		Use:   "add-point",
		Short: "Start a new tempo at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !at.IsSet() {
				return writeErr(cmd, errors.New("missing --at"))
			}
			beat, err := parseBPM(bpm)
			if err != nil {
				return writeErr(cmd, err)
			}
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t := at.Position(ls.level().Timing)
			if t < 0 {
				return writeErr(cmd, errors.New("--at must not be negative"))
			}
			return ls.runAndRespond(cmd, app, func(lvl *model.Level) any { return timingViews(lvl.Timing) },
				editor.AddTimingPoint{Time: t, BeatTime: beat})
		},
	}
	cmd.Flags().Var(&at, "at", "Start time (seconds, or beats with a b suffix)")
	cmd.Flags().StringVar(&bpm, "bpm", "", "Tempo from --at on")
	_ = cmd.MarkFlagRequired("bpm")
	return cmd
}

func newTimingSnapCmd(app *App) *cobra.Command {
	var fraction string
	cmd := &cobra.Command{
		Use:   "snap <time>",
		Short: "Snap a time to the beat grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var t timeSpec
			if err := t.Set(args[0]); err != nil {
				return writeErr(cmd, err)
			}
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			snap := ls.ed.Config.Snap
			if fraction != "" {
				b, ok := model.ParseBeatFraction(fraction)
				if !ok {
					return writeErr(cmd, fmt.Errorf("invalid beat fraction: %q (want 1, 1/2, 1/4, 1/8 or 1/16)", fraction))
				}
				snap = b
			}
			tm := ls.level().Timing
			at := t.Position(tm)
			snapped := tm.SnapToBeat(at, snap)
			return writeData(cmd, app, map[string]any{
				"time":    at,
				"snapped": snapped,
				"timing":  tm.Get(snapped),
			})
		},
	}
	cmd.Flags().StringVar(&fraction, "fraction", "", "Beat fraction (default: editor.snap from config)")
	return cmd
}
