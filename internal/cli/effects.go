package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lightline-cli/internal/editor"
	"lightline-cli/internal/model"
)

func newEffectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "effects",
		Aliases: []string{"effect"},
		Short:   "Effect commands (palette swaps, rgb splits, camera shakes)",
	}
	cmd.AddCommand(newEffectsAddCmd(app))
	cmd.AddCommand(newEffectsDurationCmd(app))
	cmd.AddCommand(newEffectsIntensityCmd(app))
	return cmd
}

func newEffectsAddCmd(app *App) *cobra.Command {
	var (
		at        timeSpec
		duration  timeSpec
		intensity float64
	)
	cmd := &cobra.Command{
		Use:   "add <paletteSwap|rgbSplit|cameraShake>",
		Short: "Add an effect starting at --at",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !at.IsSet() {
				return writeErr(cmd, errors.New("missing --at"))
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
			d := ed.Level.Timing.BeatDuration(t)
			if duration.IsSet() {
				d = duration.Resolve(ed.Level.Timing, t)
			}
			if d < 0 {
				return writeErr(cmd, errors.New("--duration must not be negative"))
			}

			var a editor.Action
			switch strings.ToLower(strings.TrimSpace(args[0])) {
			case "paletteswap", "palette-swap", "palette":
				a = editor.NewPaletteSwap{Duration: d}
			case "rgbsplit", "rgb-split", "rgb":
				a = editor.NewRgbSplit{Duration: d}
			case "camerashake", "camera-shake", "shake":
				a = editor.NewCameraShake{Duration: d}
			default:
				return writeErr(cmd, fmt.Errorf("unknown effect: %q (want paletteSwap, rgbSplit or cameraShake)", args[0]))
			}

			before := ed.Level.Hash()
			prevTime := ed.CurrentTime
			ed.CurrentTime = t
			entries := ls.execute(a)
			ed.CurrentTime = prevTime
			index := len(ed.Level.Events) - 1
			if _, ok := a.(editor.NewCameraShake); ok && cmd.Flags().Changed("intensity") {
				entries = append(entries, ls.execute(editor.ChangeCameraShakeIntensity{
					Event:  index,
					Change: model.ChangeTo(model.Coord(intensity)),
				})...)
			}
			changed, err := ls.commit(cmdContext(cmd), before, entries)
			if err != nil {
				return writeErr(cmd, err)
			}
			return ls.respond(cmd, app, newEventView(index, &ed.Level.Events[index]), changed)
		},
	}
	cmd.Flags().Var(&at, "at", "Start time (seconds, or beats with a b suffix)")
	cmd.Flags().Var(&duration, "duration", "Duration (default one beat)")
	cmd.Flags().Float64Var(&intensity, "intensity", 0.25, "Camera shake intensity")
	return cmd
}

func newEffectsDurationCmd(app *App) *cobra.Command {
	var change timeChangeFlags
	cmd := &cobra.Command{
		Use:   "duration <event>",
		Short: "Change the duration of an effect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !change.isSet() {
				return writeErr(cmd, errors.New("pass --to or --by"))
			}
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			i, _, err := ls.effect(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := change.durationChange(ls.level().Timing, ls.level().Events[i].Time)
			if err != nil {
				return writeErr(cmd, err)
			}
			return ls.runAndRespond(cmd, app, eventAfter(i), editor.ChangeEffectDuration{Event: i, Change: c})
		},
	}
	change.register(cmd, "", "the duration")
	return cmd
}

func newEffectsIntensityCmd(app *App) *cobra.Command {
	var to, by float64
	cmd := &cobra.Command{
		Use:   "intensity <event>",
		Short: "Change the intensity of a camera shake",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := numberChange[model.Coord](cmd, to, by)
			if err != nil {
				return writeErr(cmd, err)
			}
			ls, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			i, eff, err := ls.effect(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if eff.Kind != model.EffectCameraShake {
				return writeErr(cmd, fmt.Errorf("event %d is a %s, not a camera shake", i, eff.Kind))
			}
			return ls.runAndRespond(cmd, app, eventAfter(i), editor.ChangeCameraShakeIntensity{Event: i, Change: ch})
		},
	}
	cmd.Flags().Float64Var(&to, "to", 0, "Set the intensity")
	cmd.Flags().Float64Var(&by, "by", 0, "Add to the intensity")
	return cmd
}

func eventAfter(i int) func(*model.Level) any {
	return func(lvl *model.Level) any {
		if i < 0 || i >= len(lvl.Events) {
			return nil
		}
		return newEventView(i, &lvl.Events[i])
	}
}
