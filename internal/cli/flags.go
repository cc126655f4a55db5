package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"lightline-cli/internal/model"
)

// timeSpec is a time in seconds ("1.5") or in beats ("2b", "1/4b", "-1b").
// Beats depend on the level's timing, so the text is resolved late.
type timeSpec struct {
	raw   string
	value float64
	beats bool
}

var _ pflag.Value = (*timeSpec)(nil)

func (t *timeSpec) String() string { return t.raw }
func (t *timeSpec) Type() string   { return "time" }

func (t *timeSpec) Set(s string) error {
	v, beats, err := parseTimeSpec(s)
	if err != nil {
		return err
	}
	t.raw, t.value, t.beats = strings.TrimSpace(s), v, beats
	return nil
}

func (t *timeSpec) IsSet() bool { return t.raw != "" }

// Resolve converts the value to a Time using the tempo in effect at at.
func (t *timeSpec) Resolve(tm model.Timing, at model.Time) model.Time {
	if !t.beats {
		return model.FloatToTime(model.FloatTime(t.value))
	}
	return model.FloatToTime(model.FloatTime(t.value) * tm.Get(at).BeatTime)
}

// Position resolves an absolute time. Beats count from zero and follow every
// tempo change on the way.
func (t *timeSpec) Position(tm model.Timing) model.Time {
	if !t.beats || t.value <= 0 {
		return t.Resolve(tm, 0)
	}
	cur, left := model.Time(0), model.FloatTime(t.value)
	for _, p := range tm.Points {
		if p.Time <= cur {
			continue
		}
		bt := tm.Get(cur).BeatTime
		if span := (p.Time - cur).Float() / bt; left > span {
			left -= span
			cur = p.Time
			continue
		}
		break
	}
	return cur + model.FloatToTime(left*tm.Get(cur).BeatTime)
}

func parseTimeSpec(s string) (float64, bool, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, false, errors.New("empty time")
	}
	num, beats := strings.CutSuffix(s, "b")
	sign := 1.0
	switch {
	case strings.HasPrefix(num, "-"):
		sign, num = -1, num[1:]
	case strings.HasPrefix(num, "+"):
		num = num[1:]
	}
	if a, b, ok := strings.Cut(num, "/"); ok {
		n, err1 := strconv.ParseFloat(a, 64)
		d, err2 := strconv.ParseFloat(b, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, false, fmt.Errorf("invalid time: %q", s)
		}
		return sign * n / d, beats, nil
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid time: %q (want seconds like 1.5 or beats like 2b, 1/4b)", s)
	}
	return sign * v, beats, nil
}

// vec2Value parses "x,y".
type vec2Value struct {
	v   model.Vec2
	set bool
}

var _ pflag.Value = (*vec2Value)(nil)

func (p *vec2Value) Type() string { return "x,y" }

func (p *vec2Value) String() string {
	if !p.set {
		return ""
	}
	return fmt.Sprintf("%g,%g", float64(p.v.X), float64(p.v.Y))
}

func (p *vec2Value) Set(s string) error {
	v, err := parseVec2(s)
	if err != nil {
		return err
	}
	p.v, p.set = v, true
	return nil
}

func parseVec2(s string) (model.Vec2, error) {
	a, b, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return model.Vec2{}, fmt.Errorf("invalid point: %q (want x,y)", s)
	}
	x, err1 := strconv.ParseFloat(strings.TrimSpace(a), 64)
	y, err2 := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err1 != nil || err2 != nil {
		return model.Vec2{}, fmt.Errorf("invalid point: %q (want x,y)", s)
	}
	return model.V2(model.Coord(x), model.Coord(y)), nil
}

func parseLightArg(s string) (model.LightID, error) {
	i, err := parseEventArg(s)
	return model.LightID{Event: i}, err
}

func parseEventArg(s string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid event index: %q", s)
	}
	return i, nil
}

// parseShape accepts circle:<r>, line:<w> and rect:<w>x<h>; sizes default to 1.
func parseShape(s string) (model.Shape, error) {
	name, arg, _ := strings.Cut(strings.ToLower(strings.TrimSpace(s)), ":")
	num := func(v string) (model.Coord, error) {
		if v == "" {
			return 1, nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return 0, fmt.Errorf("invalid shape size: %q", v)
		}
		return model.Coord(f), nil
	}
	switch name {
	case "circle":
		r, err := num(arg)
		return model.Circle(r), err
	case "line":
		w, err := num(arg)
		return model.Line(w), err
	case "rect", "rectangle":
		ws, hs, _ := strings.Cut(arg, "x")
		w, err := num(ws)
		if err != nil {
			return model.Shape{}, err
		}
		h, err := num(hs)
		return model.Rectangle(w, h), err
	}
	return model.Shape{}, fmt.Errorf("unknown shape: %q (want circle, line or rect)", s)
}

// A change flag pair: --to sets an absolute value, --by adds to it.

type timeChangeFlags struct {
	to, by timeSpec
}

func (f *timeChangeFlags) register(cmd *cobra.Command, prefix, what string) {
	cmd.Flags().Var(&f.to, joinFlag(prefix, "to"), "Set "+what+" (seconds, or beats with a b suffix)")
	cmd.Flags().Var(&f.by, joinFlag(prefix, "by"), "Shift "+what+" by this amount")
}

func (f *timeChangeFlags) isSet() bool { return f.to.IsSet() || f.by.IsSet() }

// change resolves --to as an absolute time and --by relative to the tempo at at.
func (f *timeChangeFlags) change(tm model.Timing, at model.Time) (model.Change[model.Time], error) {
	return f.resolve(func() model.Time { return f.to.Position(tm) }, tm, at)
}

// durationChange resolves both flags as lengths in the tempo at at.
func (f *timeChangeFlags) durationChange(tm model.Timing, at model.Time) (model.Change[model.Time], error) {
	return f.resolve(func() model.Time { return f.to.Resolve(tm, at) }, tm, at)
}

func (f *timeChangeFlags) resolve(to func() model.Time, tm model.Timing, at model.Time) (model.Change[model.Time], error) {
	switch {
	case f.to.IsSet() && f.by.IsSet():
		return model.Change[model.Time]{}, errors.New("pass either --to or --by, not both")
	case f.to.IsSet():
		return model.ChangeTo(to()), nil
	case f.by.IsSet():
		return model.ChangeBy(f.by.Resolve(tm, at)), nil
	}
	return model.ChangeBy(model.Time(0)), nil
}

type vecChangeFlags struct {
	to, by vec2Value
}

func (f *vecChangeFlags) register(cmd *cobra.Command, prefix, what string) {
	cmd.Flags().Var(&f.to, joinFlag(prefix, "to"), "Set "+what)
	cmd.Flags().Var(&f.by, joinFlag(prefix, "by"), "Move "+what+" by this offset")
}

func (f *vecChangeFlags) isSet() bool { return f.to.set || f.by.set }

func (f *vecChangeFlags) change() (model.Change[model.Vec2], error) {
	switch {
	case f.to.set && f.by.set:
		return model.Change[model.Vec2]{}, errors.New("pass either --to or --by, not both")
	case f.to.set:
		return model.ChangeTo(f.to.v), nil
	case f.by.set:
		return model.ChangeBy(f.by.v), nil
	}
	return model.ChangeBy(model.Vec2{}), nil
}

// numberChange reads a float --to/--by pair registered on cmd.
func numberChange[T interface {
	~float64
	model.Vector[T]
}](cmd *cobra.Command, to, by float64) (model.Change[T], error) {
	toSet, bySet := cmd.Flags().Changed("to"), cmd.Flags().Changed("by")
	switch {
	case toSet && bySet:
		return model.Change[T]{}, errors.New("pass either --to or --by, not both")
	case toSet:
		return model.ChangeTo(T(to)), nil
	case bySet:
		return model.ChangeBy(T(by)), nil
	}
	return model.Change[T]{}, errors.New("pass --to or --by")
}

func joinFlag(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return name + "-" + prefix
}
