package mutate

import (
	"strconv"

	"lightline-cli/internal/model"
)

// DefaultShakeIntensity is the intensity of a new camera shake.
const DefaultShakeIntensity model.Coord = 0.25

// NewEffect appends an effect starting at at and returns its event index.
func NewEffect(lvl *model.Level, at model.Time, kind model.EffectKind, duration model.Time) int {
	fx := &model.EffectEvent{Kind: kind, Duration: duration}
	if kind == model.EffectCameraShake {
		fx.Intensity = DefaultShakeIntensity
	}
	lvl.Events = append(lvl.Events, model.TimedEvent{Time: at, Event: model.Event{Effect: fx}})
	return len(lvl.Events) - 1
}

// MoveEvent shifts any event, light or effect, in time.
func MoveEvent(lvl *model.Level, i int, change model.Change[model.Time]) error {
	ev, err := eventAt(lvl, i)
	if err != nil {
		return err
	}
	start := change.Apply(ev.Time)
	if start < 0 {
		return ErrNegativeTime
	}
	ev.Time = start
	return nil
}

func ChangeEffectDuration(lvl *model.Level, i int, change model.Change[model.Time]) error {
	_, fx, err := effectAt(lvl, i)
	if err != nil {
		return err
	}
	fx.Duration = max(0, change.Apply(fx.Duration))
	return nil
}

// ChangeCameraShakeIntensity only applies to camera shakes.
func ChangeCameraShakeIntensity(lvl *model.Level, i int, change model.Change[model.Coord]) error {
	_, fx, err := effectAt(lvl, i)
	if err != nil {
		return err
	}
	if fx.Kind != model.EffectCameraShake {
		return ErrNotShake
	}
	fx.Intensity = change.Apply(fx.Intensity)
	return nil
}

// SetBeatTime changes the beat length of the timing point at index i.
func SetBeatTime(lvl *model.Level, i int, beatTime model.FloatTime) error {
	if i < 0 || i >= len(lvl.Timing.Points) {
		return NotFoundError{Kind: "timing point", ID: strconv.Itoa(i)}
	}
	lvl.Timing.Points[i].BeatTime = beatTime
	return nil
}
