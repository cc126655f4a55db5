// Package preview plays a level back and streams the sampled lights to
// websocket clients.
package preview

import (
	"lightline-cli/internal/curve"
	"lightline-cli/internal/model"
)

type Light struct {
	Event     int                  `json:"event"`
	Shape     model.Shape          `json:"shape"`
	Danger    bool                 `json:"danger"`
	Transform model.TransformLight `json:"transform"`
}

type Effect struct {
	Event     int              `json:"event"`
	Kind      model.EffectKind `json:"kind"`
	Intensity model.Coord      `json:"intensity,omitempty"`
	// Progress runs from 0 to 1 over the effect's duration.
	Progress float64 `json:"progress"`
}

type Frame struct {
	T       model.Time `json:"t"`
	FrameID uint64     `json:"frame_id"`
	Lights  []Light    `json:"lights"`
	Effects []Effect   `json:"effects"`
}

// Player samples one level. Curves are baked once per level.
type Player struct {
	level  model.Level
	curves []*curve.Curve
}

func NewPlayer(lvl model.Level) *Player {
	p := &Player{level: lvl.Clone(), curves: make([]*curve.Curve, len(lvl.Events))}
	for i := range p.level.Events {
		if lt := p.level.Events[i].Event.Light; lt != nil {
			p.curves[i] = curve.Bake(&lt.Movement)
		}
	}
	return p
}

func (p *Player) Level() model.Level { return p.level.Clone() }

// Duration is the loop length of the playback.
func (p *Player) Duration() model.Time { return p.level.LastTime() }

// At returns every light and effect active at absolute time t.
func (p *Player) At(t model.Time) Frame {
	f := Frame{T: t, Lights: []Light{}, Effects: []Effect{}}
	for i := range p.level.Events {
		ev := &p.level.Events[i]
		rel := t - ev.Time
		if rel < 0 || rel > ev.Duration() {
			continue
		}
		switch {
		case ev.Event.Light != nil:
			lt := ev.Event.Light
			f.Lights = append(f.Lights, Light{
				Event:     i,
				Shape:     lt.Shape,
				Danger:    lt.Danger,
				Transform: p.curves[i].At(&lt.Movement, rel),
			})
		case ev.Event.Effect != nil:
			fx := ev.Event.Effect
			progress := 1.0
			if fx.Duration > 0 {
				progress = float64(rel) / float64(fx.Duration)
			}
			f.Effects = append(f.Effects, Effect{Event: i, Kind: fx.Kind, Intensity: fx.Intensity, Progress: progress})
		}
	}
	return f
}
