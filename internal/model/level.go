package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
)

type ShapeKind string

const (
	ShapeCircle    ShapeKind = "circle"
	ShapeLine      ShapeKind = "line"
	ShapeRectangle ShapeKind = "rectangle"
)

type Shape struct {
	Kind   ShapeKind `json:"kind"`
	Radius Coord     `json:"radius,omitempty"`
	Width  Coord     `json:"width,omitempty"`
	Height Coord     `json:"height,omitempty"`
}

func Circle(radius Coord) Shape { return Shape{Kind: ShapeCircle, Radius: radius} }
func Line(width Coord) Shape { return Shape{Kind: ShapeLine, Width: width} }
func Rectangle(w, h Coord) Shape { return Shape{Kind: ShapeRectangle, Width: w, Height: h} }

func (s Shape) String() string {
	switch s.Kind {
	case ShapeCircle:
		return fmt.Sprintf("circle(r=%g)", float64(s.Radius))
	case ShapeLine:
		return fmt.Sprintf("line(w=%g)", float64(s.Width))
	case ShapeRectangle:
		return fmt.Sprintf("rect(%gx%g)", float64(s.Width), float64(s.Height))
	}
	return string(s.Kind)
}

type LightEvent struct {
	Danger   bool     `json:"danger"`
	Shape    Shape    `json:"shape"`
	Movement Movement `json:"movement"`
}

type EffectKind string

const (
	EffectPaletteSwap EffectKind = "paletteSwap"
	EffectRgbSplit    EffectKind = "rgbSplit"
	EffectCameraShake EffectKind = "cameraShake"
)

type EffectEvent struct {
	Kind     EffectKind `json:"kind"`
	Duration Time       `json:"duration"`
	// Intensity is only used by camera shakes.
	Intensity Coord `json:"intensity,omitempty"`
}

// Event holds exactly one of Light or Effect.
type Event struct {
	Light  *LightEvent  `json:"light,omitempty"`
	Effect *EffectEvent `json:"effect,omitempty"`
}

type TimedEvent struct {
	Time  Time  `json:"time"`
	Event Event `json:"event"`
}

// LightID addresses a light by its event index. Deleting an event swap-removes it,
// so the id of the last event changes after any deletion.
type LightID struct {
	Event int `json:"event"`
}

type Level struct {
	Events []TimedEvent `json:"events"`
	Timing Timing       `json:"timing"`
}

func NewLevel(bpm FloatTime) Level {
	return Level{Events: []TimedEvent{}, Timing: NewTiming(bpm)}
}

// Duration of the event from its start time.
func (e TimedEvent) Duration() Time {
	switch {
	case e.Event.Light != nil:
		return e.Event.Light.Movement.TotalDuration()
	case e.Event.Effect != nil:
		return e.Event.Effect.Duration
	}
	return 0
}

// Light returns the light at id, or nil if the id is stale or names an effect.
func (l *Level) Light(id LightID) (*TimedEvent, *LightEvent) {
	if id.Event < 0 || id.Event >= len(l.Events) {
		return nil, nil
	}
	ev := &l.Events[id.Event]
	if ev.Event.Light == nil {
		return ev, nil
	}
	return ev, ev.Event.Light
}

// SwapRemove deletes the event at i by moving the last event into its slot.
func (l *Level) SwapRemove(i int) bool {
	if i < 0 || i >= len(l.Events) {
		return false
	}
	last := len(l.Events) - 1
	l.Events[i] = l.Events[last]
	l.Events = l.Events[:last]
	return true
}

// LastTime is the latest time at which anything happens.
func (l *Level) LastTime() Time {
	var out Time
	for _, e := range l.Events {
		out = max(out, e.Time+e.Duration())
	}
	return out
}

// Hash is a sha256 hex digest of the level's canonical json.
func (l *Level) Hash() string {
	b, err := json.Marshal(l.normalized())
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func (l Level) normalized() Level {
	out := l.Clone()
	if out.Events == nil {
		out.Events = []TimedEvent{}
	}
	for i := range out.Events {
		if lt := out.Events[i].Event.Light; lt != nil && lt.Movement.Waypoints == nil {
			lt.Movement.Waypoints = []Waypoint{}
		}
	}
	if out.Timing.Points == nil {
		out.Timing.Points = []TimingPoint{}
	}
	return out
}

func (e Event) Clone() Event {
	var out Event
	if e.Light != nil {
		lt := *e.Light
		lt.Movement = e.Light.Movement.Clone()
		out.Light = &lt
	}
	if e.Effect != nil {
		fx := *e.Effect
		out.Effect = &fx
	}
	return out
}

// Clone returns a deep copy sharing no memory with l.
func (l Level) Clone() Level {
	out := Level{Timing: l.Timing.clone()}
	if l.Events != nil {
		out.Events = make([]TimedEvent, len(l.Events))
		for i, e := range l.Events {
			out.Events[i] = TimedEvent{Time: e.Time, Event: e.Event.Clone()}
		}
	}
	return out
}

// Equal compares levels structurally; nil and empty sequences are equal.
func (l *Level) Equal(o *Level) bool {
	if len(l.Events) != len(o.Events) || !slices.Equal(l.Timing.Points, o.Timing.Points) {
		return false
	}
	for i := range l.Events {
		if !l.Events[i].Equal(&o.Events[i]) {
			return false
		}
	}
	return true
}

func (e *TimedEvent) Equal(o *TimedEvent) bool {
	if e.Time != o.Time {
		return false
	}
	a, b := e.Event, o.Event
	if (a.Light == nil) != (b.Light == nil) || (a.Effect == nil) != (b.Effect == nil) {
		return false
	}
	if a.Effect != nil && *a.Effect != *b.Effect {
		return false
	}
	if a.Light != nil {
		if a.Light.Danger != b.Light.Danger || a.Light.Shape != b.Light.Shape {
			return false
		}
		return a.Light.Movement.Equal(&b.Light.Movement)
	}
	return true
}

func (m *Movement) Equal(o *Movement) bool {
	if m.Initial != o.Initial || m.Last != o.Last || len(m.Waypoints) != len(o.Waypoints) {
		return false
	}
	for i, w := range m.Waypoints {
		v := o.Waypoints[i]
		if w.LerpTime != v.LerpTime || w.Interpolation != v.Interpolation || w.Transform != v.Transform {
			return false
		}
		if (w.ChangeCurve == nil) != (v.ChangeCurve == nil) {
			return false
		}
		if w.ChangeCurve != nil && *w.ChangeCurve != *v.ChangeCurve {
			return false
		}
	}
	return true
}
