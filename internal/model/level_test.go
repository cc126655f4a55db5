package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLevel() Level {
	lvl := NewLevel(120)
	m := DefaultMovement()
	lvl.Events = append(lvl.Events,
		TimedEvent{Time: 1000, Event: Event{Light: &LightEvent{Shape: Circle(1), Movement: m}}},
		TimedEvent{Time: 500, Event: Event{Effect: &EffectEvent{Kind: EffectCameraShake, Duration: 4000, Intensity: 0.25}}},
		TimedEvent{Time: 3000, Event: Event{Light: &LightEvent{Danger: true, Shape: Rectangle(2, 1), Movement: m.Clone()}}},
	)
	return lvl
}

func TestLevelLight(t *testing.T) {
	lvl := sampleLevel()
	ev, light := lvl.Light(LightID{Event: 0})
	require.NotNil(t, ev)
	require.NotNil(t, light)
	assert.Equal(t, Circle(1), light.Shape)

	ev, light = lvl.Light(LightID{Event: 1})
	assert.NotNil(t, ev)
	assert.Nil(t, light)

	ev, _ = lvl.Light(LightID{Event: 3})
	assert.Nil(t, ev)
}

func TestLastTime(t *testing.T) {
	lvl := sampleLevel()
	assert.Equal(t, Time(4500), lvl.LastTime())
	empty := NewLevel(120)
	assert.Equal(t, Time(0), empty.LastTime())
}

func TestSwapRemove(t *testing.T) {
	lvl := sampleLevel()
	require.True(t, lvl.SwapRemove(0))
	require.Len(t, lvl.Events, 2)
	assert.Equal(t, Time(3000), lvl.Events[0].Time)
	assert.False(t, lvl.SwapRemove(5))
}

func TestLevelCloneAndEqual(t *testing.T) {
	lvl := sampleLevel()
	c := lvl.Clone()
	require.True(t, lvl.Equal(&c))
	assert.Equal(t, lvl.Hash(), c.Hash())

	c.Events[0].Event.Light.Movement.Waypoints[0].Transform.Scale = 3
	assert.False(t, lvl.Equal(&c))
	assert.NotEqual(t, lvl.Hash(), c.Hash())
	assert.Equal(t, Coord(1), lvl.Events[0].Event.Light.Movement.Waypoints[0].Transform.Scale)

	c = lvl.Clone()
	c.Events[1].Event.Effect.Intensity = 1
	assert.False(t, lvl.Equal(&c))
	c = lvl.Clone()
	c.Timing.Insert(TimingPoint{Time: 100, BeatTime: 1})
	assert.False(t, lvl.Equal(&c))
}

func TestHashIgnoresNilVersusEmpty(t *testing.T) {
	a := Level{}
	b := Level{Events: []TimedEvent{}, Timing: Timing{Points: []TimingPoint{}}}
	assert.True(t, a.Equal(&b))
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "circle(r=1.5)", Circle(1.5).String())
	assert.Equal(t, "line(w=2)", Line(2).String())
	assert.Equal(t, "rect(2x3)", Rectangle(2, 3).String())
}
