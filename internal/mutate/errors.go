package mutate

import (
	"errors"
	"fmt"
	"strconv"

	"lightline-cli/internal/model"
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

var (
	// ErrTimeCollision rejects an edit that would give two frames the same time.
	ErrTimeCollision = errors.New("two waypoints would share the same time")
	// ErrNegativeTime rejects an edit that would start an event before zero.
	ErrNegativeTime = errors.New("event would start before zero")
	ErrNotLight      = errors.New("event is not a light")
	ErrNotEffect     = errors.New("event is not an effect")
	ErrNotShake      = errors.New("effect is not a camera shake")
)

// IsStale reports whether err comes from an id that no longer resolves.
func IsStale(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf) || errors.Is(err, ErrNotLight) || errors.Is(err, ErrNotEffect) || errors.Is(err, ErrNotShake)
}

func eventNotFound(i int) error {
	return NotFoundError{Kind: "event", ID: strconv.Itoa(i)}
}

func waypointNotFound(id model.WaypointID) error {
	return NotFoundError{Kind: "waypoint", ID: id.String()}
}

func lightAt(lvl *model.Level, id model.LightID) (*model.TimedEvent, *model.LightEvent, error) {
	ev, light := lvl.Light(id)
	if ev == nil {
		return nil, nil, eventNotFound(id.Event)
	}
	if light == nil {
		return nil, nil, ErrNotLight
	}
	return ev, light, nil
}

func eventAt(lvl *model.Level, i int) (*model.TimedEvent, error) {
	if i < 0 || i >= len(lvl.Events) {
		return nil, eventNotFound(i)
	}
	return &lvl.Events[i], nil
}

func effectAt(lvl *model.Level, i int) (*model.TimedEvent, *model.EffectEvent, error) {
	ev, err := eventAt(lvl, i)
	if err != nil {
		return nil, nil, err
	}
	if ev.Event.Effect == nil {
		return nil, nil, ErrNotEffect
	}
	return ev, ev.Event.Effect, nil
}
