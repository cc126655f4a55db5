package editor

import (
	"slices"

	"lightline-cli/internal/model"
)

type SelectionKind string

const (
	SelectionEmpty  SelectionKind = "empty"
	SelectionLights SelectionKind = "lights"
	SelectionEvent  SelectionKind = "event"
)

// Selection is empty, a set of lights, or a single event of any kind.
type Selection struct {
	Kind   SelectionKind   `json:"kind"`
	Lights []model.LightID `json:"lights,omitempty"`
	Event  int             `json:"event,omitempty"`
}

func SelectLights(ids ...model.LightID) Selection {
	if len(ids) == 0 {
		return Selection{Kind: SelectionEmpty}
	}
	return Selection{Kind: SelectionLights, Lights: slices.Clone(ids)}
}

func SelectEventAt(i int) Selection {
	return Selection{Kind: SelectionEvent, Event: i}
}

func (s Selection) IsEmpty() bool {
	switch s.Kind {
	case SelectionLights:
		return len(s.Lights) == 0
	case SelectionEvent:
		return false
	}
	return true
}

func (s *Selection) Clear() { *s = Selection{Kind: SelectionEmpty} }

func (s Selection) EventSingle() (int, bool) {
	if s.Kind == SelectionEvent {
		return s.Event, true
	}
	return 0, false
}

// IsEventSingle reports whether exactly the event at i is selected, either as
// an event or as the only selected light.
func (s Selection) IsEventSingle(i int) bool {
	switch s.Kind {
	case SelectionLights:
		return len(s.Lights) == 1 && s.Lights[0].Event == i
	case SelectionEvent:
		return s.Event == i
	}
	return false
}

func (s Selection) LightSingle() (model.LightID, bool) {
	if s.Kind == SelectionLights && len(s.Lights) == 1 {
		return s.Lights[0], true
	}
	return model.LightID{}, false
}

func (s Selection) IsLightSingle(id model.LightID) bool {
	single, ok := s.LightSingle()
	return ok && single == id
}

func (s Selection) IsLightSelected(id model.LightID) bool {
	return s.Kind == SelectionLights && slices.Contains(s.Lights, id)
}

// AddLight selects id as well. An event selection is replaced.
func (s *Selection) AddLight(id model.LightID) {
	if s.Kind != SelectionLights {
		*s = SelectLights(id)
		return
	}
	if !slices.Contains(s.Lights, id) {
		s.Lights = append(s.Lights, id)
	}
}

// RemoveLight swap-removes id from a light selection.
func (s *Selection) RemoveLight(id model.LightID) {
	if s.Kind != SelectionLights {
		return
	}
	i := slices.Index(s.Lights, id)
	if i < 0 {
		return
	}
	last := len(s.Lights) - 1
	s.Lights[i] = s.Lights[last]
	s.Lights = s.Lights[:last]
}

func (s *Selection) Merge(other Selection) {
	switch other.Kind {
	case SelectionLights:
		for _, id := range other.Lights {
			s.AddLight(id)
		}
	case SelectionEvent:
		*s = other
	}
}

func (s Selection) Clone() Selection {
	s.Lights = slices.Clone(s.Lights)
	return s
}
